package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gamemaster/gamemaster-mcp-server/internal/storage/sqlite"
)

type fakeAgent struct {
	reply string
	err   error
	asked string
}

func (a *fakeAgent) InvokeAgent(_ context.Context, _ string, inputText string) (string, error) {
	a.asked = inputText
	return a.reply, a.err
}

type fakeLister struct {
	buckets []string
	err     error
}

func (l *fakeLister) ListBuckets(_ context.Context) ([]string, error) {
	return l.buckets, l.err
}

func TestGetTimeFormat(t *testing.T) {
	tool := GetTime()
	tool.now = func() time.Time {
		return time.Date(2026, 8, 31, 17, 4, 5, 0, time.UTC)
	}

	v, err := tool.Call(context.Background(), nil)
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if v != "2026-08-31 17:04:05" {
		t.Fatalf("unexpected time string: %v", v)
	}
}

func TestGetWeatherStaysInRange(t *testing.T) {
	tool := GetWeather()
	re := regexp.MustCompile(`^The temperature in Waterdeep is (\d+)°C$`)

	for i := 0; i < 50; i++ {
		v, err := tool.Call(context.Background(), map[string]any{"city": "Waterdeep"})
		if err != nil {
			t.Fatalf("Call returned error: %v", err)
		}
		m := re.FindStringSubmatch(v.(string))
		if m == nil {
			t.Fatalf("unexpected weather string: %v", v)
		}
		var temp int
		_, _ = fmt.Sscanf(m[1], "%d", &temp)
		if temp < 15 || temp > 35 {
			t.Fatalf("temperature %d outside [15,35]", temp)
		}
	}
}

func TestCountBuckets(t *testing.T) {
	tool := CountS3Buckets(&fakeLister{buckets: []string{"a", "b", "c"}})
	v, err := tool.Call(context.Background(), nil)
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if v != 3 {
		t.Fatalf("count = %v, want 3", v)
	}
}

func TestCountBucketsMissingConfig(t *testing.T) {
	v, err := CountS3Buckets(nil).Call(context.Background(), nil)
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if !strings.HasPrefix(v.(string), "[ERROR]") {
		t.Fatalf("expected [ERROR] prefix, got %v", v)
	}
}

func TestCountBucketsListerFailure(t *testing.T) {
	tool := CountS3Buckets(&fakeLister{err: errors.New("connection refused")})
	v, err := tool.Call(context.Background(), nil)
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	s := v.(string)
	if !strings.HasPrefix(s, "[ERROR]") || !strings.Contains(s, "connection refused") {
		t.Fatalf("unexpected result: %q", s)
	}
}

func TestRetrieveLore(t *testing.T) {
	agent := &fakeAgent{reply: "The old keep fell in the third age."}
	v, err := RetrieveLore(agent).Call(context.Background(), map[string]any{"query": "the old keep"})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if v != "The old keep fell in the third age." {
		t.Fatalf("unexpected lore: %v", v)
	}
	if agent.asked != "the old keep" {
		t.Fatalf("agent asked %q", agent.asked)
	}
}

func TestRetrieveLoreErrorPaths(t *testing.T) {
	if v, _ := RetrieveLore(nil).Call(context.Background(), map[string]any{"query": "q"}); v != "[ERROR] Lore agent configuration missing." {
		t.Fatalf("unexpected result: %v", v)
	}
	if v, _ := RetrieveLore(&fakeAgent{}).Call(context.Background(), map[string]any{"query": "q"}); v != "[ERROR] No lore returned from agent." {
		t.Fatalf("unexpected result: %v", v)
	}
	agent := &fakeAgent{err: errors.New("timeout")}
	v, _ := RetrieveLore(agent).Call(context.Background(), map[string]any{"query": "q"})
	if !strings.Contains(v.(string), "timeout") {
		t.Fatalf("unexpected result: %v", v)
	}
}

func TestAskRuleExpertPrefixesQuery(t *testing.T) {
	agent := &fakeAgent{reply: "Opportunity attacks use your reaction."}
	v, err := AskRuleExpert(agent).Call(context.Background(), map[string]any{"query": "opportunity attacks"})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if v != "Opportunity attacks use your reaction." {
		t.Fatalf("unexpected answer: %v", v)
	}
	if agent.asked != "Rules question: opportunity attacks" {
		t.Fatalf("agent asked %q", agent.asked)
	}
}

func openCharacterStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "chars.db"), "mcp_sessions", "characters")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetCharacter(t *testing.T) {
	store := openCharacterStore(t)
	ctx := context.Background()

	v, err := CreateCharacter(store).Call(ctx, map[string]any{
		"name":            "Lidda",
		"race":            "halfling",
		"character_class": "rogue",
	})
	if err != nil {
		t.Fatalf("create Call returned error: %v", err)
	}
	confirmation := v.(string)
	if !strings.Contains(confirmation, "Lidda") || !strings.Contains(confirmation, "level 1 halfling rogue") {
		t.Fatalf("unexpected confirmation: %q", confirmation)
	}

	v, err = GetCharacterByName(store).Call(ctx, map[string]any{"name": "Lidda"})
	if err != nil {
		t.Fatalf("get Call returned error: %v", err)
	}
	record := v.(string)
	if !strings.Contains(record, `"name":"Lidda"`) || !strings.Contains(record, `"character_class":"rogue"`) {
		t.Fatalf("unexpected record: %q", record)
	}
}

func TestCreateCharacterHonorsLevel(t *testing.T) {
	store := openCharacterStore(t)

	v, err := CreateCharacter(store).Call(context.Background(), map[string]any{
		"name":            "Jozan",
		"race":            "human",
		"character_class": "cleric",
		"level":           float64(5),
	})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if !strings.Contains(v.(string), "level 5 human cleric") {
		t.Fatalf("unexpected confirmation: %v", v)
	}
}

func TestCreateCharacterDuplicate(t *testing.T) {
	store := openCharacterStore(t)
	ctx := context.Background()
	args := map[string]any{"name": "Regdar", "race": "human", "character_class": "fighter"}

	if _, err := CreateCharacter(store).Call(ctx, args); err != nil {
		t.Fatalf("first create returned error: %v", err)
	}
	v, err := CreateCharacter(store).Call(ctx, args)
	if err != nil {
		t.Fatalf("second create returned error: %v", err)
	}
	if v != "[ERROR] Character 'Regdar' already exists." {
		t.Fatalf("unexpected result: %v", v)
	}
}

func TestGetCharacterMissing(t *testing.T) {
	store := openCharacterStore(t)

	v, err := GetCharacterByName(store).Call(context.Background(), map[string]any{"name": "nobody"})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if v != "[ERROR] Character 'nobody' not found." {
		t.Fatalf("unexpected result: %v", v)
	}
}

func TestCharacterToolsMissingStore(t *testing.T) {
	if v, _ := CreateCharacter(nil).Call(context.Background(), map[string]any{"name": "x"}); !strings.HasPrefix(v.(string), "[ERROR]") {
		t.Fatalf("unexpected result: %v", v)
	}
	if v, _ := GetCharacterByName(nil).Call(context.Background(), map[string]any{"name": "x"}); !strings.HasPrefix(v.(string), "[ERROR]") {
		t.Fatalf("unexpected result: %v", v)
	}
}

func TestDiceRollFormatting(t *testing.T) {
	tool := DiceRoll()
	ctx := context.Background()

	v, err := tool.Call(ctx, map[string]any{"dice_notation": "2d6+3"})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	s := v.(string)
	if !strings.HasPrefix(s, "Rolled 2d6+3: [") || !strings.Contains(s, " + 3 = ") {
		t.Fatalf("unexpected breakdown: %q", s)
	}

	v, _ = tool.Call(ctx, map[string]any{"dice_notation": "1d20-2"})
	if !strings.Contains(v.(string), " - 2 = ") {
		t.Fatalf("unexpected breakdown: %v", v)
	}
}

// TestDiceRollZeroModifierHasNoSign covers both the implicit and the
// explicit +0 modifier renderings.
func TestDiceRollZeroModifierHasNoSign(t *testing.T) {
	tool := DiceRoll()
	for _, notation := range []string{"2d6", "2d6+0"} {
		v, err := tool.Call(context.Background(), map[string]any{"dice_notation": notation})
		if err != nil {
			t.Fatalf("Call returned error: %v", err)
		}
		s := v.(string)
		if strings.Contains(s, "+") && notation == "2d6" {
			t.Fatalf("zero modifier rendered with sign: %q", s)
		}
		if strings.Contains(s, " + 0") || strings.Contains(s, " - 0") {
			t.Fatalf("zero modifier rendered with sign: %q", s)
		}
	}
}

func TestDiceRollBusinessErrors(t *testing.T) {
	tool := DiceRoll()
	ctx := context.Background()

	for _, notation := range []string{"banana", "0d6", "2d1001"} {
		v, err := tool.Call(ctx, map[string]any{"dice_notation": notation})
		if err != nil {
			t.Fatalf("Call returned error: %v", err)
		}
		s := v.(string)
		if !strings.HasPrefix(s, "[ERROR]") {
			t.Fatalf("expected [ERROR] prefix for %q, got %q", notation, s)
		}
		if !strings.Contains(s, notation) {
			t.Fatalf("error for %q does not echo the notation: %q", notation, s)
		}
	}

	if v, _ := tool.Call(ctx, nil); !strings.HasPrefix(v.(string), "[ERROR]") {
		t.Fatalf("expected [ERROR] for missing notation, got %v", v)
	}
}

func TestLegacyDiceRollSharesImplementation(t *testing.T) {
	tool := DiceRollLegacy()

	desc := tool.Descriptor()
	if desc.Name != "diceRoll" {
		t.Fatalf("name = %q, want diceRoll", desc.Name)
	}
	if _, ok := desc.InputSchema.Properties["dice_type"]; !ok {
		t.Fatal("legacy placeholder schema should keep dice_type")
	}

	v, err := tool.Call(context.Background(), map[string]any{"dice_notation": "3d4"})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if !strings.HasPrefix(v.(string), "Rolled 3d4:") {
		t.Fatalf("unexpected breakdown: %v", v)
	}
}
