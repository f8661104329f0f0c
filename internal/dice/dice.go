// Package dice implements dice-notation parsing and rolling.
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
)

// ErrMalformedNotation indicates the notation string does not match the
// <count>d<sides>[<sign><modifier>] grammar.
var ErrMalformedNotation = errors.New("malformed dice notation")

// ErrCountOutOfRange indicates the die count is outside 1..100.
var ErrCountOutOfRange = errors.New("dice count must be between 1 and 100")

// ErrSidesOutOfRange indicates the side count is outside 2..1000.
var ErrSidesOutOfRange = errors.New("dice sides must be between 2 and 1000")

// Bounds for a valid Spec.
const (
	MinCount = 1
	MaxCount = 100
	MinSides = 2
	MaxSides = 1000
)

var notationRE = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Spec describes a parsed dice notation. A Spec is only constructed from
// notation that passed both grammar and range checks.
type Spec struct {
	Count    int
	Sides    int
	Modifier int
}

// Result captures the rolls for a single Spec.
type Result struct {
	Rolls    []int
	Modifier int
	Total    int
}

// Parse validates notation against the grammar and range bounds.
//
// The grammar is <count>d<sides>[<sign><modifier>]: count and sides are
// required decimal integers and the modifier clause is optional, defaulting
// to zero. Grammar failures return ErrMalformedNotation; bound violations
// return ErrCountOutOfRange or ErrSidesOutOfRange. All errors echo the
// offending notation.
func Parse(notation string) (Spec, error) {
	m := notationRE.FindStringSubmatch(notation)
	if m == nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}

	count, err := strconv.Atoi(m[1])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}

	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
		}
	}

	if count < MinCount || count > MaxCount {
		return Spec{}, fmt.Errorf("%w: %q", ErrCountOutOfRange, notation)
	}
	if sides < MinSides || sides > MaxSides {
		return Spec{}, fmt.Errorf("%w: %q", ErrSidesOutOfRange, notation)
	}

	return Spec{Count: count, Sides: sides, Modifier: modifier}, nil
}

// RollWith rolls using the provided source of randomness. Each die
// is an independent uniform draw in [1, Sides]; Total is the sum of all
// draws plus the modifier.
func (s Spec) RollWith(rng *rand.Rand) Result {
	rolls := make([]int, s.Count)
	sum := 0
	for i := 0; i < s.Count; i++ {
		rolls[i] = rng.Intn(s.Sides) + 1
		sum += rolls[i]
	}
	return Result{Rolls: rolls, Modifier: s.Modifier, Total: sum + s.Modifier}
}

// Roll parses notation and rolls it. The top-level math/rand source is used;
// it is safe for concurrent callers and does not need to be cryptographically
// secure.
func Roll(notation string) (Result, error) {
	spec, err := Parse(notation)
	if err != nil {
		return Result{}, err
	}
	rolls := make([]int, spec.Count)
	sum := 0
	for i := 0; i < spec.Count; i++ {
		rolls[i] = rand.Intn(spec.Sides) + 1
		sum += rolls[i]
	}
	return Result{Rolls: rolls, Modifier: spec.Modifier, Total: sum + spec.Modifier}, nil
}
