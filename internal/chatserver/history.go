package chatserver

import (
	"sync"
	"time"
)

// Entry is one line of the chat transcript.
type Entry struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Transcript keeps the most recent chat entries in a fixed-size ring.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	count   int
}

// NewTranscript builds a transcript holding up to size entries.
func NewTranscript(size int) *Transcript {
	if size <= 0 {
		size = 200
	}
	return &Transcript{entries: make([]Entry, size)}
}

// Add records an entry, evicting the oldest when the ring is full.
func (t *Transcript) Add(role, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[t.next] = Entry{Role: role, Text: text, At: time.Now().UTC()}
	t.next = (t.next + 1) % len(t.entries)
	if t.count < len(t.entries) {
		t.count++
	}
}

// Tail returns the most recent n entries in chronological order.
func (t *Transcript) Tail(n int) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 || t.count == 0 {
		return nil
	}

	if n > t.count {
		n = t.count
	}

	start := (t.next - n + len(t.entries)) % len(t.entries)
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = t.entries[(start+i)%len(t.entries)]
	}

	return out
}
