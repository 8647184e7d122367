// Package progress tracks per-document extraction progress for a single request scope.
package progress

import "sync"

// Sink receives progress for a document. Implementations must be safe for concurrent use.
type Sink interface {
	Report(documentID string, percent int)
	Clear(documentID string)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(string, int) {}
func (discard) Clear(string)       {}

// Update is delivered to subscribers on every accepted report.
type Update struct {
	DocumentID string
	Percent    int
}

type subscriber struct {
	ch chan Update
}

// Tracker maps document IDs to their latest percentage.
// Percentages are clamped to [0,100] and never move backwards for a document.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]int
	subs    map[string]map[*subscriber]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]int),
		subs:    make(map[string]map[*subscriber]struct{}),
	}
}

// Report records percent for documentID. Lower values than the last accepted one are ignored.
func (t *Tracker) Report(documentID string, percent int) {
	percent = clamp(percent)

	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.entries[documentID]; ok && percent < last {
		return
	}
	t.entries[documentID] = percent

	for s := range t.subs[documentID] {
		select {
		case s.ch <- Update{DocumentID: documentID, Percent: percent}:
		default:
			// slow subscriber, drop the intermediate value
		}
	}
}

// Clear removes documentID and closes its subscriptions.
func (t *Tracker) Clear(documentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, documentID)
	for s := range t.subs[documentID] {
		close(s.ch)
	}
	delete(t.subs, documentID)
}

// Get returns the current percentage for documentID.
func (t *Tracker) Get(documentID string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[documentID]
	return p, ok
}

// Len returns the number of documents currently tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Subscribe returns a channel of updates for documentID. The channel is closed
// when the document is cleared or when the returned cancel func is called.
func (t *Tracker) Subscribe(documentID string, buffer int) (<-chan Update, func()) {
	if buffer < 1 {
		buffer = 1
	}
	s := &subscriber{ch: make(chan Update, buffer)}

	t.mu.Lock()
	if t.subs[documentID] == nil {
		t.subs[documentID] = make(map[*subscriber]struct{})
	}
	t.subs[documentID][s] = struct{}{}
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if set, ok := t.subs[documentID]; ok {
			if _, live := set[s]; live {
				delete(set, s)
				close(s.ch)
				if len(set) == 0 {
					delete(t.subs, documentID)
				}
			}
		}
	}
	return s.ch, cancel
}

func clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Func adapts a plain callback to a Sink. Clear calls are ignored.
type Func func(documentID string, percent int)

func (f Func) Report(documentID string, percent int) { f(documentID, percent) }
func (Func) Clear(string)                            {}
