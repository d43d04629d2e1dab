package watchlist

import "strings"

// Watchlist is an ordered set of upper-cased symbols. Not safe for concurrent use.
type Watchlist struct {
	symbols []string
}

// New creates a watchlist seeded with symbols.
func New(symbols ...string) *Watchlist {
	w := &Watchlist{}
	for _, s := range symbols {
		w.Add(s)
	}
	return w
}

// Add appends sym unless it is empty or already present. It reports whether
// the list changed.
func (w *Watchlist) Add(sym string) bool {
	s := strings.ToUpper(strings.TrimSpace(sym))
	if s == "" || w.Contains(s) {
		return false
	}
	w.symbols = append(w.symbols, s)
	return true
}

// Remove deletes sym. It reports whether the list changed.
func (w *Watchlist) Remove(sym string) bool {
	s := strings.ToUpper(strings.TrimSpace(sym))
	for i, o := range w.symbols {
		if o == s {
			w.symbols = append(w.symbols[:i], w.symbols[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether sym is listed.
func (w *Watchlist) Contains(sym string) bool {
	s := strings.ToUpper(strings.TrimSpace(sym))
	for _, o := range w.symbols {
		if o == s {
			return true
		}
	}
	return false
}

// Symbols returns a copy of the list in insertion order.
func (w *Watchlist) Symbols() []string {
	return append([]string(nil), w.symbols...)
}

// Len returns the number of symbols.
func (w *Watchlist) Len() int { return len(w.symbols) }
