package reminder

import "sync"

// Window names a lead-time interval before an event, used to dedupe
// reminders.
type Window string

const (
	Window24H       Window = "24H"
	Window1H        Window = "1H"
	WindowPayment5M Window = "PAYMENT_5M"
)

type ledgerKey struct {
	id     string
	window Window
}

// Ledger tracks which (id, window) pairs have already been notified. It is
// process-local; entries are purged wholesale on a fixed interval, which is
// safe because the same id cannot legitimately re-enter the same window
// within that period.
type Ledger struct {
	mu   sync.Mutex
	seen map[ledgerKey]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[ledgerKey]struct{})}
}

// Seen reports whether a reminder was already recorded for (id, window).
func (l *Ledger) Seen(id string, w Window) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[ledgerKey{id: id, window: w}]
	return ok
}

// Record marks (id, window) as notified.
func (l *Ledger) Record(id string, w Window) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[ledgerKey{id: id, window: w}] = struct{}{}
}

// Purge drops every entry, bounding memory.
func (l *Ledger) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = make(map[ledgerKey]struct{})
}

// Size returns the number of recorded entries.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
