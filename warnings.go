package gaze

import (
	"fmt"
	"sync"
)

// ReloadWarning is a non-fatal condition met during one reload. It wraps
// the underlying error, so errors.Is sees through it.
type ReloadWarning struct {
	ReloadID string
	Step     State
	Err      error
}

func (w *ReloadWarning) Error() string {
	return fmt.Sprintf("reload %s: %s: %v", w.ReloadID, w.Step, w.Err)
}

func (w *ReloadWarning) Unwrap() error {
	return w.Err
}

// warningLog keeps the warnings of the current reload, dropping the
// oldest once full. Status readers may call all() from another
// goroutine, so access is guarded even though only the control goroutine
// records.
type warningLog struct {
	mu      sync.RWMutex
	id      string
	items   []*ReloadWarning
	next    int
	dropped int
}

// newWarningLog creates a log holding up to size warnings. A size below
// one disables history.
func newWarningLog(size int) *warningLog {
	if size <= 0 {
		return nil
	}
	return &warningLog{items: make([]*ReloadWarning, 0, size)}
}

// begin discards the previous reload's warnings and tags later records
// with id.
func (l *warningLog) begin(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.items)
	l.items = l.items[:0]
	l.id = id
	l.next = 0
	l.dropped = 0
}

// record wraps err with the current reload id and step.
func (l *warningLog) record(step State, err error) *ReloadWarning {
	if l == nil {
		return &ReloadWarning{Step: step, Err: err}
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	w := &ReloadWarning{ReloadID: l.id, Step: step, Err: err}
	if len(l.items) < cap(l.items) {
		l.items = append(l.items, w)
		return w
	}
	l.items[l.next] = w
	l.next = (l.next + 1) % len(l.items)
	l.dropped++
	return w
}

func (l *warningLog) len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items) + l.dropped
}

// all returns the retained warnings, oldest first.
func (l *warningLog) all() []error {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.items) == 0 {
		return nil
	}
	out := make([]error, 0, len(l.items))
	for i := range l.items {
		out = append(out, l.items[(l.next+i)%len(l.items)])
	}
	return out
}
