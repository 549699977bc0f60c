package minefield

import "github.com/mcoot/minesweeper-go/internal/model"

// Listener receives notifications from a Minefield. All callbacks are
// invoked synchronously from whichever command triggered them.
type Listener interface {
	// CellChanged is called when a single cell changed
	CellChanged(cell model.Cell)

	// BoardChanged is called when the whole board changed: a reset, a
	// cascade broader than one cell, or the reveal-all on a win or loss
	BoardChanged()

	// PhaseChanged is called when the game phase changed
	PhaseChanged(phase model.Phase)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// fields are skipped.
type ListenerFuncs struct {
	OnCellChanged  func(cell model.Cell)
	OnBoardChanged func()
	OnPhaseChanged func(phase model.Phase)
}

var _ Listener = ListenerFuncs{}

func (f ListenerFuncs) CellChanged(cell model.Cell) {
	if f.OnCellChanged != nil {
		f.OnCellChanged(cell)
	}
}

func (f ListenerFuncs) BoardChanged() {
	if f.OnBoardChanged != nil {
		f.OnBoardChanged()
	}
}

func (f ListenerFuncs) PhaseChanged(phase model.Phase) {
	if f.OnPhaseChanged != nil {
		f.OnPhaseChanged(phase)
	}
}

// Subscribe registers a listener for field notifications and returns a
// func that unregisters it. The listener immediately receives a board
// refresh so a late-joining view is synchronized.
func (m *Minefield) Subscribe(listener Listener) func() {
	sub := m.observers.add(listener)
	listener.BoardChanged()
	return func() {
		m.observers.remove(sub)
	}
}

// subscription wraps a listener so it can be removed by identity, and so
// removal during dispatch takes effect immediately.
type subscription struct {
	listener Listener
	removed  bool
}

// registry holds the observer list. Dispatch iterates a snapshot of the
// list, so listeners may subscribe or unsubscribe from within callbacks
// without disturbing in-flight notifications.
type registry struct {
	subs []*subscription
}

func newRegistry() *registry {
	return &registry{}
}

func (r *registry) add(listener Listener) *subscription {
	sub := &subscription{listener: listener}
	next := make([]*subscription, len(r.subs), len(r.subs)+1)
	copy(next, r.subs)
	r.subs = append(next, sub)
	return sub
}

func (r *registry) remove(sub *subscription) {
	if sub.removed {
		return
	}
	sub.removed = true
	next := make([]*subscription, 0, len(r.subs))
	for _, s := range r.subs {
		if s != sub {
			next = append(next, s)
		}
	}
	r.subs = next
}

func (r *registry) each(fn func(Listener)) {
	snapshot := r.subs
	for _, s := range snapshot {
		if !s.removed {
			fn(s.listener)
		}
	}
}
