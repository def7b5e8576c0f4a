package gradebook

import (
	"context"
	"errors"
	"sync"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// ErrUnknownCell is returned for a cell that is not in the current snapshot.
var ErrUnknownCell = errors.New("gradebook: unknown cell")

// CellHandler handles one edit of one cell.
type CellHandler func(ctx context.Context, raw string) error

// Dispatcher is the event-to-handler table for score cells, keyed by
// (student row, subject column). It is rebuilt whenever the model's
// snapshot changes, so rendering never has to wire mutations itself.
type Dispatcher struct {
	model  *Model
	editor *EditController

	mu       sync.Mutex
	version  uint64
	built    bool
	handlers map[journal.CellRef]CellHandler
}

// NewDispatcher creates a dispatcher for the cells of model.
func NewDispatcher(model *Model, editor *EditController) *Dispatcher {
	return &Dispatcher{model: model, editor: editor}
}

// Dispatch routes an edit of ref to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, ref journal.CellRef, raw string) error {
	handler, ok := d.lookup(ref)
	if !ok {
		return ErrUnknownCell
	}
	return handler(ctx, raw)
}

// Bound reports whether ref has a handler in the current table.
func (d *Dispatcher) Bound(ref journal.CellRef) bool {
	_, ok := d.lookup(ref)
	return ok
}

// Len returns the number of bound cells.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rebuildLocked(d.model.Snapshot())
	return len(d.handlers)
}

func (d *Dispatcher) lookup(ref journal.CellRef) (CellHandler, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rebuildLocked(d.model.Snapshot())
	h, ok := d.handlers[ref]
	return h, ok
}

func (d *Dispatcher) rebuildLocked(snap *Snapshot) {
	if d.built && d.version == snap.Version {
		return
	}
	handlers := make(map[journal.CellRef]CellHandler, len(snap.Students)*len(snap.Subjects))
	for _, st := range snap.Students {
		for _, sub := range snap.Subjects {
			ref := journal.CellRef{StudentID: st.ID, SubjectID: sub.ID}
			handlers[ref] = d.bind(ref)
		}
	}
	d.handlers = handlers
	d.version = snap.Version
	d.built = true
}

func (d *Dispatcher) bind(ref journal.CellRef) CellHandler {
	return func(ctx context.Context, raw string) error {
		return d.editor.EditCell(ctx, ref, raw)
	}
}
