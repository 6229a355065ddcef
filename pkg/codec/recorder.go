package codec

import (
	"io"
	"sync"

	"github.com/matzehuels/cellgraph/pkg/event"
	"github.com/matzehuels/cellgraph/pkg/model"
)

// Recorder writes every edit committed, undone or redone on a model to a
// writer as an <edit> element, one per line. Replaying the output on a
// copy of the model's initial state reproduces its current state.
type Recorder struct {
	model *model.Model
	w     io.Writer
	sub   event.Subscription

	mu    sync.Mutex
	count int
	err   error
}

// NewRecorder starts recording the edits of m to w.
func NewRecorder(m *model.Model, w io.Writer) *Recorder {
	r := &Recorder{model: m, w: w}
	r.sub = m.Events().AddListener(event.Change, r.changed)
	return r
}

func (r *Recorder) changed(e *event.Event) {
	ev, ok := e.Payload.(model.EditEvent)
	if !ok || ev.Edit.IsEmpty() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := EncodeEdit(r.w, r.model, ev.Edit); err != nil {
		r.err = err
		return
	}
	r.count++
}

// Count returns the number of edits written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the first write error. Recording stops after an error.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close stops recording and returns the first write error.
func (r *Recorder) Close() error {
	r.model.Events().RemoveListener(r.sub)
	return r.Err()
}
