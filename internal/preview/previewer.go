package preview

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/bukodent/presu/internal/model"
)

// Renderer turns a budget into document bytes.
type Renderer interface {
	Render(b *model.Budget) ([]byte, error)
}

// Handle is a revocable reference to a rendered preview file. Once revoked
// the file is removed and Path returns the empty string.
type Handle struct {
	mu      sync.Mutex
	path    string
	revoked bool
}

// Path returns the preview file path, or "" if the handle was revoked.
func (h *Handle) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return ""
	}
	return h.path
}

// Revoke removes the preview file. Safe to call more than once.
func (h *Handle) Revoke() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return
	}
	h.revoked = true
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not remove preview file %s: %v", h.path, err)
	}
}

// Previewer renders debounced previews of a budget. Each request snapshots
// the budget immediately; the render runs after the debounce delay against
// that snapshot, so edits made while waiting never produce a stale mix.
type Previewer struct {
	renderer Renderer
	debounce *Debouncer

	mu      sync.Mutex
	gen     uint64
	current *Handle
	updated func(*Handle)
}

// NewPreviewer creates a previewer with the given render backend and
// debounce delay. delay <= 0 uses DefaultDelay.
func NewPreviewer(r Renderer, delay time.Duration) *Previewer {
	return &Previewer{renderer: r, debounce: NewDebouncer(delay)}
}

// OnUpdate registers a callback invoked with the new handle after each
// successful render. Only one callback is kept.
func (p *Previewer) OnUpdate(fn func(*Handle)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = fn
}

// Request schedules a preview render of the budget's current state. A
// request made before a pending one fires replaces it. Budgets that fail
// validation are ignored and the existing preview stays in place.
func (p *Previewer) Request(b *model.Budget) {
	if err := b.Validate(); err != nil {
		return
	}
	snapshot := b.Export()
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()
	p.debounce.Submit(func() {
		p.render(snapshot, gen)
	})
}

func (p *Previewer) render(snapshot model.Record, gen uint64) {
	b := model.FromRecord(snapshot)
	data, err := p.renderer.Render(b)
	if err != nil {
		log.Printf("warning: preview render failed: %v", err)
		return
	}

	f, err := os.CreateTemp("", "presu-preview-*.pdf")
	if err != nil {
		log.Printf("warning: could not create preview file: %v", err)
		return
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		log.Printf("warning: could not write preview file: %v", err)
		return
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		log.Printf("warning: could not close preview file: %v", err)
		return
	}

	h := &Handle{path: f.Name()}

	p.mu.Lock()
	// Renders can overlap when one stalls past the debounce delay. A
	// result from a superseded request must not replace a fresher one.
	if gen != p.gen {
		p.mu.Unlock()
		h.Revoke()
		return
	}
	old := p.current
	p.current = h
	updated := p.updated
	p.mu.Unlock()

	if old != nil {
		old.Revoke()
	}
	if updated != nil {
		updated(h)
	}
}

// Current returns the latest successful preview handle, or nil.
func (p *Previewer) Current() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Close cancels pending work and revokes the live preview.
func (p *Previewer) Close() {
	p.debounce.Cancel()
	p.mu.Lock()
	h := p.current
	p.current = nil
	p.mu.Unlock()
	if h != nil {
		h.Revoke()
	}
}
