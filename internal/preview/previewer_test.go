package preview

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/model"
)

func validBudget(t *testing.T) *model.Budget {
	t.Helper()
	b := model.NewBudget()
	b.SetPatientName("Ana Pérez")
	b.AddItem(model.Treatment{
		ID:       "T001",
		Name:     "Limpieza dental",
		Category: "Higiene",
		Price:    decimal.NewFromInt(45),
	}, 2, decimal.Zero)
	return b
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	data  []byte
	err   error
}

func (r *fakeRenderer) Render(b *model.Budget) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.data, r.err
}

func (r *fakeRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestDebouncer_ReplacesPendingTask(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	var ran []int
	for i := 1; i <= 3; i++ {
		i := i
		d.Submit(func() {
			mu.Lock()
			ran = append(ran, i)
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) > 0
	})
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != 3 {
		t.Errorf("ran = %v, want only the last task", ran)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	fired := false
	d.Submit(func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Error("cancelled task still fired")
	}
}

func TestPreviewer_RendersAndExposesHandle(t *testing.T) {
	r := &fakeRenderer{data: []byte("%PDF-fake")}
	p := NewPreviewer(r, 10*time.Millisecond)
	defer p.Close()

	p.Request(validBudget(t))
	waitFor(t, func() bool { return p.Current() != nil })

	h := p.Current()
	data, err := os.ReadFile(h.Path())
	if err != nil {
		t.Fatalf("reading preview file: %v", err)
	}
	if string(data) != "%PDF-fake" {
		t.Errorf("preview content = %q, want rendered bytes", data)
	}
}

func TestPreviewer_ReplacingPreviewRevokesOldHandle(t *testing.T) {
	r := &fakeRenderer{data: []byte("%PDF-fake")}
	p := NewPreviewer(r, 5*time.Millisecond)
	defer p.Close()

	p.Request(validBudget(t))
	waitFor(t, func() bool { return p.Current() != nil })
	first := p.Current()
	firstPath := first.Path()

	p.Request(validBudget(t))
	waitFor(t, func() bool { return p.Current() != first })

	if got := first.Path(); got != "" {
		t.Errorf("old handle Path() = %q, want empty after revoke", got)
	}
	if _, err := os.Stat(firstPath); !os.IsNotExist(err) {
		t.Errorf("old preview file still exists: %v", err)
	}
	if p.Current().Path() == "" {
		t.Error("new handle has no path")
	}
}

func TestPreviewer_RenderFailureKeepsPreviousPreview(t *testing.T) {
	r := &fakeRenderer{data: []byte("%PDF-fake")}
	p := NewPreviewer(r, 5*time.Millisecond)
	defer p.Close()

	p.Request(validBudget(t))
	waitFor(t, func() bool { return p.Current() != nil })
	first := p.Current()

	r.mu.Lock()
	r.err = errors.New("boom")
	r.mu.Unlock()

	calls := r.callCount()
	p.Request(validBudget(t))
	waitFor(t, func() bool { return r.callCount() > calls })
	time.Sleep(20 * time.Millisecond)

	if p.Current() != first {
		t.Error("failed render replaced the previous preview")
	}
	if first.Path() == "" {
		t.Error("previous handle was revoked after a failed render")
	}
}

type slowFirstRenderer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (r *slowFirstRenderer) Render(b *model.Budget) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	n := r.calls
	r.mu.Unlock()
	if n == 1 {
		<-r.release
		return []byte("%PDF-old"), nil
	}
	return []byte("%PDF-new"), nil
}

func (r *slowFirstRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestPreviewer_SlowRenderDoesNotReplaceFresherPreview(t *testing.T) {
	r := &slowFirstRenderer{release: make(chan struct{})}
	p := NewPreviewer(r, 5*time.Millisecond)
	defer p.Close()

	p.Request(validBudget(t))
	waitFor(t, func() bool { return r.callCount() == 1 })

	p.Request(validBudget(t))
	waitFor(t, func() bool { return p.Current() != nil })

	close(r.release)
	time.Sleep(30 * time.Millisecond)

	h := p.Current()
	data, err := os.ReadFile(h.Path())
	if err != nil {
		t.Fatalf("reading preview file: %v", err)
	}
	if string(data) != "%PDF-new" {
		t.Errorf("preview content = %q, want the fresher render", data)
	}
}

func TestPreviewer_InvalidBudgetIgnored(t *testing.T) {
	r := &fakeRenderer{data: []byte("%PDF-fake")}
	p := NewPreviewer(r, 5*time.Millisecond)
	defer p.Close()

	p.Request(model.NewBudget())
	time.Sleep(40 * time.Millisecond)

	if r.callCount() != 0 {
		t.Errorf("render calls = %d, want 0 for invalid budget", r.callCount())
	}
	if p.Current() != nil {
		t.Error("invalid budget produced a preview")
	}
}

func TestPreviewer_CloseRevokes(t *testing.T) {
	r := &fakeRenderer{data: []byte("%PDF-fake")}
	p := NewPreviewer(r, 5*time.Millisecond)

	p.Request(validBudget(t))
	waitFor(t, func() bool { return p.Current() != nil })
	h := p.Current()
	path := h.Path()

	p.Close()

	if p.Current() != nil {
		t.Error("Current() not nil after Close")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("preview file still exists after Close: %v", err)
	}
}

func TestPreviewer_OnUpdateCallback(t *testing.T) {
	r := &fakeRenderer{data: []byte("%PDF-fake")}
	p := NewPreviewer(r, 5*time.Millisecond)
	defer p.Close()

	var mu sync.Mutex
	var got *Handle
	p.OnUpdate(func(h *Handle) {
		mu.Lock()
		got = h
		mu.Unlock()
	})

	p.Request(validBudget(t))
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	})

	mu.Lock()
	defer mu.Unlock()
	if got != p.Current() {
		t.Error("callback handle differs from Current()")
	}
}
