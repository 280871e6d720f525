// Package status provides sinks for optimization progress events.
package status

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/imgopt/internal/ui/output"
)

const (
	// KindLinear prints every event as a prefixed line.
	KindLinear = "linear"
	// KindNone drops all events.
	KindNone = "none"
)

// prefix labels every line, matching the status tag site generators print for this pass.
const prefix = "imageoptim"

// New returns the sink selected by kind. Unknown kinds fall back to linear output.
func New(kind string, w io.Writer) ports.StatusSink {
	if kind == KindNone {
		return Nop{}
	}
	return NewLinear(w)
}

// Nop discards events.
type Nop struct{}

// Emit does nothing.
func (Nop) Emit(domain.StatusEvent) {}

// Linear writes one colored line per event.
type Linear struct {
	mu  sync.Mutex
	out *termenv.Output
	w   io.Writer
}

// NewLinear creates a Linear sink writing to w, defaulting to stdout.
func NewLinear(w io.Writer) *Linear {
	if w == nil {
		w = os.Stdout
	}
	return &Linear{out: output.New(w), w: w}
}

// Emit prints the event.
func (l *Linear) Emit(event domain.StatusEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tag := l.out.String(fmt.Sprintf("%12s", prefix)).Foreground(colorFor(event.Category)).Bold().String()
	_, _ = fmt.Fprintf(l.w, "%s  %s\n", tag, event.Message)
}

func colorFor(category domain.StatusCategory) termenv.Color {
	switch category {
	case domain.StatusProcessed, domain.StatusSummary:
		return termenv.RGBColor(output.Green)
	case domain.StatusWarning:
		return termenv.RGBColor(output.Red)
	case domain.StatusPermission, domain.StatusSkipped:
		return termenv.RGBColor(output.Yellow)
	default:
		return termenv.RGBColor(output.Iris)
	}
}

// Recorder keeps every event in memory, optionally forwarding to another sink.
type Recorder struct {
	mu     sync.Mutex
	events []domain.StatusEvent
	next   ports.StatusSink
}

// NewRecorder creates a Recorder forwarding to next. next may be nil.
func NewRecorder(next ports.StatusSink) *Recorder {
	return &Recorder{next: next}
}

// Emit records the event and forwards it.
func (r *Recorder) Emit(event domain.StatusEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()

	if r.next != nil {
		r.next.Emit(event)
	}
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []domain.StatusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]domain.StatusEvent, len(r.events))
	copy(events, r.events)
	return events
}

// Count returns how many recorded events have the given category.
func (r *Recorder) Count(category domain.StatusCategory) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		if e.Category == category {
			n++
		}
	}
	return n
}
