// Package observers provides ready-made Observer implementations: console
// progress reporting, Prometheus metrics, and OpenTelemetry tracing.
package observers

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/PedroGaya/sandl/internal/ports"
)

var _ ports.Observer = (*Progress)(nil)

// Progress is the default tracked-run observer: a human-readable progress
// report on the given writer. Per-slice lines are throttled through a rate
// limiter so multi-million-slice runs do not drown the terminal; the final
// slice and every failure are always reported.
type Progress struct {
	log       zerolog.Logger
	limiter   *rate.Limiter
	total     int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewProgress creates a progress observer writing console output to out.
// total is the number of slices expected in the run.
func NewProgress(out io.Writer, total int) *Progress {
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	return &Progress{
		log:     zerolog.New(console).With().Timestamp().Logger(),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		total:   int64(total),
	}
}

// OnSliceStart implements ports.Observer.
func (p *Progress) OnSliceStart(string) {}

// OnSliceComplete implements ports.Observer.
func (p *Progress) OnSliceComplete(slice string, d time.Duration) {
	n := p.completed.Add(1)
	if n == p.total || p.limiter.Allow() {
		p.log.Info().
			Str("slice", slice).
			Dur("took", d).
			Int64("done", n).
			Int64("total", p.total).
			Msg("slice complete")
	}
}

// OnMethodStart implements ports.Observer.
func (p *Progress) OnMethodStart(string, string, string) {}

// OnMethodComplete implements ports.Observer.
func (p *Progress) OnMethodComplete(string, string, string, time.Duration) {}

// OnMethodFailed implements ports.Observer. Failures are never throttled.
func (p *Progress) OnMethodFailed(slice, layer, method string, err error) {
	p.failed.Add(1)
	p.log.Warn().
		Str("slice", slice).
		Str("layer", layer).
		Str("method", method).
		Err(err).
		Msg("method failed")
}

// Completed returns the number of slice completions observed so far.
func (p *Progress) Completed() int64 { return p.completed.Load() }

// Failed returns the number of method failures observed so far.
func (p *Progress) Failed() int64 { return p.failed.Load() }
