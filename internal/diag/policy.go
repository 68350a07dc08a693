package diag

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Handling is how a Diagnostic of a given Kind should be treated.
type Handling string

// The three handling policies. Fallback is not itself a Handling value; it
// is resolved to one of these when a Policy is built.
const (
	Ignore Handling = "ignore"
	Warn   Handling = "warn"
	Error  Handling = "error"
)

// Policy maps each Kind to a Handling, resolved once at construction time
// rather than re-resolved on every Report call: the fallback is baked in
// at build time, not looked up per diagnostic.
type Policy struct {
	byKind   map[Kind]Handling
	fallback Handling
}

// NewPolicy builds a Policy from a per-kind mapping and a fallback. An empty
// or missing fallback defaults to Warn.
func NewPolicy(byKind map[Kind]Handling, fallback Handling) *Policy {
	if fallback == "" {
		fallback = Warn
	}

	resolved := make(map[Kind]Handling, len(byKind))
	for k, v := range byKind {
		resolved[k] = v
	}

	return &Policy{byKind: resolved, fallback: fallback}
}

// Resolve returns the Handling configured for k, falling back to the
// policy's default when k has no explicit entry.
func (p *Policy) Resolve(k Kind) Handling {
	if p == nil {
		return Warn
	}

	if h, ok := p.byKind[k]; ok {
		return h
	}

	return p.fallback
}

// ExitFlag is a process exit-code latch: any Diagnostic resolved to Error
// sets it. main reads it after the run completes.
type ExitFlag struct {
	dirty atomic.Bool
}

// Set marks the flag dirty.
func (f *ExitFlag) Set() {
	f.dirty.Store(true)
}

// Dirty reports whether Set has been called.
func (f *ExitFlag) Dirty() bool {
	return f.dirty.Load()
}

// Subscriber builds a diag.Subscriber that applies p to every reported
// Diagnostic: Ignore drops it, Warn logs it via logger, Error logs it and
// sets flag.
func (p *Policy) Subscriber(logger zerolog.Logger, flag *ExitFlag) Subscriber {
	return func(d Diagnostic) {
		switch p.Resolve(d.Kind) {
		case Ignore:
			return
		case Error:
			logEvent(logger.Error(), d)

			if flag != nil {
				flag.Set()
			}
		case Warn:
			fallthrough
		default:
			logEvent(logger.Warn(), d)
		}
	}
}

func logEvent(ev *zerolog.Event, d Diagnostic) {
	ev = ev.Str("sys", "diag").Str("kind", string(d.Kind))

	if d.Location != nil {
		ev = ev.Str("file", d.Location.Filename).
			Int("line", d.Location.Start.Line).
			Int("col", d.Location.Start.Col)
	}

	ev.Msg(detailsMessage(d))
}

func detailsMessage(d Diagnostic) string {
	if s, ok := d.Details.(interface{ String() string }); ok {
		return s.String()
	}

	return fmt.Sprintf("%+v", d.Details)
}
