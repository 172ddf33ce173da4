// Package stream turns a raw token stream from the synthesis LLM call into
// a bounded sequence of progress/answer events; the async Ask job appends
// their text to the job's partial text.
package stream

import "strings"

// Phase is the emitter's position in Searching -> InAnswer -> Done.
type Phase string

const (
	PhaseSearching Phase = "searching"
	PhaseInAnswer  Phase = "in_answer"
	PhaseDone      Phase = "done"
)

const (
	startMarker = "ANSWER_START"
	endMarker   = "ANSWER_END"
)

// Event is one unit of output: a phase transition or a slice of answer
// text that crossed the chunk/flush boundary.
type Event struct {
	Phase Phase
	Text  string
}

// Config bounds how aggressively the emitter batches answer text.
type Config struct {
	ChunkMaxChars int
	FlushMS       int
	MaxEvents     int
}

// Emitter is a small state machine over raw LLM output. Callers drive it
// with Feed as chunks arrive, Tick on a caller-owned time.Ticker to flush
// partial content that's been sitting in the buffer for flush_ms without
// filling chunk_max_chars, and Close once the stream ends.
type Emitter struct {
	cfg   Config
	phase Phase
	tail  string
	buf   strings.Builder
	count int

	sawStart bool
	closed   bool
}

// New constructs an Emitter in the Searching phase.
func New(cfg Config) *Emitter {
	if cfg.ChunkMaxChars <= 0 {
		cfg.ChunkMaxChars = 512
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 256
	}
	return &Emitter{cfg: cfg, phase: PhaseSearching}
}

// Phase reports the emitter's current state.
func (e *Emitter) Phase() Phase {
	return e.phase
}

// Feed advances the state machine with the next chunk of raw output and
// returns any events produced. ANSWER_START/ANSWER_END markers may
// straddle chunk boundaries; Feed buffers the tail needed to detect a
// marker split across two calls.
func (e *Emitter) Feed(chunk string) []Event {
	if e.closed || e.phase == PhaseDone {
		return nil
	}

	var out []Event
	e.tail += chunk

	switch e.phase {
	case PhaseSearching:
		idx := strings.Index(e.tail, startMarker)
		if idx < 0 {
			return nil
		}
		e.sawStart = true
		e.phase = PhaseInAnswer
		rest := e.tail[idx+len(startMarker):]
		e.tail = ""
		out = append(out, e.consumeAnswer(rest)...)
	case PhaseInAnswer:
		rest := e.tail
		e.tail = ""
		out = append(out, e.consumeAnswer(rest)...)
	}

	return out
}

// consumeAnswer looks for ANSWER_END in s. Everything before it (or, if
// absent, everything except a marker-length tail) is appended to the
// pending buffer and flushed once chunk_max_chars is reached.
func (e *Emitter) consumeAnswer(s string) []Event {
	if idx := strings.Index(s, endMarker); idx >= 0 {
		e.buf.WriteString(s[:idx])
		var out []Event
		out = append(out, e.flush()...)
		e.phase = PhaseDone
		if ev, ok := e.track(Event{Phase: PhaseDone}); ok {
			out = append(out, ev)
		}
		return out
	}

	keep := len(endMarker) - 1
	if len(s) <= keep {
		e.tail = s
		return nil
	}

	e.buf.WriteString(s[:len(s)-keep])
	e.tail = s[len(s)-keep:]

	if e.buf.Len() >= e.cfg.ChunkMaxChars {
		return e.flush()
	}
	return nil
}

// Tick is driven by the caller's flush_ms ticker: it flushes whatever
// answer text has accumulated even if chunk_max_chars hasn't been hit.
func (e *Emitter) Tick() []Event {
	if e.closed || e.phase != PhaseInAnswer {
		return nil
	}
	return e.flush()
}

func (e *Emitter) flush() []Event {
	if e.buf.Len() == 0 {
		return nil
	}
	text := e.buf.String()
	e.buf.Reset()
	if ev, ok := e.track(Event{Phase: PhaseInAnswer, Text: text}); ok {
		return []Event{ev}
	}
	return nil
}

// track records ev against the max_events budget. Once the budget is
// spent, it reports ok=false so callers emit nothing further.
func (e *Emitter) track(ev Event) (Event, bool) {
	if e.count >= e.cfg.MaxEvents {
		return Event{}, false
	}
	e.count++
	return ev, true
}

// Close finalizes the stream. If ANSWER_START was never seen, it emits a
// single fallback event containing the raw text fed so far; otherwise it
// flushes any trailing buffered content and marks the stream Done.
func (e *Emitter) Close() []Event {
	if e.closed {
		return nil
	}
	e.closed = true

	if e.phase == PhaseDone {
		return nil
	}

	var out []Event
	if !e.sawStart {
		if e.tail != "" {
			if ev, ok := e.track(Event{Phase: PhaseDone, Text: e.tail}); ok {
				out = append(out, ev)
			}
		}
	} else {
		// No more data is coming, so the marker-straddle safety margin
		// held in tail can't turn into a real ANSWER_END anymore — it's
		// just trailing answer text.
		e.buf.WriteString(e.tail)
		e.tail = ""
		out = append(out, e.flush()...)
		if ev, ok := e.track(Event{Phase: PhaseDone}); ok {
			out = append(out, ev)
		}
	}
	e.phase = PhaseDone
	return out
}
