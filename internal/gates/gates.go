// Package gates implements the answer-quality gate stack: a sequence of
// checks that inspect the current question, evidence, and answer and
// either pass, annotate debug only, or force the pipeline to downgrade
// domain or emit a clarifying question instead of an answer.
package gates

// Verdict is one gate's outcome.
type Verdict struct {
	Gate    string
	Passed  bool
	Reason  string
	Metrics map[string]float64
}

// Report accumulates every gate's verdict for one question, plus the
// clarify/downgrade decisions the stack as a whole produced. It is
// serialized into the trajectory's gate report (C20).
type Report struct {
	Verdicts []Verdict

	Clarify       bool
	ClarifyReason string
}

func (r *Report) record(v Verdict) {
	r.Verdicts = append(r.Verdicts, v)
}

func (r *Report) fail(gate, reason string, metrics map[string]float64) {
	r.record(Verdict{Gate: gate, Passed: false, Reason: reason, Metrics: metrics})
}

func (r *Report) pass(gate string, metrics map[string]float64) {
	r.record(Verdict{Gate: gate, Passed: true, Metrics: metrics})
}

// setClarify records the first clarify trigger; later gates don't overwrite
// an earlier clarify decision, since the pipeline bails out at the first one.
func (r *Report) setClarify(reason string) {
	if r.Clarify {
		return
	}
	r.Clarify = true
	r.ClarifyReason = reason
}
