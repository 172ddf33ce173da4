// Package ask composes the Helix Ask pipeline's individually-testable
// stages (intent routing, topic tagging, retrieval, distillation,
// synthesis, citation repair, the gate stack) into the one ordered
// Answer call the HTTP and job-queue transports drive.
package ask

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/helixask/common/logger"
	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/citation"
	"basegraph.app/helixask/internal/concepts"
	"basegraph.app/helixask/internal/distiller"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/envelope"
	"basegraph.app/helixask/internal/gates"
	"basegraph.app/helixask/internal/intent"
	"basegraph.app/helixask/internal/longprompt"
	"basegraph.app/helixask/internal/overflow"
	"basegraph.app/helixask/internal/postprocess"
	"basegraph.app/helixask/internal/retriever"
	"basegraph.app/helixask/internal/synthesizer"
	"basegraph.app/helixask/internal/topic"
	"basegraph.app/helixask/internal/trajectory"
)

const canonicalExecutionFallback = "Something went wrong answering this one. Please try again."

// Retriever is the capability the pipeline needs from the hybrid
// retriever; satisfied by *retriever.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, in retriever.Input) (domain.EvidencePack, error)
}

// Distiller is the capability the pipeline needs from the evidence
// distiller; satisfied by *distiller.Distiller.
type Distiller interface {
	Distill(ctx context.Context, in distiller.Input) (domain.DistilledEvidence, overflow.Debug, error)
}

// Synthesizer is the capability the pipeline needs from the answer
// synthesizer; satisfied by *synthesizer.Synthesizer.
type Synthesizer interface {
	Synthesize(ctx context.Context, in synthesizer.Input) (string, overflow.Debug, error)
}

// CitationRepairer is the capability the pipeline needs from the
// citation-repair pass; satisfied by *citation.Repairer.
type CitationRepairer interface {
	Repair(ctx context.Context, in citation.Input) (string, overflow.Debug, error)
}

// PlanPlanner is the capability the pipeline needs from the plan-pass
// micro-LLM call; satisfied by *planpass.Planner. Optional: a nil
// Planner on the Pipeline skips the plan pass entirely.
type PlanPlanner interface {
	Plan(ctx context.Context, question domain.Question, baseQueries []string) (domain.PlanDirectives, []string, error)
}

// Result is one synchronous Answer call's full output: the envelope, the
// gate report it was produced under, and the evidence pack it was
// grounded in, enough material for the caller to fold into a Trajectory.
type Result struct {
	Envelope domain.AnswerEnvelope
	Gates    gates.Report
	Evidence domain.EvidencePack
	Domain   domain.Domain
	Tags     []string
}

// Pipeline wires the Ask stages together in a fixed order: ambiguity
// resolver (pre) -> intent match -> retrieval ->
// ambiguity resolver (post) -> evidence gate -> distillation -> claim
// gate -> slot/must-include/verification-anchor -> arbiter -> synthesis
// -> format enforcement -> citation repair -> lint/belief/rattling ->
// envelope.
type Pipeline struct {
	Config config.Config

	Intent        *intent.Directory
	Tagger        *topic.Tagger
	TopicProfiles *topic.Profiler
	Planner       PlanPlanner
	Concepts      *concepts.Store

	Retriever  Retriever
	LongPrompt *longprompt.Ingester

	Distiller   Distiller
	Synthesizer Synthesizer
	Citation    CitationRepairer
	Arbiter     *gates.Arbiter

	// Governor and Trajectories are both optional; nil disables
	// training-trajectory capture entirely (see EmitTrajectory).
	Governor     trajectory.Governor
	Trajectories TrajectoryStore

	Logger *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Answer runs one question through the full pipeline, returning the
// bounded envelope plus the material needed to build its trajectory.
func (p *Pipeline) Answer(ctx context.Context, q domain.Question) (Result, error) {
	report := gates.Report{}

	preGate := logger.StartSpan(ctx, "ask.pre_intent_gate")
	gates.ResolvePreIntent(&report, q, p.Concepts, p.Config.Gates)
	preGate.End()
	if report.Clarify {
		return p.clarifyResult(report, report.ClarifyReason, domain.EvidencePack{}), nil
	}

	intentSpan := logger.StartSpan(ctx, "ask.intent_match")
	profile, _ := p.Intent.Match(q, intent.Expectation{
		HasRepoHints:     q.HasRepoHints(),
		HasFilePathHints: q.HasFilePathHints(),
	})
	intentSpan.End()

	baseQueries := baseQueries(q)
	directives := domain.PlanDirectives{}
	queries := baseQueries
	if p.Planner != nil {
		planSpan := logger.StartSpan(ctx, "ask.plan_pass")
		var err error
		directives, queries, err = p.Planner.Plan(planSpan.Context(), q, baseQueries)
		if err != nil {
			planSpan.RecordError(err)
			p.logger().WarnContext(ctx, "plan pass failed, falling back to base queries", "error", err)
			directives = domain.PlanDirectives{}
			queries = baseQueries
		}
		planSpan.End()
	}

	topicSpan := logger.StartSpan(ctx, "ask.topic_profile")
	tags := p.Tagger.Tag(q.Prompt, q.SearchQuery)
	topicProfile, _ := p.TopicProfiles.Profile(tags)
	topicSpan.End()
	scope := buildPlanScope(topicProfile, directives)

	if q.DryRun && p.LongPrompt != nil && p.LongPrompt.ShouldIngest(q.Context) {
		pack := p.LongPrompt.Retrieve(q.Context, queries)
		return Result{
			Envelope: envelope.Build("", domain.FormatAuto, envelope.Tiers{Primary: profile.Tier, Secondary: profile.SecondaryTier}, resolveMode(q), nil, q.TraceID),
			Gates:    report,
			Evidence: pack,
			Domain:   profile.Domain,
		}, nil
	}

	topK := q.TopK
	if topK == 0 {
		topK = p.Config.Retrieval.ContextFiles
	}

	retrievalSpan := logger.StartSpan(ctx, "ask.retrieval")
	pack, err := p.Retriever.Retrieve(retrievalSpan.Context(), retriever.Input{
		Question:     q,
		Queries:      queries,
		TopK:         topK,
		TopicProfile: topicProfile,
		PlanScope:    scope,
	})
	if err != nil {
		retrievalSpan.RecordError(err)
		retrievalSpan.End()
		return Result{}, fmt.Errorf("ask: retrieval: %w", err)
	}
	retrievalSpan.End()

	if len(pack.Files) == 0 && q.HasRepoHints() {
		return p.clarifyResult(report, "Repo evidence was required by the question but could not be confirmed; can you point me at a specific file or area?", pack), nil
	}

	postGate := logger.StartSpan(ctx, "ask.post_retrieval_gate")
	gates.ResolvePostRetrieval(&report, q, pack, p.Config.Gates)
	matchRatio, _ := gates.Evidence(&report, q, pack, p.Config.Gates, false)
	postGate.End()
	if report.Clarify {
		return p.clarifyResult(report, report.ClarifyReason, pack), nil
	}

	formatSpec := resolveFormat(profile.FormatPolicy, q.Prompt)

	distillSpan := logger.StartSpan(ctx, "ask.distill")
	distilled, _, err := p.Distiller.Distill(distillSpan.Context(), distiller.Input{
		Question: q,
		Evidence: pack,
		Format:   formatSpec,
		NonUI:    distiller.IsNonUIQuestion(q.Prompt),
	})
	if err != nil {
		distillSpan.RecordError(err)
		p.logger().WarnContext(ctx, "evidence distillation failed", "error", err)
	}
	distillSpan.End()

	gateStack := logger.StartSpan(ctx, "ask.gate_stack")
	gates.Claim(&report, distilled, pack, p.Config.Gates)

	_, slotsOK := gates.SlotCoverage(&report, directives.RequiredSlots, pack.ContextText())
	mustIncludeOK := gates.MustInclude(&report, pack)
	anchorOK := gates.VerificationAnchor(&report, pack, p.Config.Gates.VerificationAnchors)

	obligationViolated := q.HasRepoHints() && (!mustIncludeOK || !anchorOK || !slotsOK)

	signals := gates.ConfidenceSignals{
		MatchRatio:      matchRatio,
		MustIncludeOK:   pack.MustIncludeOK,
		DocShare:        docShare(pack.Files),
		FileCount:       len(pack.Files),
		ChannelCoverage: channelCoverage(pack.ChannelHits),
		ScoreGap:        pack.ScoreGap,
		ViabilityOK:     true,
	}
	resolvedDomain, _ := p.Arbiter.Decide(&report, profile.Domain, signals, obligationViolated)
	gateStack.End()

	if report.Clarify {
		return p.clarifyResult(report, report.ClarifyReason, pack), nil
	}

	synthSpan := logger.StartSpan(ctx, "ask.synthesize")
	answer, _, err := p.Synthesizer.Synthesize(synthSpan.Context(), synthesizer.Input{
		Question: q,
		Evidence: distilled,
		Format:   formatSpec,
	})
	if err != nil {
		synthSpan.RecordError(err)
		synthSpan.End()
		p.logger().ErrorContext(ctx, "answer synthesis failed", "error", err)
		return p.fallbackResult(report, pack, profile), nil
	}
	synthSpan.End()

	answer, _ = gates.FormatEnforce(&report, q.Prompt, formatSpec, answer)

	citationSpan := logger.StartSpan(ctx, "ask.citation_repair")
	answer, _, err = p.Citation.Repair(citationSpan.Context(), citation.Input{
		Question:       q,
		Answer:         answer,
		Evidence:       distilled,
		AllowCitations: profile.Evidence.AllowCitations,
	})
	if err != nil {
		citationSpan.RecordError(err)
		p.logger().WarnContext(ctx, "citation repair failed", "error", err)
	}
	citationSpan.End()

	if profile.Evidence.RequireCitations && !containsAnyFileRef(answer, pack.Files) {
		if len(pack.Files) > 0 {
			answer = appendSourcesLine(answer, pack.Files)
		} else {
			return p.clarifyResult(report, "Repo evidence was required by the question but could not be confirmed; can you point me at a specific file or area?", pack), nil
		}
	}

	postprocessSpan := logger.StartSpan(ctx, "ask.postprocess")
	answer, _ = gates.Lint(&report, answer)
	gates.Belief(&report, answer, pack.ContextText(), p.Config.Gates)
	gates.Rattling(&report, answer, p.Config.Gates)

	answer = postprocess.ProcessWithPrompt(answer, q.Prompt)

	env := envelope.Build(
		answer,
		formatSpec.Format,
		envelope.Tiers{Primary: profile.Tier, Secondary: profile.SecondaryTier},
		resolveMode(q),
		evidenceRefs(distilled),
		q.TraceID,
	)
	postprocessSpan.End()

	return Result{Envelope: env, Gates: report, Evidence: pack, Domain: resolvedDomain, Tags: tagStrings(tags)}, nil
}

func tagStrings(tags []topic.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func (p *Pipeline) clarifyResult(report gates.Report, reason string, pack domain.EvidencePack) Result {
	if !report.Clarify {
		report.Clarify = true
		report.ClarifyReason = reason
	}
	env := envelope.Build(reason, domain.FormatBrief, envelope.Tiers{Primary: domain.TierF0}, domain.ModeBrief, nil, "")
	return Result{Envelope: env, Gates: report, Evidence: pack, Domain: domain.DomainGeneral}
}

func (p *Pipeline) fallbackResult(report gates.Report, pack domain.EvidencePack, profile domain.IntentProfile) Result {
	env := envelope.Build(canonicalExecutionFallback, domain.FormatBrief, envelope.Tiers{Primary: profile.Tier}, domain.ModeBrief, nil, "")
	return Result{Envelope: env, Gates: report, Evidence: pack, Domain: profile.Domain}
}

func baseQueries(q domain.Question) []string {
	if q.SearchQuery != "" {
		return []string{q.SearchQuery}
	}
	return []string{q.Prompt}
}

func resolveFormat(policy domain.FormatKind, questionText string) domain.FormatSpec {
	if policy != domain.FormatAuto && policy != "" {
		return domain.FormatSpec{Format: policy, StageTags: policy == domain.FormatSteps}
	}

	lower := strings.ToLower(questionText)
	switch {
	case strings.Contains(lower, "step") || strings.Contains(lower, "how do i") || strings.Contains(lower, "walk me through"):
		return domain.FormatSpec{Format: domain.FormatSteps, StageTags: true}
	case strings.Contains(lower, " vs ") || strings.Contains(lower, "compare") || strings.Contains(lower, "difference between"):
		return domain.FormatSpec{Format: domain.FormatCompare}
	default:
		return domain.FormatSpec{Format: domain.FormatBrief}
	}
}

func resolveMode(q domain.Question) domain.AnswerMode {
	switch strings.ToLower(q.Verbosity) {
	case "extended":
		return domain.ModeExtended
	case "brief":
		return domain.ModeBrief
	default:
		return domain.ModeStandard
	}
}

func docShare(files []string) float64 {
	if len(files) == 0 {
		return 0
	}
	var docs int
	for _, f := range files {
		if strings.HasSuffix(f, ".md") || strings.Contains(f, "/docs/") {
			docs++
		}
	}
	return float64(docs) / float64(len(files))
}

func channelCoverage(hits map[domain.Channel]int) float64 {
	channels := []domain.Channel{domain.ChannelLexical, domain.ChannelSymbol, domain.ChannelFuzzy, domain.ChannelPath}
	var covered int
	for _, ch := range channels {
		if hits[ch] > 0 {
			covered++
		}
	}
	return float64(covered) / float64(len(channels))
}

func containsAnyFileRef(answer string, files []string) bool {
	for _, f := range files {
		if f != "" && strings.Contains(answer, f) {
			return true
		}
	}
	return false
}

func appendSourcesLine(answer string, files []string) string {
	return strings.TrimRight(answer, "\n") + "\n\nSources: " + strings.Join(files, ", ")
}

func evidenceRefs(evidence domain.DistilledEvidence) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, b := range evidence.Bullets {
		if b.Citation == "" || seen[b.Citation] {
			continue
		}
		seen[b.Citation] = true
		refs = append(refs, b.Citation)
	}
	return refs
}

func buildPlanScope(topicProfile domain.TopicProfile, directives domain.PlanDirectives) domain.PlanScope {
	must := dedupStrings(append(append([]string{}, topicProfile.MustIncludePatterns...), directives.MustIncludeGlobs...))
	docsFirst := hasSurface(directives.PreferredSurfaces, domain.SurfaceDocs) && !hasSurface(directives.AvoidSurfaces, domain.SurfaceDocs)

	return domain.PlanScope{
		AllowlistTiers:   topicProfile.AllowlistTiers,
		Avoidlist:        dedupStrings(append([]string{}, topicProfile.DeboostPaths...)),
		MustIncludeGlobs: must,
		DocsFirst:        docsFirst,
		DocsAllowlist:    topicProfile.BoostPaths,
	}
}

func hasSurface(surfaces []domain.Surface, want domain.Surface) bool {
	for _, s := range surfaces {
		if s == want {
			return true
		}
	}
	return false
}

func dedupStrings(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
