package gates

import (
	"regexp"
	"strings"

	"basegraph.app/helixask/internal/domain"
)

var (
	definitionVocab   = regexp.MustCompile(`(?i)\b(defined as|refers to|means that|is a|is the)\b`)
	verificationVocab = regexp.MustCompile(`(?i)\b(test|verify|assert|check|validate|confirm)\b`)
	failurePathVocab  = regexp.MustCompile(`(?i)\b(fails?|failure|error|panic|reject|timeout|crash)\b`)
	flowVocab         = regexp.MustCompile(`(?i)\b(pipeline|step|stage|flow|sequence|then|next)\b`)
	repoMappingPath   = regexp.MustCompile(`(?:[a-zA-Z0-9_.\-]+/)+[a-zA-Z0-9_.\-]+\.[a-zA-Z0-9]+`)
)

// SlotCoverage tests each required slot against the assembled context and
// fails if any declared slot finds no matching signal.
func SlotCoverage(r *Report, slots []domain.RequiredSlot, context string) (missing []domain.RequiredSlot, passed bool) {
	if len(slots) == 0 {
		r.pass("slot_coverage", nil)
		return nil, true
	}

	for _, slot := range slots {
		if !slotSatisfied(slot, context) {
			missing = append(missing, slot)
		}
	}

	passed = len(missing) == 0
	metrics := map[string]float64{"required": float64(len(slots)), "missing": float64(len(missing))}
	if passed {
		r.pass("slot_coverage", metrics)
	} else {
		r.fail("slot_coverage", "required content slots missing from context", metrics)
	}
	return missing, passed
}

func slotSatisfied(slot domain.RequiredSlot, context string) bool {
	switch slot {
	case domain.SlotDefinition:
		return definitionVocab.MatchString(context)
	case domain.SlotRepoMapping:
		return repoMappingPath.MatchString(context)
	case domain.SlotVerification:
		return verificationVocab.MatchString(context)
	case domain.SlotFailurePath:
		return failurePathVocab.MatchString(context)
	case domain.SlotFlow:
		return flowVocab.MatchString(context)
	default:
		return strings.Contains(strings.ToLower(context), strings.ToLower(string(slot)))
	}
}
