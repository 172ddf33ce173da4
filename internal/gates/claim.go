package gates

import (
	"basegraph.app/helixask/core/config"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/normalize"
)

// Claim extracts claim candidates from the distilled evidence bullets (up
// to claim_max) and tests each against the context's token coverage. The
// gate passes when supported/total meets the support ratio.
func Claim(r *Report, evidence domain.DistilledEvidence, pack domain.EvidencePack, cfg config.GatesConfig) (supportRatio float64, passed bool) {
	claims := claimCandidates(evidence, cfg.ClaimMax)
	if len(claims) == 0 {
		r.pass("claim", map[string]float64{"support_ratio": 1, "claim_count": 0})
		return 1, true
	}

	contextSet := normalize.TokenSet(pack.ContextText())
	supported := 0
	for _, claim := range claims {
		tokens := normalize.ContentTokens(claim)
		if len(tokens) == 0 {
			supported++
			continue
		}
		matched := 0
		for _, tok := range tokens {
			if _, ok := contextSet[tok]; ok {
				matched++
			}
		}
		ratio := float64(matched) / float64(len(tokens))
		if ratio >= cfg.ClaimMinRatio && matched >= cfg.ClaimMinTokens {
			supported++
		}
	}

	supportRatio = float64(supported) / float64(len(claims))
	passed = supportRatio >= cfg.ClaimSupportRatio
	metrics := map[string]float64{"support_ratio": supportRatio, "claim_count": float64(len(claims)), "supported": float64(supported)}
	if passed {
		r.pass("claim", metrics)
	} else {
		r.fail("claim", "too many distilled claims lack context support", metrics)
	}
	return supportRatio, passed
}

// claimCandidates turns each evidence bullet's text into one claim,
// capped at max. Bullets are already short, citation-carrying sentences so
// no further splitting is needed; a bullet's text is its claim verbatim.
func claimCandidates(evidence domain.DistilledEvidence, max int) []string {
	claims := make([]string, 0, len(evidence.Bullets))
	for _, b := range evidence.Bullets {
		if b.Text == "" {
			continue
		}
		claims = append(claims, b.Text)
		if max > 0 && len(claims) >= max {
			break
		}
	}
	return claims
}
