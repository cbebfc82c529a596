package plan

import "github.com/linnemanlabs/corridor/internal/contract"

// tierRank orders risk tiers for the fail-safe max rule.
var tierRank = map[RiskTier]int{
	TierLow:    0,
	TierMedium: 1,
	TierHigh:   2,
}

// jurisdictionTier maps ISO 3166-1 alpha-3 codes to a jurisdiction risk tier.
// Countries not listed default to LOW. The table is a deployment-reviewed
// policy artifact; changing it requires compliance sign-off.
var jurisdictionTier = map[string]RiskTier{
	// FATF call-for-action and equivalents
	"IRN": TierHigh,
	"PRK": TierHigh,
	"MMR": TierHigh,
	"AFG": TierHigh,
	"SYR": TierHigh,
	"RUS": TierHigh,

	// increased-monitoring corridors
	"PAN": TierMedium,
	"ARE": TierMedium,
	"KHM": TierMedium,
	"NGA": TierMedium,
	"VNM": TierMedium,
	"PHL": TierMedium,
	"YEM": TierMedium,
	"HTI": TierMedium,
}

// channelTier maps transfer channels to inherent risk. Unlisted channels
// default to LOW.
var channelTier = map[string]RiskTier{
	"crypto":      TierHigh,
	"cash_pickup": TierHigh,
	"cash":        TierHigh,
	"wallet":      TierMedium,
	"agent":       TierMedium,
}

// decisionTier maps the screening decision to a base risk tier. An
// unrecognised decision classifies as MEDIUM rather than LOW.
func decisionTier(d contract.Decision) RiskTier {
	switch d {
	case contract.DecisionPass:
		return TierLow
	case contract.DecisionReview:
		return TierMedium
	case contract.DecisionFail:
		return TierHigh
	}
	return TierMedium
}

// ClassifyCorridorRisk derives the corridor risk tier from the screening
// decision and routing context. The rule table is deterministic and ties
// resolve toward the higher tier.
func ClassifyCorridorRisk(decision contract.Decision, corridor contract.Corridor) RiskTier {
	tier := decisionTier(decision)
	tier = maxTier(tier, jurisdictionRisk(corridor.OriginCountry))
	tier = maxTier(tier, jurisdictionRisk(corridor.DestinationCountry))
	tier = maxTier(tier, channelRisk(corridor.Channel))
	return tier
}

func jurisdictionRisk(country string) RiskTier {
	if t, ok := jurisdictionTier[country]; ok {
		return t
	}
	return TierLow
}

func channelRisk(channel string) RiskTier {
	if t, ok := channelTier[channel]; ok {
		return t
	}
	return TierLow
}

func maxTier(a, b RiskTier) RiskTier {
	if tierRank[b] > tierRank[a] {
		return b
	}
	return a
}
