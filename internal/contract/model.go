package contract

// Decision is the screening outcome produced upstream.
type Decision string

const (
	// DecisionPass means the transfer cleared screening
	DecisionPass Decision = "PASS"

	// DecisionReview means the transfer needs human review
	DecisionReview Decision = "REVIEW"

	// DecisionFail means the transfer was blocked by screening
	DecisionFail Decision = "FAIL"
)

// Corridor describes the routing context of a transfer.
type Corridor struct {
	OriginCountry      string `json:"origin_country"`
	DestinationCountry string `json:"destination_country"`
	Channel            string `json:"channel,omitempty"`
	Currency           string `json:"currency,omitempty"`
}

// ScreeningResult is the canonical, validated form of an inbound screening
// payload. Once a result exists every field name matches the target schema
// exactly; no alias keys survive validation.
type ScreeningResult struct {
	SchemaVersion string   `json:"schema_version"`
	Decision      Decision `json:"decision"`
	RuleCodes     []string `json:"rule_codes"`
	Corridor      Corridor `json:"corridor"`
	Amount        float64  `json:"amount"`
}
