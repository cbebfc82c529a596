package triage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/linnemanlabs/corridor/internal/plan"
)

// Request is one triage submission: the raw screening payload plus the
// analyzer's action recommendation. RequestID is an optional caller-supplied
// retry token; when absent the payload content identifies the request.
type Request struct {
	RequestID string
	Screening map[string]any
	Actions   *plan.UpstreamActionPayload
}

// Fingerprint derives the dedup identity of a request. A caller-supplied
// request id wins; otherwise the fingerprint is a content hash, which is
// stable because encoding/json marshals map keys in sorted order.
func (r *Request) Fingerprint() string {
	h := sha256.New()
	if r.RequestID != "" {
		_, _ = io.WriteString(h, "request_id\x00"+r.RequestID)
	} else {
		b, _ := json.Marshal(r.Screening)
		h.Write(b)
		h.Write([]byte{0})
		b, _ = json.Marshal(r.Actions)
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SubmitResult is the outcome of submitting a request for triage.
type SubmitResult struct {
	Plan         *plan.Plan
	Deduplicated bool
}
