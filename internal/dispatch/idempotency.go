package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key derives the deterministic idempotency key for a (plan, action) pair.
// Re-dispatching the same plan always produces the same keys, so downstream
// systems can deduplicate retried side effects.
func Key(planID, actionID string) string {
	sum := sha256.Sum256([]byte(planID + "\x00" + actionID))
	return hex.EncodeToString(sum[:16])
}
