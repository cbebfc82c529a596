// Package contract validates inbound screening payloads against versioned
// schema documents. It defines the Registry (schema + alias-map lookup per
// version), the alias Normaliser (legacy field name rewriting), and the
// Validator that turns a raw payload into a canonical ScreeningResult.
package contract
