package model

// Fingerprint is a compact, comparable representation of a clause's content.
// It is a pure function of the clause text: recomputing it for identical
// text yields byte-identical output, which makes it safe to cache keyed by
// TextHash.
type Fingerprint struct {
	ClauseID string `json:"clause_id,omitempty"`
	// TextHash is the sha256 hex digest of the whitespace-normalized text.
	// Used only for exact-duplicate short-circuiting.
	TextHash string `json:"text_hash"`
	// SimHash is a 64-bit locality-sensitive signature. Hamming distance
	// between two signatures approximates textual distance.
	SimHash uint64 `json:"simhash"`
	// Keywords maps the top terms of the clause to their weights.
	Keywords map[string]float64 `json:"keywords"`
}
