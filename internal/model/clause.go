package model

// Clause categories. CategoryNone means the keyword classifier found no
// signal; that is a valid outcome, not an error.
const (
	CategoryNone                 = ""
	CategoryLiability            = "liability"
	CategoryDataProcessing       = "data_processing"
	CategoryTermination          = "termination"
	CategoryJurisdiction         = "jurisdiction"
	CategoryPayment              = "payment"
	CategoryIntellectualProperty = "intellectual_property"
	CategoryConfidentiality      = "confidentiality"
	CategoryServiceLevel         = "service_level"
	CategoryMarketing            = "marketing"
)

// Clause is one semantically coherent unit of contract text. ClauseNumber is
// a 1-based ordinal within its version; it is a stable ordering, not a
// content identity. Correspondence across versions is discovered by the
// drift detector, never assumed from equal numbers.
type Clause struct {
	ID            string `json:"id"`
	VersionID     string `json:"version_id"`
	ClauseNumber  int    `json:"clause_number"`
	Category      string `json:"category,omitempty"`
	Heading       string `json:"heading,omitempty"`
	Text          string `json:"text"`
	PositionStart int    `json:"position_start"`
	PositionEnd   int    `json:"position_end"`
}
