package segment

import (
	"strings"

	"github.com/clausewatch/clausewatch/internal/model"
)

// Classifier assigns a best-effort category to a clause. Implementations
// must be deterministic; an empty result means "no signal", never an error.
type Classifier interface {
	Classify(heading, text string) string
}

// categoryOrder fixes the tie-break: when two categories score equally the
// earlier one wins, so repeated runs agree.
var categoryOrder = []string{
	model.CategoryLiability,
	model.CategoryDataProcessing,
	model.CategoryTermination,
	model.CategoryIntellectualProperty,
	model.CategoryConfidentiality,
	model.CategoryPayment,
	model.CategoryJurisdiction,
	model.CategoryServiceLevel,
	model.CategoryMarketing,
}

var categoryKeywords = map[string][]string{
	model.CategoryLiability: {
		"liability", "indemnif", "damages", "limitation of liability",
		"warrant", "disclaimer", "hold harmless",
	},
	model.CategoryDataProcessing: {
		"personal data", "personal information", "data processing",
		"data protection", "privacy", "gdpr", "ccpa", "subprocessor",
	},
	model.CategoryTermination: {
		"terminat", "cancellation", "cancel", "expiration", "expire",
		"renewal", "notice period",
	},
	model.CategoryIntellectualProperty: {
		"intellectual property", "copyright", "trademark", "patent",
		"proprietary", "ownership", "license",
	},
	model.CategoryConfidentiality: {
		"confidential", "non-disclosure", "nondisclosure", "trade secret",
	},
	model.CategoryPayment: {
		"payment", "fees", "pricing", "billing", "subscription", "refund",
		"charge", "invoice",
	},
	model.CategoryJurisdiction: {
		"jurisdiction", "governing law", "venue", "arbitration",
		"dispute resolution", "court", "forum",
	},
	model.CategoryServiceLevel: {
		"service level", "sla", "uptime", "availability", "downtime",
		"service credit", "response time",
	},
	model.CategoryMarketing: {
		"marketing", "promotional", "newsletter", "advertising",
	},
}

// KeywordClassifier scores each category by how many of its keywords occur
// in the clause (heading included) and picks the highest scorer.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(heading, text string) string {
	combined := strings.ToLower(heading + " " + text)
	best := model.CategoryNone
	bestScore := 0
	for _, category := range categoryOrder {
		score := 0
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(combined, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best
}
