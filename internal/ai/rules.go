package ai

import (
	"context"
	"fmt"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/risk"
)

var categoryImpacts = map[string]string{
	model.CategoryLiability:            "This affects your legal liability and potential damages.",
	model.CategoryDataProcessing:       "This impacts how your data is collected, used, or shared.",
	model.CategoryTermination:          "This changes the terms for ending the contract.",
	model.CategoryJurisdiction:         "This affects which laws apply and where disputes are resolved.",
	model.CategoryPayment:              "This impacts pricing, billing, or refund terms.",
	model.CategoryIntellectualProperty: "This affects ownership and usage rights.",
	model.CategoryConfidentiality:      "This changes what information must be kept confidential.",
	model.CategoryServiceLevel:         "This changes service guarantees and uptime commitments.",
	model.CategoryMarketing:            "This affects marketing communications and promotional usage.",
}

var changeDescriptions = map[model.ChangeType]string{
	model.ChangeAdded:     "A new clause was added",
	model.ChangeRemoved:   "An existing clause was removed",
	model.ChangeModified:  "A clause was modified",
	model.ChangeRewritten: "A clause was significantly rewritten",
}

// RuleExplainer produces deterministic template explanations without any
// external service. It never fails, which makes it useful for offline
// deployments and tests.
type RuleExplainer struct{}

func NewRuleExplainer() *RuleExplainer {
	return &RuleExplainer{}
}

func (e *RuleExplainer) Explain(_ context.Context, input risk.ExplainInput) (string, error) {
	impact, ok := categoryImpacts[input.Category]
	if !ok {
		impact = "This may affect your contract terms."
	}
	changeDesc, ok := changeDescriptions[input.ChangeType]
	if !ok {
		changeDesc = "A change was detected"
	}
	section := input.Category
	if section == "" {
		section = "contract"
	}
	var urgency string
	switch input.RiskLevel {
	case model.RiskCritical, model.RiskHigh:
		urgency = "Review this change carefully before accepting."
	case model.RiskMedium:
		urgency = "Consider reviewing this change."
	default:
		urgency = "This is a minor change."
	}
	return fmt.Sprintf("%s in the %s section. %s %s", changeDesc, section, impact, urgency), nil
}
