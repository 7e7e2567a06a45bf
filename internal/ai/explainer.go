package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/clausewatch/clausewatch/internal/risk"
)

const maxClauseChars = 4000

// Explainer renders one prompt per change and asks the configured provider
// for a short business-facing explanation.
type Explainer struct {
	provider IProvider
	model    string
}

// NewExplainer builds a risk.Explainer for the named provider. "rules" is a
// built-in offline backend; everything else goes through the provider
// registry.
func NewExplainer(name string, model string, args interface{}) (risk.Explainer, error) {
	if strings.EqualFold(strings.TrimSpace(name), "rules") {
		return NewRuleExplainer(), nil
	}
	provider, err := NewProvider(name, args)
	if err != nil {
		return nil, err
	}
	return &Explainer{provider: provider, model: model}, nil
}

func (e *Explainer) Explain(ctx context.Context, input risk.ExplainInput) (string, error) {
	result, err := e.provider.Generate(ctx, e.model, buildPrompt(input))
	if err != nil {
		return "", fmt.Errorf("generate explanation: %w", err)
	}
	result = strings.TrimSpace(result)
	if result == "" {
		return "", fmt.Errorf("provider %s returned empty explanation", e.provider.Name())
	}
	return result, nil
}

func buildPrompt(input risk.ExplainInput) string {
	category := input.Category
	if category == "" {
		category = "general"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "A contract clause in the %q category has changed (%s). ", category, input.ChangeType)
	b.WriteString("Explain why this matters to a business user in 2-3 sentences. Focus on practical implications, not legal advice.\n")
	if input.ContractName != "" {
		fmt.Fprintf(&b, "\nContract: %s\n", input.ContractName)
	}
	switch input.ChangeType {
	case "added":
		fmt.Fprintf(&b, "\nNew clause:\n%s\n", clip(input.ToText))
	case "removed":
		fmt.Fprintf(&b, "\nRemoved clause:\n%s\n", clip(input.FromText))
	default:
		fmt.Fprintf(&b, "\nPrevious version:\n%s\n", clip(input.FromText))
		fmt.Fprintf(&b, "\nCurrent version:\n%s\n", clip(input.ToText))
	}
	b.WriteString("\nExplain why this matters:")
	return b.String()
}

func clip(text string) string {
	if len(text) <= maxClauseChars {
		return text
	}
	return text[:maxClauseChars] + "..."
}
