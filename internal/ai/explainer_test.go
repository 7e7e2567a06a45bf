package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/risk"
)

type fakeProvider struct {
	prompt string
	model  string
	answer string
	err    error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, model string, prompt string) (string, error) {
	f.model = model
	f.prompt = prompt
	return f.answer, f.err
}

func TestNewExplainer_Rules(t *testing.T) {
	ex, err := NewExplainer("rules", "", nil)
	require.NoError(t, err)
	require.IsType(t, &RuleExplainer{}, ex)

	ex, err = NewExplainer(" Rules ", "", nil)
	require.NoError(t, err)
	require.IsType(t, &RuleExplainer{}, ex)
}

func TestNewExplainer_UnknownProvider(t *testing.T) {
	_, err := NewExplainer("no-such-provider", "some-model", nil)
	require.Error(t, err)
}

func TestExplain_PromptShape(t *testing.T) {
	provider := &fakeProvider{answer: "  The notice period doubled.  "}
	ex := &Explainer{provider: provider, model: "test-model"}

	got, err := ex.Explain(context.Background(), risk.ExplainInput{
		ContractName: "Acme Hosting",
		Category:     model.CategoryTermination,
		ChangeType:   model.ChangeModified,
		FromText:     "thirty days notice",
		ToText:       "sixty days notice",
	})
	require.NoError(t, err)
	require.Equal(t, "The notice period doubled.", got)
	require.Equal(t, "test-model", provider.model)
	require.Contains(t, provider.prompt, `"termination"`)
	require.Contains(t, provider.prompt, "Contract: Acme Hosting")
	require.Contains(t, provider.prompt, "Previous version:\nthirty days notice")
	require.Contains(t, provider.prompt, "Current version:\nsixty days notice")
}

func TestExplain_AddedAndRemovedPrompts(t *testing.T) {
	provider := &fakeProvider{answer: "ok"}
	ex := &Explainer{provider: provider, model: "m"}

	_, err := ex.Explain(context.Background(), risk.ExplainInput{
		ChangeType: model.ChangeAdded,
		ToText:     "new arbitration clause",
	})
	require.NoError(t, err)
	require.Contains(t, provider.prompt, "New clause:\nnew arbitration clause")
	require.NotContains(t, provider.prompt, "Previous version")
	require.Contains(t, provider.prompt, `"general"`)

	_, err = ex.Explain(context.Background(), risk.ExplainInput{
		ChangeType: model.ChangeRemoved,
		FromText:   "old indemnity clause",
	})
	require.NoError(t, err)
	require.Contains(t, provider.prompt, "Removed clause:\nold indemnity clause")
}

func TestExplain_ProviderErrors(t *testing.T) {
	broken := &Explainer{provider: &fakeProvider{err: errors.New("quota exceeded")}, model: "m"}
	_, err := broken.Explain(context.Background(), risk.ExplainInput{ChangeType: model.ChangeModified})
	require.Error(t, err)

	empty := &Explainer{provider: &fakeProvider{answer: "   "}, model: "m"}
	_, err = empty.Explain(context.Background(), risk.ExplainInput{ChangeType: model.ChangeModified})
	require.Error(t, err)
}

func TestClip(t *testing.T) {
	require.Equal(t, "short", clip("short"))
	long := make([]byte, maxClauseChars+10)
	for i := range long {
		long[i] = 'a'
	}
	clipped := clip(string(long))
	require.Len(t, clipped, maxClauseChars+3)
	require.Equal(t, "...", clipped[maxClauseChars:])
}
