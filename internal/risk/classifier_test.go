package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/model"
)

type stubExplainer struct {
	input  ExplainInput
	calls  int
	text   string
	err    error
	gotCtx context.Context
}

func (s *stubExplainer) Explain(ctx context.Context, input ExplainInput) (string, error) {
	s.calls++
	s.input = input
	s.gotCtx = ctx
	return s.text, s.err
}

func TestClassify_FillsScoreAndExplanation(t *testing.T) {
	ex := &stubExplainer{text: "the cap on damages was lowered"}
	c := NewClassifier(WithExplainer(ex, time.Second))

	change := &model.Change{ChangeType: model.ChangeModified, SimilarityScore: 0.5}
	from := &ClauseInfo{Category: model.CategoryPayment, Heading: "9. Fees", Text: "old fees text"}
	to := &ClauseInfo{Category: model.CategoryLiability, Heading: "9. Liability", Text: "new liability text"}
	c.Classify(context.Background(), "Acme Hosting", change, from, to)

	require.Equal(t, 90, change.RiskScore)
	require.Equal(t, model.RiskCritical, change.RiskLevel)
	require.Equal(t, "the cap on damages was lowered", change.Explanation)

	require.Equal(t, 1, ex.calls)
	require.Equal(t, "Acme Hosting", ex.input.ContractName)
	// The new side's category wins when both sides exist.
	require.Equal(t, model.CategoryLiability, ex.input.Category)
	require.Equal(t, "9. Fees", ex.input.FromHeading)
	require.Equal(t, "new liability text", ex.input.ToText)

	_, hasDeadline := ex.gotCtx.Deadline()
	require.True(t, hasDeadline)
}

func TestClassify_RemovedUsesOldSideCategory(t *testing.T) {
	ex := &stubExplainer{text: "ok"}
	c := NewClassifier(WithExplainer(ex, time.Second))

	change := &model.Change{ChangeType: model.ChangeRemoved}
	c.Classify(context.Background(), "Acme", change, &ClauseInfo{Category: model.CategoryTermination}, nil)

	require.Equal(t, model.CategoryTermination, ex.input.Category)
	require.Equal(t, model.RiskCritical, change.RiskLevel)
}

func TestClassify_ExplainerFailureKeepsScore(t *testing.T) {
	ex := &stubExplainer{err: errors.New("provider down")}
	c := NewClassifier(WithExplainer(ex, time.Second))

	change := &model.Change{ChangeType: model.ChangeModified, SimilarityScore: 0.8}
	c.Classify(context.Background(), "Acme", change, nil, &ClauseInfo{Category: model.CategoryPayment})

	require.NotZero(t, change.RiskScore)
	require.Empty(t, change.Explanation)
}

func TestClassify_UnchangedSkipsExplainer(t *testing.T) {
	ex := &stubExplainer{text: "should not appear"}
	c := NewClassifier(WithExplainer(ex, time.Second))

	change := &model.Change{ChangeType: model.ChangeUnchanged, SimilarityScore: 1}
	c.Classify(context.Background(), "Acme", change, &ClauseInfo{}, &ClauseInfo{})

	require.Zero(t, change.RiskScore)
	require.Equal(t, model.RiskLow, change.RiskLevel)
	require.Empty(t, change.Explanation)
	require.Zero(t, ex.calls)
}

func TestClassify_NoExplainer(t *testing.T) {
	c := NewClassifier()
	change := &model.Change{ChangeType: model.ChangeAdded}
	c.Classify(context.Background(), "Acme", change, nil, &ClauseInfo{Category: model.CategoryMarketing})
	require.NotZero(t, change.RiskScore)
	require.Empty(t, change.Explanation)
}
