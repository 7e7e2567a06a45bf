package risk

import (
	"context"
	"time"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// ExplainInput carries everything an explainer may want to look at when
// describing a single change in plain language.
type ExplainInput struct {
	ContractName string
	Category     string
	ChangeType   model.ChangeType
	Similarity   float64
	RiskScore    int
	RiskLevel    model.RiskLevel
	FromHeading  string
	FromText     string
	ToHeading    string
	ToText       string
}

// Explainer produces a short human-readable explanation for a change. An
// error means no explanation; it never blocks classification.
type Explainer interface {
	Explain(ctx context.Context, input ExplainInput) (string, error)
}

type Classifier struct {
	scorer    *Scorer
	explainer Explainer
	timeout   time.Duration
}

type Option func(*Classifier)

// WithExplainer attaches an explanation backend. Without one, changes carry
// scores only.
func WithExplainer(e Explainer, timeout time.Duration) Option {
	return func(c *Classifier) {
		c.explainer = e
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		scorer:  NewScorer(),
		timeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClauseInfo is the clause-side context for a change being classified.
type ClauseInfo struct {
	Category string
	Heading  string
	Text     string
}

// Classify fills RiskScore, RiskLevel and (when an explainer is configured)
// Explanation on the change in place. Unchanged clauses get a zero score and
// no explanation. The category of the new clause wins when both sides exist;
// for removals only the old side exists.
func (c *Classifier) Classify(ctx context.Context, contractName string, change *model.Change, from *ClauseInfo, to *ClauseInfo) {
	category := model.CategoryNone
	if to != nil {
		category = to.Category
	} else if from != nil {
		category = from.Category
	}
	change.RiskScore, change.RiskLevel = c.scorer.Score(category, change.ChangeType, change.SimilarityScore)
	if change.ChangeType == model.ChangeUnchanged || c.explainer == nil {
		return
	}
	input := ExplainInput{
		ContractName: contractName,
		Category:     category,
		ChangeType:   change.ChangeType,
		Similarity:   change.SimilarityScore,
		RiskScore:    change.RiskScore,
		RiskLevel:    change.RiskLevel,
	}
	if from != nil {
		input.FromHeading = from.Heading
		input.FromText = from.Text
	}
	if to != nil {
		input.ToHeading = to.Heading
		input.ToText = to.Text
	}
	exCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	explanation, err := c.explainer.Explain(exCtx, input)
	if err != nil {
		logutil.GetLogger(ctx).Warn("explain change failed, keep change without explanation",
			zap.String("change_type", string(change.ChangeType)),
			zap.String("category", category),
			zap.Error(err))
		return
	}
	change.Explanation = explanation
}
