package segment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/model"
)

const contractText = `1. Liability
The provider shall not be liable for any indirect or consequential damages arising out of this agreement, and the aggregate liability of either party is capped at the fees paid.

2. Termination
Either party may terminate this agreement for convenience by providing thirty days written notice to the other party, and all outstanding amounts become due upon the effective date of termination.

GOVERNING LAW
This agreement is governed by the laws of the State of Delaware and the parties submit to the exclusive jurisdiction of the courts located in that state for any dispute resolution.`

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"1. Payment Terms", true},
		{"2.3 Data Handling", true},
		{"IV. Confidentiality", true},
		{"(a) scope of the license", true},
		{"LIMITATION OF LIABILITY", true},
		{"Governing Law:", true},
		{"", false},
		{"the parties agree as follows", false},
		{"The provider shall not be liable for damages.", false},
		{"payment terms:", false},
		{"THIS IS A VERY LONG HEADING WITH FAR TOO MANY WORDS INSIDE", false},
		{strings.Repeat("A", 81), false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, IsHeading(tc.line), "line: %q", tc.line)
	}
}

func TestSegment_Headings(t *testing.T) {
	clauses := New().Segment(context.Background(), contractText)
	require.Len(t, clauses, 3)

	require.Equal(t, "1. Liability", clauses[0].Heading)
	require.Equal(t, "2. Termination", clauses[1].Heading)
	require.Equal(t, "GOVERNING LAW", clauses[2].Heading)

	for i, c := range clauses {
		require.Equal(t, i+1, c.ClauseNumber)
		require.NotEmpty(t, c.Text)
		slice := contractText[c.PositionStart:c.PositionEnd]
		require.True(t, strings.HasPrefix(slice, c.Heading))
		require.True(t, strings.HasSuffix(slice, lastWord(c.Text)))
	}

	require.Equal(t, model.CategoryLiability, clauses[0].Category)
	require.Equal(t, model.CategoryTermination, clauses[1].Category)
	require.Equal(t, model.CategoryJurisdiction, clauses[2].Category)
}

func TestSegment_ParagraphFallback(t *testing.T) {
	text := "the customer agrees to pay all subscription fees within thirty days of the invoice date and late payments accrue interest at the statutory rate\n\n" +
		"all confidential information disclosed by either party must be protected with at least the same degree of care the recipient applies to its own trade secret material"
	clauses := New().Segment(context.Background(), text)
	require.Len(t, clauses, 2)
	require.Empty(t, clauses[0].Heading)
	require.Empty(t, clauses[1].Heading)
	require.Equal(t, model.CategoryPayment, clauses[0].Category)
	require.Equal(t, model.CategoryConfidentiality, clauses[1].Category)
}

func TestSegment_MergeShort(t *testing.T) {
	text := `1. Definitions
Capitalized terms have the meanings given in this section unless the context requires otherwise, and references to sections are references to sections of this agreement.

2. Notices
Notices must be in writing.

3. Assignment
Neither party may assign this agreement without the prior written consent of the other party, and any attempted assignment in violation of this section is void and without effect.`
	clauses := New().Segment(context.Background(), text)
	require.Len(t, clauses, 2)
	require.Equal(t, "2. Notices", clauses[1].Heading)
	require.Contains(t, clauses[1].Text, "Notices must be in writing.")
	require.Contains(t, clauses[1].Text, "Neither party may assign")
	require.Equal(t, 2, clauses[1].ClauseNumber)
}

func TestSegment_Empty(t *testing.T) {
	require.Nil(t, New().Segment(context.Background(), ""))
	require.Nil(t, New().Segment(context.Background(), "   \n\n  "))
}

func TestSegment_Deterministic(t *testing.T) {
	first := New().Segment(context.Background(), contractText)
	second := New().Segment(context.Background(), contractText)
	require.Equal(t, first, second)
}

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()
	require.Equal(t, model.CategoryLiability, c.Classify("Indemnification", "each party shall indemnify and hold harmless the other"))
	require.Equal(t, model.CategoryDataProcessing, c.Classify("", "the processor handles personal data in accordance with gdpr"))
	require.Equal(t, model.CategoryNone, c.Classify("Miscellaneous", "this section covers general housekeeping matters"))
}

func lastWord(text string) string {
	fields := strings.Fields(text)
	return fields[len(fields)-1]
}
