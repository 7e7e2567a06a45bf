package segment

import (
	"context"
	"regexp"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/clausewatch/clausewatch/internal/model"
)

type Option func(*Segmenter)

func WithClassifier(c Classifier) Option {
	return func(s *Segmenter) { s.classifier = c }
}

func WithMinClauseWords(min int) Option {
	return func(s *Segmenter) { s.minWords = min }
}

// Segmenter splits normalized contract text into an ordered sequence of
// clauses. It is deterministic: identical input text always yields identical
// boundaries, numbering and categories.
type Segmenter struct {
	classifier Classifier
	minWords   int
}

func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		classifier: NewKeywordClassifier(),
		minWords:   20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	numberedHeading  = regexp.MustCompile(`^(?:\d+(?:\.\d+)*[.)]?|[IVXLC]+\.|\([a-z]\))\s+\S`)
	titleColonLine   = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+(?:[A-Z][a-z]+|of|and|the|to|for))*:\s*$`)
	allCapsLine      = regexp.MustCompile(`^[A-Z][A-Z0-9\s&,.'-]+$`)
	maxHeadingWords  = 10
	maxHeadingLength = 80
)

type section struct {
	heading      string
	headingStart int
	bodyStart    int
	bodyEnd      int
}

// Segment performs one complete pass over the text and returns the full
// clause sequence. Heading markers drive the boundaries; when a document
// has none, segmentation degrades to blank-line paragraphs rather than
// failing the comparison.
func (s *Segmenter) Segment(ctx context.Context, text string) []model.Clause {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	sections := splitByHeadings(text)
	if len(sections) == 0 {
		logutil.GetLogger(ctx).Debug("no heading markers found, falling back to paragraph segmentation")
		sections = splitByParagraphs(text)
	}
	clauses := make([]model.Clause, 0, len(sections))
	for _, sec := range sections {
		body := strings.TrimSpace(text[sec.bodyStart:sec.bodyEnd])
		if body == "" && sec.heading == "" {
			continue
		}
		start := sec.bodyStart
		if sec.heading != "" {
			start = sec.headingStart
		}
		clauses = append(clauses, model.Clause{
			Heading:       sec.heading,
			Text:          body,
			PositionStart: start,
			PositionEnd:   sec.bodyEnd,
		})
	}
	clauses = s.mergeShort(clauses)
	for i := range clauses {
		clauses[i].ClauseNumber = i + 1
		clauses[i].Category = s.classifier.Classify(clauses[i].Heading, clauses[i].Text)
	}
	logutil.GetLogger(ctx).Debug("segmentation complete",
		zap.Int("sections", len(sections)),
		zap.Int("clauses", len(clauses)),
	)
	return clauses
}

// IsHeading reports whether a single line reads as a section heading:
// a numbered or lettered marker, a short ALL-CAPS line, or a Title Case
// line ending in a colon.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > maxHeadingLength {
		return false
	}
	if len(strings.Fields(line)) > maxHeadingWords {
		return false
	}
	if numberedHeading.MatchString(line) {
		return true
	}
	if titleColonLine.MatchString(line) {
		return true
	}
	if allCapsLine.MatchString(line) && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		// Require at least two letters so stray numbering like "IV" alone
		// still counts but single characters do not.
		letters := 0
		for _, r := range line {
			if r >= 'A' && r <= 'Z' {
				letters++
			}
		}
		return letters >= 2
	}
	return false
}

func splitByHeadings(text string) []section {
	var sections []section
	var current *section
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		lineStart := offset
		offset += len(line)
		trimmed := strings.TrimSpace(line)
		if IsHeading(trimmed) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &section{
				heading:      trimmed,
				headingStart: lineStart,
				bodyStart:    offset,
				bodyEnd:      offset,
			}
			continue
		}
		if current == nil {
			if trimmed == "" {
				continue
			}
			// Preamble before the first heading.
			current = &section{bodyStart: lineStart, bodyEnd: lineStart}
		}
		if trimmed != "" {
			current.bodyEnd = lineStart + len(strings.TrimRight(line, "\n"))
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	// A document where nothing looked like a heading produces one giant
	// section; report no sections so the caller falls back to paragraphs.
	if len(sections) <= 1 && (len(sections) == 0 || sections[0].heading == "") {
		return nil
	}
	return sections
}

func splitByParagraphs(text string) []section {
	var sections []section
	start := 0
	for start < len(text) {
		end := strings.Index(text[start:], "\n\n")
		var bodyEnd int
		if end < 0 {
			bodyEnd = len(text)
		} else {
			bodyEnd = start + end
		}
		if strings.TrimSpace(text[start:bodyEnd]) != "" {
			sections = append(sections, section{bodyStart: start, bodyEnd: bodyEnd})
		}
		if end < 0 {
			break
		}
		start = bodyEnd + 2
	}
	return sections
}

// mergeShort folds clauses below the minimum word count into their
// neighbour so one-line fragments do not surface as standalone clauses.
func (s *Segmenter) mergeShort(clauses []model.Clause) []model.Clause {
	if len(clauses) == 0 {
		return clauses
	}
	merged := make([]model.Clause, 0, len(clauses))
	current := clauses[0]
	for _, next := range clauses[1:] {
		if wordCount(current.Text) < s.minWords {
			if current.Text == "" {
				current.Text = next.Text
			} else {
				current.Text += " " + next.Text
			}
			current.PositionEnd = next.PositionEnd
			if current.Heading == "" {
				current.Heading = next.Heading
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
