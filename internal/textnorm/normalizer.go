package textnorm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
	"github.com/clausewatch/clausewatch/internal/model"
)

// CommandRunner executes an external command and returns its stdout.
// pdftotext is invoked through this so tests can run without the binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Fetcher retrieves the body of a monitored URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

type Option func(*Normalizer)

func WithRunner(r CommandRunner) Option {
	return func(n *Normalizer) { n.runner = r }
}

func WithFetcher(f Fetcher) Option {
	return func(n *Normalizer) { n.fetcher = f }
}

func WithMaxBytes(max int64) Option {
	return func(n *Normalizer) { n.maxBytes = max }
}

// Normalizer converts a raw document payload into a single normalized
// plain-text string. It fails with ErrExtraction for empty, unreadable or
// oversized input; truncating instead of rejecting would corrupt the
// downstream alignment, so oversized documents are always rejected whole.
type Normalizer struct {
	runner   CommandRunner
	fetcher  Fetcher
	maxBytes int64
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		runner:   execRunner{},
		maxBytes: 10 << 20,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) Normalize(ctx context.Context, doc model.Document) (string, error) {
	var raw string
	var err error
	switch doc.SourceType {
	case model.SourcePDF:
		raw, err = n.extractPDF(ctx, doc.Data)
	case model.SourceURL:
		raw, err = n.extractURL(ctx, doc.URL)
	case model.SourceText:
		raw, err = n.extractText(doc.Data)
	default:
		return "", fmt.Errorf("%w: unknown source type %q", appErr.ErrExtraction, doc.SourceType)
	}
	if err != nil {
		return "", err
	}
	normalized := normalizeWhitespace(raw)
	if strings.TrimSpace(normalized) == "" {
		return "", fmt.Errorf("%w: document is empty", appErr.ErrExtraction)
	}
	return normalized, nil
}

func (n *Normalizer) extractPDF(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty pdf payload", appErr.ErrExtraction)
	}
	if int64(len(data)) > n.maxBytes {
		return "", fmt.Errorf("%w: pdf exceeds size ceiling (%d > %d bytes)", appErr.ErrExtraction, len(data), n.maxBytes)
	}
	tmp, err := os.CreateTemp("", "clausewatch-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
	}
	out, err := n.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", filepath.Clean(tmp.Name()), "-")
	if err != nil {
		logutil.GetLogger(ctx).Warn("pdftotext failed", zap.Error(err))
		return "", fmt.Errorf("%w: pdf text extraction failed: %v", appErr.ErrExtraction, err)
	}
	// Form feeds are page-break artifacts; treat them as paragraph breaks.
	return strings.ReplaceAll(string(out), "\f", "\n\n"), nil
}

func (n *Normalizer) extractURL(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%w: url source without url", appErr.ErrExtraction)
	}
	if n.fetcher == nil {
		return "", fmt.Errorf("%w: no fetcher configured for url sources", appErr.ErrExtraction)
	}
	body, err := n.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", appErr.ErrExtraction, url, err)
	}
	if int64(len(body)) > n.maxBytes {
		return "", fmt.Errorf("%w: page exceeds size ceiling (%d > %d bytes)", appErr.ErrExtraction, len(body), n.maxBytes)
	}
	return StripHTML(string(body)), nil
}

func (n *Normalizer) extractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty text payload", appErr.ErrExtraction)
	}
	if int64(len(data)) > n.maxBytes {
		return "", fmt.Errorf("%w: text exceeds size ceiling (%d > %d bytes)", appErr.ErrExtraction, len(data), n.maxBytes)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text payload is not valid utf-8", appErr.ErrExtraction)
	}
	text := string(data)
	if looksLikeMarkdown(text) {
		return flattenMarkdown(text), nil
	}
	return text, nil
}

var markdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)

// looksLikeMarkdown spots ATX headings, which is how published legal
// documents in markdown form (e.g. site-policy repos) mark their sections.
func looksLikeMarkdown(text string) bool {
	return markdownHeading.MatchString(text)
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// normalizeWhitespace collapses horizontal whitespace within lines and runs
// of blank lines, but keeps single blank lines intact: they are paragraph
// boundaries the segmenter relies on.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = controlChars.ReplaceAllString(text, "")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
