package textnorm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/model"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
)

type stubRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	s.name = name
	s.args = args
	return s.output, s.err
}

type stubFetcher struct {
	body []byte
	err  error
	url  string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.url = url
	return s.body, s.err
}

func TestNormalizeText_Whitespace(t *testing.T) {
	n := New()
	got, err := n.Normalize(context.Background(), model.Document{
		SourceType: model.SourceText,
		Data:       []byte("Section  1.\tLiability\r\n\r\n\r\n\r\nThe provider   shall not be liable.\x00\x01"),
	})
	require.NoError(t, err)
	require.Equal(t, "Section 1. Liability\n\nThe provider shall not be liable.", got)
}

func TestNormalizeText_KeepsSingleBlankLines(t *testing.T) {
	n := New()
	got, err := n.Normalize(context.Background(), model.Document{
		SourceType: model.SourceText,
		Data:       []byte("first paragraph.\n\nsecond paragraph."),
	})
	require.NoError(t, err)
	require.Equal(t, "first paragraph.\n\nsecond paragraph.", got)
}

func TestNormalizeText_Markdown(t *testing.T) {
	n := New()
	got, err := n.Normalize(context.Background(), model.Document{
		SourceType: model.SourceText,
		Data:       []byte("# Terms of Service\n\nSome intro text.\n\n## Liability\n\nThe provider is not liable.\n"),
	})
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	require.Contains(t, lines, "Terms of Service")
	require.Contains(t, lines, "Liability")
	require.Contains(t, got, "The provider is not liable.")
	require.NotContains(t, got, "#")
}

func TestNormalizeText_Errors(t *testing.T) {
	n := New(WithMaxBytes(16))
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"whitespace only", []byte("  \n\t  ")},
		{"oversized", []byte(strings.Repeat("a", 17))},
		{"invalid utf8", []byte{0xff, 0xfe, 'a'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), model.Document{
				SourceType: model.SourceText,
				Data:       tt.data,
			})
			require.Error(t, err)
			require.True(t, appErr.IsExtraction(err))
		})
	}
}

func TestNormalizePDF_RunnerInvocation(t *testing.T) {
	runner := &stubRunner{output: []byte("Page one text\fPage two text")}
	n := New(WithRunner(runner))
	got, err := n.Normalize(context.Background(), model.Document{
		SourceType: model.SourcePDF,
		Data:       []byte("%PDF-1.4 fake"),
	})
	require.NoError(t, err)
	require.Equal(t, "pdftotext", runner.name)
	require.Contains(t, runner.args, "-layout")
	require.Equal(t, "Page one text\n\nPage two text", got)
}

func TestNormalizePDF_RunnerFailure(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("binary not found")}
	n := New(WithRunner(runner))
	_, err := n.Normalize(context.Background(), model.Document{
		SourceType: model.SourcePDF,
		Data:       []byte("%PDF-1.4 fake"),
	})
	require.True(t, appErr.IsExtraction(err))
}

func TestNormalizeURL_StripsMarkup(t *testing.T) {
	fetcher := &stubFetcher{body: []byte(`<html><head><title>x</title><script>var a=1;</script></head>
<body><nav>menu</nav><h1>Terms</h1><p>You agree to the terms &amp; conditions.</p><footer>foot</footer></body></html>`)}
	n := New(WithFetcher(fetcher))
	got, err := n.Normalize(context.Background(), model.Document{
		SourceType: model.SourceURL,
		URL:        "https://vendor.example/tos",
	})
	require.NoError(t, err)
	require.Equal(t, "https://vendor.example/tos", fetcher.url)
	require.Contains(t, got, "Terms")
	require.Contains(t, got, "You agree to the terms & conditions.")
	require.NotContains(t, got, "menu")
	require.NotContains(t, got, "var a=1")
	require.NotContains(t, got, "<")
}

func TestNormalizeURL_NoFetcher(t *testing.T) {
	n := New()
	_, err := n.Normalize(context.Background(), model.Document{
		SourceType: model.SourceURL,
		URL:        "https://vendor.example/tos",
	})
	require.True(t, appErr.IsExtraction(err))
}

func TestNormalize_UnknownSource(t *testing.T) {
	n := New()
	_, err := n.Normalize(context.Background(), model.Document{SourceType: "docx"})
	require.True(t, appErr.IsExtraction(err))
}
