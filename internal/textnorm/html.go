package textnorm

import (
	"html"
	"regexp"
)

var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	navTag        = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	footerTag     = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	headerTag     = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	closeBlockTag = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockTag  = regexp.MustCompile(`(?i)<(h[1-6])[^>]*>`)
	brTag         = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
)

// StripHTML reduces a scraped page to plain text. Chrome around the
// document body (nav, header, footer, scripts) is discarded; block element
// boundaries become line breaks so headings stay on their own lines for the
// segmenter.
func StripHTML(content string) string {
	content = htmlComments.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = navTag.ReplaceAllString(content, "")
	content = footerTag.ReplaceAllString(content, "")
	content = headerTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	// A heading opening tag starts a fresh block as well, so text glued to
	// the previous element does not merge into the heading line.
	content = openBlockTag.ReplaceAllString(content, "\n\n<$1>")
	content = closeBlockTag.ReplaceAllString(content, "\n\n")
	content = brTag.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}
