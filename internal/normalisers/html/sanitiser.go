package html

import (
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
)

// Ensure Sanitiser implements the interface.
var _ driven.BodySanitiser = (*Sanitiser)(nil)

// Sanitiser converts wiki markup to plain text.
type Sanitiser struct{}

// New creates a new sanitiser.
func New() *Sanitiser {
	return &Sanitiser{}
}

// Pre-compiled regular expressions for markup parsing performance.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	iframeTag         = regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`)
	objectTag         = regexp.MustCompile(`(?is)<object[^>]*>.*?</object>`)
	embedTag          = regexp.MustCompile(`(?is)<embed[^>]*/?>(.*?</embed>)?`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	macroParameter    = regexp.MustCompile(`(?is)<ac:parameter[^>]*>.*?</ac:parameter>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	cdataSection      = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|td|th|blockquote|pre|table|section|article|ac:structured-macro)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

// dropped lists elements removed along with their content.
var dropped = []*regexp.Regexp{
	scriptTag, styleTag, noscriptTag, iframeTag, objectTag, embedTag, svgTag, macroParameter,
}

// Sanitise removes non-content markup and returns readable text.
// Paragraph structure survives as single line breaks.
func (s *Sanitiser) Sanitise(content string) string {
	if content == "" {
		return ""
	}

	for _, re := range dropped {
		content = re.ReplaceAllString(content, "")
	}
	content = htmlComments.ReplaceAllString(content, "")

	// Code blocks arrive as CDATA; escape so the tag pass leaves them intact.
	content = cdataSection.ReplaceAllStringFunc(content, func(m string) string {
		inner := cdataSection.FindStringSubmatch(m)[1]
		return html.EscapeString(inner)
	})

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
