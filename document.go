package polaris

import (
	"fmt"
	"strings"
)

// HeadingLevel selects the gemtext heading depth.
type HeadingLevel int

const (
	H1 HeadingLevel = 1
	H2 HeadingLevel = 2
	H3 HeadingLevel = 3
)

// Document assembles a gemtext page line by line. Methods chain:
//
//	doc := NewDocument().
//		AddHeading(H1, "Hello").
//		AddBlankLine().
//		AddLink("gemini://example.org", "Example")
//	res := doc.Response()
type Document struct {
	b strings.Builder
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) line(s string) *Document {
	d.b.WriteString(s)
	d.b.WriteString("\r\n")
	return d
}

// AddHeading appends a heading line.
func (d *Document) AddHeading(level HeadingLevel, text string) *Document {
	if level < H1 {
		level = H1
	}
	if level > H3 {
		level = H3
	}
	return d.line(strings.Repeat("#", int(level)) + " " + text)
}

// AddText appends a plain text line.
func (d *Document) AddText(text string) *Document {
	return d.line(text)
}

// AddBlankLine appends an empty line.
func (d *Document) AddBlankLine() *Document {
	return d.line("")
}

// AddLink appends a link line with a label.
func (d *Document) AddLink(target, label string) *Document {
	return d.line(fmt.Sprintf("=> %s %s", target, label))
}

// AddLinkWithoutLabel appends a link line showing the target itself.
func (d *Document) AddLinkWithoutLabel(target string) *Document {
	return d.line("=> " + target)
}

// AddPreformatted appends a fenced preformatted block.
func (d *Document) AddPreformatted(text string) *Document {
	return d.AddPreformattedWithAlt("", text)
}

// AddPreformattedWithAlt appends a fenced preformatted block with an
// alt text on the opening fence.
func (d *Document) AddPreformattedWithAlt(alt, text string) *Document {
	d.line("```" + alt)
	for _, l := range strings.Split(text, "\n") {
		d.line(strings.TrimSuffix(l, "\r"))
	}
	return d.line("```")
}

// AddQuote appends a quote line.
func (d *Document) AddQuote(text string) *Document {
	return d.line("> " + text)
}

// AddUnorderedListItem appends a list item line.
func (d *Document) AddUnorderedListItem(text string) *Document {
	return d.line("* " + text)
}

// String returns the assembled gemtext.
func (d *Document) String() string {
	return d.b.String()
}

// Response wraps the document in a success response with the
// text/gemini media type.
func (d *Document) Response() *Response {
	return Success(GeminiMIME, []byte(d.String()))
}
