// Package markdown renders Markdown file entries to HTML with GFM extensions and syntax highlighting.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/CageChen/anydir"
)

// TOCItem represents a table of contents entry
type TOCItem struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// Page is a rendered markdown document
type Page struct {
	HTML  string    `json:"html"`
	TOC   []TOCItem `json:"toc"`
	Title string    `json:"title"`
}

// Parser renders markdown with goldmark
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a new markdown parser with extensions
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &Parser{md: md}
}

// Render reads the entry as text and renders it. Entries that are not valid
// UTF-8 fail with anydir.ErrInvalidData.
func (p *Parser) Render(entry anydir.FileEntry) (*Page, error) {
	source, err := entry.ReadString()
	if err != nil {
		return nil, err
	}

	return p.Parse([]byte(source))
}

// Parse converts markdown source to HTML and collects its headings
func (p *Parser) Parse(source []byte) (*Page, error) {
	doc := p.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	page := &Page{
		HTML: buf.String(),
		TOC:  headings(doc, source),
	}
	if len(page.TOC) > 0 {
		page.Title = page.TOC[0].Title
	}

	return page, nil
}

// headings lists the headings of doc with the anchors generated by the parser
func headings(doc ast.Node, source []byte) []TOCItem {
	var toc []TOCItem

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}

		item := TOCItem{Level: heading.Level, Title: plainText(heading, source)}
		if id, ok := heading.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				item.Anchor = string(b)
			}
		}
		toc = append(toc, item)

		return ast.WalkSkipChildren, nil
	})

	return toc
}

// plainText concatenates the text segments below n, dropping inline markup
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}
