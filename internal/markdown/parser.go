package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

// Parser renders journal entries and reads the question bank. Raw HTML in the
// source is escaped, so user-written entries are safe to embed.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ListItems returns the text of every top-level list item in source together
// with the document's front matter.
func (p *Parser) ListItems(source []byte) (items []string, meta map[string]any, err error) {
	context := parser.NewContext()
	doc := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))

	meta = decodeFrontmatter(context)

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if child.Kind() != ast.KindTextBlock && child.Kind() != ast.KindParagraph {
				continue
			}
			lines := child.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				if buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				buf.Write(bytes.TrimSpace(seg.Value(source)))
			}
		}

		item := strings.TrimSpace(buf.String())
		if item != "" {
			items = append(items, item)
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, nil, err
	}

	return items, meta, nil
}

func (p *Parser) ExtractFrontmatter(source []byte) map[string]any {
	context := parser.NewContext()
	p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))
	return decodeFrontmatter(context)
}

func decodeFrontmatter(context parser.Context) map[string]any {
	data := frontmatter.Get(context)
	if data == nil {
		return make(map[string]any)
	}

	var meta map[string]any
	err := data.Decode(&meta)
	if err != nil {
		return make(map[string]any)
	}
	return meta
}
