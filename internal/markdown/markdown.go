// Package markdown converts post bodies to HTML with syntax-highlighted code blocks.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "github"

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md    goldmark.Markdown
	theme string
}

// ThemeExists reports whether name is a registered chroma style.
func ThemeExists(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// New creates a Renderer that highlights fenced code with the named chroma style.
func New(theme string) (*Renderer, error) {
	if theme == "" {
		theme = DefaultTheme
	}
	if !ThemeExists(theme) {
		return nil, fmt.Errorf("markdown: unknown highlight theme %q", theme)
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Footnote,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(theme),
				highlighting.WithFormatOptions(chromahtml.TabWidth(4)),
			),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&imageRenderer{}, 100)),
		),
	)
	return &Renderer{md: md, theme: theme}, nil
}

// Theme returns the highlight style name.
func (r *Renderer) Theme() string {
	return r.theme
}

// Render converts a Markdown document to HTML.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: convert: %w", err)
	}
	return buf.String(), nil
}

// imageRenderer writes an image followed by its title as a caption.
type imageRenderer struct{}

func (r *imageRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
}

func (r *imageRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(n.Text(source)))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	if len(bytes.TrimSpace(n.Title)) > 0 {
		_, _ = w.WriteString(`<p class="markdown-image-title">`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_, _ = w.WriteString(`</p>`)
	}
	return ast.WalkSkipChildren, nil
}
