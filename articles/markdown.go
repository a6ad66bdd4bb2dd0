package articles

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts article markdown into HTML. It is stateless, so one
// instance can be shared across requests without locking.
type Renderer struct {
	engine goldmark.Markdown
}

// RendererOption configures the renderer at construction time.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	hardWraps bool
	unsafe    bool
}

// WithHardWraps renders single newlines as <br> tags.
func WithHardWraps() RendererOption {
	return func(c *rendererConfig) {
		c.hardWraps = true
	}
}

// WithUnsafeHTML passes raw HTML in the markdown source through to the
// output. Off by default since article content is editor-supplied.
func WithUnsafeHTML() RendererOption {
	return func(c *rendererConfig) {
		c.unsafe = true
	}
}

// NewRenderer builds a renderer with GFM tables, autolinks, and task lists
// enabled.
func NewRenderer(opts ...RendererOption) *Renderer {
	cfg := rendererConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	rendererOptions := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	}
	if cfg.hardWraps {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithHardWraps()))
	}
	if cfg.unsafe {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	return &Renderer{engine: goldmark.New(rendererOptions...)}
}

// Render converts markdown source to HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("articles: render markdown: %w", err)
	}
	return buf.String(), nil
}

// FrontMatter holds the metadata block of an imported markdown document.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

// ParseDocument splits a markdown document into its front matter and body.
// Documents without a front matter block yield zero metadata and the full
// source as body.
func ParseDocument(source []byte) (FrontMatter, string, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, "", fmt.Errorf("articles: parse frontmatter: %w", err)
	}
	return meta, string(body), nil
}
