// Package markdown renders the small Markdown dialect used for resource hub
// articles.
//
// Rendering is an ordered list of regular-expression substitutions, each rule
// applied to the output of the previous one. Rule order is part of the output
// contract: the site's stylesheets and the stored editorial copy expect exactly
// the tag set produced here. Input is trusted editorial content and is not
// escaped. Render is not idempotent; feeding its output back in wraps
// paragraphs a second time.
package markdown

import (
	"regexp"
	"strings"
)

// Options toggles the rules that differ between call sites.
type Options struct {
	// InlineCode enables `code` spans. Public resource pages render with it,
	// the admin preview renders without it.
	InlineCode bool
}

// rule is one substitution step.
type rule struct {
	re   *regexp.Regexp
	repl string
}

var (
	headingRules = []rule{
		{regexp.MustCompile(`(?m)^# (.*)$`), `<h1>$1</h1>`},
		{regexp.MustCompile(`(?m)^## (.*)$`), `<h2>$1</h2>`},
		{regexp.MustCompile(`(?m)^### (.*)$`), `<h3>$1</h3>`},
		{regexp.MustCompile(`(?m)^#### (.*)$`), `<h4>$1</h4>`},
	}

	listRules = []rule{
		{regexp.MustCompile(`(?m)^\* (.*)$`), `<li>$1</li>`},
		{regexp.MustCompile(`(?m)^- (.*)$`), `<li>$1</li>`},
		{regexp.MustCompile(`(?m)^\d+\. (.*)$`), `<li>$1</li>`},
	}

	boldRule   = rule{regexp.MustCompile(`\*\*(.*?)\*\*`), `<strong>$1</strong>`}
	italicRule = rule{regexp.MustCompile(`\*(.*?)\*`), `<em>$1</em>`}
	codeRule   = rule{regexp.MustCompile("`(.*?)`"), `<code>$1</code>`}
	linkRule   = rule{regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), `<a href="$2" target="_blank">$1</a>`}

	blankLines = regexp.MustCompile(`\n\n+`)

	cleanupRules = []rule{
		{regexp.MustCompile(`<p>(<h[1-4]>)`), `$1`},
		{regexp.MustCompile(`(</h[1-4]>)</p>`), `$1`},
		{regexp.MustCompile(`<p>(<li>.*?</li>)</p>`), `<ul>$1</ul>`},
		{regexp.MustCompile(`</ul><ul>`), ``},
	}
)

// Renderer converts Markdown into HTML fragments. The zero value renders
// without inline code. A Renderer holds no mutable state and is safe for
// concurrent use.
type Renderer struct {
	opts Options
}

// New returns a renderer for the given options.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Options returns the renderer's configuration.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render converts source into an HTML fragment. CRLF and lone CR line
// endings are treated as LF.
func (r *Renderer) Render(source string) string {
	out := NormalizeNewlines(source)

	out = apply(out, headingRules...)
	out = apply(out, listRules...)

	out = apply(out, boldRule, italicRule)
	if r.opts.InlineCode {
		out = apply(out, codeRule)
	}
	out = apply(out, linkRule)

	out = wrapParagraphs(out)

	return apply(out, cleanupRules...)
}

// Render converts source using the public page rule set (inline code on).
func Render(source string) string {
	return New(Options{InlineCode: true}).Render(source)
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines converts CRLF and CR line endings to LF.
func NormalizeNewlines(s string) string {
	return newlines.Replace(s)
}

func apply(s string, rules ...rule) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// wrapParagraphs folds blank-line runs into single line breaks and wraps
// every remaining non-empty line in a paragraph.
func wrapParagraphs(s string) string {
	s = blankLines.ReplaceAllString(s, "\n")

	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(line)
		b.WriteString("</p>")
	}
	return b.String()
}
