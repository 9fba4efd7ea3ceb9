package fetch

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// StripHTML removes HTML tags from README content. Hub model cards mix raw
// HTML into their markdown, so this runs before the markdown pass.
func StripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, " ")
}

// MarkdownToText reduces markdown to its plain text content by walking the
// parsed AST and collecting text nodes. Fenced code blocks are dropped so
// word counts reflect prose, not code.
func MarkdownToText(source string) string {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			b.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}

// CleanReadme applies the HTML strip followed by the markdown strip. Every
// README accessor returns content in this form.
func CleanReadme(source string) string {
	return MarkdownToText(StripHTML(source))
}

// HasPythonCodeBlock reports whether the markdown source contains a fenced
// code block tagged as python.
func HasPythonCodeBlock(source string) bool {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			lang := strings.ToLower(string(fcb.Language(src)))
			if lang == "python" || lang == "py" {
				found = true
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	return found
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
