package ai

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrNoDocument means extraction produced no usable text at all.
var ErrNoDocument = errors.New("no html document in model reply")

// markdown parser used to locate fenced code blocks in the raw reply
var md = goldmark.New()

// Extraction is the result of pulling an HTML document out of a raw model
// reply. FromFence records whether a fenced code block was found or the
// whole reply was used as a fallback.
type Extraction struct {
	HTML      string
	FromFence bool
}

// ExtractHTML best-effort extracts a single HTML document from a raw model
// reply. The model is instructed to reply with nothing but HTML, but this
// tolerates non-compliance:
//
//  1. the first fenced code block tagged "html" (or untagged) wins
//  2. otherwise the whole reply is the candidate
//  3. anything before a <!DOCTYPE html> marker is stripped
//  4. surrounding whitespace is trimmed
func ExtractHTML(reply string) (Extraction, error) {
	candidate, fromFence := firstHTMLFence(reply)
	if !fromFence {
		candidate = reply
	}

	lower := strings.ToLower(candidate)
	if idx := strings.Index(lower, "<!doctype html"); idx > 0 {
		candidate = candidate[idx:]
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return Extraction{}, ErrNoDocument
	}

	return Extraction{HTML: candidate, FromFence: fromFence}, nil
}

// firstHTMLFence walks the reply as markdown and returns the content of
// the first fenced code block that is either untagged or tagged html.
func firstHTMLFence(reply string) (string, bool) {
	src := []byte(reply)
	doc := md.Parser().Parse(text.NewReader(src))

	var content string
	found := false

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || found {
			return ast.WalkContinue, nil
		}

		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := strings.ToLower(string(fence.Language(src)))
		if lang != "" && lang != "html" {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}

		content = buf.String()
		found = true
		return ast.WalkStop, nil
	})

	return content, found
}
