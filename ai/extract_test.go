package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleDoc = `<!DOCTYPE html>
<html>
<head><title>Kopi Bandung</title></head>
<body><h1>Welcome</h1></body>
</html>`

func TestExtractHTML_FencedWithTag(t *testing.T) {
	reply := "Here is your website:\n\n```html\n" + sampleDoc + "\n```\n\nLet me know if you want changes."

	result, err := ExtractHTML(reply)

	assert.NoError(t, err)
	assert.True(t, result.FromFence)
	assert.Equal(t, sampleDoc, result.HTML)
}

func TestExtractHTML_FencedWithoutTag(t *testing.T) {
	reply := "```\n" + sampleDoc + "\n```"

	result, err := ExtractHTML(reply)

	assert.NoError(t, err)
	assert.True(t, result.FromFence)
	assert.Equal(t, sampleDoc, result.HTML)
}

func TestExtractHTML_SkipsForeignFence(t *testing.T) {
	reply := "```json\n{\"note\": \"ignore me\"}\n```\n\n```html\n" + sampleDoc + "\n```"

	result, err := ExtractHTML(reply)

	assert.NoError(t, err)
	assert.True(t, result.FromFence)
	assert.Equal(t, sampleDoc, result.HTML)
}

func TestExtractHTML_RawReply(t *testing.T) {
	result, err := ExtractHTML(sampleDoc)

	assert.NoError(t, err)
	assert.False(t, result.FromFence)
	assert.Equal(t, sampleDoc, result.HTML)
}

func TestExtractHTML_StripsLeadingProse(t *testing.T) {
	reply := "Sure! Here is the page you asked for.\n\n" + sampleDoc

	result, err := ExtractHTML(reply)

	assert.NoError(t, err)
	assert.False(t, result.FromFence)
	assert.True(t, strings.HasPrefix(result.HTML, "<!DOCTYPE html>"))
	assert.NotContains(t, result.HTML, "Sure!")
}

func TestExtractHTML_TrimsWhitespace(t *testing.T) {
	reply := "\n\n  " + sampleDoc + "  \n\n"

	result, err := ExtractHTML(reply)

	assert.NoError(t, err)
	assert.Equal(t, sampleDoc, result.HTML)
}

func TestExtractHTML_DoctypeCaseInsensitive(t *testing.T) {
	doc := "<!doctype html><html><body>hi</body></html>"
	reply := "Of course:\n" + doc

	result, err := ExtractHTML(reply)

	assert.NoError(t, err)
	assert.Equal(t, doc, result.HTML)
}

func TestExtractHTML_Empty(t *testing.T) {
	_, err := ExtractHTML("   \n\t  ")

	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestExtractHTML_NoFenceMarkersInResult(t *testing.T) {
	reply := "```html\n" + sampleDoc + "\n```"

	result, err := ExtractHTML(reply)

	assert.NoError(t, err)
	assert.NotContains(t, result.HTML, "```")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(result.HTML), "<!DOCTYPE html>"))
}
