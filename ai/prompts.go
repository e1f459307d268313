package ai

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
)

const generateSystem = `You are an expert web designer and front-end developer. You build complete, polished one-page marketing websites for small businesses.

Rules:
- Reply with exactly ONE complete HTML document and nothing else. No explanations, no markdown, no text before or after the document.
- The document must be self-contained: all CSS in a <style> tag, all JavaScript inline.
- If the user supplies image URLs you MUST use every one of them in the page. Never replace a supplied image with a placeholder or a stock image URL.
- Use a modern visual style: generous whitespace, a clear typographic hierarchy, a hero section, and a consistent color palette derived from the business description.
- The page must include a fixed navigation bar whose links scroll smoothly to their sections. Include this inline script for the smooth scrolling:
  document.querySelectorAll('a[href^="#"]').forEach(function(a){a.addEventListener('click',function(e){e.preventDefault();document.querySelector(this.getAttribute('href')).scrollIntoView({behavior:'smooth'});});});
- The page must be responsive and look good on mobile.`

const editPreamble = `You are editing an existing website. The user will give you the current HTML document and an instruction. Apply ONLY the requested change, keeping everything else in the document exactly as it is.`

// BuildSystemPrompt returns the fixed policy instructions for a mode.
// The edit instructions are a superset of the generate ones: same rules,
// prefixed with the edit framing.
func BuildSystemPrompt(mode Mode) string {
	if mode == ModeEdit {
		return editPreamble + "\n\n" + generateSystem
	}
	return generateSystem
}

// BuildUserMessage assembles the user turn. For ModeEdit the current HTML
// is embedded verbatim as its own part so the model sees it unmodified.
func BuildUserMessage(mode Mode, text string, imageURLs []string, currentHTML string) Message {
	var parts []Part

	if mode == ModeEdit {
		parts = append(parts, Part{Text: "Current website HTML:\n\n" + currentHTML})
		parts = append(parts, Part{Text: "Edit instruction: " + text})
	} else {
		parts = append(parts, Part{Text: "Business description: " + text})
	}

	if len(imageURLs) > 0 {
		var b strings.Builder
		b.WriteString("Use ALL of these image URLs in the page:\n")
		for i, url := range imageURLs {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, url))
		}
		parts = append(parts, Part{Text: b.String()})
	}

	return Message{Role: "user", Parts: parts}
}
