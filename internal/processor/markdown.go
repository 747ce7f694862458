// markdown.go - Rendering and title extraction for generated articles

package processor

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))

	headingRe       = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)\s*#*\s*$`)
	markupRe        = regexp.MustCompile("[#*`]")
	newlinesRe      = regexp.MustCompile(`\n+`)
	firstSentenceRe = regexp.MustCompile(`[^.!?]+[.!?]`)
)

// RenderMarkdown converts the article markdown to HTML (GitHub flavoured).
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExtractTitle returns the first markdown heading, or the first sentence of
// the plain text when the article has no heading.
func ExtractTitle(source string) string {
	if m := headingRe.FindStringSubmatch(source); len(m) >= 2 {
		return strings.TrimSpace(markupRe.ReplaceAllString(m[1], ""))
	}

	plain := strings.TrimSpace(newlinesRe.ReplaceAllString(markupRe.ReplaceAllString(source, ""), " "))
	if plain == "" {
		return ""
	}
	if s := firstSentenceRe.FindString(plain); s != "" {
		return strings.TrimSpace(s)
	}
	return truncateRunes(plain, 40)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
