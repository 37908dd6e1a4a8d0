package render

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	breakTag  = regexp.MustCompile(`<br\s*/?>`)
	reviewFix = strings.NewReplacer("<p>", "", "</p>", "\n\n")
	markdown  = strings.NewReplacer("[", `\[`, "]", `\]`)
)

// FormatReview converts a review to markdown. Reviews containing paragraph
// or break tags are treated as HTML; anything else is plain text with
// backslash-escaped quotes.
func FormatReview(text string) string {
	if text == "" {
		return ""
	}
	if strings.Contains(text, "<p>") || strings.Contains(text, "<br") {
		out := reviewFix.Replace(text)
		out = breakTag.ReplaceAllString(out, "\n")
		return strings.TrimSpace(html.UnescapeString(out))
	}
	return strings.TrimSpace(strings.ReplaceAll(text, `\"`, `"`))
}

// Blockquote prefixes every line of text with "> ".
func Blockquote(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return strings.Join(lines, "\n")
}

// EscapeMarkdown escapes square brackets so titles cannot open links.
func EscapeMarkdown(text string) string {
	return markdown.Replace(text)
}

// KebabCase lowercases s and joins its alphanumeric runs with dashes.
func KebabCase(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

var (
	templateToken = regexp.MustCompile(`\$\{[^}]*\}`)
	illegalChars  = regexp.MustCompile(`[\\/:*?"<>|]`)
)

// Filename expands a filename template. Known tokens are replaced from vars,
// unknown or empty ones are dropped, illegal path characters are stripped
// and ".md" is appended. An empty result falls back to fallback.
func Filename(template string, vars map[string]string, fallback string) string {
	name := templateToken.ReplaceAllStringFunc(template, func(tok string) string {
		return vars[tok[2:len(tok)-1]]
	})
	name = Sanitize(name)
	if name == "" {
		name = Sanitize(fallback)
	}
	return name + ".md"
}

// Sanitize strips illegal path characters and collapses whitespace.
func Sanitize(name string) string {
	name = illegalChars.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}
