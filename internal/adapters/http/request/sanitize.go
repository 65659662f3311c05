package request

import "strings"

var quoteEncoder = strings.NewReplacer(`"`, "&#34;", `'`, "&#39;")

// stripState is the scanner state of stripTags.
type stripState int

const (
	stateText stripState = iota
	stateTag
	stateComment
)

// Sanitize applies the legacy sanitize-string filter: markup (tags,
// comments, doctypes) is stripped, NUL bytes are dropped and quotes are
// encoded as numeric entities. Existing entities are left untouched.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	if strings.ContainsRune(s, '<') {
		s = stripTags(s)
	}
	return quoteEncoder.Replace(s)
}

// stripTags removes everything between a '<' and its matching '>'. A '<'
// inside a tag opens a nested level that its own '>' closes, so "<<b>x>"
// is removed whole. A '>' inside a quoted attribute does not close the tag.
// A '<' followed by whitespace is text; an unterminated tag is dropped.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	state := stateText
	depth := 0
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateText:
			if c != '<' {
				b.WriteByte(c)
				continue
			}
			if i+1 < len(s) && isSpace(s[i+1]) {
				b.WriteByte(c)
				continue
			}
			if strings.HasPrefix(s[i:], "<!--") {
				state = stateComment
				i += len("<!--") - 1
				continue
			}
			state, depth, quote = stateTag, 0, 0

		case stateTag:
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case c == '"' || c == '\'':
				quote = c
			case c == '<':
				depth++
			case c == '>':
				if depth > 0 {
					depth--
					continue
				}
				state = stateText
			}

		case stateComment:
			if strings.HasPrefix(s[i:], "-->") {
				state = stateText
				i += len("-->") - 1
			}
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
