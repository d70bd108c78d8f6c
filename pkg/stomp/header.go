package stomp

import "strings"

// encodeHeaderToken escapes the five STOMP 1.1+ control characters in a
// header name or value. It is a no-op when active is false (protocol 1.0).
func encodeHeaderToken(s string, active bool) string {
	if !active || !strings.ContainsAny(s, "\\\n\r:") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case ':':
			b.WriteString(`\c`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decodeHeaderToken reverses encodeHeaderToken. It is a no-op when active is
// false. Returns ErrMalformedHeader (wrapped) for any "\x" where x is not one
// of "\ n r c".
func decodeHeaderToken(s string, active bool) (string, error) {
	if !active || !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		i++
		if i >= len(runes) {
			return "", malformedHeader("trailing escape character")
		}
		switch runes[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'c':
			b.WriteByte(':')
		default:
			return "", malformedHeader("invalid escape sequence \\" + string(runes[i]))
		}
	}
	return b.String(), nil
}
