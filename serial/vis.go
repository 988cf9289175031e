package serial

import "strings"

// Vis renders b in a visually safe form: printable ASCII, space and tab are
// kept, newline and the usual control characters use C escapes, a backslash
// is doubled and anything else becomes a three digit octal escape. This is
// vis(3) with VIS_NL | VIS_CSTYLE | VIS_OCTAL.
func Vis(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for i, c := range b {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == ' ' || c == '\t':
			sb.WriteByte(c)
		case c > ' ' && c < 0x7f:
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\b':
			sb.WriteString(`\b`)
		case c == '\a':
			sb.WriteString(`\a`)
		case c == '\v':
			sb.WriteString(`\v`)
		case c == '\f':
			sb.WriteString(`\f`)
		case c == 0 && (i+1 == len(b) || !isOctal(b[i+1])):
			// \0 would be ambiguous if an octal digit follows.
			sb.WriteString(`\0`)
		default:
			sb.WriteByte('\\')
			sb.WriteByte('0' + (c>>6)&07)
			sb.WriteByte('0' + (c>>3)&07)
			sb.WriteByte('0' + c&07)
		}
	}
	return sb.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
