// Package text implements the canonical string escaping required for event
// id computation. The escape set is fixed by the protocol: double quote,
// backslash, and the named control escapes, with \uXXXX for the remaining
// control bytes. Every other byte passes through untouched, including
// non-ASCII UTF-8.
package text

const hexDigits = "0123456789abcdef"

// AppendEscaped appends s to dst with the canonical escape set applied.
func AppendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			if c < 0x20 {
				dst = append(
					dst, '\\', 'u', '0', '0',
					hexDigits[c>>4], hexDigits[c&0xf],
				)
			} else {
				dst = append(dst, c)
			}
		}
	}
	return dst
}

// AppendQuoted appends s escaped and wrapped in double quotes.
func AppendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = AppendEscaped(dst, s)
	return append(dst, '"')
}
