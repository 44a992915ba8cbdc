// Package hex wraps the SIMD hex codec with the append-style helpers used
// by the event and filter codecs. Nostr requires lowercase hex everywhere,
// which is what the underlying codec produces.
package hex

import (
	"github.com/templexxx/xhex"

	"roost.dev/pkg/utils/errorf"
)

// Enc encodes b as a lowercase hex string.
func Enc(b []byte) string {
	dst := make([]byte, len(b)*2)
	xhex.Encode(dst, b)
	return string(dst)
}

// EncAppend appends the hex encoding of src to dst.
func EncAppend(dst, src []byte) []byte {
	l := len(dst)
	dst = append(dst, make([]byte, len(src)*2)...)
	xhex.Encode(dst[l:], src)
	return dst
}

// Dec decodes an even-length hex string.
func Dec(s string) (b []byte, err error) {
	return DecAppend(nil, []byte(s))
}

// DecAppend decodes src (even-length hex) and appends the bytes to dst.
func DecAppend(dst, src []byte) (b []byte, err error) {
	if len(src)%2 != 0 {
		err = errorf.E("hex: odd length input %d", len(src))
		return
	}
	if !Valid(string(src)) {
		err = errorf.E("hex: invalid character in input")
		return
	}
	l := len(dst)
	dst = append(dst, make([]byte, len(src)/2)...)
	xhex.Decode(dst[l:], src)
	b = dst
	return
}

// Valid reports whether s contains only lowercase hex digits. Uppercase is
// rejected because event ids, pubkeys and signatures are defined as
// lowercase on the wire.
func Valid(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
