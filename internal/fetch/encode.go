package fetch

// file: internal/fetch/encode.go

import "strings"

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s so it can be embedded as a single path
// segment. Only A-Z a-z 0-9 and - _ . ! ~ * ' ( ) are left as is; every other
// byte of the UTF-8 encoding becomes %XX, so "/" "?" "#" and space are encoded.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
