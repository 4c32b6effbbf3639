package classfile

import (
	"unicode/utf16"
	"unicode/utf8"
)

// decodeModifiedUTF8 converts the class file's modified UTF-8 (two-byte
// NUL, surrogate pairs encoded as two three-byte sequences) to a Go
// string. Malformed bytes decode to utf8.RuneError.
func decodeModifiedUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	buf := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			buf = append(buf, c)
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			buf = utf8.AppendRune(buf, r)
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			i += 3
			if utf16.IsSurrogate(r) && r < 0xDC00 && i+2 < len(b) && b[i]&0xF0 == 0xE0 {
				lo := rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
				if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
					r = pair
					i += 3
				}
			}
			buf = utf8.AppendRune(buf, r)
		default:
			buf = utf8.AppendRune(buf, utf8.RuneError)
			i++
		}
	}
	return string(buf)
}
