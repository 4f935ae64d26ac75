package editor

import (
	"unicode"
	"unicode/utf8"
)

// isWordRune reports whether r belongs to a JavaScript identifier.
func isWordRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordAt returns the byte range [start, end) of the word touching offset.
// When offset is not inside or at the edge of a word, start == end == offset.
func WordAt(content []byte, offset int) (start, end int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		offset = len(content)
	}

	start = offset
	for start > 0 {
		r, size := utf8.DecodeLastRune(content[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}

	end = offset
	for end < len(content) {
		r, size := utf8.DecodeRune(content[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return start, end
}

// ByteAt returns the byte at offset, or 0 when offset is out of range.
func ByteAt(content []byte, offset int) byte {
	if offset < 0 || offset >= len(content) {
		return 0
	}
	return content[offset]
}
