package lexer

// Byte-wise 7-bit ASCII character classes per spec.md §4.5.

func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isBinaryDigit(b byte) bool {
	return b == '0' || b == '1'
}

func isAlphaNumeric(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}

func isNewlineByte(b byte) bool {
	return b == '\n' || b == '\r'
}
