package lexer

// twoByteOps is checked before singleByteOps: operator matching is
// longest-first. Keyed by the two-byte pair as a 2-byte array to avoid a
// string allocation per lookup.
var twoByteOps = map[[2]byte]Kind{
	{'+', '='}: PlusEqual, {'+', '+'}: PlusPlus,
	{'-', '='}: MinusEqual, {'-', '-'}: MinusMinus, {'-', '>'}: Arrow,
	{'*', '='}: StarEqual, {'/', '='}: SlashEqual, {'%', '='}: PercentEqual,
	{'=', '='}: EqualEqual, {'!', '='}: BangEqual,
	{'<', '='}: LessEqual, {'<', '<'}: LessLess,
	{'>', '='}: GreaterEqual, {'>', '>'}: GreaterGreater,
	{'&', '&'}: AmpAmp, {'|', '|'}: PipePipe,
	{':', ':'}: ColonColon,
}

// singleByteOps is a 128-entry, byte-indexed dispatch table per spec.md
// §9's design note; index by the ASCII byte value, zero Kind (EndOfFile)
// means "not an operator byte".
var singleByteOps [128]Kind

func init() {
	set := map[byte]Kind{
		'+': Plus, '-': Minus, '*': Star, '/': Slash, '%': Percent,
		'=': Equal, '!': Bang, '<': Less, '>': Greater,
		'&': Amp, '|': Pipe, '^': Caret, '~': Tilde,
		'(': LParen, ')': RParen, '{': LBrace, '}': RBrace,
		'[': LBracket, ']': RBracket,
		';': Semicolon, ',': Comma, '.': Dot, ':': Colon,
		'?': Question, '@': At, '#': Hash, '\\': Backslash,
	}
	for b, k := range set {
		singleByteOps[b] = k
	}
}

// isOperatorByte reports whether b is a recognized single-byte operator.
// EndOfFile (the Kind zero value) never collides with a real operator
// kind, since operator kinds are defined later in the Kind enum.
func isOperatorByte(b byte) (Kind, bool) {
	if b >= 128 {
		return Unknown, false
	}
	k := singleByteOps[b]
	if k == EndOfFile {
		return Unknown, false
	}
	return k, true
}

// matchOperator attempts the two-byte operator at (b0, b1) first, falling
// back to the single-byte operator at b0. Returns the matched Kind and
// how many bytes it consumed (2, 1, or 0 if b0 isn't an operator byte).
func matchOperator(b0 byte, hasB1 bool, b1 byte) (Kind, int) {
	if hasB1 {
		if k, ok := twoByteOps[[2]byte{b0, b1}]; ok {
			return k, 2
		}
	}
	if k, ok := isOperatorByte(b0); ok {
		return k, 1
	}
	return Unknown, 0
}
