package lexer

import (
	"fmt"
	"strings"

	"github.com/zjrosen/lexkit/internal/token"
)

const (
	digits = "0123456789"
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower  = "abcdefghijklmnopqrstuvwxyz"
)

// groups holds the bracket shorthands accepted inside character sets.
var groups = map[string]string{
	"[0-9]": digits,
	"[1-9]": digits[1:],
	"[A-Z]": upper,
	"[a-z]": lower,
	"[0-F]": digits + upper[:6],
	"[0-Z]": digits + upper,
}

// unescapeAt resolves the escape starting at s[i] == '\\' and returns the
// character it stands for.
func unescapeAt(s string, i int) (byte, error) {
	if i+1 >= len(s) {
		return 0, fmt.Errorf("%w: trailing backslash", ErrInvalidEscape)
	}
	switch s[i+1] {
	case 't':
		return '\t', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	case '[':
		return '[', nil
	case ']':
		return ']', nil
	default:
		return 0, fmt.Errorf("%w: \\%c", ErrInvalidEscape, s[i+1])
	}
}

// Unescape resolves \t \n \r \' \\ \[ and \] in s.
func Unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		c, err := unescapeAt(s, i)
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), nil
}

// ParseCharSet builds a character set from a declaration such as
// `[0-9][a-z]_\t`. Literal characters stand for themselves, escapes are
// resolved as in Unescape, and a '[' must open one of the shorthands
// [0-9] [1-9] [A-Z] [a-z] [0-F] [0-Z].
func ParseCharSet(spec string) (token.CharSet, error) {
	var b strings.Builder
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case '\\':
			c, err := unescapeAt(spec, i)
			if err != nil {
				return token.CharSet{}, err
			}
			b.WriteByte(c)
			i++
		case '[':
			end := strings.IndexByte(spec[i:], ']')
			if end < 0 {
				return token.CharSet{}, fmt.Errorf("%w: unterminated %q", ErrUnknownGroup, spec[i:])
			}
			group := spec[i : i+end+1]
			chars, ok := groups[group]
			if !ok {
				return token.CharSet{}, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
			}
			b.WriteString(chars)
			i += end
		default:
			b.WriteByte(spec[i])
		}
	}
	cs := token.NewCharSet(b.String())
	if cs.Len() == 0 {
		return token.CharSet{}, fmt.Errorf("%w: empty character set", ErrEmptyPattern)
	}
	return cs, nil
}
