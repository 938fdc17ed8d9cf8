package lexer

import "errors"

// Configuration errors. Every fault raised while compiling declarations
// wraps one of these.
var (
	ErrSealed        = errors.New("cannot define after seal")
	ErrNotSealed     = errors.New("tokenizer is not sealed")
	ErrMissingKind   = errors.New("missing definition kind")
	ErrUnknownKind   = errors.New("unknown definition kind")
	ErrMissingName   = errors.New("missing name")
	ErrEmptyPattern  = errors.New("empty pattern")
	ErrInvalidEscape = errors.New("invalid escape sequence")
	ErrUnknownGroup  = errors.New("unknown bracket group")
)
