package http

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds the initial tape content of a request, in bytes.
	DefaultMaxInputSize = 4096
	// DefaultMaxSourceSize bounds inline program text, in bytes.
	DefaultMaxSourceSize = 64 * 1024

	// EnvMaxInputSize and EnvMaxSourceSize override the defaults.
	EnvMaxInputSize  = "TURING_MAX_INPUT_SIZE"
	EnvMaxSourceSize = "TURING_MAX_SOURCE_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput cleans tape input: it enforces the size limit, validates UTF-8 and strips
// every control character. Tape input is a single line, so newlines and tabs go too.
func SanitizeInput(input string) (string, error) {
	return sanitize(input, maxSize(EnvMaxInputSize, DefaultMaxInputSize), func(rune) bool { return false })
}

// SanitizeSource cleans inline program text. Line breaks and tabs survive; other control
// characters (ESC, NUL, BEL...) are removed.
func SanitizeSource(source string) (string, error) {
	return sanitize(source, maxSize(EnvMaxSourceSize, DefaultMaxSourceSize), isSafeControl)
}

func sanitize(s string, limit int, keep func(rune) bool) (string, error) {
	// Reject rather than truncate: a truncated tape or program would run differently.
	if len(s) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(s), limit)
	}
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}

	drop := func(r rune) bool { return unicode.IsControl(r) && !keep(r) }

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(s, drop) < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !drop(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxSize(env string, fallback int) int {
	if val := os.Getenv(env); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return fallback
}
