// Package codec implements the tolerant base64 handling shared by every link
// decoder. Subscription sources pad, strip and re-wrap base64 inconsistently,
// so decoding always repairs padding and tries both alphabets before giving up.
package codec

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

// ErrNotBase64 is returned when the input survives none of the decode
// variants. Callers treat it as "this text is not base64", not as a failure.
var ErrNotBase64 = errors.New("codec: not base64")

var base64ish = regexp.MustCompile(`^[A-Za-z0-9+/_-]+={0,2}$`)

// Decode decodes base64-ish text.
//
// Embedded CR/LF (common in wrapped subscription payloads) are stripped first,
// missing '=' padding is repaired, then the standard alphabet is tried before
// the URL-safe one. Decoder failures select the next variant instead of
// propagating.
func Decode(s string) ([]byte, error) {
	s = stripSpace(s)
	if s == "" {
		return nil, ErrNotBase64
	}
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, ErrNotBase64
}

// DecodeString decodes like Decode and interprets the result as UTF-8,
// replacing invalid sequences rather than failing the whole decode.
func DecodeString(s string) (string, error) {
	b, err := Decode(s)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// Plausible reports whether a bare line is worth a speculative decode: it must
// be restricted to the base64 alphabets and long enough that a plain
// identifier is unlikely.
func Plausible(s string) bool {
	return len(s) >= 24 && base64ish.MatchString(s)
}

func stripSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
