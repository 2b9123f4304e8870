// Package sub decodes proxy share links into model nodes.
//
// Every scheme has its own ad-hoc text encoding and the input is untrusted
// text scraped from the public internet, so decoders never panic: any
// malformed link yields a *DecodeError and contributes nothing to the batch.
package sub

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/subweave/subweave/internal/model"
)

type DecodeError struct {
	AppError model.AppError
	Cause    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

var errMissingColon = errors.New("missing ':' separator")

func newDecodeError(code string, message string, snippet string, cause error) error {
	return &DecodeError{
		AppError: model.AppError{
			Code:    code,
			Message: message,
			Stage:   "decode_link",
			Snippet: truncateSnippet(snippet, 200),
		},
		Cause: cause,
	}
}

// cutFragment splits a trailing #fragment off and percent-decodes it into a
// display name. Undecodable fragments are kept verbatim; the input is scraped
// text and a garbled name is better than a dropped node.
func cutFragment(s string) (rest string, name string) {
	rest, frag, ok := strings.Cut(s, "#")
	if !ok {
		return s, ""
	}
	return rest, strings.TrimSpace(unescape(frag))
}

// unescape percent-decodes leniently, returning the input unchanged when it
// is not valid percent-encoding.
func unescape(s string) string {
	if s == "" {
		return s
	}
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// query is a lenient single-valued view of a URI query string.
type query map[string]string

// cutQuery splits an optional ?query suffix off and parses it. Unlike
// net/url.ParseQuery it never fails: pairs that do not parse are skipped.
func cutQuery(s string) (rest string, q query) {
	rest, raw, ok := strings.Cut(s, "?")
	if !ok {
		return s, query{}
	}
	return rest, parseQuery(raw)
}

// parseQuery parses a raw query string leniently.
func parseQuery(raw string) query {
	q := query{}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		k = unescape(k)
		if k == "" {
			continue
		}
		if _, dup := q[k]; dup {
			continue // first value wins
		}
		q[k] = unescape(v)
	}
	return q
}

// get returns the first non-empty value among keys.
func (q query) get(keys ...string) string {
	for _, k := range keys {
		if v := q[k]; v != "" {
			return v
		}
	}
	return ""
}

// flag reports whether any of keys holds a truthy value.
func (q query) flag(keys ...string) bool {
	switch strings.ToLower(q.get(keys...)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// hostPort parses "host:port" (IPv6 brackets included). Port must be numeric
// and in range; a violation is a decode failure, not a panic.
func hostPort(s string) (string, int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, err
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "", 0, errors.New("empty host")
	}
	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		return "", 0, err
	}
	if port < 1 || port > 65535 {
		return "", 0, errors.New("port out of range")
	}
	return host, port, nil
}

// endpoint builds the shared endpoint part, synthesizing the deterministic
// fallback name when the link carried no fragment. Every successfully decoded
// node therefore has a non-empty name.
func endpoint(label, name, server string, port int) model.Endpoint {
	e := model.Endpoint{Name: name, Server: server, Port: port}
	if e.Name == "" {
		e.Name = e.FallbackName(label)
	}
	return e
}

func truncateSnippet(s string, max int) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
