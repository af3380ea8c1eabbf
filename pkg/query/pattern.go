// Package query parses the minimal ?field=value pattern syntax into a
// triple filter. This is deliberately not a query language: no boolean
// operators, no ranges, just equality constraints on subject, predicate
// and object.
package query

import (
	"fmt"
	"strings"

	"github.com/actionsemantics/sage/pkg/common/errors"
	"github.com/actionsemantics/sage/pkg/graph"
)

// MaxResults caps the number of triples a pattern query may return.
const MaxResults = 100

// Parse turns a pattern like
//
//	?subject='accountant' ?predicate='invoicing' ?object=*
//
// into a store filter. The wildcard * leaves a field unconstrained, as
// does omitting the token entirely. Unrecognized fields are silently
// ignored. Values may be quoted with single or double quotes.
func Parse(pattern string) (*graph.Filter, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", errors.ErrInvalidInput)
	}

	f := &graph.Filter{Limit: MaxResults}

	for _, token := range splitTokens(pattern) {
		if !strings.HasPrefix(token, "?") {
			continue
		}
		body := strings.TrimPrefix(token, "?")
		eq := strings.Index(body, "=")
		if eq < 0 {
			return nil, fmt.Errorf("%w: malformed token %q", errors.ErrInvalidInput, token)
		}

		field := strings.ToLower(strings.TrimSpace(body[:eq]))
		value := unquote(strings.TrimSpace(body[eq+1:]))
		if value == "*" {
			continue
		}

		switch field {
		case "subject":
			f.Subject = value
		case "predicate":
			f.Predicate = value
		case "object":
			f.Object = value
		default:
			// Unknown fields are ignored, not rejected.
		}
	}

	return f, nil
}

// splitTokens splits the pattern on whitespace, keeping quoted values
// (which may contain spaces) intact.
func splitTokens(s string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false
	var quoteChar rune

	for _, r := range s {
		switch {
		case r == '"' || r == '\'':
			if inQuote {
				if r == quoteChar {
					inQuote = false
				}
			} else {
				inQuote = true
				quoteChar = r
			}
			current.WriteRune(r)
		case (r == ' ' || r == '\t' || r == '\n') && !inQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func unquote(s string) string {
	return strings.Trim(s, "\"'")
}
