package loader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedList is returned for collection values that are not a plain
// list of identifiers.
var ErrMalformedList = errors.New("malformed identifier list")

// ParseIDList converts a collection column into identifiers.
//
// Native slices are accepted as they are. Strings must hold exactly one
// bracketed list or parenthesized tuple of quoted strings or integer
// literals, separated by commas or whitespace. Nothing is ever evaluated:
// any other input fails with ErrMalformedList.
func ParseIDList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), t...), nil
	case []int64:
		out := make([]string, len(t))
		for i, n := range t {
			out[i] = stringify(n)
		}
		return out, nil
	case []int:
		out := make([]string, len(t))
		for i, n := range t {
			out[i] = stringify(n)
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			id, err := scalarID(el)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return out, nil
	case string:
		return parseListLiteral(t)
	case []byte:
		return parseListLiteral(string(t))
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrMalformedList, v)
	}
}

func scalarID(v any) (string, error) {
	switch t := v.(type) {
	case string, []byte, int, int32, int64:
		return stringify(t), nil
	case float64:
		if t != float64(int64(t)) {
			return "", fmt.Errorf("%w: non-integer element %v", ErrMalformedList, t)
		}
		return stringify(t), nil
	default:
		return "", fmt.Errorf("%w: unsupported element %T", ErrMalformedList, v)
	}
}

func parseListLiteral(in string) ([]string, error) {
	s := strings.TrimSpace(in)
	if len(s) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedList, in)
	}
	open, close := s[0], s[len(s)-1]
	if !(open == '[' && close == ']') && !(open == '(' && close == ')') {
		return nil, fmt.Errorf("%w: not a list literal: %q", ErrMalformedList, in)
	}

	body := s[1 : len(s)-1]
	out := []string{}
	expectSep := false
	sepSeen := false

	for p := 0; p < len(body); {
		c := body[p]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			sepSeen = true
			p++
		case c == ',':
			if !expectSep {
				return nil, fmt.Errorf("%w: unexpected comma at %d", ErrMalformedList, p)
			}
			expectSep = false
			p++
		case c == '\'' || c == '"':
			if expectSep && !sepSeen {
				return nil, fmt.Errorf("%w: missing separator at %d", ErrMalformedList, p)
			}
			item, next, err := readQuoted(body, p)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
			p = next
			expectSep, sepSeen = true, false
		case c == '-' || (c >= '0' && c <= '9'):
			if expectSep && !sepSeen {
				return nil, fmt.Errorf("%w: missing separator at %d", ErrMalformedList, p)
			}
			item, next, err := readInteger(body, p)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
			p = next
			expectSep, sepSeen = true, false
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrMalformedList, c, p)
		}
	}
	return out, nil
}

func readQuoted(s string, start int) (string, int, error) {
	quote := s[start]
	var b strings.Builder
	for p := start + 1; p < len(s); p++ {
		c := s[p]
		switch {
		case c == '\\':
			if p+1 >= len(s) {
				return "", 0, fmt.Errorf("%w: dangling escape", ErrMalformedList)
			}
			p++
			switch s[p] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '\'', '"':
				b.WriteByte(s[p])
			default:
				return "", 0, fmt.Errorf("%w: unsupported escape \\%c", ErrMalformedList, s[p])
			}
		case c == quote:
			return b.String(), p + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string", ErrMalformedList)
}

func readInteger(s string, start int) (string, int, error) {
	p := start
	if s[p] == '-' {
		p++
	}
	digits := p
	for p < len(s) && s[p] >= '0' && s[p] <= '9' {
		p++
	}
	if p == digits {
		return "", 0, fmt.Errorf("%w: bare sign at %d", ErrMalformedList, start)
	}
	if p < len(s) {
		switch s[p] {
		case ',', ' ', '\t', '\n', '\r':
		default:
			return "", 0, fmt.Errorf("%w: invalid integer at %d", ErrMalformedList, start)
		}
	}
	return s[start:p], p, nil
}
