package console

import (
	"errors"
	"strings"
)

// splitArgs splits a command line on whitespace. A token opening with a
// double or single quote runs to the matching quote, which is stripped, so
// selectors using the other quote kind pass through untouched. A quote
// inside a token is kept and shields whitespace up to its closing quote, so
// button:has-text('Primary Site') stays one argument. A lone apostrophe
// inside a word is taken literally.
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		in    bool
		quote rune
		keep  bool
	)

	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				if !keep {
					continue
				}
			}
			cur.WriteRune(r)
		case (r == '"' || r == '\'') && !in:
			quote, in, keep = r, true, false
		case (r == '"' || r == '\'') && strings.ContainsRune(line[i+1:], r):
			quote, keep = r, true
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if in {
				args = append(args, cur.String())
				cur.Reset()
				in = false
			}
		default:
			cur.WriteRune(r)
			in = true
		}
	}

	if quote != 0 {
		return nil, errors.New("unterminated " + string(quote) + " quote")
	}

	if in {
		args = append(args, cur.String())
	}

	if len(args) == 0 {
		return nil, errors.New("empty command")
	}

	return args, nil
}
