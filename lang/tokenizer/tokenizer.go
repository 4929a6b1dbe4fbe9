// Package tokenizer implements the "word" lexeme reader: the single
// primitive every other piece of the compiler and top-level evaluator reads
// from. It consumes a mutable input buffer and classifies each lexeme as a
// quoted string, an integer, a real, or a bare symbol.
package tokenizer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ldraconus/fifth/lang/value"
)

// Next consumes leading whitespace from *buffer and then one lexeme,
// reporting the produced Value and whether one was produced at all (false
// once the buffer is exhausted).
//
// Quoted strings (opened with ' or ") support the backslash escapes
// \n \r \t \\, with any other escaped character taken literally. A missing
// closing quote is not an error: the lexeme pushed is the quote character
// followed by the text accumulated so far, marking the string as
// unterminated without raising.
//
// An unquoted lexeme runs until whitespace or the end of the buffer. It is
// tried first as a signed integer, then as a floating-point literal, and
// falls back to a bare string only if neither parse consumes it wholly.
func Next(buffer *string) (value.Value, bool) {
	*buffer = strings.TrimLeftFunc(*buffer, unicode.IsSpace)
	if *buffer == "" {
		return value.Value{}, false
	}

	if c := (*buffer)[0]; c == '\'' || c == '"' {
		return readQuoted(buffer, c), true
	}

	end := 0
	for end < len(*buffer) && !unicode.IsSpace(rune((*buffer)[end])) {
		end++
	}
	word := (*buffer)[:end]
	*buffer = (*buffer)[end:]
	if word == "" {
		return value.Value{}, false
	}

	if n, err := strconv.ParseInt(word, 10, 64); err == nil {
		return value.Int(n), true
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return value.Flt(f), true
	}
	return value.Str(word), true
}

func readQuoted(buffer *string, quote byte) value.Value {
	rest := (*buffer)[1:]
	var sb strings.Builder
	i := 0
	escape := false
	for i < len(rest) && (escape || rest[i] != quote) {
		if escape {
			switch rest[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(rest[i])
			}
			escape = false
		} else if rest[i] == '\\' {
			escape = true
		} else {
			sb.WriteByte(rest[i])
		}
		i++
	}

	if i >= len(rest) {
		// no closing quote found: buffer is exhausted, leave it empty and
		// mark the lexeme as unterminated.
		*buffer = ""
		return value.Str(string(quote) + sb.String())
	}
	*buffer = rest[i+1:]
	return value.Str(sb.String())
}
