package cli

import (
	"regexp"
	"strings"
)

// keys, string values, then literals and numbers
var jsonToken = regexp.MustCompile(`("(\\u[a-zA-Z0-9]{4}|\\[^u]|[^\\"])*"(\s*:)?|\b(true|false|null)\b|-?\d+(?:\.\d*)?(?:[eE][+\-]?\d+)?)`)

// Palette maps JSON token classes to ANSI codes.
type Palette struct {
	Key, String, Failure, Bool, Null, Number string
}

// DefaultPalette renders failed provider results ("Error: ...") in red so
// they stand out in aggregate dumps.
var DefaultPalette = Palette{
	Key:     Blue,
	String:  Green,
	Failure: Red,
	Bool:    Yellow,
	Null:    DimCode,
	Number:  Purple,
}

// HighlightJSON colors a JSON document, minified or indented, with the
// default palette.
func HighlightJSON(doc string) string {
	return DefaultPalette.Highlight(doc)
}

func (p Palette) Highlight(doc string) string {
	if !Enabled() {
		return doc
	}

	return jsonToken.ReplaceAllStringFunc(doc, func(tok string) string {
		switch {
		case strings.HasSuffix(tok, ":"):
			return p.Key + tok[:len(tok)-1] + ResetCode + ":"
		case strings.HasPrefix(tok, `"Error: `):
			return p.Failure + tok + ResetCode
		case strings.HasPrefix(tok, `"`):
			return p.String + tok + ResetCode
		case tok == "true" || tok == "false":
			return p.Bool + tok + ResetCode
		case tok == "null":
			return p.Null + tok + ResetCode
		default:
			return p.Number + tok + ResetCode
		}
	})
}
