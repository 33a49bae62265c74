package render

import (
	"bytes"
	"os"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

// HighlightCode renders code with ANSI syntax highlighting using the named
// chroma style. It is safe to call from a worker goroutine; on any failure
// (or NO_COLOR) the input comes back unchanged.
func HighlightCode(code, lang, styleName string) string {
	if code == "" || os.Getenv("NO_COLOR") != "" {
		return code
	}

	lexer := resolveLexer(code, lang)
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	var buf bytes.Buffer
	if err := formatters.TTY256.Format(&buf, style, iterator); err != nil {
		return code
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

func resolveLexer(code, lang string) chroma.Lexer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
