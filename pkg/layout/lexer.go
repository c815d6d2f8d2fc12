package layout

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// LayoutLexer defines the lexical structure for .kpd keypad layout files:
// a small block format with -- comments, keywords, quoted strings and bare
// integers.
var LayoutLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments - to end of line
	{Name: "Comment", Pattern: `--[^\n]*`},

	// Whitespace
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// Keywords
	{Name: "KwKeypad", Pattern: `\bkeypad\b`},
	{Name: "KwRows", Pattern: `\brows\b`},
	{Name: "KwCols", Pattern: `\bcols\b`},
	{Name: "KwKeys", Pattern: `\bkeys\b`},
	{Name: "KwDebounce", Pattern: `\bdebounce\b`},
	{Name: "KwHold", Pattern: `\bhold\b`},
	{Name: "KwSettle", Pattern: `\bsettle_us\b`},

	// Literals
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Integer", Pattern: `\d+`},

	// Punctuation
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
})
