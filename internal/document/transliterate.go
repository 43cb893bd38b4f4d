package document

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Unmappable replaces any rune ISO-8859-1 cannot hold after substitution.
const Unmappable = '?'

// substitutions maps typographic and box-drawing glyphs that models like to
// emit onto Latin-1 text. Applied before encoding.
var substitutions = map[rune]string{
	'—': "-", '–': "-", '‒': "-", '―': "-", '−': "-", '‐': "-", '‑': "-",
	'“': `"`, '”': `"`, '„': `"`, '″': `"`,
	'‘': "'", '’': "'", '‚': "'", '′': "'",
	'…': "...",
	'•': "*", '◦': "-", '▪': "#", '■': "#", '□': "#",
	'█': "#", '▓': "#", '▒': "#", '░': "#",
	'═': "=", '─': "-", '━': "-",
	'│': "|", '║': "|", '┃': "|",
	'├': "+", '└': "+", '┌': "+", '┐': "+", '┘': "+", '┤': "+", '┬': "+", '┴': "+", '┼': "+",
	'╔': "+", '╗': "+", '╚': "+", '╝': "+", '╠': "+", '╣': "+", '╦': "+", '╩': "+", '╬': "+",
	'€': "EUR",
	'→': "->", '←': "<-", '≥': ">=", '≤': "<=", '≈': "~",
	'\t': "    ", '\r': "", '\u200b': "", '\ufeff': "",
}

// Substitutions returns a copy of the glyph table.
func Substitutions() map[rune]string {
	out := make(map[rune]string, len(substitutions))
	for k, v := range substitutions {
		out[k] = v
	}
	return out
}

// Transliterate rewrites s so that every rune is printable ISO-8859-1.
// Known glyphs use the substitution table; anything else becomes '?'.
func Transliterate(s string) string {
	out, _ := TransliterateCount(s)
	return out
}

// TransliterateCount is Transliterate plus the number of runes replaced by '?'.
func TransliterateCount(s string) (string, int) {
	var b strings.Builder
	b.Grow(len(s))
	lost := 0
	for _, r := range s {
		if sub, ok := substitutions[r]; ok {
			b.WriteString(sub)
			continue
		}
		if r == '\n' || encodable(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(Unmappable)
		lost++
	}
	return b.String(), lost
}

func encodable(r rune) bool {
	if r == utf8.RuneError || r < 0x20 || (r >= 0x7f && r < 0xa0) {
		return false
	}
	_, ok := charmap.ISO8859_1.EncodeRune(r)
	return ok
}

// latin1 converts transliterated text to the single-byte string the PDF
// core fonts expect.
func latin1(s string) string {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = Unmappable
		}
		buf = append(buf, c)
	}
	return string(buf)
}
