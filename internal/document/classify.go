package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlockKind tags a classified line.
type BlockKind int

const (
	BlockBlank BlockKind = iota
	BlockHeading
	BlockBody
)

func (k BlockKind) String() string {
	switch k {
	case BlockBlank:
		return "blank"
	case BlockHeading:
		return "heading"
	}
	return "body"
}

// Heading levels. Level 1 is the larger style.
const (
	HeadingMajor = 1
	HeadingMinor = 2
)

// ShortLineLimit is the rune count below which an upper-case line is a heading.
const ShortLineLimit = 50

// Block is one line after classification. Level is set for headings only.
type Block struct {
	Kind  BlockKind
	Text  string
	Level int
}

// Classify decides how a single line is laid out.
//
//	"###..." prefix             major heading, marker stripped
//	short upper-case line       major heading, text unchanged
//	"#" or "##" prefix          minor heading, marker stripped
//	whitespace only             blank
//	anything else               body
func Classify(line string) Block {
	if strings.TrimSpace(line) == "" {
		return Block{Kind: BlockBlank}
	}
	if strings.HasPrefix(line, "###") {
		return Block{Kind: BlockHeading, Level: HeadingMajor, Text: stripMarker(line)}
	}
	if utf8.RuneCountInString(line) < ShortLineLimit && IsUpper(line) {
		return Block{Kind: BlockHeading, Level: HeadingMajor, Text: line}
	}
	if strings.HasPrefix(line, "#") {
		return Block{Kind: BlockHeading, Level: HeadingMinor, Text: stripMarker(line)}
	}
	return Block{Kind: BlockBody, Text: line}
}

// IsUpper reports whether s has at least one letter and no lower-case letters.
// Digits, punctuation and spaces do not count either way.
func IsUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters++
	}
	return letters > 0
}

func stripMarker(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "#"))
}

// Blocks transliterates text and classifies every line in order.
func Blocks(text string) []Block {
	return classifyLines(Transliterate(text))
}

func classifyLines(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, Classify(line))
	}
	return blocks
}
