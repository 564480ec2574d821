// Package remediate holds deterministic text transforms that fix issues
// reported by the analyzer. Callers re-run the evaluation afterwards to
// confirm the fix.
package remediate

import (
	"regexp"
	"strings"

	"github.com/seo-optimizer/contentgate/structure"
)

var (
	blockSeparator  = regexp.MustCompile(`\n[ \t]*\n`)
	ordinalMarker   = regexp.MustCompile(`^\d+[.)](\s|$)`)
	bulletMarker    = regexp.MustCompile(`^[-*+](\s|$)`)
	thematicBreak   = regexp.MustCompile(`^([-*_][ \t]*){3,}$`)
	setextUnderline = regexp.MustCompile(`^(=+|-+)[ \t]*$`)
)

// lineKind classifies one Markdown line inside a block.
type lineKind int

const (
	proseLine lineKind = iota
	// headingLine stands alone; prose may follow on the next line.
	headingLine
	// containerLine opens a list, quote, table or HTML block. Lines after it
	// in the same block belong to it.
	containerLine
	fenceLine
	// indentedLine continues a paragraph, or starts indented code.
	indentedLine
)

func classify(line string) lineKind {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return proseLine
	}
	switch {
	case strings.HasPrefix(trimmed, "```"), strings.HasPrefix(trimmed, "~~~"):
		return fenceLine
	case trimmed[0] == '#', thematicBreak.MatchString(trimmed), setextUnderline.MatchString(trimmed):
		return headingLine
	case strings.HasPrefix(line, "    "), strings.HasPrefix(line, "\t"):
		return indentedLine
	}
	switch trimmed[0] {
	case '>', '|', '<':
		return containerLine
	}
	if bulletMarker.MatchString(trimmed) || ordinalMarker.MatchString(trimmed) {
		return containerLine
	}
	return proseLine
}

// SplitLongParagraphs splits prose paragraphs longer than maxWords. Paragraphs
// with three or more sentences are packed sentence by sentence; shorter ones
// are chunked on whitespace. Headings, list items, quotes, tables, HTML and
// fenced code pass through verbatim, line by line, so a heading or a list
// sharing a block with prose keeps its lines while the prose is split. A
// single sentence longer than maxWords is kept whole. maxWords <= 0 disables
// splitting.
func SplitLongParagraphs(content string, maxWords int) string {
	if maxWords <= 0 || strings.TrimSpace(content) == "" {
		return content
	}

	blocks := blockSeparator.Split(content, -1)
	out := make([]string, 0, len(blocks))
	changed := false
	inFence := false

	for _, block := range blocks {
		var parts []string
		parts, inFence = splitBlockLines(block, maxWords, inFence)
		if parts == nil {
			out = append(out, block)
			continue
		}
		changed = true
		out = append(out, parts...)
	}

	if !changed {
		return content
	}
	return strings.Join(out, "\n\n")
}

// splitBlockLines returns the paragraphs block becomes, or nil when it stays
// as it is, and whether a code fence is still open after it.
func splitBlockLines(block string, maxWords int, inFence bool) ([]string, bool) {
	lines := strings.Split(block, "\n")
	var (
		parts   []string
		kept    []string
		prose   []string
		split   bool
		trailer bool // rest of the block belongs to a list, quote, table or HTML
	)
	flushKept := func() {
		if len(kept) > 0 {
			parts = append(parts, strings.Join(kept, "\n"))
			kept = nil
		}
	}
	flushProse := func(next string) {
		if len(prose) == 0 {
			return
		}
		text := strings.Join(prose, "\n")
		// A run followed by === or --- is a setext heading.
		underlined := setextUnderline.MatchString(strings.TrimSpace(next))
		if !underlined && structure.CountWords(text) > maxWords {
			if pieces := splitParagraph(text, maxWords); len(pieces) > 1 {
				flushKept()
				parts = append(parts, pieces...)
				prose = nil
				split = true
				return
			}
		}
		kept = append(kept, prose...)
		prose = nil
	}

	for _, line := range lines {
		if inFence {
			if classify(line) == fenceLine {
				inFence = false
			}
			kept = append(kept, line)
			continue
		}
		if trailer {
			kept = append(kept, line)
			continue
		}
		kind := classify(line)
		if kind == indentedLine {
			if len(prose) > 0 {
				kind = proseLine
			} else {
				kind = containerLine
			}
		}
		if kind == proseLine {
			prose = append(prose, line)
			continue
		}
		flushProse(line)
		switch kind {
		case fenceLine:
			inFence = true
		case containerLine:
			trailer = true
		}
		kept = append(kept, line)
	}
	flushProse("")

	if !split {
		return nil, inFence
	}
	flushKept()
	return parts, inFence
}

func splitParagraph(paragraph string, maxWords int) []string {
	text := strings.Join(strings.Fields(paragraph), " ")
	sentences := structure.SplitSentences(text)
	if len(sentences) >= 3 {
		return packSentences(sentences, maxWords)
	}
	return chunkWords(strings.Fields(text), maxWords)
}

func packSentences(sentences []string, maxWords int) []string {
	var (
		parts   []string
		current []string
		words   int
	)
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, strings.Join(current, " "))
			current = current[:0]
			words = 0
		}
	}
	for _, s := range sentences {
		n := structure.CountWords(s)
		if words > 0 && words+n > maxWords {
			flush()
		}
		current = append(current, s)
		words += n
	}
	flush()
	return parts
}

// chunkWords packs whitespace-separated tokens, so a word is never cut.
func chunkWords(tokens []string, maxWords int) []string {
	var (
		parts   []string
		current []string
		words   int
	)
	for _, tok := range tokens {
		n := structure.CountWords(tok)
		if words > 0 && words+n > maxWords {
			parts = append(parts, strings.Join(current, " "))
			current = nil
			words = 0
		}
		current = append(current, tok)
		words += n
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, " "))
	}
	return parts
}
