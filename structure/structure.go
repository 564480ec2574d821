// Package structure counts the structural elements of an article (headings,
// paragraphs, lists, links, images) and the occurrences of its focus keyword.
//
// Content may be Markdown, HTML or a mix of both. Markdown is rendered to
// HTML with raw HTML passed through, and the resulting tree is inspected with
// goquery, so "## Title" and "<h2>Title</h2>" count the same.
package structure

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seo-optimizer/contentgate/phrase"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
)

// Counts holds the structural statistics of one piece of content.
type Counts struct {
	H2                 int `json:"h2"`
	H3                 int `json:"h3"`
	H4                 int `json:"h4"`
	Paragraphs         int `json:"paragraphs"`
	ListItems          int `json:"listItems"`
	Links              int `json:"links"`
	Images             int `json:"images"`
	KeywordOccurrences int `json:"keywordOccurrences"`
	Words              int `json:"words"`

	// ParagraphTexts is the plain text of every non-empty paragraph.
	ParagraphTexts []string `json:"-"`
	// Text is the plain text of the whole document, blocks separated by
	// blank lines.
	Text string `json:"-"`
}

// Headings returns H2+H3+H4.
func (c Counts) Headings() int {
	return c.H2 + c.H3 + c.H4
}

// KeywordDensity returns keyword occurrences per hundred words.
func (c Counts) KeywordDensity() float64 {
	if c.Words == 0 {
		return 0
	}
	return float64(c.KeywordOccurrences) / float64(c.Words) * 100
}

// Count inspects raw content. keyword may be empty, in which case
// KeywordOccurrences is zero.
func Count(raw, keyword string) Counts {
	var c Counts
	if strings.TrimSpace(raw) == "" {
		return c
	}

	doc, err := parse(raw)
	if err != nil {
		// Rendering from memory does not fail in practice; fall back to
		// treating the input as plain text.
		c.Text = raw
		c.Words = CountWords(raw)
		c.KeywordOccurrences = phrase.Compile(keyword).Count(raw)
		return c
	}

	c.H2 = doc.Find("h2").Length()
	c.H3 = doc.Find("h3").Length()
	c.H4 = doc.Find("h4").Length()
	c.ListItems = doc.Find("li").Length()
	c.Links = doc.Find("a[href]").Length()
	c.Images = doc.Find("img").Length()

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(plainText(skippedElements, s.Nodes...))
		if CountWords(text) == 0 {
			return
		}
		c.Paragraphs++
		c.ParagraphTexts = append(c.ParagraphTexts, text)
	})

	c.Text = strings.TrimSpace(plainText(skippedElements, doc.Nodes...))
	c.Words = CountWords(c.Text)
	if pat := phrase.Compile(keyword); pat != nil {
		c.KeywordOccurrences = pat.Count(plainText(nonProseElements, doc.Nodes...))
	}
	return c
}

// PlainText renders raw Markdown/HTML content to plain text.
func PlainText(raw string) string {
	doc, err := parse(raw)
	if err != nil {
		return raw
	}
	return strings.TrimSpace(plainText(skippedElements, doc.Nodes...))
}

func parse(raw string) (*goquery.Document, error) {
	md := goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))
	var buf bytes.Buffer
	if err := md.Convert([]byte(raw), &buf); err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(&buf)
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// nonProseElements are left out of keyword counting. Code is counted as words
// but never as a keyword use, matching what the keyword enforcer rewrites.
var nonProseElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"code": true, "pre": true, "kbd": true, "samp": true,
}

// plainText collects text nodes in document order, leaving out the elements
// in skip. Block elements are separated by blank lines so words from adjacent
// blocks never merge.
func plainText(skip map[string]bool, nodes ...*nethtml.Node) string {
	var b strings.Builder
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch n.Type {
		case nethtml.TextNode:
			b.WriteString(n.Data)
			return
		case nethtml.ElementNode:
			if skip[n.Data] {
				return
			}
		case nethtml.CommentNode:
			return
		}
		block := n.Type == nethtml.ElementNode && blockElements[n.Data]
		if block {
			b.WriteString("\n\n")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if block {
			b.WriteString("\n\n")
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return collapseBlankLines(b.String())
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.Join(out, "\n")
}
