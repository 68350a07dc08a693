// Package htmltree parses an HTML fragment into a tree that carries a
// byte-precise source location for every tag, attribute, and content range.
//
// It is built directly on golang.org/x/net/html's low-level Tokenizer
// rather than its DOM Parse: Parse discards byte offsets once it builds a
// *html.Node tree, and no HTML library in the retrieval pack tracks them.
// Tokenizer.Raw() returns exactly the bytes consumed per token, and the
// tokenizer visits the input contiguously with no lookback, so summing
// len(Raw()) as tokens are consumed gives an exact running byte offset.
package htmltree

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
)

// NodeKind discriminates the members of the Node union.
type NodeKind int

const (
	ElementKind NodeKind = iota
	TextKind
	CommentKind
	DoctypeKind
)

// Node is any child of the fragment: an Element, or a leaf Text/Comment/
// Doctype node. Only *Element carries children.
type Node interface {
	Kind() NodeKind
}

// Attribute is one name/value pair of an Element's start tag, with byte
// spans for the name and the value (excluding surrounding quotes) plus the
// full span (including any quotes) used when splicing edits.
type Attribute struct {
	Name  string
	Value string

	NameStart, NameEnd   int
	ValueStart, ValueEnd int
	HasValue             bool

	// FullStart/FullEnd span the entire attribute, e.g. `name="value"`,
	// including quotes when present. FullStart == NameStart always.
	FullStart, FullEnd int
}

// Element is a tag and its children. StartTagStart/End bound the opening
// tag `<div ...>`. If the element has a closing tag, EndTagStart/End bound
// it; otherwise both are -1 (void elements, self-closing tags, and tags
// implicitly closed by the parser's recovery).
type Element struct {
	TagName     string
	Attrs       []Attribute
	Children    []Node
	SelfClosing bool

	StartTagStart, StartTagEnd int
	EndTagStart, EndTagEnd     int

	Parent *Element
}

func (*Element) Kind() NodeKind { return ElementKind }

// Attr returns the value of the named attribute (case-insensitive), if
// present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if equalFold(a.Name, name) {
			return a.Value, true
		}
	}

	return "", false
}

// AttrRef returns a pointer to the named attribute (case-insensitive), if
// present, for callers that need its location.
func (e *Element) AttrRef(name string) *Attribute {
	for i := range e.Attrs {
		if equalFold(e.Attrs[i].Name, name) {
			return &e.Attrs[i]
		}
	}

	return nil
}

// HasEndTag reports whether e closed with an explicit end tag.
func (e *Element) HasEndTag() bool {
	return e.EndTagStart >= 0
}

// ContentRange returns the byte range between e's start and end tags. For
// elements with no end tag (void, self-closing, or implicitly closed), it
// returns a zero-length range immediately after the start tag.
func (e *Element) ContentRange() (start, end int) {
	if e.HasEndTag() {
		return e.StartTagEnd, e.EndTagStart
	}

	return e.StartTagEnd, e.StartTagEnd
}

// Text is a run of character data.
type Text struct {
	Content    string
	Start, End int
}

func (*Text) Kind() NodeKind { return TextKind }

// Comment is an HTML comment; its contents are never inspected.
type Comment struct {
	Start, End int
}

func (*Comment) Kind() NodeKind { return CommentKind }

// Doctype is a doctype declaration.
type Doctype struct {
	Start, End int
}

func (*Doctype) Kind() NodeKind { return DoctypeKind }

// Document is a parsed fragment: a flat list of top-level nodes (an HTML
// fragment need not have a single root element).
type Document struct {
	Roots []Node
	Src   []byte
}

// voidElements never have an end tag or children per the HTML spec.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Parse builds a Document from src. Malformed HTML is handled via the
// tokenizer's own recovery (unclosed tags are implicitly closed when an
// ancestor's end tag is seen, or at end of input); no diagnostic is raised
// for parse-level malformation.
func Parse(src []byte) *Document {
	doc := &Document{Src: src}

	z := html.NewTokenizer(bytes.NewReader(src))

	pos := 0

	var stack []*Element

	appendChild := func(n Node) {
		if len(stack) == 0 {
			doc.Roots = append(doc.Roots, n)

			return
		}

		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		tt := z.Next()
		raw := z.Raw()
		tokenStart := pos
		tokenEnd := pos + len(raw)
		pos = tokenEnd

		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return doc
			}
			// Any other tokenizer error: stop, keeping what we parsed so far.
			return doc

		case html.TextToken:
			appendChild(&Text{Content: string(z.Text()), Start: tokenStart, End: tokenEnd})

		case html.CommentToken:
			appendChild(&Comment{Start: tokenStart, End: tokenEnd})

		case html.DoctypeToken:
			appendChild(&Doctype{Start: tokenStart, End: tokenEnd})

		case html.StartTagToken, html.SelfClosingTagToken:
			tagNameBytes, hasAttr := z.TagName()
			name := string(tagNameBytes)

			var rawAttrs []html.Attribute
			for hasAttr {
				var key, val []byte

				key, val, hasAttr = z.TagAttr()
				rawAttrs = append(rawAttrs, html.Attribute{Key: string(key), Val: string(val)})
			}

			spans := scanAttrSpans(raw)

			elem := &Element{
				TagName:       name,
				SelfClosing:   tt == html.SelfClosingTagToken,
				StartTagStart: tokenStart,
				StartTagEnd:   tokenEnd,
				EndTagStart:   -1,
				EndTagEnd:     -1,
			}

			for i, at := range rawAttrs {
				if i >= len(spans) {
					break
				}

				sp := spans[i]
				elem.Attrs = append(elem.Attrs, Attribute{
					Name:       at.Key,
					Value:      at.Val,
					NameStart:  tokenStart + sp.nameStart,
					NameEnd:    tokenStart + sp.nameEnd,
					ValueStart: tokenStart + sp.valStart,
					ValueEnd:   tokenStart + sp.valEnd,
					HasValue:   sp.hasValue,
					FullStart:  tokenStart + sp.nameStart,
					FullEnd:    tokenStart + sp.fullEnd,
				})
			}

			if len(stack) > 0 {
				elem.Parent = stack[len(stack)-1]
			}

			appendChild(elem)

			if tt == html.StartTagToken && !voidElements[name] {
				stack = append(stack, elem)
			}

		case html.EndTagToken:
			tagNameBytes, _ := z.TagName()
			name := string(tagNameBytes)

			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if top.TagName == name {
					top.EndTagStart = tokenStart
					top.EndTagEnd = tokenEnd

					break
				}
				// top is left implicitly closed (no explicit end tag found).
			}
		}
	}
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}

		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}

		if ca != cb {
			return false
		}
	}

	return true
}
