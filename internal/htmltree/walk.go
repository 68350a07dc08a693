package htmltree

import "strings"

// Walk visits every Element reachable from roots, depth-first, in document
// order. If ignore returns true for an element's tag name, that element is
// still visited but its children are not descended into — this backs the
// "ignore" configuration surface that excludes subtrees such as <script>,
// <style>, or a project-configured element list from extraction.
//
// visit returning false stops the walk entirely.
func Walk(roots []Node, ignore func(tagName string) bool, visit func(*Element) bool) {
	for _, n := range roots {
		if !walkNode(n, ignore, visit) {
			return
		}
	}
}

func walkNode(n Node, ignore func(tagName string) bool, visit func(*Element) bool) bool {
	e, ok := n.(*Element)
	if !ok {
		return true
	}

	if !visit(e) {
		return false
	}

	if ignore != nil && ignore(strings.ToLower(e.TagName)) {
		return true
	}

	for _, c := range e.Children {
		if !walkNode(c, ignore, visit) {
			return false
		}
	}

	return true
}

// ContentAnalysis summarizes the immediate children of an Element: whether
// it directly contains non-whitespace text, whether it directly contains
// child elements, and the concatenation of its direct text children.
//
// This is computed over immediate children only, never descendants: a
// <div><span>hi</span></div> has HasElements true and HasText false for the
// outer div — a t attribute on an element with both direct text and direct
// child elements is ambiguous and flagged, but an element whose only text
// lives inside a child is not.
type ContentAnalysis struct {
	Text        string
	HasText     bool
	HasElements bool
}

// AnalyzeContent computes a ContentAnalysis for e. textIgnore, if non-nil,
// is applied to each text run's trimmed content; a run for which it returns
// true does not count towards HasText and is excluded from Text.
func AnalyzeContent(e *Element, textIgnore func(string) bool) ContentAnalysis {
	var b strings.Builder

	var out ContentAnalysis

	for _, c := range e.Children {
		switch v := c.(type) {
		case *Text:
			trimmed := strings.TrimSpace(v.Content)
			if trimmed == "" {
				continue
			}

			if textIgnore != nil && textIgnore(trimmed) {
				continue
			}

			out.HasText = true

			b.WriteString(v.Content)
		case *Element:
			out.HasElements = true
		}
	}

	out.Text = b.String()

	return out
}

// StartTagRange returns the byte range of e's opening tag.
func (e *Element) StartTagRange() (start, end int) {
	return e.StartTagStart, e.StartTagEnd
}

// AttrRange returns the byte range of the attribute's full text
// (`name="value"`, including quotes when present).
func (a *Attribute) AttrRange() (start, end int) {
	return a.FullStart, a.FullEnd
}
