// Package tattr implements the `t`-attribute mini-language: an ordered
// mapping from target name ("text", "html", or an HTML attribute name) to
// a localization key.
//
// Grammar (case-insensitive names, whitespace tolerant around delimiters):
//
//	attr   := pair ( ";" pair )*
//	pair   := "[" name ( "," name )* "]" key  |  key
//	key    := [A-Za-z0-9_.-]+
//	name   := [A-Za-z0-9_.-]+
//
// A bare key binds target "text".
package tattr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ErrInvalid is wrapped by every parse failure returned from Parse.
var ErrInvalid = errors.New("invalid t-attribute")

const (
	// Text and HTML are the two mutually exclusive content targets. Any
	// other target name addresses an HTML attribute of the same name.
	Text = "text"
	HTML = "html"
)

// Attr is an insertion-ordered mapping from target name to key.
//
// Invariant: at most one of {Text, HTML} is bound at a time. Set enforces
// this by evicting the other when one is set; Parse does not — a malformed
// source attribute that names both is preserved verbatim so a diagnostic
// consumer can see exactly what was written, and normal parses from
// well-formed t-attributes never trigger it.
type Attr struct {
	order []string // names, in insertion order, lower-cased
	byKey map[string]string
}

// New returns an empty Attr.
func New() *Attr {
	return &Attr{byKey: make(map[string]string)}
}

// Get returns the key bound to name, if any. name is matched
// case-insensitively.
func (a *Attr) Get(name string) (string, bool) {
	k, ok := a.byKey[strings.ToLower(name)]

	return k, ok
}

// Names returns the currently bound target names, in insertion order. The
// returned slice is a fresh copy.
func (a *Attr) Names() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)

	return out
}

// IsEmpty reports whether a has no bindings.
func (a *Attr) IsEmpty() bool {
	return len(a.order) == 0
}

// Set binds name to key, evicting the opposite content target if name is
// Text or HTML.
func (a *Attr) Set(name, key string) {
	name = strings.ToLower(name)

	if name == Text {
		a.unset(HTML)
	} else if name == HTML {
		a.unset(Text)
	}

	a.insert(name, key)
}

// Delete removes any binding for name.
func (a *Attr) Delete(name string) {
	a.unset(strings.ToLower(name))
}

func (a *Attr) unset(name string) {
	if _, ok := a.byKey[name]; !ok {
		return
	}

	delete(a.byKey, name)

	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)

			break
		}
	}
}

func (a *Attr) insert(name, key string) {
	if _, ok := a.byKey[name]; !ok {
		a.order = append(a.order, name)
	}

	a.byKey[name] = key
}

// Parse decodes s per the grammar documented on the package. It returns
// ErrInvalid (wrapped with a reason) on any of: malformed bracket groups,
// names or keys with disallowed characters, an empty key, or a target name
// bound twice within s.
func Parse(s string) (*Attr, error) {
	a := New()

	seen := make(map[string]struct{})

	for _, rawPair := range strings.Split(s, ";") {
		pair := strings.TrimSpace(rawPair)
		if pair == "" {
			continue
		}

		names, key, err := parsePair(pair)
		if err != nil {
			return nil, err
		}

		for _, n := range names {
			ln := strings.ToLower(n)
			if _, dup := seen[ln]; dup {
				return nil, fmt.Errorf("%w: duplicate target name %q", ErrInvalid, ln)
			}

			seen[ln] = struct{}{}
			a.insert(ln, key)
		}
	}

	return a, nil
}

func parsePair(pair string) (names []string, key string, err error) {
	if strings.HasPrefix(pair, "[") {
		end := strings.IndexByte(pair, ']')
		if end < 0 {
			return nil, "", fmt.Errorf("%w: unterminated name list in %q", ErrInvalid, pair)
		}

		nameList := pair[1:end]
		rest := strings.TrimSpace(pair[end+1:])

		for _, n := range strings.Split(nameList, ",") {
			n = strings.TrimSpace(n)
			if !identRe.MatchString(n) {
				return nil, "", fmt.Errorf("%w: invalid target name %q", ErrInvalid, n)
			}

			names = append(names, n)
		}

		if len(names) == 0 {
			return nil, "", fmt.Errorf("%w: empty name list in %q", ErrInvalid, pair)
		}

		key = rest
	} else {
		names = []string{Text}
		key = pair
	}

	if !identRe.MatchString(key) {
		return nil, "", fmt.Errorf("%w: invalid key %q", ErrInvalid, key)
	}

	return names, key, nil
}

// String renders a per the grammar: bindings are grouped by key (a single
// key may be shared by several names), name-lists render in the group's
// first-seen order, and a lone Text binding renders as a bare key. Groups
// are joined with ";".
func (a *Attr) String() string {
	var keyOrder []string

	seenKey := make(map[string]bool)

	for _, name := range a.order {
		key := a.byKey[name]
		if !seenKey[key] {
			seenKey[key] = true

			keyOrder = append(keyOrder, key)
		}
	}

	groups := make([]string, 0, len(keyOrder))

	for _, key := range keyOrder {
		var names []string

		for _, n := range a.order {
			if a.byKey[n] == key {
				names = append(names, n)
			}
		}

		if len(names) == 1 && names[0] == Text {
			groups = append(groups, key)
		} else {
			groups = append(groups, "["+strings.Join(names, ",")+"]"+key)
		}
	}

	return strings.Join(groups, ";")
}
