// Package diag implements the diagnostics bus: a typed, structured
// warning/error stream with source locations, decoupled from how a
// particular diagnostic is ultimately handled (ignored, printed, or turned
// into a nonzero process exit code).
//
// A Diagnostic never carries behavior, only data and an optional location.
// Producers call Bus.Report; a Bus fans out to zero or more subscribers,
// which are pure sinks.
package diag

import "fmt"

// Kind identifies the shape of a Diagnostic. See the Details type documented
// on each constant for the payload carried in Diagnostic.Details.
type Kind string

// The full set of diagnostic kinds. Each is documented with the Details
// type found in that Diagnostic's Details field.
const (
	// InvalidJSONData: Details is InvalidJSONDataDetails.
	InvalidJSONData Kind = "InvalidJsonData"
	// InvalidJSONPartName: Details is InvalidJSONPartNameDetails.
	InvalidJSONPartName Kind = "InvalidJsonPartName"
	// MixedContent: Details is ElementDetails.
	MixedContent Kind = "MixedContent"
	// InvalidTAttribute: Details is InvalidTAttributeDetails.
	InvalidTAttribute Kind = "InvalidTAttribute"
	// UnlocalizedText: Details is ElementDetails.
	UnlocalizedText Kind = "UnlocalizedText"
	// DisallowedTAttribute: Details is ElementDetails.
	DisallowedTAttribute Kind = "DisallowedTAttribute"
	// DisallowedContent: Details is ElementDetails.
	DisallowedContent Kind = "DisallowedContent"
	// DisallowedLocalizedAttribute: Details is AttributeDetails.
	DisallowedLocalizedAttribute Kind = "DisallowedLocalizedAttribute"
	// WrongPrefix: Details is KeyDetails.
	WrongPrefix Kind = "WrongPrefix"
	// DuplicateKeyOrPath: Details is PathDetails.
	DuplicateKeyOrPath Kind = "DuplicateKeyOrPath"
	// DuplicateKey: Details is KeyDetails.
	DuplicateKey Kind = "DuplicateKey"
	// OutdatedTranslation: Details is LocaleKeyDetails.
	OutdatedTranslation Kind = "OutdatedTranslation"
	// MissingTranslation: Details is LocaleKeyDetails.
	MissingTranslation Kind = "MissingTranslation"
	// ModifiedSource: Details is FileDetails.
	ModifiedSource Kind = "ModifiedSource"
	// ModifiedTranslation: Details is EmptyDetails.
	ModifiedTranslation Kind = "ModifiedTranslation"
	// UnknownLocale: Details is LocaleKeyDetails.
	UnknownLocale Kind = "UnknownLocale"
)

// Position is a byte offset paired with the 1-based line and column it
// resolves to, mirroring htmltree's location type without importing it
// (diag must stay a leaf package).
type Position struct {
	Offset int
	Line   int
	Col    int
}

// Location identifies a source range a Diagnostic pertains to.
type Location struct {
	Filename string
	Start    Position
	End      Position
}

// Diagnostic is a single reported event. Details is one of the *Details
// types documented on the Kind constants above.
type Diagnostic struct {
	Kind     Kind
	Details  any
	Location *Location
}

func (d Diagnostic) String() string {
	if d.Location != nil {
		return fmt.Sprintf("%s: %s:%d:%d: %v", d.Kind, d.Location.Filename, d.Location.Start.Line, d.Location.Start.Col, d.Details)
	}

	return fmt.Sprintf("%s: %v", d.Kind, d.Details)
}

// Details payloads.
type (
	InvalidJSONDataDetails struct{ Path string }

	InvalidJSONPartNameDetails struct {
		Path string
		Part string
	}

	ElementDetails struct{ Tag string }

	InvalidTAttributeDetails struct{ Reason string }

	AttributeDetails struct {
		Tag  string
		Name string
	}

	KeyDetails struct{ Key string }

	PathDetails struct{ Path string }

	LocaleKeyDetails struct {
		Locale string
		Key    string
	}

	FileDetails struct{ Filename string }

	EmptyDetails struct{}
)

// Subscriber receives every Diagnostic reported to a Bus it is subscribed to.
// Subscribers are pure sinks: they must not mutate d or retain its Location
// pointer beyond the call.
type Subscriber func(d Diagnostic)

// Bus is a typed observable: producers call Report, subscribers are
// notified synchronously and in subscription order.
type Bus struct {
	subs []Subscriber
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers sub to receive all future Report calls on b.
func (b *Bus) Subscribe(sub Subscriber) {
	b.subs = append(b.subs, sub)
}

// Report notifies every subscriber of d. It never returns an error and never
// interrupts the caller's pass in progress: diagnostics are content errors,
// not structural failures.
func (b *Bus) Report(d Diagnostic) {
	for _, sub := range b.subs {
		sub(d)
	}
}
