package diag

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	var got []Diagnostic

	bus.Subscribe(func(d Diagnostic) { got = append(got, d) })
	bus.Subscribe(func(d Diagnostic) { got = append(got, d) })

	bus.Report(Diagnostic{Kind: WrongPrefix, Details: KeyDetails{Key: "foo.t0"}})

	require.Len(t, got, 2)
	require.Equal(t, WrongPrefix, got[0].Kind)
}

func TestPolicyResolveFallback(t *testing.T) {
	t.Parallel()

	p := NewPolicy(map[Kind]Handling{DuplicateKey: Error}, "")

	require.Equal(t, Error, p.Resolve(DuplicateKey))
	require.Equal(t, Warn, p.Resolve(MissingTranslation), "unset kinds fall back to the default handling")
}

func TestPolicySubscriberSetsExitFlag(t *testing.T) {
	t.Parallel()

	p := NewPolicy(map[Kind]Handling{DuplicateKey: Error, MissingTranslation: Ignore}, Warn)
	flag := &ExitFlag{}

	sub := p.Subscriber(zerolog.Nop(), flag)

	sub(Diagnostic{Kind: MissingTranslation, Details: LocaleKeyDetails{Locale: "de", Key: "a"}})
	require.False(t, flag.Dirty())

	sub(Diagnostic{Kind: DuplicateKey, Details: KeyDetails{Key: "a"}})
	require.True(t, flag.Dirty())
}
