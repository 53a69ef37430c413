package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	p := Policy{MinLength: 8, RequireUpper: true, RequireDigit: true}

	ok, reasons := p.Validate("Str0ngpass")
	require.True(t, ok)
	require.Empty(t, reasons)

	ok, reasons = p.Validate("weak")
	require.False(t, ok)
	require.Equal(t, []string{"too_short", "missing_upper", "missing_digit"}, reasons)

	ok, reasons = p.Validate("lowercase1only")
	require.False(t, ok)
	require.Equal(t, []string{"missing_upper"}, reasons)
}

func TestPolicyCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	p := Policy{MinLength: 8}
	ok, _ := p.Validate("pässwörd") // 8 runes, 10 bytes
	require.True(t, ok)
}

func TestPolicySymbols(t *testing.T) {
	t.Parallel()

	p := Policy{RequireSymbol: true}
	ok, _ := p.Validate("nosymbols1")
	require.False(t, ok)
	ok, _ = p.Validate("with!symbol")
	require.True(t, ok)
}

func TestZeroPolicyAcceptsAnything(t *testing.T) {
	t.Parallel()

	ok, reasons := Policy{}.Validate("")
	require.True(t, ok)
	require.Empty(t, reasons)
}
