package minify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// ECMA Derivation Tests
// ============================================================================

func TestDefaultECMA(t *testing.T) {
	cases := []struct {
		name string
		caps Capabilities
		want int
	}{
		{"NothingDeclared", Capabilities{}, 5},
		{"ArrowOnly", Capabilities{ArrowFunction: true}, 2015},
		{"ConstOnly", Capabilities{Const: true}, 2015},
		{"ForOfOnly", Capabilities{ForOf: true}, 2015},
		{"ModuleOnly", Capabilities{Module: true}, 2015},
		{"BigIntRaisesTo2020", Capabilities{BigIntLiteral: true}, 2020},
		{"DynamicImportRaisesTo2020", Capabilities{DynamicImport: true}, 2020},
		{"LaterChecksNeverLower", Capabilities{ArrowFunction: true, BigIntLiteral: true}, 2020},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultECMA(tc.caps))
		})
	}
}

// ============================================================================
// Options Fingerprint Tests
// ============================================================================

func TestOptionsFingerprint(t *testing.T) {
	t.Run("DeterministicForEqualOptions", func(t *testing.T) {
		a := Options{ECMA: 2015, Raw: map[string]any{"b": 2, "a": 1}}
		b := Options{ECMA: 2015, Raw: map[string]any{"a": 1, "b": 2}}
		assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	})

	t.Run("SensitiveToRawOptions", func(t *testing.T) {
		a := Options{Raw: map[string]any{"compress": true}}
		b := Options{Raw: map[string]any{"compress": false}}
		assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})

	t.Run("SensitiveToExtractMode", func(t *testing.T) {
		a := Options{Extract: ExtractConfig{Mode: ExtractSome}}
		b := Options{Extract: ExtractConfig{Mode: ExtractAll}}
		assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})
}

// ============================================================================
// Comment Ordering Tests
// ============================================================================

func TestSortedComments(t *testing.T) {
	t.Run("SortsAndDeduplicates", func(t *testing.T) {
		got := SortedComments([]string{"/*! b */", "/*! a */", "/*! b */"})
		assert.Equal(t, []string{"/*! a */", "/*! b */"}, got)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Empty(t, SortedComments(nil))
	})
}

// ============================================================================
// Error Formatting Tests
// ============================================================================

func TestErrorFormat(t *testing.T) {
	t.Run("WithPosition", func(t *testing.T) {
		err := &Error{Message: "Unexpected token", Line: 2, Col: 5}
		assert.Equal(t, "Unexpected token [2:5]", err.Error())
	})

	t.Run("WithoutPosition", func(t *testing.T) {
		err := &Error{Message: "boom"}
		assert.Equal(t, "boom", err.Error())
	})
}
