package duration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Literal{}
	var _ Value = Symbol{}
	var _ Value = Expression{}
}

func TestNewLiteralAbsoluteUnits(t *testing.T) {
	for _, unit := range []Unit{UnitS, UnitMs, UnitUs, UnitNs, UnitPs} {
		for _, m := range []float64{0, 1, 5.0, 0.5, 123.456, 1e-9} {
			lit, err := NewLiteral(m, unit)
			require.NoError(t, err, "%v%s", m, unit)
			assert.Equal(t, unit, lit.Unit())
			assert.Equal(t, m, lit.Magnitude())
			assert.True(t, lit.IsResolved())
		}
	}
}

func TestNewLiteralValidation(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		unit      Unit
		wantRule  Rule
	}{
		{"fractional dt", 0.5, UnitDt, RuleNonInteger},
		{"fractional dt large", 100.25, UnitDt, RuleNonInteger},
		{"negative dt", -1, UnitDt, RuleNegative},
		{"negative seconds", -1.5, UnitS, RuleNegative},
		{"negative ps", -0.001, UnitPs, RuleNegative},
		{"nan", math.NaN(), UnitNs, RuleNonFinite},
		{"inf", math.Inf(1), UnitS, RuleNonFinite},
		{"unknown unit", 100, Unit("my_unit"), RuleUnknownUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLiteral(tt.magnitude, tt.unit)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDuration)
			assert.True(t, IsInvalidDuration(err))
			assert.Equal(t, tt.wantRule, RuleOf(err))
		})
	}
}

func TestNewLiteralDefaultsToDt(t *testing.T) {
	lit, err := NewLiteral(400, "")
	require.NoError(t, err)
	assert.Equal(t, UnitDt, lit.Unit())

	var zero Literal
	assert.Equal(t, UnitDt, zero.Unit())
	assert.True(t, zero.Equal(Dt(0)))
}

func TestNewLiteralNegativeZero(t *testing.T) {
	lit, err := NewLiteral(math.Copysign(0, -1), UnitNs)
	require.NoError(t, err)
	assert.False(t, math.Signbit(lit.Magnitude()))
	assert.Equal(t, "0ns", lit.String())
}

func TestMustLiteralPanics(t *testing.T) {
	assert.Panics(t, func() { MustLiteral(-1, UnitS) })
	assert.NotPanics(t, func() { MustLiteral(1, UnitS) })
}

func TestNewScaleRejectsNonFiniteFactor(t *testing.T) {
	a := NewSymbol("a", UnitDt)
	for _, factor := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewScale(factor, a)
		require.Error(t, err, "factor %v", factor)
		assert.Equal(t, RuleNonFinite, RuleOf(err))
		assert.True(t, IsInvalidDuration(err))
		assert.Panics(t, func() { Scale(factor, a) })
	}

	e, err := NewScale(-2, a)
	require.NoError(t, err)
	assert.True(t, e.Equal(Scale(-2, a)))
}

func TestParseUnit(t *testing.T) {
	for _, u := range Units {
		got, err := ParseUnit(string(u))
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}

	got, err := ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, UnitDt, got)

	_, err = ParseUnit("my_unit")
	assert.Equal(t, RuleUnknownUnit, RuleOf(err))
	assert.Contains(t, err.Error(), `unknown unit "my_unit"`)
}

func TestUnitIsAbsolute(t *testing.T) {
	assert.False(t, UnitDt.IsAbsolute())
	for _, u := range []Unit{UnitS, UnitMs, UnitUs, UnitNs, UnitPs} {
		assert.True(t, u.IsAbsolute(), u)
	}
	assert.False(t, Unit("min").IsAbsolute())
}

func TestEqualUnitLiteral(t *testing.T) {
	assert.True(t, MustLiteral(100, UnitNs).Equal(MustLiteral(100, UnitNs)))
	assert.True(t, MustLiteral(5, UnitMs).Equal(MustLiteral(5.0, UnitMs)))
	assert.False(t, MustLiteral(1000, UnitMs).Equal(MustLiteral(1, UnitS)))
	assert.False(t, MustLiteral(100, UnitNs).Equal(MustLiteral(101, UnitNs)))

	for _, unit := range []Unit{UnitS, UnitMs, UnitUs, UnitNs, UnitPs} {
		assert.False(t, Dt(5).Equal(MustLiteral(5, unit)), "dt vs %s", unit)
		assert.False(t, MustLiteral(5, unit).Equal(Dt(5)), "%s vs dt", unit)
	}
}

func TestEqualSymbols(t *testing.T) {
	a := NewSymbol("a", UnitNs)

	assert.True(t, a.Equal(NewSymbol("a", UnitNs)))
	assert.False(t, a.Equal(NewSymbol("b", UnitNs)))

	for _, unit := range []Unit{UnitS, UnitMs, UnitUs, UnitNs, UnitPs} {
		assert.False(t, NewSymbol("a", unit).Equal(NewSymbol("a", UnitDt)))
		assert.False(t, NewSymbol("a", UnitDt).Equal(NewSymbol("a", unit)))
	}

	// A symbol is never equal to a literal, even one it could resolve to.
	assert.False(t, a.Equal(MustLiteral(0, UnitNs)))
	assert.False(t, MustLiteral(0, UnitNs).Equal(a))
}

func TestEqualExpressions(t *testing.T) {
	a := NewSymbol("a", UnitDt)
	lhs := Add(a, Dt(10))

	assert.True(t, lhs.Equal(Add(NewSymbol("a", UnitDt), Dt(10))))
	assert.False(t, lhs.Equal(Add(Dt(10), a)), "operand order is structural")
	assert.False(t, lhs.Equal(Add(a, Dt(11))))
	assert.False(t, lhs.Equal(Add(a)))
	assert.False(t, lhs.Equal(Scale(1, Add(a, Dt(10)))))
	assert.True(t, Scale(2, a).Equal(Scale(2, a)))
	assert.False(t, Scale(2, a).Equal(Scale(3, a)))
	assert.False(t, Add(a).Equal(a), "no simplification")
}

func TestEqualNil(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, Dt(1)))
	assert.False(t, Equal(Dt(1), nil))
}

func TestExpressionUnitIsFirstLeaf(t *testing.T) {
	e := Add(Scale(2, NewSymbol("a", UnitUs)), Dt(3), NewSymbol("b", UnitS))
	assert.Equal(t, UnitUs, e.Unit())

	e = Add(MustLiteral(1, UnitPs), NewSymbol("b", UnitS))
	assert.Equal(t, UnitPs, e.Unit())
}

func TestIsResolvedAndFreeSymbols(t *testing.T) {
	a := NewSymbol("a", UnitDt)
	b := NewSymbol("b", UnitNs)

	assert.False(t, a.IsResolved())
	assert.Equal(t, []string{"a"}, a.FreeSymbols())

	e := Add(b, Scale(2, a), a, Dt(4))
	assert.False(t, e.IsResolved())
	assert.Equal(t, []string{"a", "b"}, e.FreeSymbols())

	resolved := Add(Dt(1), Scale(3, MustLiteral(2, UnitNs)))
	assert.True(t, resolved.IsResolved())
	assert.Empty(t, resolved.FreeSymbols())
}

func TestOperandsIsACopy(t *testing.T) {
	e := Add(Dt(1), Dt(2))
	ops := e.Operands()
	ops[0] = Dt(99)
	assert.True(t, e.Equal(Add(Dt(1), Dt(2))))
}

func TestSymbolNameNormalized(t *testing.T) {
	// "é" as a precomposed rune and as e + combining acute.
	composed := NewSymbol("caf\u00e9", UnitNs)
	decomposed := NewSymbol("cafe\u0301", UnitNs)
	assert.True(t, composed.Equal(decomposed))
	assert.Equal(t, composed.Name(), decomposed.Name())
}

func TestSymbolVector(t *testing.T) {
	durs := SymbolVector("dur", 3, UnitDt)
	require.Len(t, durs, 3)
	assert.Equal(t, "dur[0]", durs[0].Name())
	assert.Equal(t, "dur[2]", durs[2].Name())
	assert.Equal(t, UnitDt, durs[1].Unit())
}

func TestString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Dt(100), "100dt"},
		{MustLiteral(1.5, UnitUs), "1.5us"},
		{NewSymbol("t", UnitDt), "t:dt"},
		{Add(NewSymbol("a", UnitS), MustLiteral(10, UnitNs)), "(a:s + 10ns)"},
		{Scale(2, NewSymbol("a", UnitS)), "2*a:s"},
		{Scale(-1, Add(Dt(1), Dt(2))), "-1*(1dt + 2dt)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.value.String())
	}
}

func TestCompareNames(t *testing.T) {
	names := []string{"t[10]", "b", "t[2]", "a", "t", "t[0]", "dur[1]", "dur[0]"}
	SortNames(names)
	assert.Equal(t, []string{"a", "b", "dur[0]", "dur[1]", "t", "t[0]", "t[2]", "t[10]"}, names)
}
