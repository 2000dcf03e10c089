package duration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleValues() []Value {
	a := NewSymbol("a", UnitDt)
	return []Value{
		Dt(0),
		Dt(100),
		MustLiteral(1.5, UnitUs),
		MustLiteral(4, UnitS),
		MustLiteral(1e-12, UnitPs),
		a,
		NewSymbol("dur[3]", UnitNs),
		Add(a, MustLiteral(10, UnitNs)),
		Scale(-2, Add(a, Dt(1), a)),
	}
}

func TestMarshalValueFormat(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Dt(100), `{"kind":"literal","magnitude":100,"unit":"dt"}`},
		{MustLiteral(1.5, UnitUs), `{"kind":"literal","magnitude":1.5,"unit":"us"}`},
		{NewSymbol("a<b>", UnitS), `{"kind":"symbol","name":"a<b>","unit":"s"}`},
		{
			Scale(2, NewSymbol("a", UnitDt)),
			`{"factor":2,"kind":"expression","op":"scale","operands":[{"kind":"symbol","name":"a","unit":"dt"}]}`,
		},
	}
	for _, tt := range tests {
		got, err := MarshalValue(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	for _, v := range sampleValues() {
		data, err := MarshalValue(v)
		require.NoError(t, err)

		got, err := UnmarshalValue(data)
		require.NoError(t, err, string(data))
		assert.True(t, got.Equal(v), "%s != %s", got, v)

		again, err := MarshalValue(got)
		require.NoError(t, err)
		assert.Equal(t, string(data), string(again))
	}
}

func TestUnmarshalValueRevalidates(t *testing.T) {
	tests := []struct {
		name string
		json string
		rule Rule
	}{
		{"fractional dt", `{"kind":"literal","magnitude":0.5,"unit":"dt"}`, RuleNonInteger},
		{"negative", `{"kind":"literal","magnitude":-3,"unit":"ns"}`, RuleNegative},
		{"unknown unit", `{"kind":"literal","magnitude":3,"unit":"fortnight"}`, RuleUnknownUnit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalValue([]byte(tt.json))
			assert.Equal(t, tt.rule, RuleOf(err))
		})
	}
}

func TestUnmarshalValueMalformed(t *testing.T) {
	inputs := []string{
		`not json`,
		`{"kind":"mystery"}`,
		`{"kind":"literal","unit":"dt"}`,
		`{"kind":"symbol","unit":"dt"}`,
		`{"factor":1,"kind":"expression","op":"add","operands":[]}`,
		`{"factor":1,"kind":"expression","op":"scale","operands":[]}`,
		`{"factor":1,"kind":"expression","op":"mul","operands":[{"kind":"literal","magnitude":1,"unit":"dt"}]}`,
	}
	for _, in := range inputs {
		_, err := UnmarshalValue([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestCBORRoundTrip(t *testing.T) {
	for _, v := range sampleValues() {
		data, err := EncodeCBOR(v)
		require.NoError(t, err)

		got, err := DecodeCBOR(data)
		require.NoError(t, err)
		assert.True(t, got.Equal(v), "%s != %s", got, v)
	}
}

func TestCBORDeterministic(t *testing.T) {
	v := Add(NewSymbol("a", UnitDt), MustLiteral(10, UnitNs))
	first, err := EncodeCBOR(v)
	require.NoError(t, err)
	second, err := EncodeCBOR(Add(NewSymbol("a", UnitDt), MustLiteral(10, UnitNs)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFromWireRevalidates(t *testing.T) {
	_, err := FromWire(WireValue{Kind: WireLiteral, Magnitude: 2.5, Unit: "dt"})
	assert.Equal(t, RuleNonInteger, RuleOf(err))

	_, err = FromWire(WireValue{Kind: WireLiteral, Magnitude: -1, Unit: "s"})
	assert.Equal(t, RuleNegative, RuleOf(err))

	_, err = FromWire(WireValue{Kind: 42})
	assert.Error(t, err)

	_, err = FromWire(WireValue{Kind: WireScale})
	assert.Error(t, err)
}

func TestDecodeRejectsNonFiniteFactor(t *testing.T) {
	one := WireValue{Kind: WireLiteral, Magnitude: 1, Unit: "dt"}
	for _, factor := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromWire(WireValue{Kind: WireScale, Factor: factor, Operands: []WireValue{one}})
		assert.Equal(t, RuleNonFinite, RuleOf(err), "factor %v", factor)
	}

	w, err := ToWire(Scale(2, Dt(1)))
	require.NoError(t, err)
	w.Factor = math.Inf(1)
	bad, err := encMode.Marshal(w)
	require.NoError(t, err)
	_, err = DecodeCBOR(bad)
	assert.Equal(t, RuleNonFinite, RuleOf(err))

	_, err = UnmarshalValue([]byte(`{"kind":"expression","op":"scale","factor":1e400,"operands":[{"kind":"literal","magnitude":1,"unit":"dt"}]}`))
	assert.Error(t, err)
}

func TestDecodeCBORGarbage(t *testing.T) {
	_, err := DecodeCBOR([]byte{0xff, 0x00})
	assert.Error(t, err)
}
