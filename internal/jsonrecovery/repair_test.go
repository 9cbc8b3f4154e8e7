package jsonrecovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{name: "plain object", raw: `{"a": 1}`, expected: `{"a": 1}`},
		{name: "prose around", raw: `Sure! {"a": 1} Hope it helps.`, expected: `{"a": 1}`},
		{name: "fenced", raw: "```json\n{\"a\": 1}\n```", expected: `{"a": 1}`},
		{name: "unterminated fence", raw: "```json\n{\"a\": 1}", expected: `{"a": 1}`},
		{name: "control characters", raw: "{\"a\":\t\"b\nc\"\x00}", expected: `{"a": "b c"}`},
		{name: "no object", raw: "nothing to see", wantErr: true},
		{name: "reversed braces", raw: "} {", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSONObject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRepairBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "all fixes",
			input:    `{'a': 'it\'s', b: True, "c": [1, 2,], "d": 1.234,56}`,
			expected: `{"a": "it's", "b": true, "c": [1, 2], "d": 1234.56}`,
		},
		{
			name:     "strings are left alone",
			input:    `{"note": "True, None, 'x',}"}`,
			expected: `{"note": "True, None, 'x',}"}`,
		},
		{
			name:     "double quote inside single-quoted string",
			input:    `{'say': 'the "best" cafe'}`,
			expected: `{"say": "the \"best\" cafe"}`,
		},
		{
			name:     "decimal comma before closing brace",
			input:    `{"amount": 50,00}`,
			expected: `{"amount": 50.00}`,
		},
		{
			name:     "plain integers untouched",
			input:    `{"qty": 10, "n": null, "ok": False}`,
			expected: `{"qty": 10, "n": null, "ok": false}`,
		},
		{
			name:     "unterminated string is closed",
			input:    `{"a": "b`,
			expected: `{"a": "b"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RepairBasic(tt.input))
		})
	}
}

func TestSplitObjects(t *testing.T) {
	region := `{"a": "}{"}, {'b': 'x\'}'}, {"c": {"d": 1}}, {"e": `

	objects := splitObjects(region)
	require.Len(t, objects, 4)
	assert.Equal(t, `{"a": "}{"}`, objects[0])
	assert.Equal(t, `{'b': 'x\'}'}`, objects[1])
	assert.Equal(t, `{"c": {"d": 1}}`, objects[2])
	assert.Equal(t, `{"e": `, objects[3])
}

func TestSplitObjects_IgnoresStrayClosers(t *testing.T) {
	objects := splitObjects(`}, {"a": 1} ]`)
	assert.Equal(t, []string{`{"a": 1}`}, objects)
	assert.Empty(t, splitObjects(""))
}

func TestParseDirect_RequiresExpensesArray(t *testing.T) {
	_, err := ParseDirect(`{"success": true}`)
	assert.ErrorIs(t, err, ErrNoExpensesArray)

	_, err = ParseDirect(`{"expenses": "none"}`)
	assert.ErrorIs(t, err, ErrNoExpensesArray)

	doc, err := ParseDirect(`{"success": "true", "expenses": [{"description": "x", "amount": 1}, 7]}`)
	require.NoError(t, err)
	assert.True(t, doc.Success)
	assert.True(t, doc.HasSuccess)
	assert.Len(t, doc.Elements, 1)
	assert.Equal(t, 1, doc.Dropped)
}

func TestElementCheck(t *testing.T) {
	tests := []struct {
		name        string
		el          Element
		requireDate bool
		ok          bool
	}{
		{name: "complete", el: Element{"description": "UTE", "amount": "3.450,00", "date": "2024-03-13"}, requireDate: true, ok: true},
		{name: "date optional", el: Element{"Concepto": "UTE", "Importe": 10.5}, ok: true},
		{name: "date required", el: Element{"description": "UTE", "amount": 10.5}, requireDate: true},
		{name: "blank description", el: Element{"description": "  ", "amount": 1}},
		{name: "missing amount", el: Element{"description": "UTE"}},
		{name: "unparseable amount", el: Element{"description": "UTE", "amount": "diez"}},
		{name: "null amount", el: Element{"description": "UTE", "amount": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.el.check(tt.requireDate)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
