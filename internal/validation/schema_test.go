package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestLoadSchemaCachesCompiledSchema(t *testing.T) {
	first, err := LoadSchema(SchemaConclusion)
	require.NoError(t, err)
	second, err := LoadSchema(SchemaConclusion)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadSchemaUnknown(t *testing.T) {
	_, err := LoadSchema("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestDecodePayloadConclusion(t *testing.T) {
	var out struct {
		Rating   string   `json:"rating"`
		Severity string   `json:"severity"`
		Actions  []string `json:"actions"`
	}

	raw := "```json\n" + `{
		"rating": "B+",
		"severity": "medium",
		"findings": ["Depreciation is moderate"],
		"strengths": [],
		"risks": ["Two subscriptions are unused"],
		"actions": ["Cancel unused subscriptions"]
	}` + "\n```"

	require.NoError(t, DecodePayload(raw, SchemaConclusion, &out))
	assert.Equal(t, "B+", out.Rating)
	assert.Equal(t, "medium", out.Severity)
	assert.Equal(t, []string{"Cancel unused subscriptions"}, out.Actions)
}

func TestDecodePayloadRejectsInvalid(t *testing.T) {
	var out map[string]interface{}

	tests := []struct {
		name   string
		schema string
		raw    string
	}{
		{"empty", SchemaNarrative, "   "},
		{"not json", SchemaNarrative, "Sure! Here is your summary."},
		{"missing field", SchemaNarrative, `{"outlook":"steady"}`},
		{"bad enum", SchemaConclusion, `{"rating":"Z","severity":"low","findings":["x"],"strengths":[],"risks":[],"actions":["y"]}`},
		{"score out of range", SchemaAnalysis, `{"overall_score":140,"summary":"s","strengths":[],"risks":[],"suggestions":["x"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, DecodePayload(tt.raw, tt.schema, &out))
		})
	}
}

func TestSchemaTextQuotesRequiredFields(t *testing.T) {
	text, err := SchemaText(SchemaAnalysis)
	require.NoError(t, err)
	assert.Contains(t, text, "overall_score")
}
