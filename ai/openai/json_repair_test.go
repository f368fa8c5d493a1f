package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  \n", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.input))
		})
	}
}

func TestRepairJSONMissingOpeningQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"missing quote after comma",
			`{"request": "csv", priority": "high"}`,
			`{"request": "csv", "priority": "high"}`,
		},
		{
			"missing quote after brace",
			`{summary": "short call"}`,
			`{"summary": "short call"}`,
		},
		{
			"valid json untouched",
			`{"summary": "short call", "priority": "high"}`,
			`{"summary": "short call", "priority": "high"}`,
		},
		{
			"unquoted value untouched",
			`{"count": 3, "flag": true}`,
			`{"count": 3, "flag": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.input))
		})
	}
}
