package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	for _, p := range Providers {
		got, err := ParseProvider(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseProvider(" SerpAPI ")
	require.NoError(t, err)
	assert.Equal(t, ProviderSerpAPI, got)

	_, err = ParseProvider("bing")
	assert.Error(t, err)
}

func TestSearchResponse_JSON(t *testing.T) {
	snippet := ""
	resp := SearchResponse{
		Query: "q",
		Meta:  Meta{Provider: "serpapi", Engine: "google"},
		Results: []NormalizedResult{
			{Title: "A", Link: "http://a"},
			{Title: "B", Link: "http://b", Snippet: &snippet},
		},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Equal(t,
		`{"query":"q","provider":"serpapi","engine":"google","results":[{"title":"A","link":"http://a"},{"title":"B","link":"http://b","snippet":""}]}`,
		string(data))
}

func TestMeta_AnswerText(t *testing.T) {
	tests := []struct {
		name   string
		answer json.RawMessage
		want   string
	}{
		{"Absent", nil, ""},
		{"String", json.RawMessage(`"line one\nline two"`), "line one\nline two"},
		{"Object", json.RawMessage(`{"text":"x"}`), `{"text":"x"}`},
		{"Number", json.RawMessage(`42`), "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Meta{Answer: tt.answer}.AnswerText())
		})
	}
}
