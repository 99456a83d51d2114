package hero

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValidDoc(t *testing.T) {
	doc, err := Parse([]byte(`{"type":"doc","content":[{"type":"paragraph","content":[
		{"type":"text","text":"plain "},
		{"type":"text","text":"loud","marks":[{"type":"italic"}]},
		{"type":"hardBreak"},
		{"type":"text","text":"quiet"}
	]}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Content, 1)
	require.Len(t, doc.Content[0].Content, 4)
}

func TestParseRejectsMalformedDocs(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":         `{"type":"doc"`,
		"wrong root type":  `{"type":"quote","content":[]}`,
		"empty doc":        `{"type":"doc","content":[]}`,
		"empty paragraph":  `{"type":"doc","content":[{"type":"paragraph","content":[]}]}`,
		"empty text":       `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":""}]}]}`,
		"unknown node":     `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"image","text":"x"}]}]}`,
		"unknown mark":     `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"bold"}]}]}]}`,
		"unknown field":    `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x"}]}],"extra":1}`,
		"break with text":  `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"hardBreak","text":"x"}]}]}`,
		"trailing content": `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x"}]}]} {}`,
		"wrong paragraph":  `{"type":"doc","content":[{"type":"doc","content":[{"type":"text","text":"x"}]}]}`,
	} {
		_, err := Parse([]byte(payload))
		require.Error(t, err, name)
	}
}

func TestParseOrDefaultFallsBack(t *testing.T) {
	doc := ParseOrDefault("definitely not json")
	require.Equal(t, DefaultDoc(), doc)
	doc = ParseOrDefault(DefaultDoc().JSON())
	require.Equal(t, DefaultDoc(), doc)
}

func TestCanonicalJSONRoundTrip(t *testing.T) {
	doc := DefaultDoc()
	parsed, err := Parse([]byte(doc.JSON()))
	require.NoError(t, err)
	require.Equal(t, doc, parsed)
	require.Equal(t, doc.JSON(), parsed.JSON())
}

func TestTokensFlattening(t *testing.T) {
	doc, err := Parse([]byte(`{"type":"doc","content":[
		{"type":"paragraph","content":[
			{"type":"text","text":"one "},
			{"type":"text","text":"two","marks":[{"type":"italic"}]},
			{"type":"hardBreak"},
			{"type":"text","text":"three"}
		]},
		{"type":"paragraph","content":[{"type":"text","text":"four"}]}
	]}`))
	require.NoError(t, err)

	tokens := doc.Tokens()
	require.Len(t, tokens, 6)
	require.Equal(t, "text", tokens[0].Type)
	require.Equal(t, "one ", tokens[0].Text)
	require.False(t, tokens[0].IsItalic())
	require.True(t, tokens[1].IsItalic())
	require.Equal(t, "break", tokens[2].Type)
	require.Equal(t, "three", tokens[3].Text)
	// paragraph boundary becomes a break token
	require.Equal(t, "break", tokens[4].Type)
	require.Equal(t, "four", tokens[5].Text)
}

func TestSanitizeSubtitle(t *testing.T) {
	require.Equal(t, "a b c", SanitizeSubtitle("  a\r\nb\n\nc  "))
	require.Equal(t, "one two", SanitizeSubtitle("one\t \ttwo"))
	require.Equal(t, DefaultSubtitle, SanitizeSubtitle(""))
	require.Equal(t, DefaultSubtitle, SanitizeSubtitle(" \r\n \t "))

	long := strings.Repeat("x", SubtitleMaxLen+25)
	require.Len(t, SanitizeSubtitle(long), SubtitleMaxLen)
}
