// Package hero models the editable start-quote document of the home
// page: a tiny rich-text tree of paragraphs holding text runs (plain
// or italic) and hard breaks. The admin form submits it as JSON; the
// renderer flattens it to a list of tokens.
package hero

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	// SubtitleMaxLen clamps the hero subtitle after normalization.
	SubtitleMaxLen = 140
	// DefaultSubtitle is used whenever the stored subtitle sanitizes
	// down to nothing.
	DefaultSubtitle = "For anyone trying to feel like themselves online."

	docType       = "doc"
	paragraphType = "paragraph"
	textType      = "text"
	hardBreakType = "hardBreak"
	italicMark    = "italic"
)

type (
	Mark struct {
		Type string `json:"type"`
	}

	// Inline is either a text run (Text non-empty, optional italic
	// mark) or a hard break.
	Inline struct {
		Type  string `json:"type"`
		Text  string `json:"text,omitempty"`
		Marks []Mark `json:"marks,omitempty"`
	}

	Paragraph struct {
		Type    string   `json:"type"`
		Content []Inline `json:"content"`
	}

	Doc struct {
		Type    string      `json:"type"`
		Content []Paragraph `json:"content"`
	}

	// RenderToken is the flattened form the templates and the hero
	// JSON endpoint consume. Text tokens always carry Italic; break
	// tokens carry only the type.
	RenderToken struct {
		Type   string `json:"type"`
		Text   string `json:"text,omitempty"`
		Italic *bool  `json:"italic,omitempty"`
	}
)

// IsItalic reports whether a text token carries the italic mark.
func (t RenderToken) IsItalic() bool {
	return t.Italic != nil && *t.Italic
}

// DefaultDoc returns the quote the site ships with.
func DefaultDoc() Doc {
	italic := []Mark{{Type: italicMark}}
	return Doc{
		Type: docType,
		Content: []Paragraph{{
			Type: paragraphType,
			Content: []Inline{
				{Type: textType, Text: "I make websites like I make "},
				{Type: textType, Text: "music", Marks: italic},
				{Type: textType, Text: ","},
				{Type: hardBreakType},
				{Type: textType, Text: "singing", Marks: italic},
				{Type: textType, Text: " and just a little bit unpredictable."},
			},
		}},
	}
}

// Parse decodes and validates a start-quote document. Unknown fields,
// unknown node types, empty paragraphs and empty text runs are all
// rejected.
func Parse(data []byte) (Doc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Doc
	if err := dec.Decode(&doc); err != nil {
		return Doc{}, fmt.Errorf("unable to decode start quote document, cause %w", err)
	}
	if dec.More() {
		return Doc{}, fmt.Errorf("unable to decode start quote document, trailing content")
	}
	if err := doc.validate(); err != nil {
		return Doc{}, err
	}
	return doc, nil
}

// ParseOrDefault never fails: anything that does not validate yields
// the default document, so a damaged stored row cannot take the home
// page down.
func ParseOrDefault(docJSON string) Doc {
	doc, err := Parse([]byte(docJSON))
	if err != nil {
		return DefaultDoc()
	}
	return doc
}

func (d Doc) validate() error {
	if d.Type != docType {
		return fmt.Errorf("start quote document must have type %q, got %q", docType, d.Type)
	}
	if len(d.Content) == 0 {
		return fmt.Errorf("start quote document must contain at least one paragraph")
	}
	for _, p := range d.Content {
		if p.Type != paragraphType {
			return fmt.Errorf("start quote paragraph must have type %q, got %q", paragraphType, p.Type)
		}
		if len(p.Content) == 0 {
			return fmt.Errorf("start quote paragraph must not be empty")
		}
		for _, n := range p.Content {
			switch n.Type {
			case textType:
				if n.Text == "" {
					return fmt.Errorf("start quote text node must not be empty")
				}
				for _, m := range n.Marks {
					if m.Type != italicMark {
						return fmt.Errorf("start quote mark %q is not supported", m.Type)
					}
				}
			case hardBreakType:
				if n.Text != "" || len(n.Marks) > 0 {
					return fmt.Errorf("start quote hard break must not carry text or marks")
				}
			default:
				return fmt.Errorf("start quote node %q is not supported", n.Type)
			}
		}
	}
	return nil
}

// JSON is the canonical stored encoding of the document.
func (d Doc) JSON() string {
	buf, _ := json.Marshal(d)
	return string(buf)
}

// Tokens flattens the document for rendering. Paragraph boundaries
// become break tokens.
func (d Doc) Tokens() []RenderToken {
	var tokens []RenderToken
	for i, p := range d.Content {
		for _, n := range p.Content {
			if n.Type == hardBreakType {
				tokens = append(tokens, RenderToken{Type: "break"})
				continue
			}
			italic := false
			for _, m := range n.Marks {
				if m.Type == italicMark {
					italic = true
				}
			}
			tokens = append(tokens, RenderToken{Type: "text", Text: n.Text, Italic: &italic})
		}
		if i < len(d.Content)-1 {
			tokens = append(tokens, RenderToken{Type: "break"})
		}
	}
	return tokens
}

var (
	newlineRE    = regexp.MustCompile(`[\r\n]+`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// SanitizeSubtitle normalizes whitespace, clamps to SubtitleMaxLen
// runes and falls back to the default when nothing is left.
func SanitizeSubtitle(input string) string {
	normalized := newlineRE.ReplaceAllString(input, " ")
	normalized = whitespaceRE.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)
	runes := []rune(normalized)
	if len(runes) > SubtitleMaxLen {
		normalized = string(runes[:SubtitleMaxLen])
	}
	if normalized == "" {
		return DefaultSubtitle
	}
	return normalized
}
