// Package citation turns citation entries from the content packs into
// displayable {reference, text} pairs. Entries are either literal text or a
// structured verse lookup answered by an external verse service.
package citation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Citation is a referenced piece of text ready for display.
type Citation struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// Kind tags the shape of a Source.
type Kind int

const (
	KindLiteral Kind = iota
	KindRequest
)

// Request is a structured verse lookup. All fields travel as strings.
type Request struct {
	Book        string `json:"book"`
	Chapter     string `json:"chapter"`
	Verse       string `json:"verse"`
	Translation string `json:"translation"`
}

// Label renders the conventional "Book Chapter:Verse" reference.
func (r Request) Label() string {
	return fmt.Sprintf("%s %s:%s", r.Book, r.Chapter, r.Verse)
}

// complete reports whether the lookup names a book, chapter and verse.
func (r Request) complete() bool {
	return r.Book != "" && r.Chapter != "" && r.Verse != ""
}

// Source is a citation entry as authored in the content data: either a
// literal {reference, text} pair or a lookup request.
type Source struct {
	Kind      Kind
	Reference string
	Text      string
	Request   Request
}

// Literal builds a literal source. reference may be empty.
func Literal(reference, text string) Source {
	return Source{Kind: KindLiteral, Reference: reference, Text: text}
}

// Lookup builds a structured source. reference may be empty.
func Lookup(reference string, req Request) Source {
	return Source{Kind: KindRequest, Reference: reference, Request: req}
}

// MarshalJSON renders the source the way the content packs spell it.
func (s Source) MarshalJSON() ([]byte, error) {
	if s.Kind == KindRequest {
		return json.Marshal(struct {
			Reference string `json:"reference,omitempty"`
			Request
		}{s.Reference, s.Request})
	}
	return json.Marshal(Citation{Reference: s.Reference, Text: s.Text})
}

// UnmarshalJSON reads either spelling back. An object naming a book,
// chapter or verse is a request; anything else is a literal.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw struct {
		Reference string `json:"reference"`
		Text      string `json:"text"`
		Request
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Book != "" || raw.Chapter != "" || raw.Verse != "" {
		*s = Lookup(raw.Reference, raw.Request)
		return nil
	}
	*s = Literal(raw.Reference, raw.Text)
	return nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize collapses every whitespace run to a single space and trims.
func Sanitize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
