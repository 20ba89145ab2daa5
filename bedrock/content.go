package bedrock

import "encoding/json"

// BlockKind is the discriminant of a ContentBlock.
type BlockKind int

const (
	KindOther BlockKind = iota
	KindText
)

func (k BlockKind) String() string {
	if k == KindText {
		return "text"
	}
	return "other"
}

// ContentBlock is one element of the "content" list of a model response.
// Type keeps the provider tag for logging; Kind is what callers switch on.
type ContentBlock struct {
	Kind BlockKind
	Type string
	Text string
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Type = raw.Type
	b.Kind = KindOther
	b.Text = ""
	if raw.Type == "text" {
		b.Kind = KindText
		b.Text = raw.Text
	}
	return nil
}
