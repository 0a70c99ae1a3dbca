package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Persona is the structured profile returned by the LLM. Every field is optional
// because the model does not always honor the schema.
type Persona struct {
	Name               Text     `json:"name,omitempty"`
	Age                Text     `json:"age,omitempty"`
	Location           Text     `json:"location,omitempty"`
	Occupation         Text     `json:"occupation,omitempty"`
	Interests          TextList `json:"interests,omitempty"`
	Personality        TextList `json:"personality,omitempty"`
	PoliticalView      Text     `json:"political_view,omitempty"`
	Lifestyle          Text     `json:"lifestyle,omitempty"`
	CommunicationStyle Text     `json:"communication_style,omitempty"`
	Values             TextList `json:"values,omitempty"`
	Archetype          Text     `json:"archetype,omitempty"`
	Narrative          Text     `json:"narrative,omitempty"`

	// Raw is only set when raw fallback is enabled and the reply was not JSON.
	Raw string `json:"raw,omitempty"`
}

// IsRaw reports whether the persona carries unparsed model output instead of fields.
func (p *Persona) IsRaw() bool {
	return p != nil && p.Raw != ""
}

// Text accepts a JSON string, number or bool and keeps it as text.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(strings.TrimSpace(s))
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		var parts TextList
		if err := parts.UnmarshalJSON(data); err != nil {
			return err
		}
		*t = Text(strings.Join(parts, ", "))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Text(strconv.FormatBool(b))
		return nil
	}

	// objects are kept verbatim so nothing the model said is lost
	*t = Text(string(data))
	return nil
}

func (t Text) String() string { return string(t) }

// TextList accepts a JSON array of scalars, or a single scalar which becomes a
// one-element list. Comma separated strings are not split.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var single Text
		if err := single.UnmarshalJSON(data); err != nil {
			return err
		}
		if single == "" {
			*l = nil
			return nil
		}
		*l = TextList{single.String()}
		return nil
	}

	out := make(TextList, 0, len(items))
	for _, item := range items {
		var t Text
		if err := t.UnmarshalJSON(item); err != nil {
			return err
		}
		if t != "" {
			out = append(out, t.String())
		}
	}
	*l = out
	return nil
}
