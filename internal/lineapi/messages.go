package lineapi

import (
	"encoding/json"
	"fmt"
)

// Message is implemented by every outbound LINE message payload.
type Message interface {
	message()
}

// TextMessage is a plain text message.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

func (TextMessage) message() {}

// FlexMessage is a structured message rendered from a layout tree. Only the
// bubble container is used here.
type FlexMessage struct {
	Type     string     `json:"type"`
	AltText  string     `json:"altText"`
	Contents FlexBubble `json:"contents"`
}

func NewFlexMessage(altText string, contents FlexBubble) FlexMessage {
	return FlexMessage{Type: "flex", AltText: altText, Contents: contents}
}

func (FlexMessage) message() {}

// FlexBubble is the top-level flex container.
type FlexBubble struct {
	Type   string     `json:"type"`
	Size   string     `json:"size,omitempty"`
	Hero   *FlexImage `json:"hero,omitempty"`
	Body   *FlexBox   `json:"body,omitempty"`
	Footer *FlexBox   `json:"footer,omitempty"`
}

// FlexComponent is implemented by every element that can appear inside a
// flex box.
type FlexComponent interface {
	flexComponent()
}

// FlexBox lays out child components vertically or horizontally.
type FlexBox struct {
	Type     string          `json:"type"`
	Layout   string          `json:"layout"`
	Spacing  string          `json:"spacing,omitempty"`
	Contents []FlexComponent `json:"contents"`
}

func (FlexBox) flexComponent() {}

// FlexText renders a text element.
type FlexText struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Weight string `json:"weight,omitempty"`
	Size   string `json:"size,omitempty"`
	Align  string `json:"align,omitempty"`
	Color  string `json:"color,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

func (FlexText) flexComponent() {}

// FlexImage renders an image element (also used as the bubble hero).
type FlexImage struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Size        string `json:"size,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	AspectMode  string `json:"aspectMode,omitempty"`
}

func (FlexImage) flexComponent() {}

// FlexButton renders a tappable button.
type FlexButton struct {
	Type   string     `json:"type"`
	Style  string     `json:"style,omitempty"`
	Color  string     `json:"color,omitempty"`
	Action *URIAction `json:"action,omitempty"`
}

func (FlexButton) flexComponent() {}

// URIAction opens a URI when the attached element is tapped.
type URIAction struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	URI   string `json:"uri"`
}

func NewURIAction(label, uri string) *URIAction {
	return &URIAction{Type: "uri", Label: label, URI: uri}
}

// UnmarshalJSON decodes box contents into their concrete component types so
// that flex payloads survive a decode/encode round trip.
func (b *FlexBox) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     string            `json:"type"`
		Layout   string            `json:"layout"`
		Spacing  string            `json:"spacing"`
		Contents []json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Type = raw.Type
	b.Layout = raw.Layout
	b.Spacing = raw.Spacing
	b.Contents = nil
	for _, rc := range raw.Contents {
		component, err := decodeFlexComponent(rc)
		if err != nil {
			return err
		}
		b.Contents = append(b.Contents, component)
	}
	return nil
}

func decodeFlexComponent(data []byte) (FlexComponent, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case "box":
		var v FlexBox
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "text":
		var v FlexText
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "image":
		var v FlexImage
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "button":
		var v FlexButton
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("lineapi: unknown flex component type %q", probe.Type)
	}
}
