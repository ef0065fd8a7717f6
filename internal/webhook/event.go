package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind classifies an inbound platform event. Anything the bot does not act
// on (stickers, images, unfollow, postback...) is KindOther.
type Kind int

const (
	KindOther Kind = iota
	KindFollow
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindFollow:
		return "follow"
	case KindMessage:
		return "message"
	default:
		return "other"
	}
}

// Event is one normalized inbound event. Immutable once built; discarded
// after dispatch.
type Event struct {
	Kind        Kind
	UserID      string
	ReplyToken  string
	MessageText string
}

type rawEnvelope struct {
	Events json.RawMessage `json:"events"`
}

type rawEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
}

// ParseEvents decodes a raw webhook body into its ordered event batch. An
// events field that is missing, null, or not an array is an empty batch, not
// an error; only a body that fails to parse as JSON is.
func ParseEvents(body []byte) ([]Event, error) {
	var envelope rawEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("webhook: decode body: %w", err)
	}
	rawEvents := bytes.TrimSpace(envelope.Events)
	if len(rawEvents) == 0 || rawEvents[0] != '[' {
		return []Event{}, nil
	}
	var raws []rawEvent
	if err := json.Unmarshal(rawEvents, &raws); err != nil {
		return nil, fmt.Errorf("webhook: decode events: %w", err)
	}
	events := make([]Event, 0, len(raws))
	for _, re := range raws {
		events = append(events, normalize(re))
	}
	return events, nil
}

func normalize(re rawEvent) Event {
	evt := Event{
		Kind:       KindOther,
		UserID:     re.Source.UserID,
		ReplyToken: re.ReplyToken,
	}
	switch re.Type {
	case "follow":
		evt.Kind = KindFollow
	case "message":
		// Only text messages are actionable; other message sub-types
		// (sticker, image, location...) stay KindOther.
		if re.Message.Type == "text" {
			evt.Kind = KindMessage
			evt.MessageText = re.Message.Text
		}
	}
	return evt
}
