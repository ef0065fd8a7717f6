package lineapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextMessageWireShape(t *testing.T) {
	data, err := json.Marshal(NewTextMessage("Buy milk\nWalk dog"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"text","text":"Buy milk\nWalk dog"}`, string(data))
}

func TestFlexMessageRoundTrip(t *testing.T) {
	msg := NewFlexMessage("Welcome aboard!", FlexBubble{
		Type: "bubble",
		Size: "mega",
		Hero: &FlexImage{
			Type:        "image",
			URL:         "https://example.test/hero.png",
			Size:        "full",
			AspectRatio: "1.1:1",
			AspectMode:  "cover",
		},
		Body: &FlexBox{
			Type:   "box",
			Layout: "vertical",
			Contents: []FlexComponent{
				FlexText{Type: "text", Text: "What's the plan for today?", Weight: "bold", Size: "xl", Align: "center"},
				FlexText{Type: "text", Text: "Tap below to get started.", Size: "sm", Color: "#aaaaaa", Wrap: true, Align: "center"},
			},
		},
		Footer: &FlexBox{
			Type:    "box",
			Layout:  "vertical",
			Spacing: "sm",
			Contents: []FlexComponent{
				FlexButton{Type: "button", Style: "primary", Color: "#1DB446", Action: NewURIAction("Open my list", "https://example.test")},
			},
		},
	})

	encoded, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded FlexMessage
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Equal(t, msg, decoded)

	reencoded, err := json.Marshal(decoded)
	require.NoError(t, err)
	require.JSONEq(t, string(encoded), string(reencoded))
}

func TestFlexBubbleFieldNames(t *testing.T) {
	bubble := FlexBubble{
		Type: "bubble",
		Size: "mega",
		Hero: &FlexImage{Type: "image", URL: "https://x.test/i.png", Size: "full", AspectRatio: "1.1:1", AspectMode: "cover"},
	}
	data, err := json.Marshal(bubble)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"type": "bubble",
		"size": "mega",
		"hero": {"type":"image","url":"https://x.test/i.png","size":"full","aspectRatio":"1.1:1","aspectMode":"cover"}
	}`, string(data))
}

func TestDecodeFlexComponentUnknownType(t *testing.T) {
	var box FlexBox
	err := json.Unmarshal([]byte(`{"type":"box","layout":"vertical","contents":[{"type":"video"}]}`), &box)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown flex component")
}
