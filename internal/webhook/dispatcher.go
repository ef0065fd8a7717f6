package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wenlinc/line-todo-bot/internal/lineapi"
	"github.com/wenlinc/line-todo-bot/internal/todo"
	"github.com/wenlinc/line-todo-bot/pkg/logging"
)

// TriggerPhrase is the exact (case-normalized) message that dumps the to-do
// list. Anything else gets the echo reply.
const TriggerPhrase = "today's agenda"

// Fixed user-facing strings.
const (
	welcomeAltText     = "Welcome aboard!"
	welcomeHeadline    = "What's the plan for today?"
	welcomeSubtext     = "Your to-do assistant has arrived. Tap the button below to get started."
	welcomeButtonLabel = "Open my list"

	emptyListReply    = "No tasks today!"
	listNotFoundReply = "I couldn't find your to-do list!"
	listFaultReply    = "Something went wrong while reading your tasks."
)

// Channel is an outbound delivery path.
type Channel string

const (
	// ChannelReply answers through the event's single-use reply token.
	ChannelReply Channel = "reply"
	// ChannelPush addresses the user id directly, usable out of band.
	ChannelPush Channel = "push"
)

// Reply is one decided outbound response: which channel, which target, and
// the message payloads to send.
type Reply struct {
	Channel  Channel
	Target   string
	Messages []lineapi.Message
}

// Sender delivers messages to the platform. *lineapi.Client satisfies it;
// tests substitute a double.
type Sender interface {
	Reply(ctx context.Context, replyToken string, messages ...lineapi.Message) error
	Push(ctx context.Context, to string, messages ...lineapi.Message) error
}

// Dispatcher decides a response for each normalized event and delivers it.
// Decisions are total over the event taxonomy: every kind maps to a reply or
// to no action, and to-do source faults are converted to fixed user-facing
// texts rather than propagated.
type Dispatcher struct {
	todos       todo.Source
	sender      Sender
	logger      *logging.Logger
	welcomePush bool
	todoAppURL  string
	welcomeImg  string
}

type DispatcherConfig struct {
	Todos  todo.Source
	Sender Sender
	Logger *logging.Logger
	// WelcomePush prefers the push channel for the follow-event welcome
	// card even when a reply token is present.
	WelcomePush     bool
	TodoAppURL      string
	WelcomeImageURL string
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Dispatcher{
		todos:       cfg.Todos,
		sender:      cfg.Sender,
		logger:      cfg.Logger,
		welcomePush: cfg.WelcomePush,
		todoAppURL:  cfg.TodoAppURL,
		welcomeImg:  cfg.WelcomeImageURL,
	}
}

// Decide maps an event to its outbound reply. A nil result means no action.
func (d *Dispatcher) Decide(ctx context.Context, evt Event) *Reply {
	switch evt.Kind {
	case KindFollow:
		return d.decideWelcome(evt)
	case KindMessage:
		if strings.ToLower(evt.MessageText) == TriggerPhrase {
			return d.decideTodoList(ctx, evt)
		}
		return d.textReply(evt, fmt.Sprintf("You said: '%s', right?", evt.MessageText))
	default:
		return nil
	}
}

func (d *Dispatcher) decideWelcome(evt Event) *Reply {
	msg := d.welcomeMessage()
	if (d.welcomePush || evt.ReplyToken == "") && evt.UserID != "" {
		return &Reply{Channel: ChannelPush, Target: evt.UserID, Messages: []lineapi.Message{msg}}
	}
	if evt.ReplyToken != "" {
		return &Reply{Channel: ChannelReply, Target: evt.ReplyToken, Messages: []lineapi.Message{msg}}
	}
	d.logger.Warn("follow event without user id or reply token, dropping welcome")
	return nil
}

func (d *Dispatcher) decideTodoList(ctx context.Context, evt Event) *Reply {
	items, err := d.todos.Load(ctx)
	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			return d.textReply(evt, listNotFoundReply)
		}
		d.logger.Error("failed to read to-do list", "error", err)
		return d.textReply(evt, listFaultReply)
	}
	if len(items) == 0 {
		return d.textReply(evt, emptyListReply)
	}
	return d.textReply(evt, strings.Join(items, "\n"))
}

func (d *Dispatcher) textReply(evt Event, text string) *Reply {
	msg := lineapi.NewTextMessage(text)
	if evt.ReplyToken != "" {
		return &Reply{Channel: ChannelReply, Target: evt.ReplyToken, Messages: []lineapi.Message{msg}}
	}
	if evt.UserID == "" {
		d.logger.Warn("event without reply token or user id, dropping reply", "kind", evt.Kind.String())
		return nil
	}
	return &Reply{Channel: ChannelPush, Target: evt.UserID, Messages: []lineapi.Message{msg}}
}

// Deliver sends a decided reply through its channel. One attempt; the caller
// decides what to do with a failure.
func (d *Dispatcher) Deliver(ctx context.Context, reply *Reply) error {
	switch reply.Channel {
	case ChannelPush:
		return d.sender.Push(ctx, reply.Target, reply.Messages...)
	case ChannelReply:
		return d.sender.Reply(ctx, reply.Target, reply.Messages...)
	default:
		return fmt.Errorf("webhook: unknown delivery channel %q", reply.Channel)
	}
}

// welcomeMessage builds the fixed flex welcome card: hero image, bold
// centered headline, grey subtext, one primary button into the to-do app.
func (d *Dispatcher) welcomeMessage() lineapi.FlexMessage {
	return lineapi.NewFlexMessage(welcomeAltText, lineapi.FlexBubble{
		Type: "bubble",
		Size: "mega",
		Hero: &lineapi.FlexImage{
			Type:        "image",
			URL:         d.welcomeImg,
			Size:        "full",
			AspectRatio: "1.1:1",
			AspectMode:  "cover",
		},
		Body: &lineapi.FlexBox{
			Type:   "box",
			Layout: "vertical",
			Contents: []lineapi.FlexComponent{
				lineapi.FlexText{
					Type:   "text",
					Text:   welcomeHeadline,
					Weight: "bold",
					Size:   "xl",
					Align:  "center",
				},
				lineapi.FlexText{
					Type:  "text",
					Text:  welcomeSubtext,
					Size:  "sm",
					Color: "#aaaaaa",
					Wrap:  true,
					Align: "center",
				},
			},
		},
		Footer: &lineapi.FlexBox{
			Type:    "box",
			Layout:  "vertical",
			Spacing: "sm",
			Contents: []lineapi.FlexComponent{
				lineapi.FlexButton{
					Type:   "button",
					Style:  "primary",
					Color:  "#1DB446",
					Action: lineapi.NewURIAction(welcomeButtonLabel, d.todoAppURL),
				},
			},
		},
	})
}
