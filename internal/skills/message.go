package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rahul/nexus/internal/intent"
)

// MessageSender delivers one text message to a channel.
type MessageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Message answers SEND_MESSAGE over Discord. Recipients are resolved
// from the configured contact map; no guessing beyond a case-fold.
type Message struct {
	Sender   MessageSender
	Contacts map[string]string
}

func NewMessage(token string, contacts map[string]string) (*Message, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return &Message{Sender: session, Contacts: contacts}, nil
}

func (m *Message) Kind() intent.Kind { return intent.KindSendMessage }

func (m *Message) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	recipient := step.Arg("recipient")
	text := step.Arg("message")

	channelID, found := m.resolve(recipient)
	if !found {
		return fail(step, fmt.Sprintf("I don't have a contact named %q.", recipient))
	}

	if _, err := m.Sender.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fail(step, fmt.Sprintf("could not message %s: %v", recipient, err))
	}
	return ok(step, fmt.Sprintf("Sent your message to %s.", recipient))
}

func (m *Message) resolve(recipient string) (string, bool) {
	if id, found := m.Contacts[recipient]; found {
		return id, true
	}
	low := strings.ToLower(recipient)
	for name, id := range m.Contacts {
		if strings.ToLower(name) == low {
			return id, true
		}
	}
	return "", false
}
