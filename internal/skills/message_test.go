package skills

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/rahul/nexus/internal/intent"
)

type fakeSender struct {
	channelID string
	content   string
	err       error
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channelID = channelID
	f.content = content
	return &discordgo.Message{}, f.err
}

func TestMessage_ResolvesContactCaseInsensitively(t *testing.T) {
	sender := &fakeSender{}
	skill := &Message{Sender: sender, Contacts: map[string]string{"Alice": "123"}}

	step := intent.Step{
		Kind: intent.KindSendMessage,
		Args: map[string]string{"recipient": "alice", "message": "hey"},
	}

	res := skill.Execute(context.Background(), step)
	if !res.Succeeded() {
		t.Fatalf("expected success: %s", res.Detail)
	}
	if sender.channelID != "123" || sender.content != "hey" {
		t.Errorf("sent to %q with %q", sender.channelID, sender.content)
	}
}

func TestMessage_UnknownRecipientFails(t *testing.T) {
	sender := &fakeSender{}
	skill := &Message{Sender: sender, Contacts: map[string]string{"Alice": "123"}}

	step := intent.Step{
		Kind: intent.KindSendMessage,
		Args: map[string]string{"recipient": "Bob", "message": "hey"},
	}

	res := skill.Execute(context.Background(), step)
	if res.Succeeded() {
		t.Fatal("unknown recipient must fail, not guess")
	}
	if sender.channelID != "" {
		t.Error("nothing should have been sent")
	}
}
