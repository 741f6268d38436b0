package gateway

import (
	"context"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rahul/nexus/internal/confirm"
	"github.com/rahul/nexus/internal/intent"
	"github.com/rahul/nexus/internal/pipeline"
)

type chatKey struct{}

// TelegramGateway runs the pipeline for every incoming message. Confirmation
// happens in-band: the prompt is sent to the chat and the next message from
// that chat resolves it as yes or no.
type TelegramGateway struct {
	Bot  *tgbotapi.BotAPI
	Pipe *pipeline.Pipeline

	mu      sync.Mutex
	pending map[int64]chan bool
}

func NewTelegramGateway(token string, pipe *pipeline.Pipeline) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	tg := &TelegramGateway{
		Bot:     bot,
		Pipe:    pipe,
		pending: make(map[int64]chan bool),
	}
	pipe.Confirmer = tg
	return tg, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		text := update.Message.Text
		log.Printf("[%s] %s", update.Message.From.UserName, text)

		if tg.resolvePending(chatID, text) {
			continue
		}

		go tg.handle(chatID, text)
	}
	return nil
}

func (tg *TelegramGateway) handle(chatID int64, text string) {
	ctx := context.WithValue(context.Background(), chatKey{}, chatID)

	turn, err := tg.Pipe.Run(ctx, text)
	if err != nil {
		log.Printf("audit warning: %v", err)
	}

	for _, res := range turn.Results {
		mark := "✅"
		if !res.Succeeded() {
			mark = "❌"
		}
		tg.send(chatID, fmt.Sprintf("%s %s — %s", mark, res.Step.Kind, res.Detail))
	}
	tg.send(chatID, turn.Reply)
}

// resolvePending feeds a reply into a waiting confirmation, if one exists
// for the chat. Returns true when the message was consumed.
func (tg *TelegramGateway) resolvePending(chatID int64, text string) bool {
	tg.mu.Lock()
	ch, ok := tg.pending[chatID]
	if ok {
		delete(tg.pending, chatID)
	}
	tg.mu.Unlock()

	if !ok {
		return false
	}
	ch <- confirm.Positive(text)
	return true
}

// Confirm implements confirm.Confirmer. The chat to ask is carried on the
// context by the update loop; a missing chat declines.
func (tg *TelegramGateway) Confirm(ctx context.Context, plan intent.Plan, verdict intent.Verdict) (bool, error) {
	chatID, ok := ctx.Value(chatKey{}).(int64)
	if !ok {
		return false, fmt.Errorf("no chat attached to this turn")
	}

	ticket := confirm.NewTicket(plan, verdict)

	ch := make(chan bool, 1)
	tg.mu.Lock()
	if prev, exists := tg.pending[chatID]; exists {
		// A newer plan supersedes the old question.
		prev <- false
	}
	tg.pending[chatID] = ch
	tg.mu.Unlock()

	tg.send(chatID, confirm.Prompt(ticket.Plan, ticket.Verdict))

	select {
	case answer := <-ch:
		ticket.Resolve(answer)
	case <-ctx.Done():
		tg.mu.Lock()
		delete(tg.pending, chatID)
		tg.mu.Unlock()
		ticket.Resolve(false)
		return false, ctx.Err()
	}
	return ticket.State() == confirm.StateConfirmed, nil
}

func (tg *TelegramGateway) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := tg.Bot.Send(msg); err != nil {
		log.Printf("telegram send failed: %v", err)
	}
}

func (tg *TelegramGateway) Send(sessionID string, text string) error {
	id := int64(0)
	fmt.Sscanf(sessionID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", sessionID)
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = "Markdown"
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
