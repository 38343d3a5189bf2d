package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const commandTimeout = 2 * time.Minute

// Sender delivers a reply. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot long-polls Telegram and answers commands through a Handler.
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	handler *Handler
	allowed map[int64]bool
	log     zerolog.Logger
}

// New connects to Telegram with token. allowedChats limits who gets answers;
// empty allows every chat.
func New(token string, handler *Handler, allowedChats []int64, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	b := NewWithSender(api, handler, allowedChats, log)
	b.api = api
	log.Info().Str("username", api.Self.UserName).Msg("telegram bot authorised")
	return b, nil
}

// NewWithSender builds a Bot that replies through sender without polling.
func NewWithSender(sender Sender, handler *Handler, allowedChats []int64, log zerolog.Logger) *Bot {
	allowed := make(map[int64]bool, len(allowedChats))
	for _, id := range allowedChats {
		allowed[id] = true
	}
	return &Bot{sender: sender, handler: handler, allowed: allowed, log: log}
}

// Run polls for updates until ctx is cancelled. Commands are handled one at
// a time.
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return fmt.Errorf("bot has no telegram connection")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate answers a single update if it is a command from an allowed chat.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	if len(b.allowed) > 0 && !b.allowed[chatID] {
		b.log.Warn().Int64("chat_id", chatID).Str("command", msg.Command()).Msg("ignoring command from unauthorised chat")
		return
	}

	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	text := b.handler.Reply(cmdCtx, msg.Command(), msg.CommandArguments())
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("sending reply failed")
	}
}
