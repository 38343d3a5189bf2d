package bot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/paymo-paybot/internal/bot"
	"github.com/Tiliavir/paymo-paybot/internal/model"
	"github.com/Tiliavir/paymo-paybot/internal/timecalc"
)

type stubReports struct {
	previous bool
	year     int
	loc      *time.Location
	err      error
}

func (s *stubReports) ReportPeriod(_ context.Context, previous bool, loc *time.Location) (string, error) {
	s.previous, s.loc = previous, loc
	if s.err != nil {
		return "", s.err
	}
	return "period report", nil
}

func (s *stubReports) ReportYearlyAverage(_ context.Context, year int, loc *time.Location) (string, error) {
	s.year, s.loc = year, loc
	if s.err != nil {
		return "", s.err
	}
	return "average report", nil
}

func TestReplyDispatches(t *testing.T) {
	reports := &stubReports{}
	h := bot.NewHandler(reports, timecalc.CST, zerolog.Nop())

	assert.Contains(t, h.Reply(context.Background(), "start", ""), "What is your bidding")
	assert.Contains(t, h.Reply(context.Background(), "help", ""), "/average")

	assert.Equal(t, "period report", h.Reply(context.Background(), "paymo", "previous est"))
	assert.True(t, reports.previous)
	assert.Equal(t, timecalc.EST, reports.loc)

	assert.Equal(t, "average report", h.Reply(context.Background(), "average", "2023"))
	assert.Equal(t, 2023, reports.year)
	assert.Equal(t, timecalc.CST, reports.loc)
}

func TestReplyUsage(t *testing.T) {
	h := bot.NewHandler(&stubReports{}, timecalc.CST, zerolog.Nop())
	out := h.Reply(context.Background(), "paymo", "maybe")
	assert.Contains(t, out, `unknown argument "maybe"`)
	assert.Contains(t, out, "Commands:")
}

func TestReplyFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", &model.ConfigurationError{Field: "TAX_RATE", Err: errors.New("missing")}, "Pay settings are missing or invalid"},
		{"data", &model.DataError{EntryID: 3, Reason: "negative duration"}, "entry 3: negative duration"},
		{"fetch", &model.FetchError{Op: "GET /api/entries", StatusCode: 500, Err: errors.New("boom")}, "Couldn't get time entries from Paymo"},
		{"other", errors.New("boom"), "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := bot.NewHandler(&stubReports{err: tt.err}, timecalc.CST, zerolog.Nop())
			out := h.Reply(context.Background(), "paymo", "")
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "$")
		})
	}
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func commandUpdate(chatID int64, text string, cmdLen int) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text:     text,
			Chat:     &tgbotapi.Chat{ID: chatID},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
		},
	}
}

func TestHandleUpdate(t *testing.T) {
	reports := &stubReports{}
	sender := &fakeSender{}
	b := bot.NewWithSender(sender, bot.NewHandler(reports, timecalc.CST, zerolog.Nop()), nil, zerolog.Nop())

	b.HandleUpdate(context.Background(), commandUpdate(10, "/paymo previous", len("/paymo")))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(10), sender.sent[0].ChatID)
	assert.Equal(t, "period report", sender.sent[0].Text)
	assert.True(t, reports.previous)
}

func TestHandleUpdateIgnoresPlainText(t *testing.T) {
	sender := &fakeSender{}
	b := bot.NewWithSender(sender, bot.NewHandler(&stubReports{}, timecalc.CST, zerolog.Nop()), nil, zerolog.Nop())

	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 10}}})
	b.HandleUpdate(context.Background(), tgbotapi.Update{})
	assert.Empty(t, sender.sent)
}

func TestHandleUpdateAllowedChats(t *testing.T) {
	sender := &fakeSender{}
	b := bot.NewWithSender(sender, bot.NewHandler(&stubReports{}, timecalc.CST, zerolog.Nop()), []int64{10}, zerolog.Nop())

	b.HandleUpdate(context.Background(), commandUpdate(99, "/paymo", len("/paymo")))
	assert.Empty(t, sender.sent)

	b.HandleUpdate(context.Background(), commandUpdate(10, "/paymo", len("/paymo")))
	assert.Len(t, sender.sent, 1)
}
