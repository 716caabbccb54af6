// Package notify tells someone a batch run has finished.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"img2text/internal/batch"
)

// MaxMessageLen is Telegram's limit for one text message.
const MaxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a run summary to one chat.
type Telegram struct {
	ChatID int64
	bot    sender
}

// NewTelegram authenticates the bot token against the Bot API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	return &Telegram{ChatID: chatID, bot: bot}, nil
}

// Notify sends the summary of s.
func (t *Telegram) Notify(_ context.Context, s batch.Summary) error {
	msg := tgbotapi.NewMessage(t.ChatID, Truncate(Message(s), MaxMessageLen))
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Message renders a short plain-text summary of a run.
func Message(s batch.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "img2text run %s finished in %s\n", s.RunID, s.Duration.Round(time.Second))
	fmt.Fprintf(&sb, "images: %d, extracted: %d, not found: %d, failed: %d\n",
		s.Total(), s.Succeeded, s.NotFound, s.Failed)
	if s.SaveErr != nil {
		fmt.Fprintf(&sb, "document NOT saved (%s): %v\n", s.OutputPath, s.SaveErr)
	} else {
		fmt.Fprintf(&sb, "document: %s\n", s.OutputPath)
	}
	for _, r := range s.Results {
		if r.Outcome.OK() {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s\n", r.Filename, r.Text())
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Truncate cuts s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
