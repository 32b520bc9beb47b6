package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// StatusSource — кто умеет отдать строки для команды /status.
// Контроллер подключается сеттером, чтобы не тащить циклическую зависимость.
type StatusSource interface {
	StatusLines(ctx context.Context) []string
}

// Telegram — пассивный нотифайер + обработка одной команды /status.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64

	mu  sync.Mutex
	src StatusSource
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
	}, nil
}

func (t *Telegram) SetStatusSource(src StatusSource) {
	t.mu.Lock()
	t.src = src
	t.mu.Unlock()
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// /status — сводка по парам и балансам
func (t *Telegram) handleStatus(ctx context.Context) {
	t.mu.Lock()
	src := t.src
	t.mu.Unlock()

	if src == nil {
		t.Send("❗️ Контроллер ещё не запущен")
		return
	}
	lines := src.StatusLines(ctx)
	if len(lines) == 0 {
		t.Send("📭 Пар нет")
		return
	}

	var b strings.Builder
	b.WriteString("📊 Статус бота:\n")
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	t.Send(b.String())
}

// Start: long-polling для команд.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message != nil && upd.Message.Chat != nil &&
					upd.Message.Chat.ID == t.chatID && upd.Message.IsCommand() {

					switch upd.Message.Command() {
					case "status":
						go t.handleStatus(ctx)
					}
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {}

// Stdout — заглушка, просто логирует.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { log.Println(msg) }
func (s *Stdout) Sendf(format string, args ...any) { log.Printf(format, args...) }
