// Package telegram implements transport.Transport on the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/transport"
)

const pollTimeout = 60

// Commands is the command menu registered on startup.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "🚀 开始使用"},
	{Command: "help", Description: "📖 查看帮助"},
	{Command: "sync", Description: "🔄 同步群组成员"},
	{Command: "submit", Description: "✍️ 提交周报"},
	{Command: "status", Description: "📊 查看提交状态"},
	{Command: "summary", Description: "📑 查看周报汇总"},
	{Command: "remind", Description: "⏰ 发送提醒"},
	{Command: "export", Description: "📤 导出周报"},
	{Command: "members", Description: "👥 查看成员列表"},
	{Command: "excluded", Description: "🚫 查看排除名单"},
}

// Client talks to the Telegram Bot API.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

var _ transport.Transport = (*Client)(nil)

// New authenticates with token and returns a Client.
func New(token string, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	logger.Info("Telegram bot authorized", "username", api.Self.UserName, "id", api.Self.ID)
	return &Client{api: api, logger: logger}, nil
}

// SetCommands registers the bot's command menu.
func (c *Client) SetCommands(ctx context.Context) error {
	return c.do(ctx, func() error {
		_, err := c.api.Request(tgbotapi.NewSetMyCommands(Commands...))
		return err
	})
}

// SendMessage posts text with Markdown parsing. When Telegram rejects the
// markup the text is resent without a parse mode.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	err := c.do(ctx, func() error {
		_, err := c.api.Send(msg)
		return err
	})
	if err != nil && isParseError(err) {
		c.logger.Warn("Markdown rejected, resending as plain text", "chat_id", chatID, "error", err)
		msg.ParseMode = ""
		err = c.do(ctx, func() error {
			_, err := c.api.Send(msg)
			return err
		})
	}
	if err != nil {
		return fmt.Errorf("%w: failed to send message to %d: %w", models.ErrTransport, chatID, err)
	}
	return nil
}

// SendDocument uploads body as a file named name.
func (c *Client) SendDocument(ctx context.Context, chatID int64, name string, body []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: body})
	doc.Caption = caption

	err := c.do(ctx, func() error {
		_, err := c.api.Send(doc)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to send document to %d: %w", models.ErrTransport, chatID, err)
	}
	return nil
}

// ListAdministrators returns the chat administrators, skipping the bot itself
// and users without a name.
func (c *Client) ListAdministrators(ctx context.Context, chatID int64) ([]models.Member, error) {
	var admins []tgbotapi.ChatMember
	err := c.do(ctx, func() error {
		var err error
		admins, err = c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list administrators of %d: %w", models.ErrTransport, chatID, err)
	}
	return administrators(admins, c.api.Self.ID), nil
}

// Run polls for updates and hands each one to h on its own goroutine until
// ctx is cancelled. It waits for running handlers before returning.
func (c *Client) Run(ctx context.Context, h transport.Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	updates := c.api.GetUpdatesChan(cfg)

	var wg sync.WaitGroup
	defer wg.Wait()

	c.logger.Info("Polling for updates")
	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			c.logger.Info("Stopped polling for updates")
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			u, ok := convertUpdate(raw, time.Now())
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Update handler panicked", "chat_id", u.ChatID, "panic", r)
					}
				}()
				h.Handle(ctx, u)
			}()
		}
	}
}

// do runs fn and returns early with ctx's error if ctx ends first. The API
// client has no context support, so fn itself keeps running in that case.
func (c *Client) do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isParseError(err error) bool {
	return strings.Contains(err.Error(), "can't parse entities")
}

func administrators(admins []tgbotapi.ChatMember, selfID int64) []models.Member {
	members := make([]models.Member, 0, len(admins))
	for _, a := range admins {
		if a.User == nil || a.User.ID == selfID {
			continue
		}
		name := DisplayName(a.User)
		if name == "" {
			continue
		}
		members = append(members, models.Member{ID: a.User.ID, Name: name})
	}
	return members
}

// DisplayName returns the user's full name, or the username when both name
// parts are empty.
func DisplayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		name = u.UserName
	}
	return name
}

func convertUpdate(raw tgbotapi.Update, at time.Time) (transport.Update, bool) {
	msg := raw.Message
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return transport.Update{}, false
	}

	u := transport.Update{
		ChatID:    msg.Chat.ID,
		ChatType:  msg.Chat.Type,
		ChatTitle: msg.Chat.Title,
		From:      models.Member{ID: msg.From.ID, Name: DisplayName(msg.From)},
		Text:      msg.Text,
		At:        at,
	}
	if msg.IsCommand() {
		u.Command = msg.Command()
		u.Args = strings.TrimSpace(msg.CommandArguments())
	}
	if reply := msg.ReplyToMessage; reply != nil && reply.From != nil && !reply.From.IsBot {
		u.ReplyTo = &models.Member{ID: reply.From.ID, Name: DisplayName(reply.From)}
	}
	return u, true
}
