// Package transport abstracts the chat platform the bot talks to.
package transport

import (
	"context"
	"time"

	"github.com/mmynk/workpilot/internal/models"
)

// Transport delivers messages to group chats.
type Transport interface {
	// SendMessage posts Markdown text to a chat.
	SendMessage(ctx context.Context, chatID int64, text string) error

	// SendDocument uploads a file to a chat.
	SendDocument(ctx context.Context, chatID int64, name string, body []byte, caption string) error

	// ListAdministrators returns the chat's human administrators.
	ListAdministrators(ctx context.Context, chatID int64) ([]models.Member, error)
}

// Chat types as reported by the platform.
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSupergroup = "supergroup"
	ChatChannel    = "channel"
)

// Update is one inbound chat message.
type Update struct {
	ChatID    int64
	ChatType  string
	ChatTitle string

	From models.Member

	// ReplyTo is the author of the message being replied to, if any.
	ReplyTo *models.Member

	Text string

	// Command is the bot command without the leading slash or @botname,
	// empty for plain messages. Args is the text after the command.
	Command string
	Args    string

	// At is when the update was received. Handlers derive the period from it.
	At time.Time
}

// IsGroup reports whether the update comes from a group chat.
func (u Update) IsGroup() bool {
	return u.ChatType == ChatGroup || u.ChatType == ChatSupergroup
}

// Handler processes inbound updates.
type Handler interface {
	Handle(ctx context.Context, u Update)
}
