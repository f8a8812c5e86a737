// Package transporttest provides an in-memory transport for tests.
package transporttest

import (
	"context"
	"errors"
	"sync"

	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/transport"
)

// ErrInjected is returned for chats configured to fail.
var ErrInjected = errors.New("injected transport failure")

// Message is a recorded SendMessage call.
type Message struct {
	ChatID int64
	Text   string
}

// Document is a recorded SendDocument call.
type Document struct {
	ChatID  int64
	Name    string
	Body    []byte
	Caption string
}

// Recorder records outbound traffic and can fail selected chats.
type Recorder struct {
	mu        sync.Mutex
	messages  []Message
	documents []Document
	admins    map[int64][]models.Member
	failChats map[int64]error
}

var _ transport.Transport = (*Recorder)(nil)

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		admins:    make(map[int64][]models.Member),
		failChats: make(map[int64]error),
	}
}

// SetAdministrators sets what ListAdministrators returns for chatID.
func (r *Recorder) SetAdministrators(chatID int64, admins ...models.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[chatID] = admins
}

// FailChat makes every call for chatID return err, or ErrInjected if err is nil.
func (r *Recorder) FailChat(chatID int64, err error) {
	if err == nil {
		err = ErrInjected
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failChats[chatID] = err
}

func (r *Recorder) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failChats[chatID]; err != nil {
		return err
	}
	r.messages = append(r.messages, Message{ChatID: chatID, Text: text})
	return nil
}

func (r *Recorder) SendDocument(ctx context.Context, chatID int64, name string, body []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failChats[chatID]; err != nil {
		return err
	}
	r.documents = append(r.documents, Document{ChatID: chatID, Name: name, Body: append([]byte(nil), body...), Caption: caption})
	return nil
}

func (r *Recorder) ListAdministrators(ctx context.Context, chatID int64) ([]models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failChats[chatID]; err != nil {
		return nil, err
	}
	return append([]models.Member(nil), r.admins[chatID]...), nil
}

// Messages returns the recorded messages in send order.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// MessagesTo returns the texts sent to chatID in send order.
func (r *Recorder) MessagesTo(chatID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var texts []string
	for _, m := range r.messages {
		if m.ChatID == chatID {
			texts = append(texts, m.Text)
		}
	}
	return texts
}

// Documents returns the recorded documents in send order.
func (r *Recorder) Documents() []Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Document(nil), r.documents...)
}

// Reset forgets recorded traffic.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.documents = nil
}
