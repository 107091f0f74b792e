package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"syndicway/internal/domain/message"
)

// MessageStoreForOrchestrator defines the store interface needed by message operations.
type MessageStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (message.Message, error)
	Save(ctx context.Context, m message.Message) error
}

// ErrNotMessageParty is returned when an account touches a message it
// neither sent nor received.
var ErrNotMessageParty = errors.New("message does not involve this account")

// SendMessageInput carries input for the send-message orchestrator.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	Subject    string
	Content    string // Markdown
}

// MessageDeps holds dependencies for message orchestrators.
type MessageDeps struct {
	MessageStore MessageStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSendMessage delivers a direct message between two accounts.
// PRE: Sender and receiver are distinct accounts
// POST: Message persisted unread
func ExecuteSendMessage(ctx context.Context, input SendMessageInput, deps MessageDeps) (message.Message, error) {
	m := message.Message{
		ID:         deps.GenerateID(),
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Subject:    input.Subject,
		Content:    input.Content,
		CreatedAt:  deps.Now(),
	}
	if err := m.Validate(); err != nil {
		return message.Message{}, err
	}

	if err := deps.MessageStore.Save(ctx, m); err != nil {
		return message.Message{}, err
	}

	slog.Info("message_event", "event", "message_sent", "message_id", m.ID, "sender_id", m.SenderID, "receiver_id", m.ReceiverID)
	return m, nil
}

// MarkMessageReadInput carries input for the read marker.
type MarkMessageReadInput struct {
	MessageID string
	ReaderID  string // must be the receiver
}

// ExecuteMarkMessageRead records when the receiver read a message.
// PRE: ReaderID is the message's receiver
// POST: ReadAt set once; repeated calls keep the first timestamp
func ExecuteMarkMessageRead(ctx context.Context, input MarkMessageReadInput, deps MessageDeps) error {
	if input.MessageID == "" {
		return errors.New("message ID is required")
	}

	m, err := deps.MessageStore.GetByID(ctx, input.MessageID)
	if err != nil {
		return err
	}
	if m.ReceiverID != input.ReaderID {
		return ErrNotMessageParty
	}
	if m.IsRead() {
		return nil
	}

	m.MarkRead()
	return deps.MessageStore.Save(ctx, m)
}
