package projections

import (
	"context"

	accountStore "syndicway/internal/adapters/storage/account"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/message"
)

// InboxMessageStore defines the message store interface needed by inbox views.
type InboxMessageStore interface {
	ListInbox(ctx context.Context, receiverID string, limit, offset int) ([]message.Message, error)
	ListSent(ctx context.Context, senderID string, limit, offset int) ([]message.Message, error)
	UnreadCount(ctx context.Context, receiverID string) (int, error)
}

// InboxAccountStore resolves correspondent emails for inbox views.
type InboxAccountStore interface {
	List(ctx context.Context, filter accountStore.ListFilter) ([]account.Account, error)
}

// GetInboxQuery carries query parameters for the inbox projection.
type GetInboxQuery struct {
	AccountID string
	Sent      bool // show sent messages instead of received
	Limit     int
	Offset    int
}

// MessageRow is one message with the correspondent's email joined in.
type MessageRow struct {
	message.Message
	CorrespondentEmail string
}

// GetInboxResult carries the query result.
type GetInboxResult struct {
	Messages    []MessageRow
	UnreadCount int
}

// GetInboxDeps holds dependencies for the inbox projection.
type GetInboxDeps struct {
	MessageStore InboxMessageStore
	AccountStore InboxAccountStore
}

// QueryGetInbox retrieves an account's received or sent messages with
// correspondent emails and the unread badge count.
// PRE: AccountID is non-empty
// POST: Messages newest first
func QueryGetInbox(ctx context.Context, query GetInboxQuery, deps GetInboxDeps) (GetInboxResult, error) {
	var msgs []message.Message
	var err error
	if query.Sent {
		msgs, err = deps.MessageStore.ListSent(ctx, query.AccountID, query.Limit, query.Offset)
	} else {
		msgs, err = deps.MessageStore.ListInbox(ctx, query.AccountID, query.Limit, query.Offset)
	}
	if err != nil {
		return GetInboxResult{}, err
	}

	emails := make(map[string]string)
	if accounts, err := deps.AccountStore.List(ctx, accountStore.ListFilter{}); err == nil {
		for _, a := range accounts {
			emails[a.ID] = a.Email
		}
	}

	rows := make([]MessageRow, 0, len(msgs))
	for _, m := range msgs {
		correspondent := m.SenderID
		if query.Sent {
			correspondent = m.ReceiverID
		}
		rows = append(rows, MessageRow{
			Message:            m,
			CorrespondentEmail: emails[correspondent],
		})
	}

	result := GetInboxResult{Messages: rows}
	if n, err := deps.MessageStore.UnreadCount(ctx, query.AccountID); err == nil {
		result.UnreadCount = n
	}
	return result, nil
}
