package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "syndicway/internal/adapters/email"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/notification"
)

// NotificationStoreForReset defines the store interface needed by ResetPassword.
type NotificationStoreForReset interface {
	Save(ctx context.Context, n notification.Notification) error
}

// ResetPasswordInput carries input for the reset-password orchestrator.
type ResetPasswordInput struct {
	AccountID string // account whose password is reset
	ActorID   string // syndic or admin performing the reset
}

// ResetPasswordDeps holds dependencies for ResetPassword.
type ResetPasswordDeps struct {
	AccountStore      AccountStoreForChangePassword
	NotificationStore NotificationStoreForReset
	SendEmail         func(ctx context.Context, input SendEmailInput) error
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteResetPassword issues a fresh provisional credential and emails
// it to the account holder. The plaintext only ever travels in the
// email; it is never returned for display.
// PRE: AccountID exists
// POST: New temp password hashed and saved, change-on-login flag set,
// credential email sent or queued
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) error {
	if input.AccountID == "" {
		return errors.New("account ID is required")
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return errors.New("account not found")
	}

	temp, err := account.GenerateTempPassword()
	if err != nil {
		return err
	}
	if err := acct.SetPassword(temp); err != nil {
		return err
	}
	acct.PasswordChangeRequired = true
	acct.ResetFailedLogins()

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	n := notification.Notification{
		ID:          deps.GenerateID(),
		SenderID:    input.ActorID,
		ReceiverID:  acct.ID,
		Kind:        notification.KindPasswordReset,
		ReferenceID: acct.ID,
		CreatedAt:   deps.Now(),
	}
	if err := deps.NotificationStore.Save(ctx, n); err != nil {
		slog.Error("reset_password_notification_failed", "account_id", acct.ID, "error", err)
	}

	err = deps.SendEmail(ctx, SendEmailInput{
		To:      []string{acct.Email},
		Subject: "Your Syndic Way password has been reset",
		HTML:    credentialEmailBody(acct.Email, temp),
		Kind:    emailAdapter.KindCredentials,
	})
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_reset", "account_id", acct.ID, "actor_id", input.ActorID)
	return nil
}

// credentialEmailBody renders the provisional credential email.
func credentialEmailBody(email, tempPassword string) string {
	return fmt.Sprintf(
		`<p>Hello,</p>
<p>A temporary password has been issued for your Syndic Way account <strong>%s</strong>:</p>
<p style="font-size:1.2em"><code>%s</code></p>
<p>You will be asked to choose a new password the first time you sign in.</p>`,
		email, tempPassword)
}
