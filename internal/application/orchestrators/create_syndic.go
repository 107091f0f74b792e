package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "syndicway/internal/adapters/email"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/residence"
)

// AccountStoreForCreateSyndic defines the store interface needed by CreateSyndic.
// The email uniqueness check rides on the schema's UNIQUE constraint; Save
// surfaces the duplicate.
type AccountStoreForCreateSyndic interface {
	Save(ctx context.Context, a account.Account) error
	Delete(ctx context.Context, id string) error
}

// ResidenceStoreForCreateSyndic persists the syndic's residence.
type ResidenceStoreForCreateSyndic interface {
	Save(ctx context.Context, r residence.Residence) error
}

// CreateSyndicInput carries input for the create-syndic orchestrator.
type CreateSyndicInput struct {
	AdminID       string
	Email         string
	ResidenceName string
	Address       string
	City          string
}

// CreateSyndicResult carries the result of a successful creation.
type CreateSyndicResult struct {
	AccountID   string
	ResidenceID string
	EmailSent   bool
}

// CreateSyndicDeps holds dependencies for CreateSyndic.
type CreateSyndicDeps struct {
	AccountStore   AccountStoreForCreateSyndic
	ResidenceStore ResidenceStoreForCreateSyndic
	SendEmail      func(ctx context.Context, input SendEmailInput) error
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteCreateSyndic registers a syndic account with its residence.
// The temporary password travels only in the credential email.
// PRE: Caller is an admin; email is unused
// POST: Account and residence persisted, credential email sent or queued
func ExecuteCreateSyndic(ctx context.Context, input CreateSyndicInput, deps CreateSyndicDeps) (CreateSyndicResult, error) {
	if input.Email == "" || input.ResidenceName == "" {
		return CreateSyndicResult{}, errors.New("email and residence name are required")
	}

	temp, err := account.GenerateTempPassword()
	if err != nil {
		return CreateSyndicResult{}, err
	}

	acct := account.Account{
		ID:                     deps.GenerateID(),
		Email:                  input.Email,
		Role:                   account.RoleSyndic,
		Status:                 account.StatusActive,
		CreatedAt:              deps.Now(),
		PasswordChangeRequired: true,
	}
	if err := acct.SetPassword(temp); err != nil {
		return CreateSyndicResult{}, err
	}
	if err := acct.Validate(); err != nil {
		return CreateSyndicResult{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return CreateSyndicResult{}, err
	}

	res := residence.Residence{
		ID:       deps.GenerateID(),
		SyndicID: acct.ID,
		Name:     input.ResidenceName,
		Address:  input.Address,
		City:     input.City,
	}
	if err := res.Validate(); err != nil {
		_ = deps.AccountStore.Delete(ctx, acct.ID)
		return CreateSyndicResult{}, err
	}
	if err := deps.ResidenceStore.Save(ctx, res); err != nil {
		_ = deps.AccountStore.Delete(ctx, acct.ID)
		return CreateSyndicResult{}, err
	}

	emailErr := deps.SendEmail(ctx, SendEmailInput{
		To:      []string{acct.Email},
		Subject: "Your Syndic Way manager account",
		HTML: fmt.Sprintf(
			`<p>Hello,</p>
<p>A manager account has been created for residence <strong>%s</strong>.</p>
<p>Sign in with email <strong>%s</strong> and temporary password <code>%s</code>.</p>
<p>You will be asked to choose a new password the first time you sign in.</p>`,
			res.Name, acct.Email, temp),
		Kind: emailAdapter.KindCredentials,
	})
	if emailErr != nil {
		slog.Error("syndic_credential_email_failed", "account_id", acct.ID, "error", emailErr)
	}

	slog.Info("account_event", "event", "syndic_created", "account_id", acct.ID, "residence_id", res.ID, "admin_id", input.AdminID)

	return CreateSyndicResult{
		AccountID:   acct.ID,
		ResidenceID: res.ID,
		EmailSent:   emailErr == nil,
	}, nil
}
