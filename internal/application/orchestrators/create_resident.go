package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "syndicway/internal/adapters/email"
	residentStore "syndicway/internal/adapters/storage/resident"
	"syndicway/internal/domain/account"
	"syndicway/internal/domain/notification"
	"syndicway/internal/domain/resident"
	"syndicway/internal/domain/subscription"
)

// ResidentStoreForCreate defines the store interface needed by CreateResident.
type ResidentStoreForCreate interface {
	Provision(ctx context.Context, acct account.Account, r resident.Resident, n notification.Notification) error
	Count(ctx context.Context, filter residentStore.ListFilter) (int, error)
}

// PlanGuard checks the syndic's subscription caps before growth operations.
type PlanGuard interface {
	ActivePurchase(ctx context.Context, syndicID string) (subscription.Purchase, error)
	GetByID(ctx context.Context, id string) (subscription.Subscription, error)
}

// CreateResidentInput carries input for the create-resident orchestrator.
type CreateResidentInput struct {
	SyndicID    string
	ResidenceID string
	Name        string
	Email       string
	Phone       string
	ApartmentID string // optional initial assignment
}

// CreateResidentResult carries the result of a successful provisioning.
type CreateResidentResult struct {
	ResidentID string
	AccountID  string
	EmailSent  bool
}

// CreateResidentDeps holds dependencies for CreateResident.
type CreateResidentDeps struct {
	ResidentStore ResidentStoreForCreate
	PlanGuard     PlanGuard
	SendEmail     func(ctx context.Context, input SendEmailInput) error
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteCreateResident provisions a resident account in one transaction:
// auth account, profile, optional apartment assignment and notification.
// The temporary password travels only in the credential email.
// PRE: SyndicID has an active subscription with headroom; email is unused
// POST: All rows committed or none; credential email sent or queued
func ExecuteCreateResident(ctx context.Context, input CreateResidentInput, deps CreateResidentDeps) (CreateResidentResult, error) {
	if input.SyndicID == "" || input.ResidenceID == "" {
		return CreateResidentResult{}, errors.New("syndic and residence are required")
	}

	if err := checkResidentCap(ctx, input.SyndicID, input.ResidenceID, deps); err != nil {
		return CreateResidentResult{}, err
	}

	now := deps.Now()
	temp, err := account.GenerateTempPassword()
	if err != nil {
		return CreateResidentResult{}, err
	}

	acct := account.Account{
		ID:                     deps.GenerateID(),
		Email:                  input.Email,
		Role:                   account.RoleResident,
		Status:                 account.StatusActive,
		CreatedAt:              now,
		PasswordChangeRequired: true,
	}
	if err := acct.SetPassword(temp); err != nil {
		return CreateResidentResult{}, err
	}
	if err := acct.Validate(); err != nil {
		return CreateResidentResult{}, err
	}

	r := resident.Resident{
		ID:          deps.GenerateID(),
		AccountID:   acct.ID,
		ResidenceID: input.ResidenceID,
		ApartmentID: input.ApartmentID,
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Status:      resident.StatusActive,
		CreatedAt:   now,
	}
	if err := r.Validate(); err != nil {
		return CreateResidentResult{}, err
	}

	n := notification.Notification{
		ID:          deps.GenerateID(),
		SenderID:    input.SyndicID,
		ReceiverID:  acct.ID,
		Kind:        notification.KindResidentCreated,
		ReferenceID: r.ID,
		CreatedAt:   now,
	}

	if err := deps.ResidentStore.Provision(ctx, acct, r, n); err != nil {
		return CreateResidentResult{}, err
	}

	emailErr := deps.SendEmail(ctx, SendEmailInput{
		To:      []string{acct.Email},
		Subject: "Welcome to Syndic Way",
		HTML:    welcomeEmailBody(r.Name, acct.Email, temp),
		Kind:    emailAdapter.KindCredentials,
	})
	if emailErr != nil {
		slog.Error("resident_credential_email_failed", "resident_id", r.ID, "error", emailErr)
	}

	slog.Info("resident_event", "event", "resident_created", "resident_id", r.ID, "residence_id", input.ResidenceID, "syndic_id", input.SyndicID)

	return CreateResidentResult{
		ResidentID: r.ID,
		AccountID:  acct.ID,
		EmailSent:  emailErr == nil,
	}, nil
}

// checkResidentCap enforces the active plan's resident limit.
func checkResidentCap(ctx context.Context, syndicID, residenceID string, deps CreateResidentDeps) error {
	purchase, err := deps.PlanGuard.ActivePurchase(ctx, syndicID)
	if err != nil {
		return err
	}
	plan, err := deps.PlanGuard.GetByID(ctx, purchase.SubscriptionID)
	if err != nil {
		return err
	}
	count, err := deps.ResidentStore.Count(ctx, residentStore.ListFilter{ResidenceID: residenceID})
	if err != nil {
		return err
	}
	if count >= plan.MaxResidents {
		return subscription.ErrResidentCap
	}
	return nil
}

// welcomeEmailBody renders the credential email for a freshly provisioned resident.
func welcomeEmailBody(name, email, tempPassword string) string {
	return fmt.Sprintf(
		`<p>Hello %s,</p>
<p>An account has been created for you on Syndic Way.</p>
<p>Sign in with:</p>
<ul>
<li>Email: <strong>%s</strong></li>
<li>Temporary password: <code>%s</code></li>
</ul>
<p>You will be asked to choose a new password the first time you sign in.</p>`,
		name, email, tempPassword)
}
