package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"syndicway/internal/domain/account"
)

// TestExecuteChangePassword_Valid verifies the password is replaced and the
// forced-change flag cleared.
func TestExecuteChangePassword_Valid(t *testing.T) {
	store := newMockAccountStore()
	a := seedAccount(t, store, "a1", "resident@residence.ma", account.RoleResident, "oldpassword123")
	a.PasswordChangeRequired = true
	store.accounts["a1"] = a

	err := ExecuteChangePassword(context.Background(), ChangePasswordInput{
		AccountID:       "a1",
		CurrentPassword: "oldpassword123",
		NewPassword:     "brandnewpass456",
	}, ChangePasswordDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := store.accounts["a1"]
	if updated.PasswordChangeRequired {
		t.Error("PasswordChangeRequired should be cleared")
	}
	if err := updated.CheckPassword("brandnewpass456"); err != nil {
		t.Errorf("new password should verify: %v", err)
	}
	if err := updated.CheckPassword("oldpassword123"); err == nil {
		t.Error("old password should no longer verify")
	}
}

// TestExecuteChangePassword_WrongCurrent verifies the current password gate.
func TestExecuteChangePassword_WrongCurrent(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "resident@residence.ma", account.RoleResident, "oldpassword123")

	err := ExecuteChangePassword(context.Background(), ChangePasswordInput{
		AccountID:       "a1",
		CurrentPassword: "notmypassword1",
		NewPassword:     "brandnewpass456",
	}, ChangePasswordDeps{AccountStore: store})
	if !errors.Is(err, ErrCurrentPasswordWrong) {
		t.Errorf("err = %v, want ErrCurrentPasswordWrong", err)
	}
}

// TestExecuteChangePassword_SamePassword verifies reuse is rejected.
func TestExecuteChangePassword_SamePassword(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "resident@residence.ma", account.RoleResident, "oldpassword123")

	err := ExecuteChangePassword(context.Background(), ChangePasswordInput{
		AccountID:       "a1",
		CurrentPassword: "oldpassword123",
		NewPassword:     "oldpassword123",
	}, ChangePasswordDeps{AccountStore: store})
	if !errors.Is(err, ErrNewPasswordSame) {
		t.Errorf("err = %v, want ErrNewPasswordSame", err)
	}
}

// TestExecuteChangePassword_TooShort verifies the length rule applies.
func TestExecuteChangePassword_TooShort(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "resident@residence.ma", account.RoleResident, "oldpassword123")

	err := ExecuteChangePassword(context.Background(), ChangePasswordInput{
		AccountID:       "a1",
		CurrentPassword: "oldpassword123",
		NewPassword:     "short",
	}, ChangePasswordDeps{AccountStore: store})
	if err == nil {
		t.Error("expected error for a short new password")
	}
}

// TestExecuteResetPassword verifies a fresh credential is issued, flagged for
// change and emailed, never returned.
func TestExecuteResetPassword(t *testing.T) {
	store := newMockAccountStore()
	a := seedAccount(t, store, "a1", "resident@residence.ma", account.RoleResident, "oldpassword123")
	a.FailedLogins = 4
	store.accounts["a1"] = a

	notifs := &mockNotificationStore{}
	emails := &emailRecorder{}

	err := ExecuteResetPassword(context.Background(), ResetPasswordInput{
		AccountID: "a1",
		ActorID:   "syn1",
	}, ResetPasswordDeps{
		AccountStore:      store,
		NotificationStore: notifs,
		SendEmail:         emails.send,
		GenerateID:        newSeqIDGen(),
		Now:               fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := store.accounts["a1"]
	if !updated.PasswordChangeRequired {
		t.Error("PasswordChangeRequired should be set after a reset")
	}
	if updated.FailedLogins != 0 {
		t.Errorf("FailedLogins = %d, want 0 (reset clears the lockout)", updated.FailedLogins)
	}
	if err := updated.CheckPassword("oldpassword123"); err == nil {
		t.Error("old password should no longer verify")
	}

	if len(emails.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(emails.sent))
	}
	if !strings.Contains(emails.sent[0].HTML, "Resident") {
		t.Error("credential email should carry the temporary password")
	}
	if len(notifs.saved) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifs.saved))
	}
}

// TestExecuteResetPassword_EmailFailure verifies the caller learns when the
// credential could not be dispatched.
func TestExecuteResetPassword_EmailFailure(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "resident@residence.ma", account.RoleResident, "oldpassword123")

	err := ExecuteResetPassword(context.Background(), ResetPasswordInput{
		AccountID: "a1",
		ActorID:   "syn1",
	}, ResetPasswordDeps{
		AccountStore:      store,
		NotificationStore: &mockNotificationStore{},
		SendEmail:         (&emailRecorder{err: errors.New("provider down")}).send,
		GenerateID:        newSeqIDGen(),
		Now:               fixedNow,
	})
	if err == nil {
		t.Error("expected error when the credential email cannot be dispatched")
	}
}

// TestExecuteResetPassword_UnknownAccount verifies missing accounts error out.
func TestExecuteResetPassword_UnknownAccount(t *testing.T) {
	err := ExecuteResetPassword(context.Background(), ResetPasswordInput{
		AccountID: "missing",
		ActorID:   "syn1",
	}, ResetPasswordDeps{
		AccountStore:      newMockAccountStore(),
		NotificationStore: &mockNotificationStore{},
		SendEmail:         (&emailRecorder{}).send,
		GenerateID:        newSeqIDGen(),
		Now:               fixedNow,
	})
	if err == nil {
		t.Error("expected error for unknown account")
	}
}
