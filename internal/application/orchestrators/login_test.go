package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"syndicway/internal/domain/account"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// newSeqIDGen returns a deterministic ID generator: id-1, id-2, ...
func newSeqIDGen() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mockAccountStore implements the account store interfaces used by the
// auth orchestrators.
type mockAccountStore struct {
	accounts map[string]account.Account // keyed by ID
	saveErr  error
	deleted  []string
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errors.New("account not found")
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("account not found")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Delete(_ context.Context, id string) error {
	delete(m.accounts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func seedAccount(t *testing.T, store *mockAccountStore, id, email, role, password string) account.Account {
	t.Helper()
	a := account.Account{
		ID:        id,
		Email:     email,
		Role:      role,
		Status:    account.StatusActive,
		CreatedAt: fixedTime,
	}
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	store.accounts[id] = a
	return a
}

// TestExecuteLogin_Success verifies valid credentials return account info
// and reset the failure counter.
func TestExecuteLogin_Success(t *testing.T) {
	store := newMockAccountStore()
	a := seedAccount(t, store, "a1", "syndic@residence.ma", account.RoleSyndic, "correcthorse12")
	a.FailedLogins = 3
	store.accounts["a1"] = a

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "syndic@residence.ma",
		Password: "correcthorse12",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccountID != "a1" {
		t.Errorf("AccountID = %q, want a1", result.AccountID)
	}
	if result.Role != account.RoleSyndic {
		t.Errorf("Role = %q, want syndic", result.Role)
	}
	if store.accounts["a1"].FailedLogins != 0 {
		t.Errorf("FailedLogins = %d, want 0 after success", store.accounts["a1"].FailedLogins)
	}
}

// TestExecuteLogin_WrongPassword verifies failures are counted.
func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "syndic@residence.ma", account.RoleSyndic, "correcthorse12")

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "syndic@residence.ma",
		Password: "wrongpassword1",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if store.accounts["a1"].FailedLogins != 1 {
		t.Errorf("FailedLogins = %d, want 1", store.accounts["a1"].FailedLogins)
	}
}

// TestExecuteLogin_LockoutAfterFiveFailures verifies the lockout threshold.
func TestExecuteLogin_LockoutAfterFiveFailures(t *testing.T) {
	store := newMockAccountStore()
	seedAccount(t, store, "a1", "syndic@residence.ma", account.RoleSyndic, "correcthorse12")

	for i := 0; i < 5; i++ {
		_, err := ExecuteLogin(context.Background(), LoginInput{
			Email:    "syndic@residence.ma",
			Password: "wrongpassword1",
		}, LoginDeps{AccountStore: store})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// The sixth attempt hits the lock even with the right password.
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "syndic@residence.ma",
		Password: "correcthorse12",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("err = %v, want ErrAccountLocked", err)
	}
}

// TestExecuteLogin_InactiveAccount verifies deactivated accounts cannot sign in.
func TestExecuteLogin_InactiveAccount(t *testing.T) {
	store := newMockAccountStore()
	a := seedAccount(t, store, "a1", "resident@residence.ma", account.RoleResident, "correcthorse12")
	a.Status = account.StatusInactive
	store.accounts["a1"] = a

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "resident@residence.ma",
		Password: "correcthorse12",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountInactive) {
		t.Errorf("err = %v, want ErrAccountInactive", err)
	}
}

// TestExecuteLogin_UnknownEmail verifies unknown emails get the generic error.
func TestExecuteLogin_UnknownEmail(t *testing.T) {
	store := newMockAccountStore()

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "nobody@residence.ma",
		Password: "whatever12345",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

// TestExecuteLogin_EmptyInput verifies blank credentials short-circuit.
func TestExecuteLogin_EmptyInput(t *testing.T) {
	store := newMockAccountStore()

	_, err := ExecuteLogin(context.Background(), LoginInput{}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

// TestExecuteLogin_PasswordChangeRequired verifies the flag is surfaced.
func TestExecuteLogin_PasswordChangeRequired(t *testing.T) {
	store := newMockAccountStore()
	a := seedAccount(t, store, "a1", "new@residence.ma", account.RoleResident, "Resident00421")
	a.PasswordChangeRequired = true
	store.accounts["a1"] = a

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "new@residence.ma",
		Password: "Resident00421",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.PasswordChangeRequired {
		t.Error("PasswordChangeRequired should be surfaced to the caller")
	}
}
