package orchestrators

import (
	"context"
	"errors"
	"testing"

	"syndicway/internal/domain/notification"
	"syndicway/internal/domain/payment"
	"syndicway/internal/domain/resident"
)

// mockNotificationStore records saved notifications.
type mockNotificationStore struct {
	saved   []notification.Notification
	saveErr error
}

func (m *mockNotificationStore) Save(_ context.Context, n notification.Notification) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, n)
	return nil
}

func reminderDeps(residents *mockResidentStore, payments *mockPaymentStore, notifs *mockNotificationStore, emails *emailRecorder) SendReminderDeps {
	return SendReminderDeps{
		ResidentStore:     residents,
		PaymentStore:      payments,
		NotificationStore: notifs,
		SendEmail:         emails.send,
		GenerateID:        newSeqIDGen(),
		Now:               fixedNow,
	}
}

// TestExecuteSendReminder_SkipsPaid verifies residents with a recorded
// payment are not reminded.
func TestExecuteSendReminder_SkipsPaid(t *testing.T) {
	residents := newMockResidentStore()
	seedResident(residents, "r1", "res1")
	seedResident(residents, "r2", "res1")
	seedResident(residents, "r3", "res1")

	payments := newMockPaymentStore()
	payments.payments[paymentKey("r2", "syn1", "2026-03")] = payment.Payment{
		ID: "p1", PayerID: "r2", ReceiverID: "syn1", MonthPaid: "2026-03", AmountCents: 40000,
	}

	notifs := &mockNotificationStore{}
	emails := &emailRecorder{}

	result, err := ExecuteSendReminder(context.Background(), SendReminderInput{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "2026-03",
	}, reminderDeps(residents, payments, notifs, emails))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reminded != 2 {
		t.Errorf("Reminded = %d, want 2", result.Reminded)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if len(emails.sent) != 2 {
		t.Errorf("emails sent = %d, want 2", len(emails.sent))
	}
	if len(notifs.saved) != 2 {
		t.Errorf("notifications = %d, want 2", len(notifs.saved))
	}
	for _, n := range notifs.saved {
		if n.Kind != notification.KindPaymentReminder {
			t.Errorf("notification kind = %q, want payment_reminder", n.Kind)
		}
		if n.ReferenceID != "2026-03" {
			t.Errorf("reference = %q, want the month key", n.ReferenceID)
		}
	}
}

// TestExecuteSendReminder_SingleResident verifies targeting one resident.
func TestExecuteSendReminder_SingleResident(t *testing.T) {
	residents := newMockResidentStore()
	seedResident(residents, "r1", "res1")
	seedResident(residents, "r2", "res1")

	result, err := ExecuteSendReminder(context.Background(), SendReminderInput{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "2026-03",
		ResidentID:  "r1",
	}, reminderDeps(residents, newMockPaymentStore(), &mockNotificationStore{}, &emailRecorder{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reminded != 1 {
		t.Errorf("Reminded = %d, want 1", result.Reminded)
	}
}

// TestExecuteSendReminder_SinglePaidResident verifies a paid target is skipped.
func TestExecuteSendReminder_SinglePaidResident(t *testing.T) {
	residents := newMockResidentStore()
	seedResident(residents, "r1", "res1")

	payments := newMockPaymentStore()
	payments.payments[paymentKey("r1", "syn1", "2026-03")] = payment.Payment{
		ID: "p1", PayerID: "r1", ReceiverID: "syn1", MonthPaid: "2026-03", AmountCents: 40000,
	}

	emails := &emailRecorder{}
	result, err := ExecuteSendReminder(context.Background(), SendReminderInput{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "2026-03",
		ResidentID:  "r1",
	}, reminderDeps(residents, payments, &mockNotificationStore{}, emails))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reminded != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 0 reminded / 1 skipped", result)
	}
	if len(emails.sent) != 0 {
		t.Error("no email should go to a paid resident")
	}
}

// TestExecuteSendReminder_ForeignResident verifies residence scoping.
func TestExecuteSendReminder_ForeignResident(t *testing.T) {
	residents := newMockResidentStore()
	seedResident(residents, "r1", "other-residence")

	_, err := ExecuteSendReminder(context.Background(), SendReminderInput{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "2026-03",
		ResidentID:  "r1",
	}, reminderDeps(residents, newMockPaymentStore(), &mockNotificationStore{}, &emailRecorder{}))
	if !errors.Is(err, ErrResidentNotOwned) {
		t.Errorf("err = %v, want ErrResidentNotOwned", err)
	}
}

// TestExecuteSendReminder_DefaultMonth verifies empty month means the current one.
func TestExecuteSendReminder_DefaultMonth(t *testing.T) {
	residents := newMockResidentStore()
	seedResident(residents, "r1", "res1")
	notifs := &mockNotificationStore{}

	_, err := ExecuteSendReminder(context.Background(), SendReminderInput{
		SyndicID:    "syn1",
		ResidenceID: "res1",
	}, reminderDeps(residents, newMockPaymentStore(), notifs, &emailRecorder{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifs.saved) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs.saved))
	}
	if notifs.saved[0].ReferenceID != payment.CurrentMonth(fixedTime) {
		t.Errorf("reference = %q, want %q", notifs.saved[0].ReferenceID, payment.CurrentMonth(fixedTime))
	}
}

// TestExecuteSendReminder_InvalidMonth verifies malformed months are rejected.
func TestExecuteSendReminder_InvalidMonth(t *testing.T) {
	residents := newMockResidentStore()
	seedResident(residents, "r1", "res1")

	_, err := ExecuteSendReminder(context.Background(), SendReminderInput{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "03-2026",
	}, reminderDeps(residents, newMockPaymentStore(), &mockNotificationStore{}, &emailRecorder{}))
	if !errors.Is(err, payment.ErrInvalidMonth) {
		t.Errorf("err = %v, want ErrInvalidMonth", err)
	}
}

// TestExecuteSendReminder_InactiveExcluded verifies inactive residents are not reminded.
func TestExecuteSendReminder_InactiveExcluded(t *testing.T) {
	residents := newMockResidentStore()
	seedResident(residents, "r1", "res1")
	r2 := seedResident(residents, "r2", "res1")
	r2.Status = resident.StatusInactive
	residents.residents["r2"] = r2

	result, err := ExecuteSendReminder(context.Background(), SendReminderInput{
		SyndicID:    "syn1",
		ResidenceID: "res1",
		Month:       "2026-03",
	}, reminderDeps(residents, newMockPaymentStore(), &mockNotificationStore{}, &emailRecorder{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reminded != 1 {
		t.Errorf("Reminded = %d, want 1 (inactive excluded)", result.Reminded)
	}
}
