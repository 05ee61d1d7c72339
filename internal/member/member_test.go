package member

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubpulse/internal/storage"
)

func validInput() Input {
	return Input{
		FirstName:             "Nadia",
		LastName:              "Haddad",
		Phone:                 "+20 100 5550123",
		Email:                 "nadia@example.com",
		EmergencyContactName:  "Omar Haddad",
		EmergencyContactPhone: "01005550199",
	}
}

func newTestService(t *testing.T) (Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewService(store, zap.NewNop()), store
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "000001", first.MembershipNumber)

	second, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "000002", second.MembershipNumber)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	input.FirstName = "  "
	input.Email = "not-an-email"
	input.Phone = "123"

	_, err := svc.Create(context.Background(), input)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "firstName")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "phone")
	assert.NotContains(t, verr.Fields, "lastName")
}

func TestPhoneLengthBounds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	input := validInput()
	input.Phone = "+20 100 5550123" // 15 characters, the upper bound
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	input.Phone = "+20 100 555 0123" // 16 characters
	_, err = svc.Create(ctx, input)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")

	input.Phone = "1234567" // 7 characters
	_, err = svc.Create(ctx, input)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")
}

func TestCreateRequiresInsuranceCompanyWhenInsured(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	input.HasInsurance = true

	_, err := svc.Create(context.Background(), input)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "insuranceCompany")

	input.InsuranceCompany = "Misr Insurance"
	_, err = svc.Create(context.Background(), input)
	require.NoError(t, err)
}

func TestUpdatePreservesIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	input := validInput()
	input.FirstName = "Layla"
	updated, err := svc.Update(ctx, created.ID, input)
	require.NoError(t, err)

	assert.Equal(t, "Layla", updated.FirstName)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.MembershipNumber, updated.MembershipNumber)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
}

func TestUpdateUnknownMember(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), uuid.New(), validInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByMembershipNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	found, err := svc.GetByMembershipNumber(ctx, created.MembershipNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByMembershipNumber(ctx, "999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	victim, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	survivor, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	type owned struct {
		ID       uuid.UUID `json:"id"`
		MemberID uuid.UUID `json:"memberId"`
	}
	seed := []owned{
		{ID: uuid.New(), MemberID: victim.ID},
		{ID: uuid.New(), MemberID: survivor.ID},
	}
	for _, key := range []string{storage.Attendance, storage.Guests, storage.Charges, storage.MonthlyFees} {
		require.NoError(t, store.Put(ctx, key, seed))
	}

	require.NoError(t, svc.Delete(ctx, victim.ID))

	_, err = svc.Get(ctx, victim.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, key := range []string{storage.Attendance, storage.Guests, storage.Charges, storage.MonthlyFees} {
		var records []owned
		require.NoError(t, store.Get(ctx, key, &records))
		require.Len(t, records, 1, key)
		assert.Equal(t, survivor.ID, records[0].MemberID, key)
	}
}

func TestDeleteUnknownMember(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberJSONShape(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore()
	svc := NewService(store, zap.NewNop(), WithClock(func() time.Time { return now }))

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	raw, err := json.Marshal(created)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "000001", decoded["membershipNumber"])
	assert.NotContains(t, decoded, "insuranceCompany")
}
