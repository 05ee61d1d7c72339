package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubpulse/internal/member"
	"clubpulse/internal/storage"
)

type fixture struct {
	svc    Service
	member *member.Member
	now    *time.Time
}

// newFixture wires a service with a mutable clock and one member.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	members := member.NewService(store, zap.NewNop())

	m, err := members.Create(context.Background(), member.Input{
		FirstName:             "Karim",
		LastName:              "Fahmy",
		Phone:                 "01005550101",
		Email:                 "karim@example.com",
		EmergencyContactName:  "Dina Fahmy",
		EmergencyContactPhone: "01005550102",
	})
	require.NoError(t, err)

	now := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	f := &fixture{member: m, now: &now}
	opts = append(opts, WithClock(func() time.Time { return *f.now }))
	f.svc = NewService(store, members, zap.NewNop(), opts...)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func TestScansAlternateEntryExit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.RecordScan(ctx, f.member.ID, Gym, nil)
	require.NoError(t, err)
	assert.Equal(t, EventEntry, first.Action)
	assert.Nil(t, first.Record.ExitTime)

	f.advance(time.Hour)
	second, err := f.svc.RecordScan(ctx, f.member.ID, Gym, nil)
	require.NoError(t, err)
	assert.Equal(t, EventExit, second.Action)
	require.NotNil(t, second.Record.ExitTime)

	f.advance(time.Hour)
	third, err := f.svc.RecordScan(ctx, f.member.ID, Gym, nil)
	require.NoError(t, err)
	assert.Equal(t, EventEntry, third.Action)
}

func TestFacilitiesTrackSeparately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordScan(ctx, f.member.ID, Gym, nil)
	require.NoError(t, err)

	f.advance(time.Minute)
	poolScan, err := f.svc.RecordScan(ctx, f.member.ID, Pool, nil)
	require.NoError(t, err)
	assert.Equal(t, EventEntry, poolScan.Action)

	gymStatus, err := f.svc.Status(ctx, f.member.ID, Gym)
	require.NoError(t, err)
	assert.Equal(t, StatusInside, gymStatus)
}

func TestOpenEntryResetsAtMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.RecordScan(ctx, f.member.ID, Sauna, nil)
	require.NoError(t, err)
	assert.Equal(t, EventEntry, entry.Action)

	f.advance(24 * time.Hour)
	status, err := f.svc.Status(ctx, f.member.ID, Sauna)
	require.NoError(t, err)
	assert.Equal(t, StatusOutside, status)

	next, err := f.svc.RecordScan(ctx, f.member.ID, Sauna, nil)
	require.NoError(t, err)
	assert.Equal(t, EventEntry, next.Action)
}

func TestOpenEntryCarriesOverWhenEnabled(t *testing.T) {
	f := newFixture(t, WithCarryOver(true))
	ctx := context.Background()

	_, err := f.svc.RecordScan(ctx, f.member.ID, Sauna, nil)
	require.NoError(t, err)

	f.advance(24 * time.Hour)
	status, err := f.svc.Status(ctx, f.member.ID, Sauna)
	require.NoError(t, err)
	assert.Equal(t, StatusInside, status)

	next, err := f.svc.RecordScan(ctx, f.member.ID, Sauna, nil)
	require.NoError(t, err)
	assert.Equal(t, EventExit, next.Action)
}

func TestScanRejectsUnknownFacility(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordScan(context.Background(), f.member.ID, Facility("bowling"), nil)
	assert.ErrorIs(t, err, ErrUnknownFacility)
}

func TestScanRejectsUnknownMember(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordScan(context.Background(), uuid.New(), Gym, nil)
	assert.ErrorIs(t, err, member.ErrNotFound)
}

func TestScanKeepsCompanions(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.RecordScan(context.Background(), f.member.ID, Pool, []string{"Salma", "Youssef"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Salma", "Youssef"}, res.Record.Companions)
}

func TestHistoryIsMostRecentFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.RecordScan(ctx, f.member.ID, Gym, nil)
		require.NoError(t, err)
		f.advance(time.Hour)
	}

	history, err := f.svc.History(ctx, f.member.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].EventTime().After(history[i].EventTime()))
	}
	assert.Equal(t, EventEntry, history[0].Type)
}
