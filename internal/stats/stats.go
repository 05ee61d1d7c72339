// Package stats computes read-only projections of the attendance, guest
// and charge ledgers. Every aggregation is a pure function of a Snapshot;
// nothing here mutates the record store.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubpulse/internal/attendance"
	"clubpulse/internal/guest"
	"clubpulse/internal/member"
	"clubpulse/internal/storage"
)

// TrendDays is the window of the daily visit trend.
const TrendDays = 30

// MonthLayout formats the YYYY-MM keys used in growth buckets.
const MonthLayout = "2006-01"

// Snapshot is the ledger state every aggregation works from.
type Snapshot struct {
	Members    []member.Member
	Attendance []attendance.Record
	Guests     []guest.Record
	Charges    []guest.Charge
}

// Range bounds a query by entry time, inclusive on both ends. Zero bounds
// are open.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// FacilityStats is one row of a facility breakdown. Percentages round
// half up independently per row, so they need not sum to exactly 100.
type FacilityStats struct {
	Facility   attendance.Facility `json:"facility"`
	Visits     int                 `json:"visits"`
	Percentage int                 `json:"percentage"`
	LastVisit  *time.Time          `json:"lastVisit,omitempty"`
}

// MemberStats summarizes one member's attendance.
type MemberStats struct {
	MemberID           uuid.UUID       `json:"memberId"`
	TotalVisits        int             `json:"totalVisits"`
	FacilitiesUsed     []FacilityStats `json:"facilitiesUsed"`
	CurrentMonthVisits int             `json:"currentMonthVisits"`
	CurrentWeekVisits  int             `json:"currentWeekVisits"`
}

// TrendPoint is one day of a visit trend.
type TrendPoint struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

// GlobalStats summarizes attendance across all members.
type GlobalStats struct {
	TotalVisits    int             `json:"totalVisits"`
	FacilitiesUsed []FacilityStats `json:"facilitiesUsed"`
	VisitTrend     []TrendPoint    `json:"visitTrend"`
	UniqueMembers  int             `json:"uniqueMembers"`
}

// CalendarDay aggregates one day of a member's calendar month.
type CalendarDay struct {
	Date       string   `json:"date"`
	Visits     int      `json:"visits"`
	Facilities []string `json:"facilities"`
	Companions []string `json:"companions"`
	Guests     []string `json:"guests"`
}

// Activity is one event of the merged attendance/guest timeline.
type Activity struct {
	ID               uuid.UUID            `json:"id"`
	Kind             string               `json:"kind"`
	MemberName       string               `json:"memberName"`
	MembershipNumber string               `json:"membershipNumber"`
	Facility         string               `json:"facility,omitempty"`
	GuestName        string               `json:"guestName,omitempty"`
	Time             time.Time            `json:"time"`
	AdditionalCharge float64              `json:"additionalCharge,omitempty"`
	EntryType        attendance.EventType `json:"entryType,omitempty"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalMembers      int             `json:"totalMembers"`
	TodayVisits       int             `json:"todayVisits"`
	MonthlyVisits     int             `json:"monthlyVisits"`
	PopularFacilities []FacilityStats `json:"popularFacilities"`
	RevenueFromGuests float64         `json:"revenueFromGuests"`
	ActiveMembers     int             `json:"activeMembers"`
}

// GrowthPoint is one month of sign-up counts.
type GrowthPoint struct {
	Month      string `json:"month"`
	NewMembers int    `json:"newMembers"`
}

// percentage rounds half up to the nearest integer.
func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// MemberStatsFor aggregates one member's attendance within the range.
// It returns nil when the member does not exist in the snapshot.
func MemberStatsFor(snap Snapshot, memberID uuid.UUID, rng Range, now time.Time) *MemberStats {
	found := false
	for _, m := range snap.Members {
		if m.ID == memberID {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	// Each visit produces an entry and usually an exit record; only the
	// entry counts as the visit.
	var records []attendance.Record
	for _, r := range snap.Attendance {
		if r.MemberID == memberID && r.Type == attendance.EventEntry && rng.contains(r.EntryTime) {
			records = append(records, r)
		}
	}

	stats := &MemberStats{
		MemberID:       memberID,
		TotalVisits:    len(records),
		FacilitiesUsed: facilityBreakdown(records),
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := startOfWeek(now)
	for _, r := range records {
		if !r.EntryTime.Before(monthStart) {
			stats.CurrentMonthVisits++
		}
		if !r.EntryTime.Before(weekStart) {
			stats.CurrentWeekVisits++
		}
	}
	return stats
}

// startOfWeek returns the preceding Sunday at midnight.
func startOfWeek(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, now.Location())
}

// facilityBreakdown counts visits per facility. Rows sort by visits
// descending, then by facility name for a stable order.
func facilityBreakdown(records []attendance.Record) []FacilityStats {
	counts := make(map[attendance.Facility]int)
	last := make(map[attendance.Facility]time.Time)
	for _, r := range records {
		counts[r.Facility]++
		if r.EntryTime.After(last[r.Facility]) {
			last[r.Facility] = r.EntryTime
		}
	}

	out := make([]FacilityStats, 0, len(counts))
	for f, visits := range counts {
		lastVisit := last[f]
		out = append(out, FacilityStats{
			Facility:   f,
			Visits:     visits,
			Percentage: percentage(visits, len(records)),
			LastVisit:  &lastVisit,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Visits != out[j].Visits {
			return out[i].Visits > out[j].Visits
		}
		return out[i].Facility < out[j].Facility
	})
	return out
}

// GlobalStatsFor aggregates attendance across all members within the range.
func GlobalStatsFor(snap Snapshot, rng Range, now time.Time) GlobalStats {
	var records []attendance.Record
	seen := make(map[uuid.UUID]struct{})
	for _, r := range snap.Attendance {
		if r.Type == attendance.EventEntry && rng.contains(r.EntryTime) {
			records = append(records, r)
			seen[r.MemberID] = struct{}{}
		}
	}
	return GlobalStats{
		TotalVisits:    len(records),
		FacilitiesUsed: facilityBreakdown(records),
		VisitTrend:     visitTrend(records, TrendDays, now),
		UniqueMembers:  len(seen),
	}
}

// visitTrend produces one bucket per day of the window, zero-filled and
// ascending by date. Records outside the window are ignored.
func visitTrend(records []attendance.Record, days int, now time.Time) []TrendPoint {
	start := now.AddDate(0, 0, -days)
	buckets := make(map[string]int, days)
	keys := make([]string, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(storage.DateLayout)
		buckets[key] = 0
		keys = append(keys, key)
	}
	for _, r := range records {
		if r.EntryTime.Before(start) {
			continue
		}
		if _, ok := buckets[r.Date]; ok {
			buckets[r.Date]++
		}
	}

	sort.Strings(keys)
	out := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		out = append(out, TrendPoint{Date: key, Visits: buckets[key]})
	}
	return out
}

// MemberVisitTrend is the per-member variant of the daily trend.
func MemberVisitTrend(snap Snapshot, memberID uuid.UUID, days int, now time.Time) []TrendPoint {
	var records []attendance.Record
	for _, r := range snap.Attendance {
		if r.MemberID == memberID && r.Type == attendance.EventEntry {
			records = append(records, r)
		}
	}
	return visitTrend(records, days, now)
}

// CalendarData aggregates a member's activity for one month. Days without
// any attendance or guest record are omitted; the UI fills the grid.
func CalendarData(snap Snapshot, memberID uuid.UUID, year int, month time.Month) []CalendarDay {
	prefix := fmt.Sprintf("%04d-%02d", year, int(month))
	days := make(map[string]*CalendarDay)

	day := func(date string) *CalendarDay {
		if d, ok := days[date]; ok {
			return d
		}
		d := &CalendarDay{
			Date:       date,
			Facilities: []string{},
			Companions: []string{},
			Guests:     []string{},
		}
		days[date] = d
		return d
	}

	for _, r := range snap.Attendance {
		if r.MemberID != memberID || r.Type != attendance.EventEntry || !strings.HasPrefix(r.Date, prefix) {
			continue
		}
		d := day(r.Date)
		d.Visits++
		if !containsString(d.Facilities, string(r.Facility)) {
			d.Facilities = append(d.Facilities, string(r.Facility))
		}
		d.Companions = append(d.Companions, r.Companions...)
	}
	for _, g := range snap.Guests {
		if g.MemberID != memberID || !strings.HasPrefix(g.Date, prefix) {
			continue
		}
		day(g.Date).Guests = append(day(g.Date).Guests, g.GuestName)
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]CalendarDay, 0, len(dates))
	for _, date := range dates {
		out = append(out, *days[date])
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// RecentActivity merges attendance and guest events into one descending
// timeline. Records pointing at deleted members are skipped. Exit events
// are keyed by their exit time.
func RecentActivity(snap Snapshot, limit int) []Activity {
	byID := make(map[uuid.UUID]member.Member, len(snap.Members))
	for _, m := range snap.Members {
		byID[m.ID] = m
	}

	var out []Activity
	for _, r := range snap.Attendance {
		m, ok := byID[r.MemberID]
		if !ok {
			continue
		}
		out = append(out, Activity{
			ID:               r.ID,
			Kind:             "attendance",
			MemberName:       m.FullName(),
			MembershipNumber: r.MembershipNumber,
			Facility:         string(r.Facility),
			Time:             r.EventTime(),
			EntryType:        r.Type,
		})
	}
	for _, g := range snap.Guests {
		m, ok := byID[g.MemberID]
		if !ok {
			continue
		}
		out = append(out, Activity{
			ID:               g.ID,
			Kind:             "guest",
			MemberName:       m.FullName(),
			MembershipNumber: g.MembershipNumber,
			GuestName:        g.GuestName,
			Time:             g.EntryTime,
			AdditionalCharge: g.AdditionalCharge,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DashboardFor computes the admin overview.
func DashboardFor(snap Snapshot, now time.Time) Dashboard {
	today := now.Format(storage.DateLayout)
	monthPrefix := now.Format(MonthLayout)
	activeCutoff := now.AddDate(0, 0, -30).Format(storage.DateLayout)

	d := Dashboard{TotalMembers: len(snap.Members)}
	active := make(map[uuid.UUID]struct{})
	var entries []attendance.Record
	for _, r := range snap.Attendance {
		if r.Date >= activeCutoff {
			active[r.MemberID] = struct{}{}
		}
		if r.Type != attendance.EventEntry {
			continue
		}
		entries = append(entries, r)
		if r.Date == today {
			d.TodayVisits++
		}
		if strings.HasPrefix(r.Date, monthPrefix) {
			d.MonthlyVisits++
		}
	}
	d.ActiveMembers = len(active)

	breakdown := facilityBreakdown(entries)
	if len(breakdown) > 5 {
		breakdown = breakdown[:5]
	}
	d.PopularFacilities = breakdown

	for _, g := range snap.Guests {
		d.RevenueFromGuests += g.AdditionalCharge
	}
	return d
}

// MembershipGrowth counts sign-ups per month over the trailing window.
func MembershipGrowth(snap Snapshot, months int, now time.Time) []GrowthPoint {
	buckets := make(map[string]int, months)
	keys := make([]string, 0, months)
	for i := months - 1; i >= 0; i-- {
		key := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC).Format(MonthLayout)
		buckets[key] = 0
		keys = append(keys, key)
	}
	for _, m := range snap.Members {
		key := m.CreatedAt.Format(MonthLayout)
		if _, ok := buckets[key]; ok {
			buckets[key]++
		}
	}

	sort.Strings(keys)
	out := make([]GrowthPoint, 0, len(keys))
	for _, key := range keys {
		out = append(out, GrowthPoint{Month: key, NewMembers: buckets[key]})
	}
	return out
}
