package services

import (
	"testing"
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

func monthCycle(id string, year, month int) *models.Cycle {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return &models.Cycle{
		ID:       id,
		Year:     year,
		Month:    month,
		StartsAt: start,
		EndsAt:   start.AddDate(0, 1, 0).Add(-time.Second),
		IsActive: true,
	}
}

func TestTrendSeriesWindowAndOrder(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	entries := []CycleScores{
		{Cycle: monthCycle("C3", 2025, 3), Scores: []int{10, 0}},
		{Cycle: monthCycle("C1", 2025, 1), Scores: []int{9}},
		{Cycle: monthCycle("OLD", 2024, 2), Scores: []int{0, 0}},
		{Cycle: monthCycle("C5", 2025, 5), Scores: nil},
	}
	got := TrendSeries(entries, 12, now)
	if len(got) != 3 {
		t.Fatalf("want 3 points inside window, got %d", len(got))
	}
	if got[0].Period != "2025-01" || got[1].Period != "2025-03" || got[2].Period != "2025-05" {
		t.Fatalf("points not ordered by start: %+v", got)
	}
	if got[0].Summary.ENPS != 100 {
		t.Fatalf("2025-01 ENPS=%d, want 100", got[0].Summary.ENPS)
	}
	if got[1].Summary.ENPS != 0 {
		t.Fatalf("2025-03 ENPS=%d, want 0", got[1].Summary.ENPS)
	}
	if got[2].Summary.Count != 0 || got[2].Summary.ENPS != 0 {
		t.Fatalf("empty cycle should carry the zero identity: %+v", got[2].Summary)
	}
}

func TestDepartmentBreakdowns(t *testing.T) {
	entries := []DepartmentScores{
		{Department: &models.Department{ID: "D2", Name: "Marketing"}, Scores: []int{7, 8}},
		{Department: &models.Department{ID: "D1", Name: "Engineering"}, Scores: []int{10}},
		{Department: &models.Department{ID: "D3", Name: "Sales"}, Scores: nil},
	}
	got := DepartmentBreakdowns(entries)
	if len(got) != 2 {
		t.Fatalf("empty departments must be filtered: %+v", got)
	}
	// insertion order preserved
	if got[0].DepartmentName != "Marketing" || got[1].DepartmentName != "Engineering" {
		t.Fatalf("input order not preserved: %+v", got)
	}
	if got[1].Summary.ENPS != 100 {
		t.Fatalf("Engineering ENPS=%d, want 100", got[1].Summary.ENPS)
	}
}

type stubReportStore struct {
	cycles      []*models.Cycle
	departments []*models.Department
	responses   []*models.Response
}

func (s *stubReportStore) ListCycles() []*models.Cycle { return s.cycles }

func (s *stubReportStore) GetCycleByMonth(year, month int) *models.Cycle {
	for _, c := range s.cycles {
		if c.Year == year && c.Month == month {
			return c
		}
	}
	return nil
}

func (s *stubReportStore) ListResponses() []*models.Response { return s.responses }

func (s *stubReportStore) ListResponsesByCycle(cycleID string) []*models.Response {
	out := []*models.Response{}
	for _, r := range s.responses {
		if r.CycleID == cycleID {
			out = append(out, r)
		}
	}
	return out
}

func (s *stubReportStore) ListDepartments() []*models.Department { return s.departments }

func newStatsFixture() *stubReportStore {
	return &stubReportStore{
		cycles: []*models.Cycle{monthCycle("C1", 2025, 1), monthCycle("C2", 2025, 2)},
		departments: []*models.Department{
			{ID: "D1", Name: "Engineering"},
			{ID: "D2", Name: "Sales"},
		},
		responses: []*models.Response{
			{ID: "R1", CycleID: "C1", DepartmentID: "D1", Score: 10, Answer1: "Great month"},
			{ID: "R2", CycleID: "C1", DepartmentID: "D1", Score: 0, Answer2: "Too many meetings"},
			{ID: "R3", CycleID: "C2", Score: 9},
		},
	}
}

func TestStatsAllScope(t *testing.T) {
	svc := NewReportService(newStatsFixture())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	rep, err := svc.Stats("all")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if rep.Summary.Count != 3 || rep.Summary.Promoters != 2 || rep.Summary.Detractors != 1 {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}
	if rep.Summary.ENPS != 33 {
		t.Fatalf("ENPS=%d, want 33", rep.Summary.ENPS)
	}
	if len(rep.Trend) != 2 || rep.Trend[0].Period != "2025-01" {
		t.Fatalf("unexpected trend: %+v", rep.Trend)
	}
	if len(rep.Departments) != 1 || rep.Departments[0].DepartmentName != "Engineering" {
		t.Fatalf("unexpected breakdown: %+v", rep.Departments)
	}
	if len(rep.TextAnswers) != 2 {
		t.Fatalf("want 2 text answers, got %v", rep.TextAnswers)
	}
}

func TestStatsMonthScope(t *testing.T) {
	svc := NewReportService(newStatsFixture())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	rep, err := svc.Stats("2025-02")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if rep.Summary.Count != 1 || rep.Summary.ENPS != 100 {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}
	if len(rep.Departments) != 0 {
		t.Fatalf("no department responses expected in 2025-02")
	}
	// trend is independent of scope
	if len(rep.Trend) != 2 {
		t.Fatalf("trend should still cover all cycles in window")
	}
}

func TestStatsUnknownMonthIsEmptyIdentity(t *testing.T) {
	svc := NewReportService(newStatsFixture())
	rep, err := svc.Stats("2030-12")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if rep.Summary != (Summary{}) {
		t.Fatalf("unknown month should aggregate to zero identity: %+v", rep.Summary)
	}
}

func TestStatsInvalidScope(t *testing.T) {
	svc := NewReportService(newStatsFixture())
	for _, scope := range []string{"2025", "2025-13", "25-01", "january", "2025-1"} {
		if _, err := svc.Stats(scope); err == nil {
			t.Fatalf("scope %q should fail", scope)
		} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
			t.Fatalf("scope %q error = %v, want invalid", scope, err)
		}
	}
}
