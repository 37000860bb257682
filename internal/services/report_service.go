package services

import (
	"sort"
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

// CycleScores pairs a cycle with the scores recorded during it.
type CycleScores struct {
	Cycle  *models.Cycle
	Scores []int
}

// DepartmentScores pairs a department with the scores attributed to it.
type DepartmentScores struct {
	Department *models.Department
	Scores     []int
}

type TrendPoint struct {
	Period  string  `json:"period"` // YYYY-MM
	Summary Summary `json:"summary"`
}

type DepartmentBreakdown struct {
	DepartmentID   string  `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	Summary        Summary `json:"summary"`
}

// TrendSeries aggregates per-cycle summaries over the trailing window of
// months, ordered by cycle start ascending. Cycles whose StartsAt precedes
// now minus the window are dropped.
func TrendSeries(entries []CycleScores, windowMonths int, now time.Time) []TrendPoint {
	if windowMonths <= 0 {
		windowMonths = 12
	}
	cutoff := now.AddDate(0, -windowMonths, 0)
	kept := make([]CycleScores, 0, len(entries))
	for _, e := range entries {
		if e.Cycle == nil || e.Cycle.StartsAt.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Cycle.StartsAt.Before(kept[j].Cycle.StartsAt)
	})
	out := make([]TrendPoint, 0, len(kept))
	for _, e := range kept {
		out = append(out, TrendPoint{Period: e.Cycle.Period(), Summary: ComputeENPS(e.Scores)})
	}
	return out
}

// DepartmentBreakdowns aggregates per-department summaries, keeping input
// order and skipping departments without responses.
func DepartmentBreakdowns(entries []DepartmentScores) []DepartmentBreakdown {
	out := make([]DepartmentBreakdown, 0, len(entries))
	for _, e := range entries {
		if e.Department == nil || len(e.Scores) == 0 {
			continue
		}
		out = append(out, DepartmentBreakdown{
			DepartmentID:   e.Department.ID,
			DepartmentName: e.Department.Name,
			Summary:        ComputeENPS(e.Scores),
		})
	}
	return out
}

// ReportStore abstracts the read side the reporter queries.
type ReportStore interface {
	ListCycles() []*models.Cycle
	GetCycleByMonth(year, month int) *models.Cycle
	ListResponses() []*models.Response
	ListResponsesByCycle(cycleID string) []*models.Response
	ListDepartments() []*models.Department
}

// StatsReport is the dashboard payload: overall summary for the requested
// scope, trailing trend, department breakdown and raw free-text answers.
type StatsReport struct {
	Scope       string                `json:"scope"`
	Summary     Summary               `json:"summary"`
	Trend       []TrendPoint          `json:"trend"`
	Departments []DepartmentBreakdown `json:"departments"`
	TextAnswers []string              `json:"text_answers"`
}

type ReportService struct {
	store ReportStore
	now   func() time.Time
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Stats builds the report for scope "all" or a YYYY-MM period. An unknown
// period yields an empty (zero-identity) summary, while a malformed scope is
// a validation error. The trend always spans the trailing 12 months
// regardless of scope, matching the dashboard contract.
func (s *ReportService) Stats(scope string) (*StatsReport, error) {
	year, month, all, err := ParseCycleScope(scope)
	if err != nil {
		return nil, err
	}

	var scoped []*models.Response
	if all {
		scoped = s.store.ListResponses()
	} else if c := s.store.GetCycleByMonth(year, month); c != nil {
		scoped = s.store.ListResponsesByCycle(c.ID)
	}

	scores := make([]int, 0, len(scoped))
	texts := []string{}
	byDept := map[string][]int{}
	for _, r := range scoped {
		scores = append(scores, r.Score)
		texts = append(texts, r.Answers()...)
		if r.DepartmentID != "" {
			byDept[r.DepartmentID] = append(byDept[r.DepartmentID], r.Score)
		}
	}

	trendEntries := []CycleScores{}
	for _, c := range s.store.ListCycles() {
		rs := s.store.ListResponsesByCycle(c.ID)
		cs := CycleScores{Cycle: c, Scores: make([]int, 0, len(rs))}
		for _, r := range rs {
			cs.Scores = append(cs.Scores, r.Score)
		}
		trendEntries = append(trendEntries, cs)
	}

	deptEntries := []DepartmentScores{}
	for _, d := range s.store.ListDepartments() {
		deptEntries = append(deptEntries, DepartmentScores{Department: d, Scores: byDept[d.ID]})
	}

	normalized := scope
	if all {
		normalized = "all"
	}
	return &StatsReport{
		Scope:       normalized,
		Summary:     ComputeENPS(scores),
		Trend:       TrendSeries(trendEntries, 12, s.now()),
		Departments: DepartmentBreakdowns(deptEntries),
		TextAnswers: texts,
	}, nil
}
