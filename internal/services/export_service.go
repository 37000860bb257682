package services

import (
	"sort"
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

type ExportStore interface {
	GetCycle(id string) *models.Cycle
	GetCycleByMonth(year, month int) *models.Cycle
	GetDepartment(id string) *models.Department
	ListResponses() []*models.Response
	ListResponsesByCycle(cycleID string) []*models.Response
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	store ExportStore
	now   func() time.Time
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ExportCSV renders the responses matching the scope ("all" or YYYY-MM)
// into the download payload. An empty result set is a not-found error so the
// caller never serves a header-only file.
func (s *ExportService) ExportCSV(scope string) (*ExportResult, error) {
	year, month, all, err := ParseCycleScope(scope)
	if err != nil {
		return nil, err
	}
	normalized := "all"
	var responses []*models.Response
	if all {
		responses = s.store.ListResponses()
	} else {
		normalized = models.PeriodLabel(year, month)
		if c := s.store.GetCycleByMonth(year, month); c != nil {
			responses = s.store.ListResponsesByCycle(c.ID)
		}
	}
	if len(responses) == 0 {
		return nil, NewNotFoundError("no responses found for the specified criteria")
	}

	rows := make([]ExportRow, 0, len(responses))
	for _, r := range responses {
		period := ""
		if c := s.store.GetCycle(r.CycleID); c != nil {
			period = c.Period()
		}
		name := r.Name
		if name == "" {
			name = "Anonymous"
		}
		dept := "Not specified"
		if r.DepartmentID != "" {
			if d := s.store.GetDepartment(r.DepartmentID); d != nil {
				dept = d.Name
			}
		}
		rows = append(rows, ExportRow{
			Period:      period,
			Score:       r.Score,
			Name:        name,
			Department:  dept,
			Answer1:     r.Answer1,
			Answer2:     r.Answer2,
			Answer3:     r.Answer3,
			SubmittedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	// Newest cycles first, newest responses first within a cycle.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period > rows[j].Period
		}
		return rows[i].SubmittedAt > rows[j].SubmittedAt
	})

	return &ExportResult{
		Filename:    ExportFilename(normalized, s.now()),
		ContentType: "text/csv; charset=utf-8",
		Data:        RenderCSV(rows),
	}, nil
}
