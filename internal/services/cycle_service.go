package services

import (
	"strings"
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

// CycleStore abstracts the persistence operations the cycle workflow needs.
type CycleStore interface {
	AddCycle(c *models.Cycle)
	UpdateCycle(c *models.Cycle) bool
	GetCycle(id string) *models.Cycle
	GetCycleByMonth(year, month int) *models.Cycle
	ListCycles() []*models.Cycle
	AddQuestions(qs []*models.Question)
	ListQuestions(cycleID string) []*models.Question
	CountResponsesByCycle(cycleID string) int
}

type CycleService struct {
	store CycleStore
	now   func() time.Time
	idGen func() string
}

func NewCycleService(store CycleStore) *CycleService {
	return &CycleService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(12) },
	}
}

type QuestionInput struct {
	Order int    `json:"order"`
	Text  string `json:"text"`
}

type CreateCycleRequest struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	StartsAt  time.Time       `json:"starts_at"`
	EndsAt    time.Time       `json:"ends_at"`
	Questions []QuestionInput `json:"questions"`
}

type UpdateCycleRequest struct {
	IsActive *bool      `json:"is_active,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// CycleView is a cycle joined with its questions and response count.
type CycleView struct {
	*models.Cycle
	Period        string             `json:"period"`
	Questions     []*models.Question `json:"questions"`
	ResponseCount int                `json:"response_count"`
}

func (s *CycleService) CreateCycle(req CreateCycleRequest) (*CycleView, error) {
	if req.Year < 2020 || req.Year > 2100 {
		return nil, NewInvalidError("year must be between 2020 and 2100")
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, NewInvalidError("month must be between 1 and 12")
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() || !req.StartsAt.Before(req.EndsAt) {
		return nil, NewInvalidError("starts_at must precede ends_at")
	}
	if len(req.Questions) < 1 || len(req.Questions) > 3 {
		return nil, NewInvalidError("between 1 and 3 questions required")
	}
	for _, q := range req.Questions {
		if q.Order < 1 || q.Order > 3 {
			return nil, NewInvalidError("question order must be between 1 and 3")
		}
		text := strings.TrimSpace(q.Text)
		if text == "" || len(text) > 500 {
			return nil, NewInvalidError("question text must be 1-500 characters")
		}
	}
	if existing := s.store.GetCycleByMonth(req.Year, req.Month); existing != nil {
		return nil, NewConflictError("cycle already exists for this month")
	}

	c := &models.Cycle{
		ID:       s.idGen(),
		Year:     req.Year,
		Month:    req.Month,
		StartsAt: req.StartsAt.UTC(),
		EndsAt:   req.EndsAt.UTC(),
		IsActive: true,
	}
	s.store.AddCycle(c)

	qs := make([]*models.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		qs = append(qs, &models.Question{
			ID:      s.idGen(),
			CycleID: c.ID,
			Order:   q.Order,
			Text:    strings.TrimSpace(q.Text),
		})
	}
	s.store.AddQuestions(qs)
	return s.view(c), nil
}

func (s *CycleService) UpdateCycle(id string, req UpdateCycleRequest) (*CycleView, error) {
	c := s.store.GetCycle(id)
	if c == nil {
		return nil, ErrCycleNotFound
	}
	// Apply changes to a copy so a rejected request never leaves the stored
	// cycle half-updated.
	uc := *c
	if req.IsActive != nil {
		uc.IsActive = *req.IsActive
	}
	if req.EndsAt != nil {
		if !uc.StartsAt.Before(*req.EndsAt) {
			return nil, NewInvalidError("ends_at must follow starts_at")
		}
		uc.EndsAt = req.EndsAt.UTC()
	}
	if !s.store.UpdateCycle(&uc) {
		return nil, ErrCycleNotFound
	}
	return s.view(&uc), nil
}

// ListCycles returns all cycles with questions and counts, newest first
// (store order).
func (s *CycleService) ListCycles() []*CycleView {
	cycles := s.store.ListCycles()
	out := make([]*CycleView, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, s.view(c))
	}
	return out
}

// ActiveCycles returns every cycle currently open for submission. The model
// does not guarantee exclusivity, so zero or several entries are possible.
func (s *CycleService) ActiveCycles() []*models.Cycle {
	now := s.now()
	out := []*models.Cycle{}
	for _, c := range s.store.ListCycles() {
		if IsOpen(c, now) {
			out = append(out, c)
		}
	}
	return out
}

// Bootstrap seeds a default active cycle for the current month with the two
// standard prompts when the store has no cycles yet. Returns true if seeded.
func (s *CycleService) Bootstrap() bool {
	if len(s.store.ListCycles()) > 0 {
		return false
	}
	now := s.now()
	year, month := now.Year(), int(now.Month())
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	c := &models.Cycle{
		ID:       s.idGen(),
		Year:     year,
		Month:    month,
		StartsAt: start,
		EndsAt:   end,
		IsActive: true,
	}
	s.store.AddCycle(c)
	s.store.AddQuestions([]*models.Question{
		{ID: s.idGen(), CycleID: c.ID, Order: 1, Text: "What went well for you at Propellic this month?"},
		{ID: s.idGen(), CycleID: c.ID, Order: 2, Text: "What could we improve next month?"},
	})
	return true
}

func (s *CycleService) view(c *models.Cycle) *CycleView {
	return &CycleView{
		Cycle:         c,
		Period:        c.Period(),
		Questions:     s.store.ListQuestions(c.ID),
		ResponseCount: s.store.CountResponsesByCycle(c.ID),
	}
}
