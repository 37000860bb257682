package services

import (
	"strings"
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

// SubmissionStore abstracts persistence for the submission workflow.
// AddResponse must be atomic with respect to the submission hash: when a
// record with the same hash already exists the insert fails with
// ErrDuplicateSubmission (in SQLite this is the unique index on
// submission_hash). The fingerprint lookup here is the advisory fast path.
type SubmissionStore interface {
	GetCycle(id string) *models.Cycle
	GetDepartment(id string) *models.Department
	GetResponseByFingerprint(hash string) *models.Response
	AddResponse(r *models.Response) error
}

// SubmitRequest transports the sanitized handler input into the service
// layer. ClientIP and UserAgent come from the transport and feed only the
// fingerprint; they are never stored.
type SubmitRequest struct {
	CycleID      string
	Score        int
	Answers      []string
	Name         string
	DepartmentID string
	Honeypot     string
	ClientIP     string
	UserAgent    string
}

// SubmitResult reports the outcome. Spam is the only silent path: the
// honeypot tripped, we claim success, and ResponseID stays empty.
type SubmitResult struct {
	ResponseID string
	Spam       bool
}

type SubmissionService struct {
	store SubmissionStore
	now   func() time.Time
	idGen func() string
}

func NewSubmissionService(store SubmissionStore) *SubmissionService {
	return &SubmissionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(12) },
	}
}

// Submit runs the full submission workflow: honeypot check, score and cycle
// validation, fingerprint dedup, persist.
func (s *SubmissionService) Submit(req SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.Honeypot) != "" {
		// Bot detected: pretend success, persist nothing.
		return &SubmitResult{Spam: true}, nil
	}

	if _, err := Classify(req.Score); err != nil {
		return nil, err
	}
	if len(req.Answers) > 3 {
		return nil, NewInvalidError("at most 3 answers allowed")
	}

	now := s.now()
	cycle := s.store.GetCycle(req.CycleID)
	if err := ValidateForSubmission(cycle, now); err != nil {
		return nil, err
	}

	departmentID := ""
	if strings.TrimSpace(req.DepartmentID) != "" {
		if d := s.store.GetDepartment(req.DepartmentID); d != nil {
			departmentID = d.ID
		}
	}

	hash := Fingerprint(req.ClientIP, req.UserAgent, cycle.ID, DayBucket(now))
	if s.store.GetResponseByFingerprint(hash) != nil {
		return nil, ErrDuplicateSubmission
	}

	r := &models.Response{
		ID:             s.idGen(),
		CycleID:        cycle.ID,
		DepartmentID:   departmentID,
		Score:          req.Score,
		Name:           strings.TrimSpace(req.Name),
		SubmissionHash: hash,
		CreatedAt:      now,
	}
	answers := [3]*string{&r.Answer1, &r.Answer2, &r.Answer3}
	for i, a := range req.Answers {
		*answers[i] = strings.TrimSpace(a)
	}

	// The advisory check above can race; the store's uniqueness guarantee
	// is what actually rejects the second concurrent duplicate.
	if err := s.store.AddResponse(r); err != nil {
		return nil, err
	}
	return &SubmitResult{ResponseID: r.ID}, nil
}
