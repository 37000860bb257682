package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
	"github.com/pixelcutlabs/propellic-pulse/internal/services"
)

// memoryStore backs tests and ephemeral deployments. The SQLite store in
// internal/db is the durable implementation.
type memoryStore struct {
	mu           sync.RWMutex
	cycles       map[string]*models.Cycle
	questions    map[string][]*models.Question
	departments  map[string]*models.Department
	responses    []*models.Response
	byHash       map[string]*models.Response
	usersByEmail map[string]*models.User
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store { return newMemoryStore() }

func newMemoryStore() *memoryStore {
	return &memoryStore{
		cycles:       map[string]*models.Cycle{},
		questions:    map[string][]*models.Question{},
		departments:  map[string]*models.Department{},
		responses:    []*models.Response{},
		byHash:       map[string]*models.Response{},
		usersByEmail: map[string]*models.User{},
	}
}

func (s *memoryStore) AddCycle(c *models.Cycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles[c.ID] = c
}

func (s *memoryStore) UpdateCycle(c *models.Cycle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cycles[c.ID]; !ok {
		return false
	}
	s.cycles[c.ID] = c
	return true
}

func (s *memoryStore) GetCycle(id string) *models.Cycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles[id]
}

func (s *memoryStore) GetCycleByMonth(year, month int) *models.Cycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cycles {
		if c.Year == year && c.Month == month {
			return c
		}
	}
	return nil
}

// ListCycles returns cycles newest first (year desc, month desc).
func (s *memoryStore) ListCycles() []*models.Cycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Cycle, 0, len(s.cycles))
	for _, c := range s.cycles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

func (s *memoryStore) AddQuestions(qs []*models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range qs {
		s.questions[q.CycleID] = append(s.questions[q.CycleID], q)
	}
	for cid := range s.questions {
		qs := s.questions[cid]
		sort.Slice(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
	}
}

func (s *memoryStore) ListQuestions(cycleID string) []*models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Question(nil), s.questions[cycleID]...)
}

func (s *memoryStore) AddDepartment(d *models.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[d.ID] = d
}

func (s *memoryStore) GetDepartment(id string) *models.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departments[id]
}

func (s *memoryStore) GetDepartmentByName(name string) *models.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.departments {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

// ListDepartments returns departments name ascending.
func (s *memoryStore) ListDepartments() []*models.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddResponse is the atomic insert-if-absent on the submission hash: the
// check and the append happen under one write lock, so two concurrent
// duplicates cannot both land.
func (s *memoryStore) AddResponse(r *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byHash[r.SubmissionHash]; ok {
		return services.ErrDuplicateSubmission
	}
	s.byHash[r.SubmissionHash] = r
	s.responses = append(s.responses, r)
	return nil
}

func (s *memoryStore) GetResponseByFingerprint(hash string) *models.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byHash[hash]
}

func (s *memoryStore) ListResponses() []*models.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Response(nil), s.responses...)
}

func (s *memoryStore) ListResponsesByCycle(cycleID string) []*models.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Response{}
	for _, r := range s.responses {
		if r.CycleID == cycleID {
			out = append(out, r)
		}
	}
	return out
}

func (s *memoryStore) CountResponsesByCycle(cycleID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.responses {
		if r.CycleID == cycleID {
			n++
		}
	}
	return n
}

func (s *memoryStore) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
}

func (s *memoryStore) FindUserByEmail(email string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)]
}
