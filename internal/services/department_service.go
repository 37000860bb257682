package services

import (
	"strings"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

// defaultDepartments seed an empty installation so the survey form has
// segments to offer on first run.
var defaultDepartments = []string{"Operations", "Marketing", "Sales", "Engineering"}

type DepartmentStore interface {
	AddDepartment(d *models.Department)
	GetDepartmentByName(name string) *models.Department
	ListDepartments() []*models.Department
}

type DepartmentService struct {
	store DepartmentStore
	idGen func() string
}

func NewDepartmentService(store DepartmentStore) *DepartmentService {
	return &DepartmentService{
		store: store,
		idGen: func() string { return shortID(12) },
	}
}

func (s *DepartmentService) CreateDepartment(name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, NewInvalidError("department name must be 1-100 characters")
	}
	if existing := s.store.GetDepartmentByName(name); existing != nil {
		return nil, NewConflictError("department already exists")
	}
	d := &models.Department{ID: s.idGen(), Name: name}
	s.store.AddDepartment(d)
	return d, nil
}

// ListDepartments returns departments in store order (name ascending).
func (s *DepartmentService) ListDepartments() []*models.Department {
	return s.store.ListDepartments()
}

// Bootstrap seeds the default departments when none exist yet.
func (s *DepartmentService) Bootstrap() bool {
	if len(s.store.ListDepartments()) > 0 {
		return false
	}
	for _, name := range defaultDepartments {
		s.store.AddDepartment(&models.Department{ID: s.idGen(), Name: name})
	}
	return true
}
