package api

import "github.com/pixelcutlabs/propellic-pulse/internal/models"

// Store is the persistence surface shared by the memory store and the
// SQLite store. Read methods return nil/empty on miss; AddResponse is the
// only method that can fail, and it must reject a duplicate submission hash
// atomically (services.ErrDuplicateSubmission).
type Store interface {
	AddCycle(c *models.Cycle)
	UpdateCycle(c *models.Cycle) bool
	GetCycle(id string) *models.Cycle
	GetCycleByMonth(year, month int) *models.Cycle
	ListCycles() []*models.Cycle

	AddQuestions(qs []*models.Question)
	ListQuestions(cycleID string) []*models.Question

	AddDepartment(d *models.Department)
	GetDepartment(id string) *models.Department
	GetDepartmentByName(name string) *models.Department
	ListDepartments() []*models.Department

	AddResponse(r *models.Response) error
	GetResponseByFingerprint(hash string) *models.Response
	ListResponses() []*models.Response
	ListResponsesByCycle(cycleID string) []*models.Response
	CountResponsesByCycle(cycleID string) int

	AddUser(u *models.User)
	FindUserByEmail(email string) *models.User
}

var _ Store = (*memoryStore)(nil)
