package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/pixelcutlabs/propellic-pulse/internal/api"
	"github.com/pixelcutlabs/propellic-pulse/internal/models"
	"github.com/pixelcutlabs/propellic-pulse/internal/services"
)

// SQLiteStore is the durable api.Store. The UNIQUE index on
// responses.submission_hash is the authoritative insert-if-absent guarantee
// for duplicate submissions; everything upstream of it is advisory.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func toNullString(v string) sql.NullString {
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func fromNullString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Printf("sqlite store: decode time %q: %v", s, err)
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) AddCycle(c *models.Cycle) {
	_, err := s.db.Exec(
		`INSERT INTO cycles (id, year, month, starts_at, ends_at, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Year, c.Month, encodeTime(c.StartsAt), encodeTime(c.EndsAt), boolToInt64(c.IsActive),
	)
	s.logErr("add cycle", err)
}

func (s *SQLiteStore) UpdateCycle(c *models.Cycle) bool {
	res, err := s.db.Exec(
		`UPDATE cycles SET year = ?, month = ?, starts_at = ?, ends_at = ?, is_active = ? WHERE id = ?`,
		c.Year, c.Month, encodeTime(c.StartsAt), encodeTime(c.EndsAt), boolToInt64(c.IsActive), c.ID,
	)
	if err != nil {
		s.logErr("update cycle", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.logErr("update cycle rows", err)
		return false
	}
	return n > 0
}

func (s *SQLiteStore) scanCycle(row *sql.Row) *models.Cycle {
	var c models.Cycle
	var startsAt, endsAt string
	var active int64
	err := row.Scan(&c.ID, &c.Year, &c.Month, &startsAt, &endsAt, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("scan cycle", err)
		return nil
	}
	c.StartsAt = decodeTime(startsAt)
	c.EndsAt = decodeTime(endsAt)
	c.IsActive = active != 0
	return &c
}

func (s *SQLiteStore) GetCycle(id string) *models.Cycle {
	return s.scanCycle(s.db.QueryRow(
		`SELECT id, year, month, starts_at, ends_at, is_active FROM cycles WHERE id = ?`, id))
}

func (s *SQLiteStore) GetCycleByMonth(year, month int) *models.Cycle {
	return s.scanCycle(s.db.QueryRow(
		`SELECT id, year, month, starts_at, ends_at, is_active FROM cycles WHERE year = ? AND month = ?`,
		year, month))
}

func (s *SQLiteStore) ListCycles() []*models.Cycle {
	rows, err := s.db.Query(
		`SELECT id, year, month, starts_at, ends_at, is_active FROM cycles ORDER BY year DESC, month DESC`)
	if err != nil {
		s.logErr("list cycles", err)
		return nil
	}
	defer func() { _ = rows.Close() }()
	out := []*models.Cycle{}
	for rows.Next() {
		var c models.Cycle
		var startsAt, endsAt string
		var active int64
		if err := rows.Scan(&c.ID, &c.Year, &c.Month, &startsAt, &endsAt, &active); err != nil {
			s.logErr("scan cycle row", err)
			continue
		}
		c.StartsAt = decodeTime(startsAt)
		c.EndsAt = decodeTime(endsAt)
		c.IsActive = active != 0
		out = append(out, &c)
	}
	s.logErr("list cycles rows", rows.Err())
	return out
}

func (s *SQLiteStore) AddQuestions(qs []*models.Question) {
	for _, q := range qs {
		_, err := s.db.Exec(
			`INSERT INTO questions (id, cycle_id, ord, text) VALUES (?, ?, ?, ?)`,
			q.ID, q.CycleID, q.Order, q.Text,
		)
		s.logErr("add question", err)
	}
}

func (s *SQLiteStore) ListQuestions(cycleID string) []*models.Question {
	rows, err := s.db.Query(
		`SELECT id, cycle_id, ord, text FROM questions WHERE cycle_id = ? ORDER BY ord ASC`, cycleID)
	if err != nil {
		s.logErr("list questions", err)
		return nil
	}
	defer func() { _ = rows.Close() }()
	out := []*models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.CycleID, &q.Order, &q.Text); err != nil {
			s.logErr("scan question", err)
			continue
		}
		out = append(out, &q)
	}
	s.logErr("list questions rows", rows.Err())
	return out
}

func (s *SQLiteStore) AddDepartment(d *models.Department) {
	_, err := s.db.Exec(`INSERT INTO departments (id, name) VALUES (?, ?)`, d.ID, d.Name)
	s.logErr("add department", err)
}

func (s *SQLiteStore) GetDepartment(id string) *models.Department {
	var d models.Department
	err := s.db.QueryRow(`SELECT id, name FROM departments WHERE id = ?`, id).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get department", err)
		return nil
	}
	return &d
}

func (s *SQLiteStore) GetDepartmentByName(name string) *models.Department {
	var d models.Department
	err := s.db.QueryRow(`SELECT id, name FROM departments WHERE name = ? COLLATE NOCASE`, name).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get department by name", err)
		return nil
	}
	return &d
}

func (s *SQLiteStore) ListDepartments() []*models.Department {
	rows, err := s.db.Query(`SELECT id, name FROM departments ORDER BY name ASC`)
	if err != nil {
		s.logErr("list departments", err)
		return nil
	}
	defer func() { _ = rows.Close() }()
	out := []*models.Department{}
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			s.logErr("scan department", err)
			continue
		}
		out = append(out, &d)
	}
	s.logErr("list departments rows", rows.Err())
	return out
}

// AddResponse relies on the submission_hash unique index for atomicity:
// a constraint violation means a concurrent duplicate won and is reported
// as services.ErrDuplicateSubmission.
func (s *SQLiteStore) AddResponse(r *models.Response) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (id, cycle_id, department_id, score, answer1, answer2, answer3, name, submission_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CycleID, toNullString(r.DepartmentID), r.Score,
		toNullString(r.Answer1), toNullString(r.Answer2), toNullString(r.Answer3),
		toNullString(r.Name), r.SubmissionHash, encodeTime(r.CreatedAt),
	)
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return services.ErrDuplicateSubmission
	}
	s.logErr("add response", err)
	return err
}

func (s *SQLiteStore) GetResponseByFingerprint(hash string) *models.Response {
	return s.scanResponse(s.db.QueryRow(
		`SELECT id, cycle_id, department_id, score, answer1, answer2, answer3, name, submission_hash, created_at
		 FROM responses WHERE submission_hash = ?`, hash))
}

func (s *SQLiteStore) scanResponse(row *sql.Row) *models.Response {
	var r models.Response
	var dept, a1, a2, a3, name sql.NullString
	var createdAt string
	err := row.Scan(&r.ID, &r.CycleID, &dept, &r.Score, &a1, &a2, &a3, &name, &r.SubmissionHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("scan response", err)
		return nil
	}
	r.DepartmentID = fromNullString(dept)
	r.Answer1 = fromNullString(a1)
	r.Answer2 = fromNullString(a2)
	r.Answer3 = fromNullString(a3)
	r.Name = fromNullString(name)
	r.CreatedAt = decodeTime(createdAt)
	return &r
}

func (s *SQLiteStore) queryResponses(query string, args ...any) []*models.Response {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logErr("query responses", err)
		return nil
	}
	defer func() { _ = rows.Close() }()
	out := []*models.Response{}
	for rows.Next() {
		var r models.Response
		var dept, a1, a2, a3, name sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.CycleID, &dept, &r.Score, &a1, &a2, &a3, &name, &r.SubmissionHash, &createdAt); err != nil {
			s.logErr("scan response row", err)
			continue
		}
		r.DepartmentID = fromNullString(dept)
		r.Answer1 = fromNullString(a1)
		r.Answer2 = fromNullString(a2)
		r.Answer3 = fromNullString(a3)
		r.Name = fromNullString(name)
		r.CreatedAt = decodeTime(createdAt)
		out = append(out, &r)
	}
	s.logErr("query responses rows", rows.Err())
	return out
}

func (s *SQLiteStore) ListResponses() []*models.Response {
	return s.queryResponses(
		`SELECT id, cycle_id, department_id, score, answer1, answer2, answer3, name, submission_hash, created_at
		 FROM responses ORDER BY created_at ASC`)
}

func (s *SQLiteStore) ListResponsesByCycle(cycleID string) []*models.Response {
	return s.queryResponses(
		`SELECT id, cycle_id, department_id, score, answer1, answer2, answer3, name, submission_hash, created_at
		 FROM responses WHERE cycle_id = ? ORDER BY created_at ASC`, cycleID)
}

func (s *SQLiteStore) CountResponsesByCycle(cycleID string) int {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM responses WHERE cycle_id = ?`, cycleID).Scan(&n)
	if err != nil {
		s.logErr("count responses", err)
		return 0
	}
	return n
}

func (s *SQLiteStore) AddUser(u *models.User) {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, encodeTime(u.CreatedAt),
	)
	s.logErr("add user", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *models.User {
	var u models.User
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, email, pass_hash, created_at FROM users WHERE email = ? COLLATE NOCASE`, email,
	).Scan(&u.ID, &u.Email, &u.PassHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("find user", err)
		return nil
	}
	u.CreatedAt = decodeTime(createdAt)
	return &u
}
