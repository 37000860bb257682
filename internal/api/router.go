package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/middleware"
	"github.com/pixelcutlabs/propellic-pulse/internal/services"
	"github.com/pixelcutlabs/propellic-pulse/internal/utils"
)

type Router struct {
	store       Store
	submissions *services.SubmissionService
	cycles      *services.CycleService
	departments *services.DepartmentService
	reports     *services.ReportService
	exports     *services.ExportService
	auth        *services.AuthService
}

func NewRouter(store Store) *Router {
	return &Router{
		store:       store,
		submissions: services.NewSubmissionService(store),
		cycles:      services.NewCycleService(store),
		departments: services.NewDepartmentService(store),
		reports:     services.NewReportService(store),
		exports:     services.NewExportService(store),
		auth: services.NewAuthService(store, middleware.SignToken,
			utils.SafeEnv("PULSE_ALLOWED_EMAIL_DOMAIN", "")),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("/api/submit", rt.handleSubmit)           // POST
	mux.HandleFunc("/api/cycles", rt.handleCycles)           // GET, POST (POST is admin)
	mux.Handle("/api/cycles/", admin(rt.handleCycleScoped))  // PATCH /api/cycles/{id}
	mux.HandleFunc("/api/departments", rt.handleDepartments) // GET, POST (POST is admin)
	mux.HandleFunc("/api/stats", rt.handleStats)             // GET
	mux.Handle("/api/export.csv", admin(rt.handleExport))    // GET
	mux.HandleFunc("/api/auth/register", rt.handleRegister)  // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)        // POST
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]any{"error": se.Message})
		return
	}
	log.Printf("api: internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
}

// requireUser gates admin endpoints on a valid bearer token.
func requireUser(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return false
	}
	return true
}

// POST /api/submit
// {cycle_id, score, answers[], name?, department_id?, website?}
// "website" is the honeypot field: real users never fill it.
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		CycleID      string   `json:"cycle_id"`
		Score        int      `json:"score"`
		Answers      []string `json:"answers"`
		Name         string   `json:"name"`
		DepartmentID string   `json:"department_id"`
		Honeypot     string   `json:"website"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	res, err := rt.submissions.Submit(services.SubmitRequest{
		CycleID:      req.CycleID,
		Score:        req.Score,
		Answers:      req.Answers,
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		Honeypot:     req.Honeypot,
		ClientIP:     utils.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	if res.Spam {
		// indistinguishable from success on purpose
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "response_id": res.ResponseID})
}

// GET /api/cycles | POST /api/cycles
func (rt *Router) handleCycles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		// first run on an empty database seeds a default open cycle and
		// the default departments so the survey form works immediately
		rt.cycles.Bootstrap()
		rt.departments.Bootstrap()
		writeJSON(w, http.StatusOK, map[string]any{"cycles": rt.cycles.ListCycles()})
	case http.MethodPost:
		if !requireUser(w, r) {
			return
		}
		var req services.CreateCycleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
			return
		}
		view, err := rt.cycles.CreateCycle(req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "cycle": view})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// PATCH /api/cycles/{id}
func (rt *Router) handleCycleScoped(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/cycles/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req services.UpdateCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	view, err := rt.cycles.UpdateCycle(id, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cycle": view})
}

// GET /api/departments | POST /api/departments
func (rt *Router) handleDepartments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.departments.Bootstrap()
		writeJSON(w, http.StatusOK, map[string]any{"departments": rt.departments.ListDepartments()})
	case http.MethodPost:
		if !requireUser(w, r) {
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
			return
		}
		d, err := rt.departments.CreateDepartment(req.Name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "department": d})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/stats?cycle=all|YYYY-MM
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rep, err := rt.reports.Stats(r.URL.Query().Get("cycle"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GET /api/export.csv?cycle=all|YYYY-MM
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := rt.exports.ExportCSV(r.URL.Query().Get("cycle"))
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	_, _ = w.Write(res.Data)
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	rt.handleCredentials(w, r, rt.auth.Register)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	rt.handleCredentials(w, r, rt.auth.Login)
}

func (rt *Router) handleCredentials(w http.ResponseWriter, r *http.Request, fn func(email, password string) (*services.AuthResult, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	res, err := fn(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      res.Token,
		"user_id":    res.UserID,
		"email":      res.Email,
		"expires_in": int(rt.auth.TokenTTL() / time.Second),
	})
}
