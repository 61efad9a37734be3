package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/medcompanion/internal/audit"
	"github.com/mrlokans/medcompanion/internal/database"
	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/scheduler"
	"github.com/mrlokans/medcompanion/internal/services"
	"github.com/mrlokans/medcompanion/internal/session"
	"github.com/mrlokans/medcompanion/internal/tasks"
)

type fakeQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
}

func (f *fakeQueue) Enqueue(tasks ...backlite.Task) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, tasks...)
	return []string{"task-1"}, nil
}

func (f *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	if taskID == "task-1" {
		return backlite.TaskStatusPending, nil
	}
	return backlite.TaskStatusNotFound, nil
}

type fakeReminders []scheduler.UpcomingDose

func (f fakeReminders) Upcoming() []scheduler.UpcomingDose { return f }

type failingPinger struct{}

func (failingPinger) Ping() error { return errors.New("database is locked") }

type testEnv struct {
	db      *database.Database
	audit   *audit.Service
	service *services.Service
	session *session.Session
	queue   *fakeQueue
	router  *gin.Engine
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	auditSvc := audit.NewService(db.Audit(), logger)
	svc := services.NewService(services.Stores{
		Accounts:    db.Accounts(),
		Medicines:   db.Medicines(),
		Preferences: db.Preferences(),
	}, auditSvc, bcrypt.MinCost, logger)
	sess := session.New(svc, logger)
	queue := &fakeQueue{}

	router := NewRouter(RouterConfig{
		Session:            sess,
		Medicines:          svc,
		Database:           db,
		Auditor:            auditSvc,
		TaskQueue:          queue,
		Reminders:          fakeReminders{{MedicineID: 1, Name: "Aspirin", Slot: "08:00"}},
		AuditRetentionDays: 30,
		Version:            "test",
		Now: func() time.Time {
			return time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
		},
	})

	t.Cleanup(func() {
		sess.Close()
		auditSvc.Flush()
		db.Close()
	})
	return &testEnv{db: db, audit: auditSvc, service: svc, session: sess, queue: queue, router: router}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerAndLogin(t *testing.T, username, email string) *entities.User {
	t.Helper()
	w := e.do(t, "POST", "/api/register", RegisterRequest{Username: username, Email: email, Password: "secret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, "POST", "/api/login", LoginRequest{Email: email, Password: "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Account
}

func (e *testEnv) addMedicine(t *testing.T, name, timeLabel string) entities.Medicine {
	t.Helper()
	w := e.do(t, "POST", "/api/medicines", MedicineRequest{Name: name, Dosage: "1 tablet", Frequency: "daily", Time: timeLabel})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var m entities.Medicine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		env := setupTestRouter(t)

		w := env.do(t, "GET", "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[HealthResponse](t, w)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "test", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Equal(t, "enabled", response.Checks["tasks"])
		assert.NotEmpty(t, response.Time)
	})

	t.Run("returns unhealthy when ping fails", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/health", NewHealthController(failingPinger{}, false, "").Status)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		response := decode[HealthResponse](t, w)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "database is locked")
	})
}

func TestAccountController(t *testing.T) {
	t.Run("register then login", func(t *testing.T) {
		env := setupTestRouter(t)

		user := env.registerAndLogin(t, "alice", "a@x.com")
		assert.Equal(t, "alice", user.Username)

		w := env.do(t, "GET", "/api/session", nil)
		resp := decode[SessionResponse](t, w)
		assert.Equal(t, "logged_in", resp.State)
		assert.Equal(t, user.ID, resp.Account.ID)
		assert.NotEmpty(t, resp.SessionID)
		assert.Equal(t, env.session.SessionID(), resp.SessionID)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		w := env.do(t, "POST", "/api/register", RegisterRequest{Username: "alice2", Email: "a@x.com", Password: "other"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "duplicate_email", decode[ErrorResponse](t, w).Code)
	})

	t.Run("blank fields are rejected before reaching the store", func(t *testing.T) {
		env := setupTestRouter(t)

		w := env.do(t, "POST", "/api/register", RegisterRequest{Username: "   ", Email: "a@x.com", Password: "secret"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_failed", decode[ErrorResponse](t, w).Code)

		w = env.do(t, "POST", "/api/register", map[string]string{"email": "a@x.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		count, err := env.db.Accounts().Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("wrong password is unauthorized and keeps state", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")
		env.do(t, "POST", "/api/logout", nil)

		w := env.do(t, "POST", "/api/login", LoginRequest{Email: "a@x.com", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", decode[ErrorResponse](t, w).Code)
		assert.Equal(t, session.LoggedOut, env.session.State())
	})

	t.Run("logout clears the session", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		w := env.do(t, "POST", "/api/logout", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decode[SessionResponse](t, env.do(t, "GET", "/api/session", nil))
		assert.Equal(t, "logged_out", resp.State)
		assert.Nil(t, resp.Account)

		w = env.do(t, "GET", "/api/medicines", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "not_logged_in", decode[ErrorResponse](t, w).Code)
	})
}

func TestMedicinesController(t *testing.T) {
	t.Run("crud for the logged-in account", func(t *testing.T) {
		env := setupTestRouter(t)
		user := env.registerAndLogin(t, "alice", "a@x.com")

		created := env.addMedicine(t, "Aspirin", "Morning")
		assert.NotZero(t, created.ID)
		assert.Equal(t, user.ID, created.UserID)

		list := decode[[]entities.Medicine](t, env.do(t, "GET", "/api/medicines", nil))
		require.Len(t, list, 1)
		assert.Equal(t, "Aspirin", list[0].Name)

		w := env.do(t, "PUT", "/api/medicines/"+itoa(created.ID), MedicineRequest{Name: "Aspirin", Dosage: "2 tablets", Frequency: "daily", Time: "Evening"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "2 tablets", decode[entities.Medicine](t, w).Dosage)

		got := decode[entities.Medicine](t, env.do(t, "GET", "/api/medicines/"+itoa(created.ID), nil))
		assert.Equal(t, "Evening", got.Time)

		w = env.do(t, "DELETE", "/api/medicines/"+itoa(created.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		list = decode[[]entities.Medicine](t, env.do(t, "GET", "/api/medicines", nil))
		assert.Empty(t, list)
	})

	t.Run("another account's medicine is not found", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "bob", "b@x.com")
		bobs := env.addMedicine(t, "Ibuprofen", "Noon")
		env.do(t, "POST", "/api/logout", nil)

		env.registerAndLogin(t, "alice", "a@x.com")

		assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/api/medicines/"+itoa(bobs.ID), nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, "DELETE", "/api/medicines/"+itoa(bobs.ID), nil).Code)

		list, err := env.service.Medicines(context.Background(), bobs.UserID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("invalid input", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		w := env.do(t, "POST", "/api/medicines", MedicineRequest{Name: "Aspirin", Dosage: " ", Frequency: "daily", Time: "Morning"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/medicines/abc", nil).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/medicines/0", nil).Code)
	})
}

func TestMedicinesStream(t *testing.T) {
	env := setupTestRouter(t)
	env.registerAndLogin(t, "alice", "a@x.com")

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/medicines/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := bufio.NewReader(resp.Body)
	name, data := readEvent(t, events)
	assert.Equal(t, "medicines", name)
	assert.Equal(t, "[]", data)

	_, err = env.session.AddMedicine(context.Background(), "Aspirin", "1 tablet", "daily", "Morning")
	require.NoError(t, err)

	for {
		name, data = readEvent(t, events)
		require.Equal(t, "medicines", name)
		if strings.Contains(data, "Aspirin") {
			break
		}
	}

	env.session.Logout(context.Background())
	for {
		name, _ = readEvent(t, events)
		if name == "logout" {
			break
		}
	}
}

// readEvent reads one server-sent event and returns its name and data.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if name != "" || data != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestProfileController(t *testing.T) {
	t.Run("update username", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		w := env.do(t, "PUT", "/api/profile/username", UsernameRequest{Username: "Alice B"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Alice B", decode[entities.User](t, w).Username)

		profile := decode[entities.User](t, env.do(t, "GET", "/api/profile", nil))
		assert.Equal(t, "Alice B", profile.Username)
		assert.Equal(t, "Alice B", env.session.CurrentAccount().Username)
	})

	t.Run("preferences default and partial update", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		prefs := decode[services.Preferences](t, env.do(t, "GET", "/api/preferences", nil))
		assert.Equal(t, services.DefaultPreferences(), prefs)

		w := env.do(t, "PUT", "/api/preferences", map[string]any{"dark_mode": true, "language": "en"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		prefs = decode[services.Preferences](t, env.do(t, "GET", "/api/preferences", nil))
		assert.True(t, prefs.DarkMode)
		assert.Equal(t, "en", prefs.Language)
		assert.True(t, prefs.MedicineReminders)
	})

	t.Run("unknown language is rejected", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		w := env.do(t, "PUT", "/api/preferences", map[string]any{"language": "xx"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogController(t *testing.T) {
	t.Run("emergency numbers carry dial uris", func(t *testing.T) {
		env := setupTestRouter(t)

		contacts := decode[[]EmergencyContactResponse](t, env.do(t, "GET", "/api/emergency", nil))
		require.NotEmpty(t, contacts)
		assert.Equal(t, "112", contacts[0].Number)
		assert.Equal(t, "tel:112", contacts[0].DialURI)

		one := decode[EmergencyContactResponse](t, env.do(t, "GET", "/api/emergency/155", nil))
		assert.Equal(t, "tel:155", one.DialURI)

		assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/api/emergency/999", nil).Code)
	})

	t.Run("news", func(t *testing.T) {
		env := setupTestRouter(t)

		all := decode[[]map[string]any](t, env.do(t, "GET", "/api/news", nil))
		assert.NotEmpty(t, all)

		w := env.do(t, "GET", "/api/news?category=none", nil)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	})

	t.Run("home summary", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")
		env.addMedicine(t, "Aspirin", "Morning-Evening")

		home := decode[HomeResponse](t, env.do(t, "GET", "/api/home", nil))
		assert.Equal(t, "Günaydın", home.Greeting)
		assert.Equal(t, "alice", home.Username)
		assert.NotEmpty(t, home.Tip)
		assert.Equal(t, 1, home.MedicineCount)
		assert.Equal(t, 2, home.DosesToday.Total)
		assert.Equal(t, 1, home.DosesToday.Remaining)
	})
}

func TestAuditController(t *testing.T) {
	env := setupTestRouter(t)
	env.registerAndLogin(t, "alice", "a@x.com")
	env.addMedicine(t, "Aspirin", "Morning")
	env.audit.Flush()

	page := decode[PaginatedResponse](t, env.do(t, "GET", "/api/audit", nil))
	assert.EqualValues(t, 3, page.Total)
	assert.False(t, page.HasMore)

	page = decode[PaginatedResponse](t, env.do(t, "GET", "/api/audit?type=medicine", nil))
	assert.EqualValues(t, 1, page.Total)

	assert.Equal(t, http.StatusBadRequest, env.do(t, "GET", "/api/audit?type=books", nil).Code)

	var bySession struct {
		SessionID string                `json:"session_id"`
		Events    []entities.AuditEvent `json:"events"`
	}
	w := env.do(t, "GET", "/api/audit/session", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bySession))
	assert.Equal(t, env.session.SessionID(), bySession.SessionID)
	assert.Len(t, bySession.Events, 2)
}

func TestTasksController(t *testing.T) {
	t.Run("run cleanup", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		w := env.do(t, "POST", "/api/tasks/cleanup_audit_events/run", RunTaskRequest{RetentionDays: 7})

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []backlite.Task{tasks.CleanupAuditEventsTask{RetentionDays: 7}}, env.queue.tasks)
	})

	t.Run("run dose reminder for an owned medicine", func(t *testing.T) {
		env := setupTestRouter(t)
		user := env.registerAndLogin(t, "alice", "a@x.com")
		m := env.addMedicine(t, "Aspirin", "Morning")

		w := env.do(t, "POST", "/api/tasks/dose_reminder/run", RunTaskRequest{MedicineID: m.ID})
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		require.Len(t, env.queue.tasks, 1)
		reminder := env.queue.tasks[0].(tasks.DoseReminderTask)
		assert.Equal(t, user.ID, reminder.UserID)
		assert.Equal(t, "Aspirin", reminder.Name)

		w = env.do(t, "POST", "/api/tasks/dose_reminder/run", RunTaskRequest{MedicineID: m.ID + 100})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown task type", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		w := env.do(t, "POST", "/api/tasks/enrich_book/run", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("status and reminders", func(t *testing.T) {
		env := setupTestRouter(t)
		env.registerAndLogin(t, "alice", "a@x.com")

		status := decode[map[string]string](t, env.do(t, "GET", "/api/tasks/task-1", nil))
		assert.Equal(t, "pending", status["status"])

		status = decode[map[string]string](t, env.do(t, "GET", "/api/tasks/missing", nil))
		assert.Equal(t, "not_found", status["status"])

		reminders := decode[[]scheduler.UpcomingDose](t, env.do(t, "GET", "/api/reminders", nil))
		require.Len(t, reminders, 1)
		assert.Equal(t, "Aspirin", reminders[0].Name)
	})
}

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrDuplicateEmail, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{session.ErrNotLoggedIn, http.StatusUnauthorized},
		{services.ErrAccountNotFound, http.StatusNotFound},
		{errors.Join(services.ErrStoreUnavailable, errors.New("disk I/O error")), http.StatusServiceUnavailable},
		{session.ErrClosed, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondDomainError(c, tt.err, "test")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
