package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"scms_backend/internal/config"
	"scms_backend/internal/model"
	"scms_backend/internal/repository"
	"scms_backend/internal/service"
	"scms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWT:         config.JWTConfig{Secret: "app-test-secret"},
		Persistence: config.PersistenceConfig{Type: util.PersistenceFile, FilePath: filepath.Join(t.TempDir(), "complaints.json")},
		Aging:       config.AgingConfig{Interval: time.Minute},
		Reminder: config.ReminderConfig{
			FrequentInterval:     10 * time.Second,
			NormalInterval:       20 * time.Second,
			FrequentThreshold:    2,
			AlwaysAlertThreshold: 1,
		},
		Lifecycle: config.LifecycleConfig{TransitionPolicy: "strict"},
		Complaint: config.ComplaintConfig{IDStrategy: "sequential"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*App, *gin.Engine) {
	t.Helper()
	a := &App{Config: cfg}
	a.services = a.initServices(cfg, nil, nil)
	router := gin.New()
	a.registerRoutes(router, a.initControllers(a.services), cfg)
	return a, router
}

func get(t *testing.T, router *gin.Engine, path string, actor *model.Actor) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if actor != nil {
		tok, err := util.GenerateJWT(*actor, "app-test-secret", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	_, router := newTestRouter(t, testConfig(t))

	student := model.Actor{ID: "STU-001", Name: "Rahul Sharma", Role: model.Student}
	head := model.Actor{ID: "HEAD-001", Name: "Dr. Priya Sharma", Role: model.DepartmentHead, Department: model.DepartmentAcademics}
	admin := model.Actor{ID: "ADM-001", Name: "System Administrator", Role: model.Admin}

	tests := []struct {
		name  string
		path  string
		actor *model.Actor
		want  int
	}{
		{"health is public", "/api/health", nil, http.StatusOK},
		{"complaints need a token", "/api/complaints", nil, http.StatusUnauthorized},
		{"student lists own complaints", "/api/complaints", &student, http.StatusOK},
		{"departments", "/api/departments", &student, http.StatusOK},
		{"student cannot read reports", "/api/reports/statistics", &student, http.StatusForbidden},
		{"head cannot read reports", "/api/reports/overview", &head, http.StatusForbidden},
		{"admin reads reports", "/api/reports/metrics", &admin, http.StatusOK},
		{"admin reads reminders", "/api/reminders", &admin, http.StatusOK},
		{"student cannot subscribe", "/api/ws/notifications", &student, http.StatusForbidden},
		{"metrics endpoint", "/metrics", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(t, router, tt.path, tt.actor).Code)
		})
	}
}

func TestInitServicesUsesConfig(t *testing.T) {
	cfg := testConfig(t)
	a, _ := newTestRouter(t, cfg)
	s := a.services

	c, err := s.complaint.Submit(service.Submission{StudentID: "STU-001", Category: model.CategoryHostel, Description: "Leaking roof"})
	require.NoError(t, err)
	assert.Equal(t, "COMP-001", c.ID)

	// strict 策略下已解决的投诉不能回到 Pending
	_, err = s.complaint.UpdateStatus(c.ID, model.StatusResolved, "Admin", 0)
	require.NoError(t, err)
	_, err = s.complaint.UpdateStatus(c.ID, model.StatusPending, "Admin", 0)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	require.NoError(t, s.complaint.Flush(context.Background()))
	saved, err := repository.NewFileSnapshotStore(cfg.Persistence.FilePath).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, model.StatusResolved, saved[0].Status)
}

func TestReminderPolicyFromConfig(t *testing.T) {
	p := reminderPolicy(testConfig(t))
	assert.Equal(t, 10*time.Second, p.FrequentInterval)
	assert.Equal(t, 20*time.Second, p.NormalInterval)
	assert.Equal(t, 2, p.FrequentThreshold)
	assert.Equal(t, 1, p.AlwaysAlertThreshold)
}

func TestConfigCallbacks(t *testing.T) {
	cfg := testConfig(t)
	a, _ := newTestRouter(t, cfg)
	a.registerConfigCallbacks(a.services)

	updated := *cfg
	updated.Aging.Interval = 3 * time.Minute
	a.applyConfig(&updated)

	assert.Equal(t, 3*time.Minute, a.services.aging.Interval())
}

func TestOpenOfflineStore(t *testing.T) {
	cfg := testConfig(t)
	seed := []model.Complaint{{
		ID:            "COMP-007",
		StudentID:     "STU-001",
		Category:      model.CategoryMess,
		Status:        model.StatusPending,
		DateSubmitted: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Version:       1,
	}}
	require.NoError(t, repository.NewFileSnapshotStore(cfg.Persistence.FilePath).Save(context.Background(), seed))

	st, err := OpenOfflineStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, 1, st.Complaints.Count())
	c, err := st.Complaints.Submit(service.Submission{StudentID: "STU-002", Category: model.CategoryOther, Description: "Wifi"})
	require.NoError(t, err)
	assert.Equal(t, "COMP-008", c.ID, "sequence continues after loaded ids")

	require.NoError(t, st.Flush(context.Background()))
	saved, err := repository.NewFileSnapshotStore(cfg.Persistence.FilePath).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestOpenOfflineStoreRejectsUnknownPersistence(t *testing.T) {
	cfg := testConfig(t)
	cfg.Persistence.Type = "s3"
	_, err := OpenOfflineStore(context.Background(), cfg)
	assert.Error(t, err)
}
