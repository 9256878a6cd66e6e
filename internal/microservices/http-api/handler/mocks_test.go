package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"animeschedule/internal/ingestion/jikan"
	"animeschedule/internal/microservices/http-api/middleware"
	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/service"
	"animeschedule/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, email, timeZone string) (*models.User, error) {
	args := m.Called(ctx, username, password, email, timeZone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*shared.AuthClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.AuthClaims), args.Error(1)
}

func (m *MockAuthService) AccessTokenTTL() time.Duration {
	return 24 * time.Hour
}

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) GetScheduleByUser(ctx context.Context, userID string) (*service.WeeklySchedule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WeeklySchedule), args.Error(1)
}

func (m *MockScheduleService) AddScheduleEntry(ctx context.Context, userID string, malID int, slot service.SlotInput) (*models.ScheduleEntry, error) {
	args := m.Called(ctx, userID, malID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleService) UpdateScheduleEntry(ctx context.Context, userID string, animeID int64, slot service.SlotInput) (*models.ScheduleEntry, error) {
	args := m.Called(ctx, userID, animeID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleEntry), args.Error(1)
}

func (m *MockScheduleService) DeleteScheduleEntry(ctx context.Context, userID string, animeID int64) error {
	args := m.Called(ctx, userID, animeID)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateTimeZone(ctx context.Context, userID, timeZone string) (*models.User, error) {
	args := m.Called(ctx, userID, timeZone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListAnime(ctx context.Context, status *shared.AiringStatus) ([]models.IndexedAnime, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IndexedAnime), args.Error(1)
}

func (m *MockCatalogService) GetAnime(ctx context.Context, id int64) (*models.IndexedAnime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IndexedAnime), args.Error(1)
}

func (m *MockCatalogService) TriggerSync(ctx context.Context) (jikan.SyncResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(jikan.SyncResult), args.Error(1)
}

func (m *MockCatalogService) NextSync() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asUser stands in for AuthMiddleware.
func asUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &shared.AuthClaims{UserID: userID, Role: role})
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
