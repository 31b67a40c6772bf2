package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "api-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// Stubs embed the interface so only the methods a test needs are written.

type authStub struct {
	service.AuthService
	register func(service.RegisterInput) (*domain.User, error)
}

func (s authStub) Register(_ context.Context, in service.RegisterInput) (*domain.User, error) {
	return s.register(in)
}

type relationshipStub struct {
	service.RelationshipService
	roster []domain.User
}

func (s relationshipStub) Roster(context.Context, primitive.ObjectID) ([]domain.User, error) {
	return s.roster, nil
}

type suggestionStub struct {
	service.SuggestionService
	err error
}

func (s suggestionStub) UpdateStatus(_ context.Context, _, id primitive.ObjectID, next domain.SuggestionStatus) (*domain.Suggestion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Suggestion{ID: id, Status: next}, nil
}

type sweeperStub struct{ deleted int64 }

func (s sweeperStub) SweepOnce(context.Context) (int64, error) { return s.deleted, nil }

func newTestRouter(svc Services) *gin.Engine {
	router := gin.New()
	SetupRoutes(router, testSecret, svc, zap.NewNop())
	return router
}

func tokenFor(t *testing.T, userID primitive.ObjectID, level domain.Level, ttl time.Duration) string {
	t.Helper()
	claims := &service.Claims{
		UserID: userID.Hex(),
		Level:  level,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestPing(t *testing.T) {
	rec := do(newTestRouter(Services{}), http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	trainerID := primitive.NewObjectID()
	router := newTestRouter(Services{Relationships: relationshipStub{roster: []domain.User{{Name: "Sam", Level: domain.LevelStudent}}}})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"expired", tokenFor(t, trainerID, domain.LevelTrainer, -time.Minute), http.StatusUnauthorized},
		{"valid", tokenFor(t, trainerID, domain.LevelTrainer, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodGet, "/api/v1/trainer/students", tt.token, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthMiddlewareRejectsOtherSecret(t *testing.T) {
	claims := &service.Claims{
		UserID:           primitive.NewObjectID().Hex(),
		Level:            domain.LevelTrainer,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-else"))
	require.NoError(t, err)

	rec := do(newTestRouter(Services{}), http.MethodGet, "/api/v1/trainer/students", forged, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCapabilityGates(t *testing.T) {
	router := newTestRouter(Services{
		Relationships: relationshipStub{},
		Sweeper:       sweeperStub{deleted: 3},
	})
	student := tokenFor(t, primitive.NewObjectID(), domain.LevelStudent, time.Hour)
	trainer := tokenFor(t, primitive.NewObjectID(), domain.LevelTrainer, time.Hour)
	admin := tokenFor(t, primitive.NewObjectID(), domain.LevelAdmin, time.Hour)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"student on trainer route", http.MethodGet, "/api/v1/trainer/students", student, http.StatusForbidden},
		{"admin on trainer route", http.MethodGet, "/api/v1/trainer/students", admin, http.StatusForbidden},
		{"trainer on student route", http.MethodGet, "/api/v1/student/suggestions", trainer, http.StatusForbidden},
		{"trainer on sweep", http.MethodPost, "/api/v1/admin/sweep", trainer, http.StatusForbidden},
		{"admin on sweep", http.MethodPost, "/api/v1/admin/sweep", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSweepResponse(t *testing.T) {
	router := newTestRouter(Services{Sweeper: sweeperStub{deleted: 3}})
	rec := do(router, http.MethodPost, "/api/v1/admin/sweep", tokenFor(t, primitive.NewObjectID(), domain.LevelAdmin, time.Hour), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":3}`, rec.Body.String())
}

func TestRegisterMapsServiceErrors(t *testing.T) {
	body := `{"name":"Sam","email":"sam@example.com","password":"secret123","level":1,"trainerCode":"PT0000"}`

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown trainer code", service.ErrTrainerCodeNotFound, http.StatusNotFound},
		{"email taken", service.ErrUserAlreadyExists, http.StatusConflict},
		{"invalid level", service.ErrInvalidLevel, http.StatusBadRequest},
		{"upstream failure", errors.New("mongo: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(Services{Auth: authStub{register: func(service.RegisterInput) (*domain.User, error) {
				return nil, tt.err
			}}})
			rec := do(router, http.MethodPost, "/api/v1/auth/register", "", body)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, errorMessage(t, rec), "mongo", "causes stay in the log")
			}
		})
	}
}

func TestRegisterCreated(t *testing.T) {
	trainerID := primitive.NewObjectID()
	var got service.RegisterInput
	router := newTestRouter(Services{Auth: authStub{register: func(in service.RegisterInput) (*domain.User, error) {
		got = in
		return &domain.User{
			ID:                     primitive.NewObjectID(),
			Name:                   in.Name,
			Email:                  in.Email,
			PasswordHash:           "hash",
			Level:                  in.Level,
			TrainerID:              &trainerID,
			PendingTrainerApproval: true,
		}, nil
	}}})

	rec := do(router, http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Sam","email":"sam@example.com","password":"secret123","level":1,"trainerCode":"PT1234"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PT1234", got.TrainerCode)
	assert.Equal(t, domain.LevelStudent, got.Level)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "student", resp.Role)
	assert.True(t, resp.PendingTrainerApproval)
	require.NotNil(t, resp.TrainerID)
	assert.Equal(t, trainerID.Hex(), *resp.TrainerID)
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(Services{Auth: authStub{}})
	for _, body := range []string{
		`{"name":"Sam","email":"sam@example.com","password":"short","level":1}`,
		`{"name":"Ada","email":"ada@example.com","password":"secret123","level":3}`,
		`{"email":"sam@example.com","password":"secret123","level":1}`,
	} {
		rec := do(router, http.MethodPost, "/api/v1/auth/register", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestUpdateSuggestionStatus(t *testing.T) {
	student := tokenFor(t, primitive.NewObjectID(), domain.LevelStudent, time.Hour)
	id := primitive.NewObjectID()
	path := fmt.Sprintf("/api/v1/suggestions/%s", id.Hex())

	router := newTestRouter(Services{Suggestions: suggestionStub{}})
	rec := do(router, http.MethodPatch, path, student, `{"status":"accepted"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"accepted"`)

	rec = do(router, http.MethodPatch, path, student, `{"status":"pending"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPatch, "/api/v1/suggestions/nope", student, `{"status":"accepted"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	router = newTestRouter(Services{Suggestions: suggestionStub{err: service.ErrInvalidTransition}})
	rec = do(router, http.MethodPatch, path, student, `{"status":"rejected"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{service.ErrNoMealsRecognized, http.StatusBadRequest},
		{service.ErrStudentNotLinked, http.StatusForbidden},
		{service.ErrSuggestionNotFound, http.StatusNotFound},
		{service.ErrTrainerCapacityExceeded, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", service.ErrNotScheduled), http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
