package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	loginFn         func(username, password string) (string, time.Time, error)
	validateTokenFn func(token string) (string, error)
}

func (m *mockAuthService) Login(username, password string) (string, time.Time, error) {
	if m.loginFn != nil {
		return m.loginFn(username, password)
	}
	return "token", time.Now().Add(time.Hour), nil
}

func (m *mockAuthService) ValidateToken(token string) (string, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(token)
	}
	if token != testToken {
		return "", errors.New("invalid token")
	}
	return "owner", nil
}

type auditEntry struct {
	Actor, Action, ResourceType, ResourceID string
	Changes                                 map[string]interface{}
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(actor, action, resourceType, resourceID, _ string, changes map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{actor, action, resourceType, resourceID, changes})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// --- test helpers ---

const (
	testToken = "test-token"
	testUUID  = "01900000-0000-7000-8000-000000000001"
	otherUUID = "01900000-0000-7000-8000-000000000002"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// authed returns a router group behind the real auth middleware, accepting testToken.
func authed(r *gin.Engine) *gin.RouterGroup {
	return r.Group("", middleware.AuthMiddleware(&mockAuthService{}))
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", handler.Login)
	authed(r).GET("/session", handler.GetSession)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with token", func(t *testing.T) {
		audit := &mockAuditService{}
		authSvc := &mockAuthService{
			loginFn: func(username, password string) (string, time.Time, error) {
				if username != "owner" || password != "secret" {
					t.Errorf("unexpected credentials %q/%q", username, password)
				}
				return "signed", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, audit))

		rec := doRequest(r, "POST", "/auth/login", `{"username":"owner","password":"secret"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token"] != "signed" {
			t.Errorf("expected token signed, got %v", result["token"])
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "LOGIN" {
			t.Errorf("expected LOGIN audit entry, got %v", got)
		}
	})

	t.Run("returns 401 on bad credentials", func(t *testing.T) {
		audit := &mockAuditService{}
		authSvc := &mockAuthService{
			loginFn: func(_, _ string) (string, time.Time, error) {
				return "", time.Time{}, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(authSvc, audit))

		rec := doRequest(r, "POST", "/auth/login", `{"username":"owner","password":"nope"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
		if got := audit.actions(); len(got) != 1 || got[0] != "LOGIN_FAILED" {
			t.Errorf("expected LOGIN_FAILED audit entry, got %v", got)
		}
	})

	t.Run("returns 400 on missing password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"username":"owner"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestAuthHandler_GetSession(t *testing.T) {
	t.Run("returns subject", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/session", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["subject"] != "owner" {
			t.Error("expected subject owner")
		}
	})

	t.Run("returns 401 without token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		req := httptest.NewRequest("GET", "/session", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})
}
