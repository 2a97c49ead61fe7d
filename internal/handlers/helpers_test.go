package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/docstore"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"golang.org/x/time/rate"
)

type testServer struct {
	router      *gin.Engine
	authService *services.AuthService
}

func newTestServer(t *testing.T, userStore, taskStore docstore.Store, policy services.TaskPolicy, limit rate.Limit, burst int) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := services.NewAuthService(repository.NewUserRepository(userStore))

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, RouterConfig{
		AuthService:   authService,
		TaskRepo:      repository.NewTaskRepository(taskStore),
		Policy:        policy,
		Logger:        logger,
		AuthRateLimit: limit,
		AuthRateBurst: burst,
	})

	return testServer{router: r, authService: authService}
}

// do sends body as JSON, attaching the session cookie when given.
func (s testServer) do(t *testing.T, method, path string, body any, sessionCookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionCookie != nil {
		req.AddCookie(sessionCookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login signs the user up when needed and returns the session cookie.
func (s testServer) login(t *testing.T, name string) *http.Cookie {
	t.Helper()

	credentials := map[string]string{"name": name, "password": "supersecret"}
	w := s.do(t, http.MethodPost, "/api/auth/signup", credentials, nil)
	require.Contains(t, []int{http.StatusCreated, http.StatusConflict}, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/login", credentials, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sessionCookie := findSessionCookie(w)
	require.NotNil(t, sessionCookie)
	return sessionCookie
}

func findSessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			return c
		}
	}
	return nil
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
