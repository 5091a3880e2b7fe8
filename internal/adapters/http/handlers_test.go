package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Courier/internal/auth"
	"github.com/dkeye/Courier/internal/store"
)

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	h := &AuthHandlers{Gateway: auth.NewGateway(st, "test-secret", time.Hour)}
	r := gin.New()
	r.POST("/api/register", h.HandleRegister)
	r.POST("/api/login", h.HandleLogin)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	req := require.New(t)
	r := setupAPI(t)

	resp := postJSON(t, r, "/api/register", map[string]string{
		"username": "alice",
		"password": "Sup3rSecret!",
	})
	req.Equal(http.StatusOK, resp.Code)

	var body authResponse
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &body))
	req.True(body.Success)
	req.Equal("alice", body.User.Username)
	req.NotEmpty(body.User.ID)
	req.NotEmpty(body.Token)
}

func TestRegisterEndpointValidation(t *testing.T) {
	req := require.New(t)
	r := setupAPI(t)

	resp := postJSON(t, r, "/api/register", map[string]string{"username": "alice"})
	req.Equal(http.StatusBadRequest, resp.Code)

	resp = postJSON(t, r, "/api/register", map[string]string{
		"username": "ab",
		"password": "Sup3rSecret!",
	})
	req.Equal(http.StatusBadRequest, resp.Code)
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	req := require.New(t)
	r := setupAPI(t)

	creds := map[string]string{"username": "alice", "password": "Sup3rSecret!"}
	resp := postJSON(t, r, "/api/register", creds)
	req.Equal(http.StatusOK, resp.Code)

	resp = postJSON(t, r, "/api/register", creds)
	req.Equal(http.StatusBadRequest, resp.Code)
}

func TestLoginEndpoint(t *testing.T) {
	req := require.New(t)
	r := setupAPI(t)

	creds := map[string]string{"username": "alice", "password": "Sup3rSecret!"}
	resp := postJSON(t, r, "/api/register", creds)
	req.Equal(http.StatusOK, resp.Code)

	resp = postJSON(t, r, "/api/login", creds)
	req.Equal(http.StatusOK, resp.Code)

	var body authResponse
	req.NoError(json.Unmarshal(resp.Body.Bytes(), &body))
	req.True(body.Success)
	req.Equal("online", body.User.Status)
	req.NotEmpty(body.Token)
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	req := require.New(t)
	r := setupAPI(t)

	resp := postJSON(t, r, "/api/register", map[string]string{
		"username": "alice",
		"password": "Sup3rSecret!",
	})
	req.Equal(http.StatusOK, resp.Code)

	resp = postJSON(t, r, "/api/login", map[string]string{
		"username": "alice",
		"password": "wrong password",
	})
	req.Equal(http.StatusUnauthorized, resp.Code)
}
