package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/dto"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		JWTExpiresIn: time.Hour,
	}

	authService := services.NewAuthService(repository.NewUserRepository(db))
	handler := NewAuthHandler(authService, cfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/logout", handler.Logout)
	router.GET("/api/auth/profile", middleware.RequireAuth(cfg.JWTSecret), handler.GetProfile)
	router.PUT("/api/auth/profile", middleware.RequireAuth(cfg.JWTSecret), handler.UpdateProfile)

	return authTestEnv{db: db, router: router}
}

func (env authTestEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User  dto.UserDTO `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "alice@example.com", resp.User.Email)
	require.Equal(t, []string{"member"}, resp.User.Roles)
	require.NotEmpty(t, resp.Token)

	// Duplicate email conflicts
	w = env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Missing fields are rejected before the service runs
	w = env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Bob"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ALICE@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileEndpoint(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	// Without a token the profile is unreachable
	w = env.request(t, http.MethodGet, "/api/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/auth/profile", registered.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Equal(t, "Alice", profile.Name)

	// Update name and set then clear the avatar
	w = env.request(t, http.MethodPut, "/api/auth/profile", registered.Token, gin.H{
		"name":   "Alice B",
		"avatar": "https://example.com/a.png",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Equal(t, "Alice B", profile.Name)
	require.NotNil(t, profile.Avatar)

	w = env.request(t, http.MethodPut, "/api/auth/profile", registered.Token, gin.H{
		"avatar": nil,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Nil(t, profile.Avatar)
}

func TestLogoutEndpoint(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
