package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"contracthub/config"
	"contracthub/middleware"
	"contracthub/model"
	"contracthub/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testApp wires a full router against a throwaway sqlite database and local
// blob storage, mirroring the wiring in main.go.
type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	users  *service.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Contract{}, &model.Attachment{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	store, err := service.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create local store: %v", err)
	}

	authCfg := &config.AuthConfig{JWTSecret: "test-secret", TokenExpireMinutes: 60}

	userSvc := service.NewUserService(db)
	contractSvc := service.NewContractService(db)
	attachmentSvc := service.NewAttachmentService(db, store, 10)

	authHandler := NewAuthHandler(userSvc, authCfg)
	contractHandler := NewContractHandler(contractSvc)
	attachmentHandler := NewAttachmentHandler(attachmentSvc)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authCfg, userSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/contracts", contractHandler.Create)
	protected.GET("/contracts", contractHandler.List)
	protected.GET("/contracts/:id", contractHandler.Get)
	protected.PUT("/contracts/:id", contractHandler.Update)
	protected.DELETE("/contracts/:id", contractHandler.Delete)
	protected.PUT("/contracts/:id/approve", contractHandler.Approve)
	protected.POST("/contracts/:id/attachments", attachmentHandler.Upload)
	protected.GET("/contracts/attachments/:attachmentId", attachmentHandler.Download)

	return &testApp{router: router, db: db, users: userSvc}
}

// tokenFor registers a user with the given role and returns a bearer token.
func (a *testApp) tokenFor(t *testing.T, username, role string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "password123",
		"role":     role,
	})
	w := a.doJSON(t, "POST", "/api/auth/register", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to register %s: status %d, body %s", username, w.Code, w.Body.String())
	}

	body, _ = json.Marshal(map[string]string{
		"username": username,
		"password": "password123",
	})
	w = a.doJSON(t, "POST", "/api/auth/login", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to login %s: status %d", username, w.Code)
	}

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse login response: %v", err)
	}
	if resp.Data.AccessToken == "" {
		t.Fatal("Expected access token in login response")
	}
	return resp.Data.AccessToken
}

func (a *testApp) doJSON(t *testing.T, method, path string, body []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// createContract posts a contract and returns its id.
func (a *testApp) createContract(t *testing.T, token, contractNo, title string, amount float64) uint {
	t.Helper()

	body, _ := json.Marshal(map[string]any{
		"contractNo": contractNo,
		"title":      title,
		"partyA":     "Company A",
		"partyB":     "Company B",
		"amount":     amount,
	})
	w := a.doJSON(t, "POST", "/api/contracts", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create contract %s: status %d, body %s", contractNo, w.Code, w.Body.String())
	}

	var resp struct {
		Data model.Contract `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse create response: %v", err)
	}
	return resp.Data.ID
}
