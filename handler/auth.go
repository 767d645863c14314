package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contracthub/config"
	"contracthub/middleware"
	"contracthub/model"
	"contracthub/pkg/apperr"
	"contracthub/service"
)

type AuthHandler struct {
	users *service.UserService
	auth  *config.AuthConfig
}

func NewAuthHandler(users *service.UserService, auth *config.AuthConfig) *AuthHandler {
	return &AuthHandler{users: users, auth: auth}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *RegisterRequest) validate() []string {
	var errs []string
	if r.Username == "" {
		errs = append(errs, "username is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	if r.Role != "" && !model.ValidRole(r.Role) {
		errs = append(errs, "role must be one of ADMIN, USER, APPROVER")
	}
	return errs
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) validate() []string {
	var errs []string
	if r.Username == "" {
		errs = append(errs, "username is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
}

// Register creates a new account. The response never carries the password
// hash.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		failValidation(c, errs)
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, role)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "user registered", user)
}

// Login verifies credentials and issues a signed, time-limited token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		failValidation(c, errs)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, expiresAt, err := middleware.GenerateToken(user, h.auth)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	respond(c, http.StatusOK, "login successful", LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}

// Me returns the authenticated identity.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		fail(c, apperr.Unauthorized("not authenticated"))
		return
	}
	respond(c, http.StatusOK, "ok", user)
}
