package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/model"
	"hostel-backend/internal/mw"
	"hostel-backend/internal/store"
)

type registerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	RollNumber string `json:"rollNumber"`
	Role       string `json:"role" binding:"omitempty,oneof=student admin"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type session struct {
	Token string        `json:"token"`
	User  model.Account `json:"user"`
}

// Register creates an account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	role := model.Role(req.Role)
	if role == "" {
		role = model.RoleStudent
	}
	if role == model.RoleAdmin && !h.cfg.Auth.AllowAdminSignup {
		c.JSON(http.StatusForbidden, gin.H{"message": "Admin signup is disabled"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err, "Failed to register")
		return
	}
	account := &model.Account{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		RollNumber:   strings.TrimSpace(req.RollNumber),
	}
	if err := h.store.CreateAccount(c.Request.Context(), account); err != nil {
		respondError(c, err, "Failed to register")
		return
	}
	h.respondSession(c, http.StatusCreated, *account)
}

// Login exchanges credentials for a token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.store.AccountByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		respondError(c, err, "Failed to log in")
		return
	}
	if account == nil || !auth.CheckPassword(req.Password, account.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	h.respondSession(c, http.StatusOK, *account)
}

func (h *Handler) respondSession(c *gin.Context, status int, account model.Account) {
	token, err := h.tokens.Issue(account)
	if err != nil {
		respondError(c, err, "Failed to issue token")
		return
	}
	c.JSON(status, session{Token: token, User: account})
}

// Me returns the signed-in account.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, mw.MustAccount(c))
}

// ListUsers searches accounts for the chat picker.
func (h *Handler) ListUsers(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	accounts, err := h.store.ListAccounts(c.Request.Context(), store.AccountFilter{
		Role:  model.Role(c.Query("role")),
		Query: c.Query("q"),
		Limit: limit,
	})
	if err != nil {
		respondError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, accounts)
}
