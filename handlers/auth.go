package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"devconnect/gravatar"
	"devconnect/models"
	"devconnect/store"
	"devconnect/token"
	"devconnect/validation"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login failures never reveal whether the email or the password was wrong.
const invalidCredentials = "Invalid credentials"

// Register handles POST /api/users: create an account and return a token.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Messages(err)})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	_, err := h.users.FindByEmail(ctx, req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		h.serverError(c, "register", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(c, "register", err)
		return
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Avatar:    gravatar.URL(req.Email),
		CreatedAt: time.Now().Unix(),
	}

	if err := h.users.Insert(ctx, user); err != nil {
		// Lost the race against a concurrent registration for the same email.
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		h.serverError(c, "register", err)
		return
	}

	tok, err := token.Issue(user, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		h.serverError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": tok})
}

// Login handles POST /api/auth: verify credentials and return a token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Messages(err)})
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	user, err := h.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}
	if err != nil {
		h.serverError(c, "login", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}

	tok, err := token.Issue(user, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		h.serverError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tok})
}

// GetCurrentUser handles GET /api/auth: the caller's own record, without
// the password (never serialized).
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.serverError(c, "current user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
