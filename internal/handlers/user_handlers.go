package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01moynul/selecta-golang/internal/auth"
	"github.com/01moynul/selecta-golang/internal/middleware"
	"github.com/01moynul/selecta-golang/internal/models"
	"github.com/01moynul/selecta-golang/internal/repository"
)

// RegisterUserInput is the body of POST /v1/register.
type RegisterUserInput struct {
	FullName string  `json:"fullName" binding:"required,max=255"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
}

// Register is the handler for POST /v1/register
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.internalError(c, "Failed to hash password", err)
		return
	}

	now := h.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		FullName:     input.FullName,
		Phone:        input.Phone,
		PasswordHash: password.Hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.internalError(c, "Failed to create user", err)
		return
	}

	// Re-read so the response carries the stored (normalised) email.
	stored, err := h.Users.GetByID(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "Failed to load user", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": stored})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.GetByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.internalError(c, "Failed to load user", err)
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(input.Password)
	if err != nil {
		h.internalError(c, "Failed to check password", err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.Signer.GenerateToken(user.ID)
	if err != nil {
		h.internalError(c, "Failed to generate token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me is the handler for GET /v1/me
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.Users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.internalError(c, "Failed to load user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type MagicLoginInput struct {
	Token string `json:"token" binding:"required"`
}

// MagicLogin is the handler for POST /v1/auth/magic. It exchanges a
// single-use login link token for a session token.
func (h *Handlers) MagicLogin(c *gin.Context) {
	var input MagicLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, redirect, err := h.LoginTokens.Consume(c.Request.Context(), input.Token)
	switch {
	case errors.Is(err, auth.ErrTokenUsed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token already used"})
		return
	case errors.Is(err, auth.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
		return
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	case err != nil:
		h.internalError(c, "Failed to consume login token", err)
		return
	}

	session, err := h.Signer.GenerateToken(userID)
	if err != nil {
		h.internalError(c, "Failed to generate token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": session, "redirectTo": redirect})
}
