package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Courier/internal/auth"
	"github.com/dkeye/Courier/internal/domain"
)

type AuthHandlers struct {
	Gateway *auth.Gateway
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	domain.Identity
	Status string `json:"status"`
}

type authResponse struct {
	Success bool         `json:"success"`
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
}

func (h *AuthHandlers) HandleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	identity, token, err := h.Gateway.Register(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrAccountExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username or password format"})
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Success: true,
		User:    userResponse{Identity: identity, Status: domain.StatusOffline},
		Token:   token,
	})
}

func (h *AuthHandlers) HandleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	identity, token, err := h.Gateway.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	// The session itself goes online only when the websocket
	// authenticates; the body mirrors what the client renders.
	c.JSON(http.StatusOK, authResponse{
		Success: true,
		User:    userResponse{Identity: identity, Status: domain.StatusOnline},
		Token:   token,
	})
}
