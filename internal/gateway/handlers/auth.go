package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	authsvc "github.com/Pankaj72885/care.xyz/internal/auth/service"
)

type AuthHandler struct {
	svc    *authsvc.AuthSvc
	google *authsvc.GoogleProvider
}

func NewAuthHandler(svc *authsvc.AuthSvc, google *authsvc.GoogleProvider) *AuthHandler {
	return &AuthHandler{svc: svc, google: google}
}

// POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Contact  string `json:"contact"`
		NID      string `json:"nid"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.Register(c.Request.Context(), authsvc.RegisterInput{
		Name: in.Name, Email: in.Email, Password: in.Password,
		Contact: in.Contact, NID: in.NID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role})
}

// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, pair, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		// credential failures always come back 401, never 403
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":   gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role},
		"tokens": pair,
	})
}

// POST /v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var in struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

// GET /v1/auth/google/login
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "google sign-in not configured"})
		return
	}
	state := randomState()
	c.SetCookie("oauth_state", state, 300, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.LoginURL(state))
}

// GET /v1/auth/google/callback?code=...&state=...
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "google sign-in not configured"})
		return
	}
	want, err := c.Cookie("oauth_state")
	if err != nil || want == "" || c.Query("state") != want {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "state mismatch"})
		return
	}
	u, pair, err := h.google.HandleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google sign-in failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":   gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role},
		"tokens": pair,
	})
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
