package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/application"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
)

type AuthHandler struct {
	Accounts      *application.Service
	Sessions      *application.SessionService
	Confirmations *application.ConfirmationService
	Logger        *logrus.Logger
}

func NewAuthHandler(accounts *application.Service, sessions *application.SessionService, confirmations *application.ConfirmationService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Sessions: sessions, Confirmations: confirmations, Logger: logger}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// loginForm is the OAuth2 password-grant form; username carries the email.
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type requestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// tokenResponse is the OAuth2 token response body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenResponse(p application.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int64(time.Until(p.AccessTokenExpiry).Seconds()),
	}
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Accounts.Signup(c.Request.Context(), application.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{
		"user":   newUserResponse(u),
		"detail": "User successfully created. Check your email for confirmation.",
	}, "account created")
}

// Login POST /api/auth/login (form: username, password)
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.Sessions.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// RefreshToken GET /api/auth/refresh_token (Authorization: Bearer <refresh token>)
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.Header("WWW-Authenticate", "Bearer")
		fail(c, http.StatusUnauthorized, MsgInvalidRefresh, nil)
		return
	}
	pair, err := h.Sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// ConfirmedEmail GET /api/auth/confirmed_email/:token
func (h *AuthHandler) ConfirmedEmail(c *gin.Context) {
	outcome, err := h.Confirmations.Confirm(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	msg := MsgEmailConfirmed
	if outcome == application.OutcomeAlreadyConfirmed {
		msg = MsgAlreadyConfirmed
	}
	ok(c, http.StatusOK, gin.H{"message": msg}, msg)
}

// RequestEmail POST /api/auth/request_email
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req requestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	outcome, err := h.Confirmations.Request(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	msg := MsgCheckEmail
	if outcome == application.OutcomeAlreadyConfirmed {
		msg = MsgAlreadyConfirmed
	}
	ok(c, http.StatusOK, gin.H{"message": msg}, msg)
}

// Logout POST /api/auth/logout (access token)
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), middleware.Identity(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}
