package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/application"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
	"github.com/oksasatya/go-contacts-api/pkg/response"
	"github.com/oksasatya/go-contacts-api/pkg/validation"
)

// Client-visible messages.
const (
	MsgAccountExists      = "Account already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgNotConfirmed       = "Email not confirmed"
	MsgInvalidRefresh     = "Invalid refresh token"
	MsgVerification       = "Verification error"
	MsgEmailConfirmed     = "Email confirmed"
	MsgAlreadyConfirmed   = "Your email is already confirmed"
	MsgCheckEmail         = "Check your email for confirmation"
	MsgNotFound           = "Not found"
	MsgInvalidPayload     = "invalid payload"
	MsgInternal           = "internal server error"
)

func fail(c *gin.Context, status int, message string, details any) {
	response.Abort(c, status, message, details)
}

func ok[T any](c *gin.Context, status int, data T, message string) {
	response.JSON(c, response.Success(c, status, data, message, nil))
}

func badRequest(c *gin.Context, err error) {
	fail(c, http.StatusBadRequest, MsgInvalidPayload, validation.ToDetails(err))
}

// writeError maps service errors to status codes. Anything unrecognised is
// logged and reported as a bare 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		fail(c, http.StatusUnauthorized, middleware.MsgUnauthorized, nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, MsgInvalidCredentials, nil)
	case errors.Is(err, application.ErrNotConfirmed):
		fail(c, http.StatusUnauthorized, MsgNotConfirmed, nil)
	case errors.Is(err, application.ErrInvalidToken), errors.Is(err, application.ErrStaleToken):
		c.Header("WWW-Authenticate", "Bearer")
		fail(c, http.StatusUnauthorized, MsgInvalidRefresh, nil)
	case errors.Is(err, application.ErrVerification):
		fail(c, http.StatusBadRequest, MsgVerification, nil)
	case errors.Is(err, application.ErrConflict):
		fail(c, http.StatusConflict, MsgAccountExists, nil)
	case errors.Is(err, application.ErrNotFound):
		fail(c, http.StatusNotFound, MsgNotFound, nil)
	case errors.Is(err, application.ErrInvalidInput):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUnavailable):
		fail(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		fail(c, http.StatusInternalServerError, MsgInternal, nil)
	}
}
