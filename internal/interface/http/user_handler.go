package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/application"
	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
)

// maxAvatarBytes caps multipart avatar uploads.
const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Service *application.Service
	Logger  *logrus.Logger
}

func NewUserHandler(s *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Service: s, Logger: logger}
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.AvatarURL,
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
	}
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Service.GetProfile(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, newUserResponse(u), "profile")
}

// UpdateAvatar PATCH /api/users/avatar (multipart: file)
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "cannot read upload", nil)
		return
	}
	defer f.Close()

	u, err := h.Service.UploadAvatar(c.Request.Context(), middleware.Identity(c), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, newUserResponse(u), "avatar updated")
}
