package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/application"
	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
	"github.com/oksasatya/go-contacts-api/pkg/response"
)

const dateLayout = "2006-01-02"

type ContactHandler struct {
	Service *application.ContactService
	Logger  *logrus.Logger
}

func NewContactHandler(s *application.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{Service: s, Logger: logger}
}

type contactRequest struct {
	Name        string  `json:"name" binding:"required,personname"`
	Surname     string  `json:"surname" binding:"required,personname"`
	Email       string  `json:"email" binding:"required,email"`
	Mobile      string  `json:"mobile" binding:"required,mobile"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

func (r contactRequest) input() entity.ContactInput {
	in := entity.ContactInput{
		Name:    r.Name,
		Surname: r.Surname,
		Email:   r.Email,
		Mobile:  r.Mobile,
	}
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		// already validated by the datetime tag
		if d, err := time.Parse(dateLayout, *r.DateOfBirth); err == nil {
			in.DateOfBirth = &d
		}
	}
	return in
}

type contactResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Email       string    `json:"email"`
	Mobile      string    `json:"mobile"`
	DateOfBirth *string   `json:"date_of_birth"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newContactResponse(ct *entity.Contact) contactResponse {
	out := contactResponse{
		ID:        ct.ID,
		Name:      ct.Name,
		Surname:   ct.Surname,
		Email:     ct.Email,
		Mobile:    ct.Mobile,
		CreatedAt: ct.CreatedAt,
		UpdatedAt: ct.UpdatedAt,
	}
	if ct.DateOfBirth != nil {
		s := ct.DateOfBirth.Format(dateLayout)
		out.DateOfBirth = &s
	}
	return out
}

func newContactList(cs []entity.Contact) []contactResponse {
	out := make([]contactResponse, 0, len(cs))
	for i := range cs {
		out = append(out, newContactResponse(&cs[i]))
	}
	return out
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidPayload, map[string]string{key: "must be an integer"})
		return 0, false
	}
	return n, true
}

// List GET /api/contacts?skip=&limit=
func (h *ContactHandler) List(c *gin.Context) {
	skip, valid := queryInt(c, "skip", 0)
	if !valid {
		return
	}
	limit, valid := queryInt(c, "limit", application.DefaultListLimit)
	if !valid {
		return
	}
	cs, err := h.Service.List(c.Request.Context(), middleware.Identity(c), skip, limit)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	skip, limit = application.ClampPage(skip, limit)
	meta := response.PageMeta{Skip: skip, Limit: limit, Count: len(cs)}
	response.JSON(c, response.Success(c, http.StatusOK, newContactList(cs), "contacts", meta))
}

// Get GET /api/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	ct, err := h.Service.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, newContactResponse(ct), "contact")
}

// Create POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ct, err := h.Service.Create(c.Request.Context(), middleware.Identity(c), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusCreated, newContactResponse(ct), "contact created")
}

// Update PUT /api/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ct, err := h.Service.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, newContactResponse(ct), "contact updated")
}

// Delete DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	if _, err := h.Service.Delete(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search GET /api/contacts/search?name=&surname=&email=
func (h *ContactHandler) Search(c *gin.Context) {
	f := entity.ContactFilter{
		Name:    c.Query("name"),
		Surname: c.Query("surname"),
		Email:   c.Query("email"),
	}
	cs, err := h.Service.Search(c.Request.Context(), middleware.Identity(c), f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, newContactList(cs), "contacts")
}

// Birthdays GET /api/contacts/birthdays?days=
func (h *ContactHandler) Birthdays(c *gin.Context) {
	days, valid := queryInt(c, "days", application.DefaultBirthdayDays)
	if !valid {
		return
	}
	cs, err := h.Service.Birthdays(c.Request.Context(), middleware.Identity(c), days)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, newContactList(cs), "upcoming birthdays")
}

// FullText GET /api/contacts/fulltext?q=&size=
func (h *ContactHandler) FullText(c *gin.Context) {
	size, valid := queryInt(c, "size", 0)
	if !valid {
		return
	}
	cs, err := h.Service.FullText(c.Request.Context(), middleware.Identity(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	ok(c, http.StatusOK, newContactList(cs), "contacts")
}
