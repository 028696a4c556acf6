package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/frostair/ac-booking/internal/model"
	"github.com/frostair/ac-booking/internal/repository"
)

// ContactHandler serves the public contact form and the staff inbox.
type ContactHandler struct {
	Contacts *repository.ContactRepo
}

func NewContactHandler(r *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{Contacts: r}
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactStatusReq struct {
	Status string `json:"status"`
}

// Submit stores a contact message from the public site. No auth.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and message are required"})
	}
	if !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if !model.ValidSubject(req.Subject) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subject"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msg := &model.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.Contacts.Create(ctx, msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": msg.ID, "status": msg.Status})
}

// List returns contact messages for staff, newest first. An optional
// ?status= filter narrows to one inbox status.
func (h *ContactHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !model.ValidContactStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Contacts.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, echo.Map{
			"id":         m.ID,
			"name":       m.Name,
			"email":      m.Email,
			"phone":      m.Phone,
			"subject":    m.Subject,
			"message":    m.Message,
			"status":     m.Status,
			"created_at": m.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"contacts": out})
}

// UpdateStatus moves a message through the inbox workflow.
func (h *ContactHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req contactStatusReq
	if err := c.Bind(&req); err != nil || !model.ValidContactStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Contacts.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}
