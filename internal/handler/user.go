package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/frostair/ac-booking/internal/model"
	"github.com/frostair/ac-booking/internal/repository"
)

// UserHandler serves profile management and the public technician
// directory.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: u}
}

type updateProfileReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zip_code"`
}

// GetProfile returns the full account record for the authenticated
// user, including contact and address fields.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profileView(u)})
}

// UpdateProfile overwrites the editable profile fields. Email and role
// are immutable here.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first and last name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Users.UpdateProfile(ctx, userID, model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		City:      strings.TrimSpace(req.City),
		ZipCode:   strings.TrimSpace(req.ZipCode),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": profileView(u)})
}

// ListTechnicians exposes the technician roster so customers can pick
// a preferred technician when booking.
func (h *UserHandler) ListTechnicians(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	techs, err := h.Users.ListTechnicians(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"technicians": techs})
}

func profileView(u model.User) echo.Map {
	return echo.Map{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"phone":      u.Phone,
		"address":    u.Address,
		"city":       u.City,
		"zip_code":   u.ZipCode,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
}
