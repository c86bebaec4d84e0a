package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-practice-scheduler/internal/service"
)

// CreateMember handles POST /v1/admin/members.  Admins provision member
// accounts in bulk at the start of a semester; the auth gateway handles
// sign-in against the stored hash.
func (h *AdminHandler) CreateMember(c echo.Context) error {
	var body struct {
		StudentNumber string `json:"student_number"`
		DisplayName   string `json:"display_name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	user, err := h.Members.CreateMember(c.Request().Context(), service.CreateMemberInput{
		StudentNumber: body.StudentNumber,
		DisplayName:   body.DisplayName,
		Email:         body.Email,
		Password:      body.Password,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"member": user})
}

// ListMembers handles GET /v1/admin/members.
func (h *AdminHandler) ListMembers(c echo.Context) error {
	members, err := h.Members.ListMembers(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}
