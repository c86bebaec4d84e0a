package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-practice-scheduler/internal/service"
)

// AdminHandler groups the admin-only operations: semester setup, member
// provisioning and the full batch lifecycle.  Role enforcement happens in
// middleware; every method here assumes an authenticated ADMIN caller.
type AdminHandler struct {
	Semesters *service.SemesterService
	Members   *service.MemberService
	Schedules *service.ScheduleService
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency
// is nil.
func NewAdminHandler(semesters *service.SemesterService, members *service.MemberService, schedules *service.ScheduleService) *AdminHandler {
	if semesters == nil || members == nil || schedules == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Semesters: semesters, Members: members, Schedules: schedules}
}

// CreateSemester handles POST /v1/admin/semesters.  The body carries the
// semester name, date range and an optional activate flag; the response
// reports the semester plus the size of the generated slot grid.
func (h *AdminHandler) CreateSemester(c echo.Context) error {
	var body struct {
		Name      string `json:"name"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Activate  bool   `json:"activate"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sem, slots, err := h.Semesters.CreateSemester(c.Request().Context(), service.CreateSemesterInput{
		Name:      body.Name,
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		Activate:  body.Activate,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"semester":   sem,
		"slot_count": slots,
	})
}

// CurrentSemester handles GET /v1/admin/semesters/current.
func (h *AdminHandler) CurrentSemester(c echo.Context) error {
	sem, slots, err := h.Semesters.CurrentSemester(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"semester":   sem,
		"slot_count": slots,
	})
}
