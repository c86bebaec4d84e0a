package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-practice-scheduler/internal/service"
)

// MemberHandler groups the member-facing scheduling endpoints: the slot
// board, preference submission and the published-assignment view.
type MemberHandler struct {
	Preferences *service.PreferenceService
}

// NewMemberHandler constructs a MemberHandler and panics on a nil
// dependency.
func NewMemberHandler(preferences *service.PreferenceService) *MemberHandler {
	if preferences == nil {
		panic("nil service passed to NewMemberHandler")
	}
	return &MemberHandler{Preferences: preferences}
}

// SlotBoard handles GET /v1/slots.  Every slot of the semester is
// returned with its demand count and whether the caller selected it; the
// frontend renders this as the clickable grid.
func (h *MemberHandler) SlotBoard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	semesterID, err := queryID(c, "semester_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid semester_id"})
	}
	sem, entries, err := h.Preferences.SlotBoard(c.Request().Context(), semesterID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"semester": sem,
		"slots":    entries,
	})
}

// SubmitPreferences handles PUT /v1/preferences.  The submitted slot ids
// replace the member's previous selection wholesale.
func (h *MemberHandler) SubmitPreferences(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SemesterID uint64   `json:"semester_id"`
		SlotIDs    []uint64 `json:"slot_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SlotIDs == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_ids is required"})
	}
	sem, saved, err := h.Preferences.ReplacePreferences(c.Request().Context(), body.SemesterID, userID, body.SlotIDs)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"semester_id": sem.ID,
		"saved_count": saved,
	})
}

// MyAssignments handles GET /v1/my-assignments.  Members only ever see
// published batches; a semester with no published schedule yet is a
// normal 200 with has_published_schedule=false.
func (h *MemberHandler) MyAssignments(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	semesterID, err := queryID(c, "semester_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid semester_id"})
	}
	view, err := h.Preferences.MyAssignments(c.Request().Context(), semesterID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
