package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-practice-scheduler/internal/queue"
	"github.com/iliyamo/club-practice-scheduler/internal/service"
)

// RunSchedule handles POST /v1/admin/schedule/run.  It executes the
// two-phase allocation for the semester (the active one unless
// semester_id is given) and replaces any previous proposed batch.
func (h *AdminHandler) RunSchedule(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	semesterID, err := queryID(c, "semester_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid semester_id"})
	}
	result, err := h.Schedules.GenerateSchedule(c.Request().Context(), semesterID, actorID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// ProposedSchedule handles GET /v1/admin/schedule/proposed.  The review
// screen polls this between the run and the publish.
func (h *AdminHandler) ProposedSchedule(c echo.Context) error {
	semesterID, err := queryID(c, "semester_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid semester_id"})
	}
	view, err := h.Schedules.ProposedBatch(c.Request().Context(), semesterID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// CreateAssignment handles POST /v1/admin/schedule/assignments, the
// manual "add this member to this slot" edit on a proposed batch.
func (h *AdminHandler) CreateAssignment(c echo.Context) error {
	var body struct {
		BatchID uint64 `json:"batch_id"`
		UserID  uint64 `json:"user_id"`
		SlotID  uint64 `json:"slot_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.UserID == 0 || body.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and slot_id are required"})
	}
	a, created, err := h.Schedules.CreateAssignment(c.Request().Context(), service.CreateAssignmentInput{
		BatchID: body.BatchID,
		UserID:  body.UserID,
		SlotID:  body.SlotID,
	})
	if err != nil {
		return serviceError(c, err)
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK // identical assignment already present
	}
	return c.JSON(status, echo.Map{"assignment": a, "created": created})
}

// MoveAssignment handles PATCH /v1/admin/schedule/assignments/:id.  The
// body names the target slot; swap_if_occupied (default true) controls
// whether an occupied target triggers an exchange or a 409.
func (h *AdminHandler) MoveAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assignment id"})
	}
	var body struct {
		SlotID         uint64 `json:"slot_id"`
		SwapIfOccupied *bool  `json:"swap_if_occupied"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id is required"})
	}
	swap := true
	if body.SwapIfOccupied != nil {
		swap = *body.SwapIfOccupied
	}
	result, err := h.Schedules.MoveAssignment(c.Request().Context(), service.MoveAssignmentInput{
		AssignmentID:   id,
		TargetSlotID:   body.SlotID,
		SwapIfOccupied: swap,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteAssignment handles DELETE /v1/admin/schedule/assignments/:id.
func (h *AdminHandler) DeleteAssignment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assignment id"})
	}
	if err := h.Schedules.DeleteAssignment(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PublishBatch handles POST /v1/admin/schedule/batches/:id/publish.
// After the publish commits, a schedule.published event is emitted for
// the notification pipeline; a broker failure is logged by the publisher
// and deliberately ignored, since the publish itself already happened.
func (h *AdminHandler) PublishBatch(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	batchID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch id"})
	}
	result, err := h.Schedules.PublishBatch(c.Request().Context(), batchID, actorID)
	if err != nil {
		return serviceError(c, err)
	}

	_ = queue.PublishSchedulePublished(c.Request().Context(), queue.SchedulePublishedEvent{
		BatchID:         result.BatchID,
		SemesterID:      result.SemesterID,
		SemesterName:    result.SemesterName,
		PublishedBy:     actorID,
		AssignedUserIDs: result.UserIDs,
		PublishedAt:     result.PublishedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, result)
}

// ScheduleGrid handles GET /v1/admin/schedule/grid.  The response is the
// room × day × hour projection the frontend renders and exports; an
// explicit batch_id selects a historical batch.
func (h *AdminHandler) ScheduleGrid(c echo.Context) error {
	semesterID, err := queryID(c, "semester_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid semester_id"})
	}
	batchID, err := queryID(c, "batch_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch_id"})
	}
	view, err := h.Schedules.ScheduleGrid(c.Request().Context(), batchID, semesterID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
