// Package router maps the HTTP surface of the scheduling API onto the
// handler layer and applies the authentication and role middleware per
// route group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-practice-scheduler/internal/handler"
	"github.com/iliyamo/club-practice-scheduler/internal/middleware"
	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

// RegisterRoutes registers the unauthenticated routes.  Only the health
// check lives outside the JWT wall; every scheduling endpoint requires a
// token issued by the club's auth gateway.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAdmin registers the admin surface under /v1/admin.  Every
// route requires a valid token with the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	// Semester setup. Creating a semester also generates its slot grid.
	g.POST("/semesters", a.CreateSemester)
	g.GET("/semesters/current", a.CurrentSemester)

	// Member provisioning.
	g.POST("/members", a.CreateMember)
	g.GET("/members", a.ListMembers)

	// Batch lifecycle: run, review, manual edits, publish, grid export.
	g.POST("/schedule/run", a.RunSchedule)
	g.GET("/schedule/proposed", a.ProposedSchedule)
	g.POST("/schedule/assignments", a.CreateAssignment)
	g.PATCH("/schedule/assignments/:id", a.MoveAssignment)
	g.DELETE("/schedule/assignments/:id", a.DeleteAssignment)
	g.POST("/schedule/batches/:id/publish", a.PublishBatch)
	g.GET("/schedule/grid", a.ScheduleGrid)
}

// RegisterMember registers the member surface under /v1.  Admins are
// accepted too so they can preview the board members see.
func RegisterMember(e *echo.Echo, m *handler.MemberHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleMember, model.RoleAdmin))

	// The board is the hot read path during a submission window, so it
	// runs behind the short-TTL response cache.
	g.GET("/slots", m.SlotBoard, cache)
	g.PUT("/preferences", m.SubmitPreferences)
	g.GET("/my-assignments", m.MyAssignments)
}
