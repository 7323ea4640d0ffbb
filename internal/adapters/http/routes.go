package web

import (
	"net/http"

	"clubdash/internal/adapters/http/middleware"
)

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", handleHealthz)

	// Catalog and timetable
	mux.HandleFunc("/api/classes", handleSearchClasses)
	mux.HandleFunc("/api/schedule", handleSchedule)

	// Bookings
	mux.HandleFunc("/api/bookings", middleware.RequireMember(handleBookings))
	mux.HandleFunc("/api/bookings/mine", middleware.RequireMember(handleMyBookings))

	// Coaching staff
	mux.HandleFunc("/api/attendance", middleware.RequireRole(handleMarkAttendance, middleware.RoleCoach, middleware.RoleAdmin))
	mux.HandleFunc("/api/leaderboard/snapshots", middleware.RequireRole(handleTakeSnapshot, middleware.RoleCoach, middleware.RoleAdmin))

	// Members
	mux.HandleFunc("/api/partners", middleware.RequireMember(handlePartners))
	mux.HandleFunc("/api/leaderboard", handleLeaderboard)

	// Operations
	mux.HandleFunc("/api/admin/outbox/dead", middleware.RequireRole(handleDeadLetters, middleware.RoleAdmin))
	mux.HandleFunc("/api/admin/perf", middleware.RequireRole(handlePerf, middleware.RoleAdmin))
}
