package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/maati-dev/maati/internal/server/handlers"
	"github.com/maati-dev/maati/internal/server/middleware"
	"github.com/maati-dev/maati/internal/server/storage"
)

// Storages groups the persistence interfaces the router depends on.
// The SQLite storage implements all of them.
type Storages struct {
	Users         storage.UserStorage
	Tokens        storage.TokenStorage
	Villages      storage.VillageStorage
	Families      storage.FamilyStorage
	Meetings      storage.MeetingStorage
	Buildings     storage.BuildingStorage
	Feedback      storage.FeedbackStorage
	Verifications storage.VerificationStorage
	Materials     storage.MaterialStorage
	Logs          storage.LogStorage
	Analytics     storage.AnalyticsStorage
	Health        handlers.Pinger
}

// NewRouter assembles the full API surface with the middleware chain:
// recovery, request logging (health checks skipped), rate limiting, and
// JWT auth on everything except health, auth and public feedback intake.
func NewRouter(logger *slog.Logger, st Storages, jwtConfig handlers.JWTConfig, version string) http.Handler {
	authHandler := handlers.NewAuthHandler(logger, st.Users, st.Tokens, st.Villages, jwtConfig)
	villageHandler := handlers.NewVillageHandler(logger, st.Villages, st.Families)
	meetingHandler := handlers.NewMeetingHandler(logger, st.Meetings, st.Logs)
	buildingHandler := handlers.NewBuildingHandler(logger, st.Buildings, st.Logs)
	feedbackHandler := handlers.NewFeedbackHandler(logger, st.Feedback, st.Logs)
	verificationHandler := handlers.NewVerificationHandler(logger, st.Verifications, st.Logs)
	materialHandler := handlers.NewMaterialHandler(logger, st.Materials, st.Logs)
	logHandler := handlers.NewLogHandler(logger, st.Logs)
	analyticsHandler := handlers.NewAnalyticsHandler(logger, st.Analytics)
	healthHandler := handlers.NewHealthHandler(logger, st.Health, version)

	auth := middleware.AuthMiddleware(logger, jwtConfig)
	secure := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux := http.NewServeMux()

	// Public surface.
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	// Villagers submit feedback without an account.
	mux.HandleFunc("POST /api/v1/feedback", feedbackHandler.Create)

	// Villages and per-village sub-resources.
	mux.Handle("GET /api/v1/villages", secure(villageHandler.List))
	mux.Handle("GET /api/v1/villages/{id}", secure(villageHandler.Get))
	mux.Handle("GET /api/v1/villages/{id}/family-count", secure(villageHandler.FamilyCount))
	mux.Handle("GET /api/v1/villages/{id}/beneficiaries", secure(villageHandler.Beneficiaries))
	mux.Handle("GET /api/v1/villages/{id}/meetings", secure(meetingHandler.ListByVillage))
	mux.Handle("GET /api/v1/villages/{id}/buildings", secure(buildingHandler.ListByVillage))
	mux.Handle("GET /api/v1/villages/{id}/feedback", secure(feedbackHandler.ListByVillage))
	mux.Handle("GET /api/v1/villages/{id}/facility-verifications", secure(verificationHandler.ListFacilityByVillage))
	mux.Handle("GET /api/v1/villages/{id}/material-updates", secure(materialHandler.ListByVillage))
	mux.Handle("GET /api/v1/villages/{id}/field-verifications", secure(verificationHandler.ListFieldByVillage))

	mux.Handle("GET /api/v1/families/{id}", secure(villageHandler.FamilyDetail))

	mux.Handle("POST /api/v1/meetings", secure(meetingHandler.Create))
	mux.Handle("DELETE /api/v1/meetings/{id}", secure(meetingHandler.Delete))

	mux.Handle("POST /api/v1/buildings", secure(buildingHandler.Create))
	mux.Handle("PUT /api/v1/buildings/{id}", secure(buildingHandler.Update))
	mux.Handle("DELETE /api/v1/buildings/{id}", secure(buildingHandler.Delete))

	mux.Handle("GET /api/v1/feedback/{id}", secure(feedbackHandler.Get))

	mux.Handle("PUT /api/v1/facility-verifications/{id}/status", secure(verificationHandler.UpdateFacilityStatus))
	mux.Handle("PUT /api/v1/field-verifications/{id}/status", secure(verificationHandler.UpdateFieldStatus))

	mux.Handle("POST /api/v1/material-updates", secure(materialHandler.Create))
	mux.Handle("PUT /api/v1/material-updates/{id}/status", secure(materialHandler.UpdateStatus))
	mux.Handle("GET /api/v1/material-updates/{id}/status-history", secure(materialHandler.StatusHistory))

	mux.Handle("GET /api/v1/logs", secure(logHandler.List))
	mux.Handle("GET /api/v1/analytics/options", secure(analyticsHandler.Options))
	mux.Handle("GET /api/v1/analytics/buildings", secure(analyticsHandler.Buildings))

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(300, time.Minute, logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}
