package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/config"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/attendance-agent-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/syncapi"
	"github.com/cmlabs-hris/attendance-agent-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/attendance-agent-go/internal/service/attendance"
	profileService "github.com/cmlabs-hris/attendance-agent-go/internal/service/profile"
	settingsService "github.com/cmlabs-hris/attendance-agent-go/internal/service/settings"
	syncService "github.com/cmlabs-hris/attendance-agent-go/internal/service/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		fmt.Println("Error opening local store:", err)
		return
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		fmt.Println("Error migrating local store:", err)
		return
	}

	location, err := time.LoadLocation(cfg.Shift.Timezone)
	if err != nil {
		fmt.Println("Error loading timezone:", err)
		return
	}

	attendanceRepo := sqlite.NewAttendanceRepository(db)
	profileRepo := sqlite.NewProfileRepository(db)
	settingsRepo := sqlite.NewSettingsRepository(db)

	shiftConfig := attendance.ShiftConfig{
		StartMinutes:              cfg.Shift.StartMinutes,
		EndMinutes:                cfg.Shift.EndMinutes,
		StaleThresholdDays:        cfg.Shift.StaleThresholdDays,
		MissedCheckoutBufferHours: cfg.Shift.MissedCheckoutBufferHours,
		Location:                  location,
	}

	hub := sse.NewHub()
	apiClient := syncapi.NewClient(cfg.Server.BaseURL, cfg.Server.APIToken, cfg.Sync.Timeout)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.SessionExpiration)

	geofence := attendance.Geofence{
		Latitude:     cfg.Geofence.Latitude,
		Longitude:    cfg.Geofence.Longitude,
		RadiusMeters: cfg.Geofence.RadiusMeters,
	}

	attendanceSvc := attendanceService.NewService(attendanceRepo, shiftConfig, geofence)
	profileSvc := profileService.NewService(profileRepo)
	coordinator := syncService.NewCoordinator(attendanceRepo, profileRepo, settingsRepo, apiClient, hub, nil)
	settingsSvc := settingsService.NewService(db, settingsRepo, profileRepo, attendanceRepo, coordinator, nil)

	scheduler := cron.NewScheduler()
	jobs := cron.NewAgentJobs(coordinator, attendanceSvc, hub, cfg.Server.UserEmail, cfg.Server.UserID)
	jobs.RegisterJobs(scheduler, cfg.Sync.Interval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		cfg.App.UIOrigin,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewProfileHandler(profileSvc),
		appHTTP.NewSettingsHandler(settingsSvc),
		appHTTP.NewSessionHandler(settingsSvc, JWTService, cfg.Server.UserEmail, cfg.Server.UserID),
		appHTTP.NewSyncHandler(coordinator, hub, JWTService, cfg.Server.UserEmail, cfg.Server.UserID),
	)

	// The agent serves the local UI shell only.
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		fmt.Printf("Agent running at http://%s\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	coordinator.Cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Println("Shutdown error:", err)
	}
}
