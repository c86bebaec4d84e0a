package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-practice-scheduler/internal/config"
	"github.com/iliyamo/club-practice-scheduler/internal/database"
	"github.com/iliyamo/club-practice-scheduler/internal/handler"
	"github.com/iliyamo/club-practice-scheduler/internal/middleware"
	"github.com/iliyamo/club-practice-scheduler/internal/queue"
	"github.com/iliyamo/club-practice-scheduler/internal/repository"
	"github.com/iliyamo/club-practice-scheduler/internal/router"
	"github.com/iliyamo/club-practice-scheduler/internal/service"
)

func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter; both degrade
	// to pass-through when it is unreachable.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	txm := repository.NewMySQLTxManager(db)
	semesters := service.NewSemesterService(txm)
	members := service.NewMemberService(txm, cfg.BcryptCost)
	schedules := service.NewScheduleService(txm)
	preferences := service.NewPreferenceService(txm)

	admin := handler.NewAdminHandler(semesters, members, schedules)
	member := handler.NewMemberHandler(preferences)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(rateCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterAdmin(e, admin, cfg.JWTSecret)
	router.RegisterMember(e, member, cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))

	// The consumer appends schedule.published events to logs/schedule.log
	// for the notification pipeline. It reconnects forever on its own.
	go func() {
		if err := queue.StartScheduleConsumer(); err != nil {
			log.Printf("schedule consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
