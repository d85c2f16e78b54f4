package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/config"
	"github.com/yukikurage/xp-task-api/internal/constants"
	"github.com/yukikurage/xp-task-api/internal/database"
	"github.com/yukikurage/xp-task-api/internal/handlers"
	"github.com/yukikurage/xp-task-api/internal/lock"
	"github.com/yukikurage/xp-task-api/internal/middleware"
	"github.com/yukikurage/xp-task-api/internal/repository"
	"github.com/yukikurage/xp-task-api/internal/scheduler"
	"github.com/yukikurage/xp-task-api/internal/services"
	"golang.org/x/time/rate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	clock := calendar.SystemClock{Location: cfg.Location()}
	store := repository.NewStore(database.GetDB())

	// Per-user locks: Redis when several instances share the database
	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.UserLock == "redis" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, 0)
	}

	// Initialize AI service
	var generator services.SubtaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	}

	authService := services.NewAuthService(store.Users(), services.UserDefaults{
		DailyXPQuota:   cfg.DefaultDailyXPQuota,
		DaysOffPerWeek: cfg.DefaultDaysOffPerWeek,
	})
	taskService := services.NewTaskService(store, locker, clock)
	userService := services.NewUserService(store, locker, clock)
	priorityService := services.NewPriorityService(store.Priorities())
	suggestionService := services.NewSuggestionService(store, generator, clock)
	jobService := services.NewJobService(store, locker, clock, cfg.DefaultDaysOffPerWeek)

	// Batch jobs; the Monday run also resets the week's days off
	sched := scheduler.New(cfg.Location())
	if _, err := sched.ScheduleDaily(cfg.DailyJobTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		jobService.RunDaily(jobCtx)
	}); err != nil {
		log.Fatalf("Failed to schedule daily jobs: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Logger(), middleware.RequestID(), middleware.RecoveryWithLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", constants.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute))

	// Setup session middleware
	sessionStore := newSessionStore(cfg)
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, suggestionService)
	userHandler := handlers.NewUserHandler(userService)
	priorityHandler := handlers.NewPriorityHandler(priorityService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "XP Task API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		api.GET("/priorities", priorityHandler.ListPriorities)

		// User routes (protected)
		users := api.Group("/users/me")
		users.Use(middleware.RequireAuth())
		{
			users.GET("", userHandler.GetProfile)
			users.POST("/day-off", userHandler.SetDayOff)
			users.DELETE("/day-off", userHandler.RemoveDayOff)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
			tasks.PATCH("/:id/done", middleware.RequireTaskAccess(), taskHandler.CompleteTask)
			tasks.POST("/:id/suggestions", middleware.RequireTaskAccess(), taskHandler.SuggestSubtasks)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}

func newSessionStore(cfg *config.Config) sessions.Store {
	if cfg.SessionStore == "cookie" {
		return cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	return store
}
