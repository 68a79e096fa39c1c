package server

import (
	"strings"
	"time"

	"collegease.app/server/internal/config"
	"collegease.app/server/internal/entity"
	"collegease.app/server/internal/middleware"
	"collegease.app/server/pkg/storage"

	authHttp "collegease.app/server/internal/modules/auth/delivery/http"
	authRepo "collegease.app/server/internal/modules/auth/repository"
	authService "collegease.app/server/internal/modules/auth/service"

	searchService "collegease.app/server/internal/modules/search/service"

	staffHttp "collegease.app/server/internal/modules/staff/delivery/http"
	staffRepo "collegease.app/server/internal/modules/staff/repository"
	staffService "collegease.app/server/internal/modules/staff/service"

	studentHttp "collegease.app/server/internal/modules/student/delivery/http"
	studentRepo "collegease.app/server/internal/modules/student/repository"
	studentService "collegease.app/server/internal/modules/student/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, docStorage storage.DocumentStorage, meiliClient meilisearch.ServiceManager) *Server {
	var searchSvc searchService.StudentSearchService
	if meiliClient != nil {
		searchSvc = searchService.NewStudentSearchService(meiliClient)
	}

	sessions := authService.NewSessionStore(redisClient, cfg.JWTTTL)

	userRepo := authRepo.NewUserRepository(db)
	authSvc := authService.NewAuthService(userRepo, sessions, searchSvc, cfg)
	authHandler := authHttp.NewAuthHandler(authSvc, redisClient)

	fileRepo := studentRepo.NewFileRepository(db)
	studentSvc := studentService.NewStudentFileService(fileRepo, docStorage)
	studentHandler := studentHttp.NewStudentHandler(studentSvc)

	rosterRepo := staffRepo.NewRosterRepository(db)
	staffSvc := staffService.NewStaffRosterService(rosterRepo, searchSvc)
	staffHandler := staffHttp.NewStaffHandler(staffSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, sessions, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/verify", authHandler.VerifyEmail)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/session", authHandler.Session)
		protected.GET("/auth/session/ws", authHandler.SessionEvents)
		protected.POST("/auth/profile", authHandler.CompleteProfile)

		protected.GET("/dashboard", authHandler.Dashboard)

		student := protected.Group("/student")
		student.Use(authMiddleware.RequireRole(entity.RoleStudent))
		{
			student.GET("/files", studentHandler.ListFiles)
			student.POST("/files", studentHandler.UploadFile)
			student.DELETE("/files/:id", studentHandler.DeleteFile)
		}

		staff := protected.Group("/staff")
		staff.Use(authMiddleware.RequireRole(entity.RoleStaff))
		{
			staff.GET("/students", staffHandler.ListStudents)
			staff.GET("/students/batches", staffHandler.BatchOptions)
			staff.GET("/students/search", staffHandler.SearchStudents)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
