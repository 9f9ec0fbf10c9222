package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/elearning/internal/config"
	"anoa.com/elearning/internal/jobs"
	"anoa.com/elearning/internal/middleware"
	"anoa.com/elearning/pkg/logger"
	"anoa.com/elearning/pkg/storage"

	catalogHttp "anoa.com/elearning/internal/modules/catalog/delivery/http"
	catalogService "anoa.com/elearning/internal/modules/catalog/service"

	categoryHttp "anoa.com/elearning/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/elearning/internal/modules/category/repository"
	categoryService "anoa.com/elearning/internal/modules/category/service"

	courseHttp "anoa.com/elearning/internal/modules/course/delivery/http"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	courseService "anoa.com/elearning/internal/modules/course/service"

	enrollmentRepo "anoa.com/elearning/internal/modules/enrollment/repository"

	favoriteHttp "anoa.com/elearning/internal/modules/favorite/delivery/http"
	favoriteRepo "anoa.com/elearning/internal/modules/favorite/repository"
	favoriteService "anoa.com/elearning/internal/modules/favorite/service"

	lessonHttp "anoa.com/elearning/internal/modules/lesson/delivery/http"
	lessonRepo "anoa.com/elearning/internal/modules/lesson/repository"
	lessonService "anoa.com/elearning/internal/modules/lesson/service"

	reviewRepo "anoa.com/elearning/internal/modules/review/repository"

	searchHttp "anoa.com/elearning/internal/modules/search/delivery/http"
	searchService "anoa.com/elearning/internal/modules/search/service"

	userHttp "anoa.com/elearning/internal/modules/user/delivery/http"
	userRepo "anoa.com/elearning/internal/modules/user/repository"
	userService "anoa.com/elearning/internal/modules/user/service"

	viewService "anoa.com/elearning/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine  *gin.Engine
	cfg     *config.Config
	log     *logger.Logger
	views   viewService.ViewService
	jobs    *jobs.Scheduler
	httpSrv *http.Server
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logger.Logger) *Server {
	userRepo := userRepo.NewUserRepository(db)
	categoryRepo := categoryRepo.NewCategoryRepository(db)
	courseRepo := courseRepo.NewCourseRepository(db)
	enrollmentRepo := enrollmentRepo.NewEnrollmentRepository(db)
	reviewRepo := reviewRepo.NewReviewRepository(db)
	lessonRepo := lessonRepo.NewLessonRepository(db)
	favoriteRepo := favoriteRepo.NewFavoriteRepository(db)

	var (
		imageStorage storage.ImageStorage
		videoStorage storage.VideoStorage
	)
	if media := newMediaStorage(cfg, log); media != nil {
		imageStorage, videoStorage = media, media
	}
	courseIndex := newCourseIndex(cfg, log)

	authSvc := userService.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	categorySvc := categoryService.NewCategoryService(categoryRepo, courseRepo)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	viewSvc := viewService.NewViewService(redisClient, courseRepo, log)

	catalogSvc := catalogService.NewCatalogService(catalogService.Dependencies{
		Courses:     courseRepo,
		Reviews:     reviewRepo,
		Enrollments: enrollmentRepo,
		Categories:  categorySvc,
		Teachers:    userRepo,
		Views:       viewSvc,
		Logger:      log,
	}, catalogService.Options{
		NewLimit:        cfg.Catalog.NewLimit,
		BestsellerLimit: cfg.Catalog.BestsellerLimit,
		PopularLimit:    cfg.Catalog.PopularLimit,
		TopViewedLimit:  cfg.Catalog.TopViewedLimit,
		RelatedLimit:    cfg.Catalog.RelatedLimit,
		PopularWindow:   cfg.Catalog.PopularWindow,
	})
	catalogHandler := catalogHttp.NewCatalogHandler(catalogSvc)

	courseSvc := courseService.NewService(courseRepo, categoryRepo, enrollmentRepo, reviewRepo, userRepo, imageStorage, courseIndex, log)
	courseHandler := courseHttp.NewCourseHandler(courseSvc)

	userSvc := userService.NewUserService(userRepo, courseSvc, log)
	userHandler := userHttp.NewUserHandler(userSvc)

	lessonSvc := lessonService.NewService(lessonRepo, courseRepo, enrollmentRepo, videoStorage, log)
	lessonHandler := lessonHttp.NewLessonHandler(lessonSvc)

	favoriteSvc := favoriteService.NewService(favoriteRepo, courseRepo, catalogSvc)
	favoriteHandler := favoriteHttp.NewFavoriteHandler(favoriteSvc)

	searchHandler := searchHttp.NewSearchHandler(courseIndex)

	scheduler := jobs.NewScheduler(log)
	if cfg.MeiliSearchHost != "" && cfg.SearchReindexSchedule != "" {
		reindex := jobs.NewSearchReindexJob(courseRepo, userRepo, categorySvc, courseIndex, cfg.SearchReindexSchedule, log)
		if err := scheduler.Register(reindex); err != nil {
			log.Warn("search reindex job disabled", "error", err)
		}
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/categories", categoryHandler.GetAllCategories)
	api.GET("/categories/:id", categoryHandler.GetCategoryByID)

	api.GET("/courses", catalogHandler.Search)
	api.GET("/courses/newest", catalogHandler.GetNewestCourses)
	api.GET("/courses/top-viewed", catalogHandler.GetTopViewedCourses)
	api.GET("/courses/popular", catalogHandler.GetPopularCourses)
	api.GET("/courses/suggest", searchHandler.Suggest)
	api.GET("/courses/:id", catalogHandler.GetCourseByID)
	api.GET("/courses/:id/related", catalogHandler.GetRelatedCourses)
	api.GET("/courses/:id/reviews", courseHandler.GetReviews)
	api.GET("/courses/:id/lessons", lessonHandler.GetLessons)
	api.GET("/courses/:id/lessons/:number", lessonHandler.GetLesson)
	api.GET("/teachers/:id/courses", catalogHandler.GetTeacherCourses)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/categories", categoryHandler.CreateCategory)
			adminGroup.PUT("/categories/:id", categoryHandler.UpdateCategory)
			adminGroup.DELETE("/categories/:id", categoryHandler.DeleteCategory)

			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.GET("/users/:id", userHandler.GetUser)
			adminGroup.POST("/users/teachers", userHandler.CreateTeacher)
			adminGroup.PUT("/users/:id", userHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", userHandler.DeleteUser)
		}

		teaching := protected.Group("")
		teaching.Use(authMiddleware.RequireRole("teacher", "admin"))
		{
			teaching.POST("/courses", courseHandler.CreateCourse)
			teaching.PUT("/courses/:id", courseHandler.UpdateCourse)
			teaching.DELETE("/courses/:id", courseHandler.DeleteCourse)
			teaching.POST("/courses/:id/image", courseHandler.UploadImage)
			teaching.GET("/courses/:id/enrollments", courseHandler.GetCourseEnrollments)
			teaching.POST("/courses/:id/lessons", lessonHandler.AddLesson)
			teaching.PUT("/courses/:id/lessons/:number", lessonHandler.UpdateLesson)
			teaching.POST("/courses/:id/lessons/:number/video", lessonHandler.UploadVideo)
		}

		protected.POST("/courses/:id/enroll", courseHandler.Enroll)
		protected.POST("/courses/:id/reviews", courseHandler.AddReview)
		protected.POST("/courses/:id/favorite", favoriteHandler.Favorite)
		protected.DELETE("/courses/:id/favorite", favoriteHandler.Unfavorite)
		protected.GET("/courses/:id/progress", lessonHandler.GetProgress)
		protected.POST("/courses/:id/lessons/:number/complete", lessonHandler.CompleteLesson)
		protected.DELETE("/courses/:id/lessons/:number/complete", lessonHandler.UncompleteLesson)

		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me/password", userHandler.ChangePassword)
		protected.GET("/me/enrollments", courseHandler.GetMyEnrollments)
		protected.GET("/me/favorites", favoriteHandler.GetFavorites)
	}

	return &Server{
		engine: router,
		cfg:    cfg,
		log:    log,
		views:  viewSvc,
		jobs:   scheduler,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.views.StartViewSyncWorker(ctx, s.cfg.ViewSyncInterval)
	s.jobs.Start(ctx)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down http server")
	err := s.httpSrv.Shutdown(shutdownCtx)
	s.jobs.Stop(shutdownCtx)
	return err
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func newMediaStorage(cfg *config.Config, log *logger.Logger) storage.MediaStorage {
	media, err := storage.NewCloudinaryStorage(storage.CloudinaryOptions{
		CloudName:    cfg.CloudinaryCloudName,
		APIKey:       cfg.CloudinaryAPIKey,
		APISecret:    cfg.CloudinaryAPISecret,
		UploadFolder: cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		log.Warn("cloudinary is not configured, image and video uploads are disabled", "error", err)
		return nil
	}
	return media
}

func newCourseIndex(cfg *config.Config, log *logger.Logger) searchService.CourseIndex {
	meiliHost := cfg.MeiliSearchHost
	if meiliHost == "" {
		log.Warn("MEILISEARCH_HOST is not set, course suggestions are disabled")
		return searchService.NewNoopCourseIndex()
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliCourseIndex(meiliClient, log)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
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
