package main

import (
	"log"
	"net/http"
	"time"

	"practice-service/internal/config"
	"practice-service/internal/db"
	"practice-service/internal/event"
	"practice-service/internal/handlers"
	"practice-service/internal/ratelimit"
	"practice-service/internal/repository"
	"practice-service/internal/retrieval"
	"practice-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db.InitMongo(cfg.MongoURI)

	// Shared Redis rate limiter; in-process fallback when unreachable
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		if client := db.InitRedis(cfg.RedisAddr, cfg.RedisPassword); client != nil {
			limiter = ratelimit.NewRedisLimiter(client, cfg.RequestQuota)
		}
	}
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(cfg.RequestQuota)
	}

	// RabbitMQ event publisher
	var publisher *event.Publisher
	if cfg.RabbitURI != "" && cfg.RabbitExchange != "" {
		var err error
		publisher, err = event.NewPublisher(cfg.RabbitURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, practice events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(cfg.MongoDB)

	// Content pool
	contentRepo := repository.NewContentRepository(database)
	contentService := service.NewContentService(contentRepo)
	contentHandler := handlers.NewContentHandler(contentService)

	// Learners
	learnerRepo := repository.NewLearnerRepository(database)

	// Sessions, outcomes, results
	sessionRepo := repository.NewSessionRepository(database)
	outcomeRepo := repository.NewOutcomeRepository(database)
	resultRepo := repository.NewResultRepository(database)

	learnerService := service.NewLearnerService(learnerRepo, resultRepo)
	learnerHandler := handlers.NewLearnerHandler(learnerService)

	engine := retrieval.NewEngine(contentRepo, learnerRepo)
	practiceService := service.NewPracticeService(
		sessionRepo,
		learnerRepo,
		contentRepo,
		outcomeRepo,
		resultRepo,
		engine,
		limiter,
		&service.Config{
			SessionDuration: cfg.SessionDuration,
			ItemBudget:      cfg.ItemBudget,
		},
	)
	practiceHandler := handlers.NewPracticeHandler(practiceService)

	// Public routes - learners
	publicLearner := r.Group("/public/practice/learner")
	{
		publicLearner.GET("/:id", func(c *gin.Context) {
			learnerHandler.GetProfile(c)
			if publisher != nil {
				publisher.Publish("learner.profile_viewed", gin.H{"id": c.Param("id")})
			}
		})
		publicLearner.GET("/:id/results", func(c *gin.Context) {
			learnerHandler.GetResults(c)
			if publisher != nil {
				publisher.Publish("learner.results_viewed", gin.H{"id": c.Param("id")})
			}
		})
	}

	// Public routes - pool monitoring for the offline generator
	publicContent := r.Group("/public/practice/content")
	{
		publicContent.GET("/", contentHandler.ListContent)
		publicContent.GET("/:id", contentHandler.GetContent)
		publicContent.GET("/pool/info", func(c *gin.Context) {
			contentHandler.GetPoolInfo(c)
			if publisher != nil {
				publisher.Publish("content.pool_checked", nil)
			}
		})
	}

	// Protected routes - content ingestion
	protectedContent := r.Group("/protected/practice/content")
	{
		protectedContent.POST("/", contentHandler.CreateContent)
		protectedContent.POST("/bulk", func(c *gin.Context) {
			contentHandler.BulkCreateContent(c)
			if publisher != nil {
				publisher.Publish("content.batch_ingested", gin.H{"timestamp": time.Now()})
			}
		})
		protectedContent.DELETE("/:id", contentHandler.DeleteContent)
	}

	setupSessionRoutes(r, practiceHandler, publisher)

	r.Run(":" + cfg.Port)
}

func setupSessionRoutes(r *gin.Engine, practiceHandler *handlers.PracticeHandler, publisher *event.Publisher) {
	protectedSession := r.Group("/protected/practice/session")

	// Authentication middleware: the gateway sets X-User-ID
	protectedSession.Use(func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	})

	{
		// Open a new practice session
		protectedSession.POST("/", func(c *gin.Context) {
			practiceHandler.StartSession(c)
			if publisher != nil {
				publisher.Publish("practice.session.started", gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})

		// Get the next item or passage batch
		protectedSession.GET("/:id/next", func(c *gin.Context) {
			practiceHandler.NextItem(c)
			if publisher != nil {
				publisher.Publish("practice.item.requested", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})

		// Report an answered or abandoned item
		protectedSession.POST("/:id/outcome", func(c *gin.Context) {
			practiceHandler.SubmitOutcome(c)
			if publisher != nil {
				publisher.Publish("practice.outcome.reported", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})

		// End the session explicitly
		protectedSession.POST("/:id/end", func(c *gin.Context) {
			practiceHandler.EndSession(c)
			if publisher != nil {
				publisher.Publish("practice.session.ended", gin.H{
					"session_id": c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"timestamp":  time.Now(),
				})
			}
		})

		// Session document and live flow status; owner-only like every
		// other session operation
		protectedSession.GET("/:id", practiceHandler.GetSession)
		protectedSession.GET("/:id/status", practiceHandler.GetSessionStatus)
	}
}
