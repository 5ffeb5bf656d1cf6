package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-interviewer/internal/config"
	"ai-interviewer/internal/events"
	"ai-interviewer/internal/handlers"
	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/repositories"
	"ai-interviewer/internal/services"
	"ai-interviewer/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	logging.Init(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		TimeFormat: time.RFC3339,
	})

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	sessionRepo := repositories.NewSessionRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize artifact storage
	artifactStore, err := services.NewArtifactStore(cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Failed to initialize artifact store: %v", err)
	}
	log.Println("✅ Artifact store initialized successfully")

	extractor := services.NewTextExtractor(services.NewTesseractEngine())

	// Initialize LLM provider. A missing API key is not fatal: question
	// generation and scoring degrade to the built-in fallbacks.
	generator, err := services.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}
	if generator == nil {
		log.Println("⚠️ No LLM API key configured, running with fallback question bank")
	} else {
		log.Printf("✅ LLM provider initialized: %s\n", generator.Name())
	}

	// Embeddings always come from Gemini, even when Claude generates text.
	var embedder services.Embedder
	if gemini, ok := generator.(services.GeminiService); ok {
		embedder = gemini
	} else if cfg.LLM.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiService(cfg.LLM.GeminiAPIKey)
		if err != nil {
			log.Printf("⚠️ Embedding provider unavailable: %v\n", err)
		} else {
			embedder = gemini
		}
	}

	// Initialize the question bank
	var bank services.QuestionBank
	if cfg.Qdrant.Enabled {
		b, err := services.NewQuestionBank(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Printf("⚠️ Question bank unavailable: %v\n", err)
		} else if err := b.InitCollection(); err != nil {
			log.Printf("⚠️ Question bank collection init failed: %v\n", err)
		} else {
			bank = b
			log.Println("✅ Question bank initialized successfully")
		}
	}

	// Initialize speech providers, both optional
	ctx := context.Background()

	synth, err := services.NewSpeechSynthesizer(ctx, cfg.TTS)
	if err != nil {
		log.Printf("⚠️ Text-to-speech unavailable: %v\n", err)
		synth = nil
	} else if synth == nil {
		log.Println("⚠️ Text-to-speech disabled, running text-only")
	} else {
		log.Println("✅ Text-to-speech initialized successfully")
	}

	stt, err := services.NewSpeechToTextProvider(ctx, cfg.STT)
	if err != nil {
		log.Printf("⚠️ Speech-to-text unavailable: %v\n", err)
		stt = nil
	} else if stt == nil {
		log.Println("⚠️ Speech-to-text disabled")
	} else {
		log.Printf("✅ Speech-to-text initialized: %s\n", stt.Name())
	}

	// Initialize services
	questionGenerator := services.NewQuestionGenerator(generator, embedder, bank, cfg.LLM.MaxRetries)
	analyzer := services.NewAnswerAnalyzer(generator, cfg.LLM.MaxRetries)
	ttsService := services.NewTTSService(synth, artifactStore, cfg.TTS.DefaultVoice)
	transcriber := services.NewTranscriptionService(stt, artifactStore, cfg.STT.Timeout)
	log.Println("✅ Services initialized successfully")

	// Speech sessions live in Redis when configured, in memory otherwise
	var sessionStore session.Store
	if cfg.Redis.URL != "" {
		redisStore, err := session.NewRedisStore(cfg.Redis.URL, cfg.Redis.SessionTTL)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, using in-memory speech sessions: %v\n", err)
			sessionStore = session.NewMemoryStore(cfg.Redis.SessionTTL)
		} else {
			sessionStore = redisStore
			log.Println("✅ Redis speech session store initialized")
		}
	} else {
		sessionStore = session.NewMemoryStore(cfg.Redis.SessionTTL)
		log.Println("✅ In-memory speech session store initialized")
	}

	// Initialize event publisher
	publisher := events.New(events.Config{
		Brokers:      cfg.Kafka.Brokers,
		SessionTopic: cfg.Kafka.SessionTopic,
		AnswerTopic:  cfg.Kafka.AnswerTopic,
		Enabled:      cfg.Kafka.Enabled,
	})

	// Initialize report builder
	reportBuilder := services.NewReportBuilderService(
		reportRepo,
		sessionRepo,
		questionRepo,
		analysisRepo,
		generator,
		embedder,
		bank,
		publisher,
		cfg.Worker.RetryMaxAttempts,
	)
	log.Println("✅ Report builder initialized")

	// Initialize worker
	worker := services.NewWorker(
		reportRepo,
		reportBuilder,
		cfg.Worker.Concurrency,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	worker.Start(ctx)

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(
		sessionRepo,
		extractor,
		artifactStore,
		publisher,
		cfg.Storage.MaxFileSize,
	)
	interviewHandler := handlers.NewInterviewHandler(
		sessionRepo,
		questionRepo,
		questionGenerator,
		ttsService,
		artifactStore,
		publisher,
	)
	answerHandler := handlers.NewAnswerHandler(
		analysisRepo,
		analyzer,
		transcriber,
		artifactStore,
		publisher,
		cfg.STT.MinAudioBytes,
		cfg.STT.MaxAudioBytes,
	)
	speechHandler := handlers.NewSpeechHandler(
		sessionStore,
		questionGenerator,
		analyzer,
		ttsService,
		artifactStore,
		publisher,
	)
	reportHandler := handlers.NewReportHandler(
		reportRepo,
		sessionRepo,
		worker,
	)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Interviewer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now(),
		})
	})

	// Upload and question generation
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/generate-questions", interviewHandler.HandleGenerateQuestions)
	api.Get("/question-audio/:session_id/:question_id", interviewHandler.HandleQuestionAudio)
	api.Get("/interview-summary/:session_id", interviewHandler.HandleInterviewSummary)

	// Voice and audio
	api.Get("/voices", interviewHandler.HandleVoices)
	api.Post("/replay-question", interviewHandler.HandleReplayQuestion)
	api.Get("/test-audio/:text", interviewHandler.HandleTestAudio)

	// Answers and transcription
	api.Post("/analyze-answer", answerHandler.HandleAnalyzeAnswer)
	api.Post("/transcribe-audio", answerHandler.HandleTranscribeAudio)
	api.Get("/test-transcribe", answerHandler.HandleTestTranscribe)

	// Speech interview
	api.Post("/speech-interview/start", speechHandler.HandleStart)
	api.Post("/speech-interview/analyze", speechHandler.HandleAnalyze)
	api.Get("/speech-interview/audio/:session_id/:filename", speechHandler.HandleAudio)

	// Reports
	api.Post("/reports", reportHandler.HandleCreateReport)
	api.Get("/reports/:id", reportHandler.HandleGetReport)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Interviewer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/generate-questions",
				"GET /api/v1/question-audio/:session_id/:question_id",
				"GET /api/v1/interview-summary/:session_id",
				"GET /api/v1/voices",
				"POST /api/v1/replay-question",
				"POST /api/v1/analyze-answer",
				"POST /api/v1/transcribe-audio",
				"POST /api/v1/speech-interview/start",
				"POST /api/v1/speech-interview/analyze",
				"GET /api/v1/speech-interview/audio/:session_id/:filename",
				"POST /api/v1/reports",
				"GET /api/v1/reports/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

	// Listen returns once Shutdown completes; release provider connections.
	if synth != nil {
		synth.Close()
	}
	if stt != nil {
		stt.Close()
	}
	publisher.Close()
	sessionStore.Close()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
