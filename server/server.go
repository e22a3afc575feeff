package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"WaveFM/config"
	"WaveFM/db"
	"WaveFM/logger"
	"WaveFM/model"
	"WaveFM/repository"
	"WaveFM/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.AutoMigrateModels(&model.ChatMessage{}); err != nil {
		log.Fatalf("Failed to migrate chat schema: %v", err)
	}

	songRepo := repository.NewMySQLSongRepository(db.DB, db.AdminDB)
	chatRepo := repository.NewGormChatRepository(db.GormDB)
	blobStore := storage.NewMinioStore()

	apiHandler := NewAPIHandler(songRepo, chatRepo, blobStore, cfg)

	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})
	router.Use(requestLoggingMiddleware)
	router.Use(recoveryMiddleware)

	// API Endpoints
	router.HandleFunc("/upload", apiHandler.UploadSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/songs/search", apiHandler.SearchSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/songs/{id}", apiHandler.GetSongHandler).Methods(http.MethodGet)
	router.HandleFunc("/play", apiHandler.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/chat", apiHandler.GetChatHandler).Methods(http.MethodGet)
	router.HandleFunc("/chat", apiHandler.PostChatHandler).Methods(http.MethodPost)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ServerAddr)
		log.Println("Upload songs via POST to /upload")
		log.Println("Leaderboard via GET /songs, search via GET /songs/search")
		log.Println("Record plays via POST /play, chat via GET/POST /chat")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
