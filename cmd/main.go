package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hmo-chatbot-backend/internal/ai"
	"hmo-chatbot-backend/internal/chat"
	"hmo-chatbot-backend/internal/config"
	"hmo-chatbot-backend/internal/index"
	"hmo-chatbot-backend/internal/kb"
	"hmo-chatbot-backend/internal/logger"
	"hmo-chatbot-backend/internal/retriever"
	"hmo-chatbot-backend/middleware"
	"hmo-chatbot-backend/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	// AI providers: mock variants never touch the network
	var embedder ai.EmbeddingProvider
	var completer ai.CompletionProvider
	if cfg.MockAI {
		logger.Warn("Running with mock AI providers; answers will not be generated")
		embedder = ai.NewMockEmbedder(cfg.VectorDim)
		completer = ai.NewMockCompleter()
	} else {
		geminiEmbedder, err := ai.NewGeminiEmbedder(ctx, cfg)
		if err != nil {
			log.Fatal("Failed to create embedding provider:", err)
		}
		defer geminiEmbedder.Close()
		embedder = geminiEmbedder

		geminiCompleter, err := ai.NewGeminiCompleter(ctx, cfg)
		if err != nil {
			log.Fatal("Failed to create completion provider:", err)
		}
		defer geminiCompleter.Close()
		completer = geminiCompleter
	}

	// Ingest the knowledge base; refusing to start beats serving an empty
	// or degraded corpus silently.
	chunker := kb.NewChunker(cfg.MinChunkSize, cfg.MaxChunkSize)
	ingestor := kb.NewIngestor(chunker, embedder)

	chunks, _, err := ingestor.Ingest(ctx, cfg.KnowledgeBaseDir)
	if err != nil {
		log.Fatal("Failed to ingest knowledge base:", err)
	}

	idx, err := index.Build(chunks, embedder.Dimension())
	if err != nil {
		log.Fatal("Failed to build vector index:", err)
	}

	retr := retriever.New(embedder, idx)
	orch := chat.NewOrchestrator(retr, completer, cfg.TopK, cfg.MinRelevance, cfg.ContextBudget)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"chunks":    idx.Len(),
			"timestamp": time.Now(),
		})
	})

	routes.SetupChatRoutes(router, orch, retr, idx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "mock_ai", cfg.MockAI)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
