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

	"github.com/joho/godotenv"

	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/config"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/handler"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/market"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/agent"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/ai"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Responder profiles and session state
	profileStore := agent.NewMemoryStore(agent.Seed())
	chatService := chat.NewService()

	// Market data provider behind the lookup tool
	provider := market.NewHTTPProvider(cfg.Market.BaseURL, cfg.Market.Timeout)
	if cfg.Market.BaseURL == "" {
		log.Println("MARKET_BASE_URL not set; stock lookups will report fetch errors")
	}

	// AI service: triage + stock + spanish agents over the hosted model
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		lookupTool, err := market.NewLookupTool(provider)
		if err != nil {
			log.Fatalf("failed to build market lookup tool: %v", err)
		}

		aiService, err = ai.NewService(ctx, cfg.AI, profileStore, lookupTool)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - check the ARK_* environment variables")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	router := handler.NewRouter(profileStore, chatService, aiService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("multi-agent chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
