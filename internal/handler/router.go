package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	agenthandler "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/handler/agent"
	chathandler "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/handler/chat"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/handler/stream"
	middlewarePkg "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/middleware"
	agentModel "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/agent"
	aiService "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/ai"
	chatService "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/chat"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when the
// reasoning credential is absent; turn endpoints then answer 503 while the
// session and profile endpoints keep working.
func NewRouter(profiles agentModel.Store, chatSvc *chatService.Service, aiSvc *aiService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	var runner chathandler.TurnRunner
	if aiSvc != nil {
		runner = aiSvc
	}

	agentHandler := agenthandler.New(profiles)
	chatHandler := chathandler.New(chatSvc, runner)
	wsHandler := chathandler.NewWebSocketHandler(chatSvc, runner)

	var streamHandler *stream.Handler
	if aiSvc != nil {
		streamHandler = stream.New(aiSvc, chatSvc)
	}

	r.Route("/api", func(api chi.Router) {
		agentHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if streamHandler == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
				return
			}
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}
