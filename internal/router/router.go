package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quicky-client/internal/handlers"
	"quicky-client/internal/middleware"
	"quicky-client/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	statusHandler *handlers.StatusHandler,
	uploadHandler *handlers.UploadHandler,
	libraryHandler *handlers.LibraryHandler,
	sessionHandler *handlers.SessionHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Upload and generation fan out to the quiz backend; keep them
	// under 20 req/min per IP.
	uploadLimiter := middleware.NewRateLimiter(20, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Backend Status ────
		r.Get("/status", statusHandler.Get)
		r.Post("/status/wake", statusHandler.Wake)

		// ──── Upload Routes ────
		r.Route("/upload", func(r chi.Router) {
			r.Use(uploadLimiter.Middleware)
			r.Post("/file", uploadHandler.File)
			r.Post("/youtube", uploadHandler.YouTube)
			r.Post("/text", uploadHandler.Text)
			r.Post("/image", uploadHandler.ImageText)
			r.Post("/generate-text", uploadHandler.GenerateText)
		})

		// ──── Library Routes ────
		r.Route("/library", func(r chi.Router) {
			r.Get("/", libraryHandler.List)
			r.Get("/{sourceID}/preview", libraryHandler.Preview)
			r.Get("/{sourceID}/config", libraryHandler.Config)
			r.Delete("/{sourceID}", libraryHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(uploadLimiter.Middleware)
				r.Post("/{sourceID}/quiz", libraryHandler.StartQuiz)
			})
		})

		// ──── Quiz Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/{sessionID}", sessionHandler.Get)
			r.Post("/{sessionID}/answers", sessionHandler.Answer)
			r.Post("/{sessionID}/nav", sessionHandler.Navigate)
			r.Post("/{sessionID}/keys", sessionHandler.Key)
			r.Post("/{sessionID}/submit", sessionHandler.Submit)
			r.Post("/{sessionID}/retry", sessionHandler.Retry)
			r.Get("/{sessionID}/export/{format}", sessionHandler.Export)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
