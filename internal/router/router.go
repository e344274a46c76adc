package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"flashdeck/internal/handlers"
	"flashdeck/internal/middleware"
	"flashdeck/internal/render"
	"flashdeck/internal/websocket"
)

func New(
	viewerAuth *middleware.ViewerAuth,
	flashcardHandler *handlers.FlashcardHandler,
	viewerHandler *handlers.ViewerHandler,
	wsHub *websocket.Hub,
	allowedOrigins string,
	generatePerMin int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)

	// Generation rate limiter (per IP); the server's own viewer sessions are not counted
	generateLimiter := middleware.NewRateLimiter(generatePerMin, time.Minute)
	generateLimiter.Exempt = viewerAuth.IsServiceRequest

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Flashcard service ────
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(allowedOrigins))
		r.Get("/get_flashcards", flashcardHandler.List)

		r.Route("/generate_flashcards", func(r chi.Router) {
			r.Get("/formats", flashcardHandler.SupportedFormats)

			r.Group(func(r chi.Router) {
				r.Use(generateLimiter.Middleware)
				r.Post("/", flashcardHandler.Generate)
				r.Post("/upload", flashcardHandler.Upload)
			})
		})
	})

	// ──── Viewer ────
	r.Get("/", viewerHandler.Page)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(render.Static()))))

	r.Route("/viewer", func(r chi.Router) {
		r.With(viewerAuth.Middleware).Post("/events", viewerHandler.Event)
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
