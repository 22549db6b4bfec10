package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fintrack/fintrack-be/internal/api/handlers"
	"github.com/fintrack/fintrack-be/internal/auth"
	"github.com/fintrack/fintrack-be/internal/services"
	"github.com/fintrack/fintrack-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	authenticator *auth.Authenticator,
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	transactionService services.TransactionServiceProvider,
	budgetService services.BudgetServiceProvider,
	corsOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, authenticator)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("fintrack API up"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authenticator.Middleware()).Get("/me", authHandler.Me)
		})

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Middleware())

			r.Get("/ws", wsHandler.Serve)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", transactionHandler.List)
				r.Post("/", transactionHandler.Create)
				r.Get("/export", transactionHandler.Export)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", transactionHandler.Update)
					r.Delete("/", transactionHandler.Delete)
				})
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", budgetHandler.List)
				r.Post("/", budgetHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", budgetHandler.Update)
					r.Delete("/", budgetHandler.Delete)
				})
			})
		})
	})

	return r
}
