package router

import (
	"net/http"

	"classifieds-api/internal/handler"
	"classifieds-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler             *handler.Handler
	AuthHandler         *handler.AuthHandler
	ListingHandler      *handler.ListingHandler
	ConversationHandler *handler.ConversationHandler
	OfferHandler        *handler.OfferHandler
	NotificationHandler *handler.NotificationHandler
	ReviewHandler       *handler.ReviewHandler
	LocationHandler     *handler.LocationHandler
	CategoryHandler     *handler.CategoryHandler
	AuthMiddleware      func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.AuthHandler != nil {
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		// Browsing is anonymous: search, listing detail, reviews,
		// category schemas and location pickers need no session.
		if cfg.ListingHandler != nil {
			r.Get("/listings", cfg.ListingHandler.SearchListings)
			r.Get("/listings/{public_id}", cfg.ListingHandler.GetListing)
			r.Get("/search/vehicles", cfg.ListingHandler.VehicleSearch)
		}
		if cfg.ReviewHandler != nil {
			r.Get("/listings/{public_id}/reviews", cfg.ReviewHandler.GetReviews)
		}
		if cfg.CategoryHandler != nil {
			r.Route("/categories/{slug}", func(r chi.Router) {
				r.Get("/fields", cfg.CategoryHandler.GetFields)
				r.Get("/fields/{field_id}/options", cfg.CategoryHandler.GetFieldOptions)
			})
		}
		if cfg.LocationHandler != nil {
			r.Route("/locations", func(r chi.Router) {
				r.Get("/cities", cfg.LocationHandler.GetCities)
				r.Get("/cities/{city}/suburbs", cfg.LocationHandler.GetSuburbs)
			})
		}

		// AUTHENTICATED routes
		r.Group(func(r chi.Router) {
			if cfg.AuthMiddleware != nil {
				r.Use(cfg.AuthMiddleware)
			}

			if cfg.AuthHandler != nil {
				r.Post("/auth/logout", cfg.AuthHandler.Logout)
				r.Post("/auth/refresh", cfg.AuthHandler.Refresh)
			}

			if cfg.ListingHandler != nil {
				r.Post("/listings", cfg.ListingHandler.CreateListing)
			}
			if cfg.ReviewHandler != nil {
				r.Post("/listings/{public_id}/reviews", cfg.ReviewHandler.CreateReview)
			}

			if cfg.ConversationHandler != nil {
				r.Route("/conversations", func(r chi.Router) {
					r.Post("/", cfg.ConversationHandler.CreateConversation)
					r.Get("/", cfg.ConversationHandler.ListConversations)

					r.Route("/{conversation_id}", func(r chi.Router) {
						r.Get("/", cfg.ConversationHandler.GetConversation)
						r.Post("/messages", cfg.ConversationHandler.SendMessage)
						r.Get("/messages", cfg.ConversationHandler.ListMessages)
						r.Post("/read", cfg.ConversationHandler.MarkAsRead)

						if cfg.OfferHandler != nil {
							r.Post("/offers", cfg.OfferHandler.CreateOffer)
							r.Get("/offers/latest", cfg.OfferHandler.LatestOffer)
						}
					})
				})
			}

			if cfg.OfferHandler != nil {
				r.Route("/offers/{offer_id}", func(r chi.Router) {
					r.Post("/accept", cfg.OfferHandler.AcceptOffer)
					r.Post("/reject", cfg.OfferHandler.RejectOffer)
					r.Post("/counter", cfg.OfferHandler.CounterOffer)
					r.Post("/withdraw", cfg.OfferHandler.WithdrawOffer)
				})
			}

			if cfg.NotificationHandler != nil {
				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", cfg.NotificationHandler.GetNotifications)
					r.Post("/read-all", cfg.NotificationHandler.MarkAllAsRead)
					r.Post("/{notification_id}/read", cfg.NotificationHandler.MarkAsRead)
				})
			}
		})
	})

	// Unified status endpoint for uptime monitoring
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	return r
}
