package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/auth"
	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
)

// Router holds all handlers and creates the chi router
type Router struct {
	authHandler         *AuthHandler
	googleOAuthHandler  *GoogleOAuthHandler
	bookingHandler      *BookingHandler
	reviewHandler       *ReviewHandler
	contactHandler      *ContactHandler
	notificationHandler *NotificationHandler
	themeHandler        *ThemeHandler
	forumHandler        *ForumHandler
	chatHandler         *ChatHandler
	adminHandler        *AdminHandler
	healthHandler       *HealthHandler
	hub                 *SubscriptionHub

	jwtManager     *auth.JWTManager
	profiles       *domain.ProfileService
	throttle       *middleware.IPThrottle
	allowedOrigins []string
	logger         *zap.Logger
}

// NewRouter creates a new router
func NewRouter(
	authHandler *AuthHandler,
	googleOAuthHandler *GoogleOAuthHandler,
	bookingHandler *BookingHandler,
	reviewHandler *ReviewHandler,
	contactHandler *ContactHandler,
	notificationHandler *NotificationHandler,
	themeHandler *ThemeHandler,
	forumHandler *ForumHandler,
	chatHandler *ChatHandler,
	adminHandler *AdminHandler,
	healthHandler *HealthHandler,
	hub *SubscriptionHub,
	jwtManager *auth.JWTManager,
	profiles *domain.ProfileService,
	throttle *middleware.IPThrottle,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:         authHandler,
		googleOAuthHandler:  googleOAuthHandler,
		bookingHandler:      bookingHandler,
		reviewHandler:       reviewHandler,
		contactHandler:      contactHandler,
		notificationHandler: notificationHandler,
		themeHandler:        themeHandler,
		forumHandler:        forumHandler,
		chatHandler:         chatHandler,
		adminHandler:        adminHandler,
		healthHandler:       healthHandler,
		hub:                 hub,
		jwtManager:          jwtManager,
		profiles:            profiles,
		throttle:            throttle,
		allowedOrigins:      allowedOrigins,
		logger:              logger,
	}
}

// Setup configures and returns the chi router
func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware(rt.allowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(rt.throttle.Handler)

	authed := middleware.AuthMiddleware(rt.jwtManager)
	optionalAuth := middleware.OptionalAuthMiddleware(rt.jwtManager)
	requireAdmin := middleware.RequireAdmin(rt.profiles)

	// Health endpoints (no auth required)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", rt.healthHandler.Health)
		r.Get("/ready", rt.healthHandler.Ready)
		r.Get("/live", rt.healthHandler.Live)
	})

	// Real-time subscription socket; auth travels in the query string
	r.Get("/ws", rt.hub.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)
			r.Post("/refresh", rt.authHandler.Refresh)
			r.Post("/logout", rt.authHandler.Logout)
			r.Post("/google", rt.authHandler.GoogleLogin)
			r.Get("/google/login", rt.googleOAuthHandler.Login)
			r.Get("/google/callback", rt.googleOAuthHandler.Callback)
		})

		// Public reads
		r.Get("/reviews", rt.reviewHandler.ListPublic)
		r.Get("/theme", rt.themeHandler.Get)
		r.With(optionalAuth).Get("/chat/messages", rt.chatHandler.List)
		r.Route("/forum", func(r chi.Router) {
			r.Get("/categories", rt.forumHandler.ListCategories)
			r.Get("/categories/{categoryId}/topics", rt.forumHandler.ListTopics)
			r.Get("/topics/{topicId}", rt.forumHandler.GetTopic)
		})

		// Signed-in routes
		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Get("/me", rt.authHandler.Me)
			r.Put("/me", rt.authHandler.UpdateProfile)
			r.Put("/me/push-token", rt.authHandler.UpdatePushToken)
			r.Post("/auth/logout-all", rt.authHandler.LogoutAll)

			r.With(middleware.RequirePermission(rt.profiles, domain.PermCreateBooking)).
				Post("/bookings", rt.bookingHandler.Create)
			r.Get("/bookings/mine", rt.bookingHandler.ListMine)

			r.With(middleware.RequirePermission(rt.profiles, domain.PermCreateReview)).
				Post("/reviews", rt.reviewHandler.Create)

			r.With(middleware.RequirePermission(rt.profiles, domain.PermSendMessage)).
				Post("/contact", rt.contactHandler.Create)

			r.With(middleware.RequirePermission(rt.profiles, domain.PermSendMessage)).
				Post("/chat/messages", rt.chatHandler.Send)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(rt.profiles, domain.PermPostForum))
				r.Post("/forum/categories/{categoryId}/topics", rt.forumHandler.CreateTopic)
				r.Post("/forum/topics/{topicId}/posts", rt.forumHandler.CreatePost)
				r.Put("/forum/topics/{topicId}/love", rt.forumHandler.SetLove)
				r.Post("/forum/images", rt.forumHandler.UploadImage)
			})
		})

		// Moderation routes
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Use(middleware.RequirePermission(rt.profiles, domain.PermManageBookings))

			r.Get("/bookings", rt.bookingHandler.List)
			r.Put("/bookings/{bookingId}/status", rt.bookingHandler.UpdateStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Use(middleware.RequirePermission(rt.profiles, domain.PermModerateReviews))

			r.Get("/reviews/all", rt.reviewHandler.ListAll)
			r.Put("/reviews/{reviewId}/approval", rt.reviewHandler.UpdateApproval)
			r.Put("/reviews/{reviewId}/featured", rt.reviewHandler.UpdateFeatured)
			r.Put("/reviews/{reviewId}/position", rt.reviewHandler.UpdatePosition)
			r.Delete("/reviews/{reviewId}", rt.reviewHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Use(middleware.RequirePermission(rt.profiles, domain.PermModerateForum))

			r.Put("/forum/topics/{topicId}/pinned", rt.forumHandler.SetPinned)
			r.Put("/forum/topics/{topicId}/locked", rt.forumHandler.SetLocked)
			r.Delete("/forum/topics/{topicId}", rt.forumHandler.DeleteTopic)
			r.Delete("/forum/posts/{postId}", rt.forumHandler.DeletePost)
			r.Delete("/chat/messages/{messageId}", rt.chatHandler.Delete)
		})

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(authed)

			r.Post("/console-login", rt.adminHandler.ConsoleLogin)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)

				r.Get("/users", rt.adminHandler.ListUsers)
				r.Put("/users/{userId}/role", rt.adminHandler.SetRole)
				r.Put("/users/{userId}/permissions", rt.adminHandler.SetPermission)
				r.Get("/login-records", rt.adminHandler.LoginRecords)

				r.Get("/contacts", rt.contactHandler.List)
				r.Put("/contacts/{contactId}/status", rt.contactHandler.UpdateStatus)

				r.Get("/notifications", rt.notificationHandler.List)
				r.Get("/notifications/unread-count", rt.notificationHandler.UnreadCount)
				r.Put("/notifications/{notificationId}/read", rt.notificationHandler.MarkRead)
				r.Delete("/notifications/{notificationId}", rt.notificationHandler.Delete)

				r.Put("/theme", rt.themeHandler.Update)
				r.Post("/forum/categories", rt.forumHandler.CreateCategory)
				r.Delete("/forum/categories/{categoryId}", rt.forumHandler.DeleteCategory)
				r.Post("/reviews/fix-all", rt.reviewHandler.FixAll)
			})
		})
	})

	return r
}
