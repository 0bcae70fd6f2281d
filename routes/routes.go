package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/photoproos/platform/app"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/utils"
)

const requestTimeout = 60 * time.Second

// FeatureSocialScheduler gates the social media scheduler
const FeatureSocialScheduler = "social_scheduler"

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	h := deps.Handlers
	auth := deps.AuthMiddleware
	finance := auth.RequireRole(models.RoleOwner, models.RoleAdmin)

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.RequestMeta)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and metrics
	r.Get("/healthz", h.Health.HandleHealth)
	r.Get("/readyz", h.Health.HandleReadiness)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	// Stripe authenticates with the signature header
	r.Post("/webhooks/stripe", h.Payments.HandleStripeWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		// Public marketing content
		r.Group(func(r chi.Router) {
			r.Use(deps.Guard.RateLimit)
			r.Get("/public/faqs", h.Content.HandlePublicFAQs)
			r.Get("/public/roadmap", h.Content.HandlePublicRoadmap)
		})

		// Signed in, possibly without an organization yet
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(deps.Guard.RateLimit)
			r.Post("/organizations", h.Organizations.HandleCreateOrganization)
		})

		// Organization members
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(auth.RequireMembership)
			r.Use(deps.Guard.RateLimit)

			r.Get("/users/me", h.Organizations.HandleMe)
			r.Get("/features", h.FeatureFlags.HandleEvaluate)

			r.Route("/organization", func(r chi.Router) {
				r.Get("/", h.Organizations.HandleGetOrganization)
				r.Get("/members", h.Organizations.HandleListMembers)
				r.With(finance).Patch("/", h.Organizations.HandleUpdateOrganization)
				r.With(finance).Patch("/members/{userID}/role", h.Organizations.HandleUpdateMemberRole)
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.Clients.HandleListClients)
				r.Post("/", h.Clients.HandleCreateClient)
				r.Get("/{clientID}", h.Clients.HandleGetClient)
				r.Put("/{clientID}", h.Clients.HandleUpdateClient)
				r.Delete("/{clientID}", h.Clients.HandleDeleteClient)
			})

			r.Route("/galleries", func(r chi.Router) {
				r.Get("/", h.Galleries.HandleListGalleries)
				r.Post("/", h.Galleries.HandleCreateGallery)
				r.Get("/{galleryID}", h.Galleries.HandleGetGallery)
				r.Put("/{galleryID}", h.Galleries.HandleUpdateGallery)
				r.Post("/{galleryID}/deliver", h.Galleries.HandleDeliverGallery)
				r.Post("/{galleryID}/archive", h.Galleries.HandleArchiveGallery)
				r.Delete("/{galleryID}", h.Galleries.HandleDeleteGallery)
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", h.Bookings.HandleListBookings)
				r.Post("/", h.Bookings.HandleCreateBooking)
				r.Get("/{bookingID}", h.Bookings.HandleGetBooking)
				r.Put("/{bookingID}", h.Bookings.HandleUpdateBooking)
				r.Post("/{bookingID}/confirm", h.Bookings.HandleConfirmBooking)
				r.Post("/{bookingID}/cancel", h.Bookings.HandleCancelBooking)
				r.Post("/{bookingID}/complete", h.Bookings.HandleCompleteBooking)
			})

			// Photographers may read their own rates and earnings
			r.Get("/photographers/{photographerID}/rates", h.Rates.HandleListRates)
			r.Get("/earnings", h.Earnings.HandleListEarnings)

			r.Route("/support/tickets", func(r chi.Router) {
				r.Get("/", h.Support.HandleListTickets)
				r.Post("/", h.Support.HandleCreateTicket)
				r.Get("/{ticketID}", h.Support.HandleGetTicket)
				r.Post("/{ticketID}/messages", h.Support.HandleAddMessage)
				r.Patch("/{ticketID}/status", h.Support.HandleChangeStatus)
			})

			r.Post("/roadmap/items/{itemID}/vote", h.Content.HandleVote)

			r.Route("/social/posts", func(r chi.Router) {
				r.Use(deps.Guard.RequireFeature(FeatureSocialScheduler))
				r.Get("/", h.Social.HandleListPosts)
				r.Post("/", h.Social.HandleCreatePost)
				r.Get("/{postID}", h.Social.HandleGetPost)
				r.Put("/{postID}", h.Social.HandleUpdatePost)
				r.Post("/{postID}/schedule", h.Social.HandleSchedulePost)
				r.Delete("/{postID}", h.Social.HandleDeletePost)
			})

			// Owners and admins
			r.Group(func(r chi.Router) {
				r.Use(finance)

				r.Route("/invoices", func(r chi.Router) {
					r.Get("/", h.Invoices.HandleListInvoices)
					r.Post("/", h.Invoices.HandleCreateInvoice)
					r.Get("/{invoiceID}", h.Invoices.HandleGetInvoice)
					r.Put("/{invoiceID}", h.Invoices.HandleUpdateInvoice)
					r.Post("/{invoiceID}/send", h.Invoices.HandleSendInvoice)
					r.Post("/{invoiceID}/void", h.Invoices.HandleVoidInvoice)
					r.Get("/{invoiceID}/payments", h.Invoices.HandleListInvoicePayments)
					r.Post("/{invoiceID}/payments", h.Invoices.HandleRecordPayment)
					r.Post("/{invoiceID}/checkout", h.Invoices.HandleCreateCheckout)
				})

				r.Get("/payments/{paymentID}", h.Payments.HandleGetPayment)
				r.Post("/payments/{paymentID}/refund", h.Payments.HandleRefundPayment)

				r.Post("/rates", h.Rates.HandleCreateRate)
				r.Put("/rates/{rateID}", h.Rates.HandleUpdateRate)
				r.Delete("/rates/{rateID}", h.Rates.HandleDeleteRate)

				r.Post("/earnings/adjustments", h.Earnings.HandleCreateAdjustment)
				r.Post("/earnings/approve", h.Earnings.HandleApproveEarnings)
				r.Post("/earnings/{earningID}/cancel", h.Earnings.HandleCancelEarning)

				r.Route("/payouts", func(r chi.Router) {
					r.Get("/", h.Payouts.HandleListBatches)
					r.Post("/", h.Payouts.HandleCreateBatch)
					r.Get("/pending", h.Payouts.HandlePendingSummary)
					r.Get("/{batchID}", h.Payouts.HandleGetBatch)
					r.Post("/{batchID}/process", h.Payouts.HandleProcessBatch)
					r.Post("/{batchID}/cancel", h.Payouts.HandleCancelBatch)
					r.Get("/{batchID}/export", h.Payouts.HandleExportBatch)
				})

				r.Get("/analytics/overview", h.Analytics.HandleOverview)
				r.Get("/analytics/export", h.Analytics.HandleExportOverview)

				r.Route("/workflows", func(r chi.Router) {
					r.Get("/", h.Workflows.HandleListWorkflows)
					r.Post("/", h.Workflows.HandleCreateWorkflow)
					r.Get("/{workflowID}", h.Workflows.HandleGetWorkflow)
					r.Put("/{workflowID}", h.Workflows.HandleUpdateWorkflow)
					r.Post("/{workflowID}/toggle", h.Workflows.HandleToggleWorkflow)
					r.Delete("/{workflowID}", h.Workflows.HandleDeleteWorkflow)
				})
				r.Get("/workflow-executions", h.Workflows.HandleListExecutions)

				r.Route("/api-keys", func(r chi.Router) {
					r.Get("/", h.APIKeys.HandleListKeys)
					r.Post("/", h.APIKeys.HandleCreateKey)
					r.Post("/{keyID}/revoke", h.APIKeys.HandleRevokeKey)
					r.Delete("/{keyID}", h.APIKeys.HandleDeleteKey)
				})

				r.Get("/audit-logs", h.Audit.HandleListAuditLogs)
			})
		})

		// Platform console
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(auth.RequireSuperAdmin)

			r.Route("/organizations", func(r chi.Router) {
				r.Get("/", h.Organizations.HandleAdminListOrganizations)
				r.Get("/{orgID}", h.Organizations.HandleAdminGetOrganization)
				r.Delete("/{orgID}", h.Organizations.HandleAdminDeleteOrganization)
				r.Get("/{orgID}/audit-logs", h.Audit.HandleAdminListAuditLogs)
			})

			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", h.FeatureFlags.HandleListFlags)
				r.Post("/", h.FeatureFlags.HandleCreateFlag)
				r.Get("/{key}", h.FeatureFlags.HandleGetFlag)
				r.Put("/{key}", h.FeatureFlags.HandleUpdateFlag)
				r.Post("/{key}/toggle", h.FeatureFlags.HandleToggleFlag)
				r.Delete("/{key}", h.FeatureFlags.HandleDeleteFlag)
			})

			r.Route("/faqs", func(r chi.Router) {
				r.Get("/", h.Content.HandleListFAQs)
				r.Post("/", h.Content.HandleCreateFAQ)
				r.Put("/{faqID}", h.Content.HandleUpdateFAQ)
				r.Delete("/{faqID}", h.Content.HandleDeleteFAQ)
			})

			r.Route("/roadmap", func(r chi.Router) {
				r.Post("/phases", h.Content.HandleCreatePhase)
				r.Put("/phases/{phaseID}", h.Content.HandleUpdatePhase)
				r.Delete("/phases/{phaseID}", h.Content.HandleDeletePhase)
				r.Post("/items", h.Content.HandleCreateItem)
				r.Put("/items/{itemID}", h.Content.HandleUpdateItem)
				r.Delete("/items/{itemID}", h.Content.HandleDeleteItem)
			})

			r.Get("/jobs", h.Jobs.HandleListJobs)
			r.Post("/jobs/{name}/run", h.Jobs.HandleRunJob)
		})
	})

	// Partner integrations
	r.Route("/api/external/v1", func(r chi.Router) {
		keys := deps.APIKeyMiddleware
		r.Use(deps.Guard.RateLimitByIP)
		r.Use(keys.RequireAPIKey)
		r.Use(deps.Guard.RateLimit)

		r.With(keys.RequireScope(models.ScopeClientsRead)).Get("/clients", h.External.HandleListClients)
		r.With(keys.RequireScope(models.ScopeClientsWrite)).Post("/clients", h.External.HandleCreateClient)
		r.With(keys.RequireScope(models.ScopeBookingsRead)).Get("/bookings", h.External.HandleListBookings)
		r.With(keys.RequireScope(models.ScopeInvoicesRead)).Get("/invoices", h.External.HandleListInvoices)
		r.With(keys.RequireScope(models.ScopeGalleriesRead)).Get("/galleries", h.External.HandleListGalleries)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}
