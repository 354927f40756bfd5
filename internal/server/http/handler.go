// Package http is the thin HTTP boundary of the server. Handlers decode
// requests, call into services and translate sentinel errors to status
// codes; no verification logic lives here.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/services"
)

type Handler struct {
	orgs          *services.OrganizationService
	products      *services.ProductService
	verifications *services.VerificationService
	rewards       *services.RewardService
	resellers     *services.ResellerService
	admin         *services.AdminService

	secretKey     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

func NewHandler(
	orgs *services.OrganizationService,
	products *services.ProductService,
	verifications *services.VerificationService,
	rewards *services.RewardService,
	resellers *services.ResellerService,
	admin *services.AdminService,
	secretKey []byte,
	tokenValidity time.Duration,
	logger logging.Logger,
) *Handler {
	return &Handler{
		orgs:          orgs,
		products:      products,
		verifications: verifications,
		rewards:       rewards,
		resellers:     resellers,
		admin:         admin,
		secretKey:     secretKey,
		tokenValidity: tokenValidity,
		logger:        logger,
	}
}

// NewRouter registers all API routes. Everything under /api/v1 except token
// issuance requires a bearer token.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(h.loggingMiddleware)

	r.Get("/healthz", h.healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", h.issueToken)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)

			r.Post("/organizations", h.createOrganization)
			r.Get("/organizations", h.listOrganizations)
			r.Get("/organizations/{orgID}", h.getOrganization)
			r.Put("/organizations/{orgID}", h.updateOrganization)

			r.Post("/products", h.createProduct)
			r.Get("/products/{productID}", h.getProduct)
			r.Put("/products/{productID}", h.updateProduct)
			r.Put("/products/{productID}/promotion", h.setPromotion)
			r.Delete("/products/{productID}/promotion", h.removePromotion)
			r.Get("/organizations/{orgID}/products", h.listProducts)

			r.Post("/serials", h.createSerialNumber)
			r.Put("/serials", h.updateSerialNumber)
			r.Get("/products/{productID}/serials", h.listSerialNumbers)
			r.Post("/serials/print", h.printCode)

			r.Post("/verify", h.verify)
			r.Get("/verify/ratelimit", h.rateLimitStatus)
			r.Post("/redeem", h.redeem)
			r.Get("/rewards", h.userRewards)
			r.Get("/verifications", h.userVerifications)
			r.Get("/products/{productID}/verifications", h.listVerifications)

			r.Post("/resellers", h.registerReseller)
			r.Get("/resellers/{resellerID}", h.getReseller)
			r.Post("/resellers/code", h.resellerCode)
			r.Post("/resellers/verify", h.resellerVerify)

			r.Post("/admin/reset", h.adminReset)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) adminReset(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Reset(r.Context()); err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
