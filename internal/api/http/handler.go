package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository"
	"zcc-wallet-backend/internal/security"
	"zcc-wallet-backend/internal/service"
)

// Services are the wallet operations exposed over HTTP.
type Services struct {
	Wallet        service.WalletService
	Catalog       service.CatalogService
	Listings      service.ListingService
	Unlocks       service.UnlockService
	Verifications service.VerificationService
	Quota         service.QuotaService
	Notifications service.NotificationService
}

type Handler struct {
	svc      Services
	health   repository.Pinger
	validate *validator.Validate
}

func NewHandler(svc Services, health repository.Pinger) *Handler {
	return &Handler{svc: svc, health: health, validate: validator.New()}
}

// NewRouter registers every route behind the auth middleware.
func NewRouter(h *Handler, auth *AuthMiddleware) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, auth.Handler)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/wallet/balance", h.GetBalance).Methods(http.MethodGet)
	api.HandleFunc("/wallet/transactions", h.GetTransactions).Methods(http.MethodGet)
	api.HandleFunc("/wallet/spending", h.GetMonthlySpending).Methods(http.MethodGet)
	api.HandleFunc("/wallet/init", h.InitializeWallet).Methods(http.MethodPost)
	api.HandleFunc("/payments/confirmations", h.ConfirmPayment).Methods(http.MethodPost)
	api.HandleFunc("/catalog/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/listings", h.PublishListing).Methods(http.MethodPost)
	api.HandleFunc("/listings/featured", h.ListFeatured).Methods(http.MethodGet)
	api.HandleFunc("/unlocks", h.UnlockContact).Methods(http.MethodPost)
	api.HandleFunc("/unlocks/{candidateID}", h.HasUnlocked).Methods(http.MethodGet)
	api.HandleFunc("/verifications", h.SubmitVerification).Methods(http.MethodPost)
	api.HandleFunc("/profile/featured", h.PurchaseFeaturedProfile).Methods(http.MethodPost)
	api.HandleFunc("/quota/applications", h.ApplicationQuota).Methods(http.MethodGet)
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.health.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt32(r *http.Request, name string, def int32) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return int32(v), nil
}

// --- wallet ---

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := h.svc.Wallet.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

type transactionsResponse struct {
	Transactions []domain.LedgerEntry `json:"transactions"`
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt32(r, "limit", 20)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.svc.Wallet.TransactionHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: entries})
}

func (h *Handler) GetMonthlySpending(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	month := r.URL.Query().Get("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			writeError(w, fmt.Errorf("%w: month must be YYYY-MM", domain.ErrInvalidInput))
			return
		}
	}
	rows, err := h.svc.Wallet.MonthlySpending(r.Context(), userID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []domain.MonthlySpending{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"spending": rows})
}

func (h *Handler) InitializeWallet(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	res, err := h.svc.Wallet.InitializeWallet(r.Context(), claims.UserID, claims.HasRole(security.RoleVendor))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type paymentConfirmationRequest struct {
	UserID    string           `json:"user_id" validate:"required"`
	Credits   int64            `json:"credits" validate:"required,gt=0"`
	Reference string           `json:"reference" validate:"required,max=200"`
	SKU       string           `json:"sku,omitempty" validate:"omitempty,max=100"`
	AmountKES *decimal.Decimal `json:"amount_kes,omitempty"`
}

// ConfirmPayment credits a confirmed purchase. Redelivery with the same
// reference returns the original result.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentConfirmationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validationError(w, err)
		return
	}
	opts := service.TopupOptions{Reference: &req.Reference}
	if req.SKU != "" {
		opts.SKU = &req.SKU
		opts.Description = "Purchased " + req.SKU
	}
	if req.AmountKES != nil {
		if req.AmountKES.IsNegative() {
			writeError(w, fmt.Errorf("%w: amount_kes must not be negative", domain.ErrInvalidInput))
			return
		}
		opts.AmountKES = decimal.NewNullDecimal(*req.AmountKES)
	}
	res, err := h.svc.Wallet.Topup(r.Context(), req.UserID, req.Credits, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- catalog ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	scope := domain.RoleScope(r.URL.Query().Get("role"))
	switch scope {
	case "":
		scope = domain.RoleScopeAll
	case domain.RoleScopeEmployer, domain.RoleScopeCandidate, domain.RoleScopeAll:
	default:
		writeError(w, fmt.Errorf("%w: role must be employer, candidate or all", domain.ErrInvalidInput))
		return
	}
	listing, err := h.svc.Catalog.ListProducts(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}
