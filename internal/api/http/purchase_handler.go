package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/service"
)

type publishListingRequest struct {
	Type          string  `json:"type" validate:"required,oneof=job gig"`
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"max=10000"`
	Category      string  `json:"category" validate:"max=100"`
	Location      string  `json:"location" validate:"max=200"`
	PayMin        *int64  `json:"pay_min" validate:"omitempty,gte=0"`
	PayMax        *int64  `json:"pay_max" validate:"omitempty,gte=0"`
	PayCurrency   string  `json:"pay_currency" validate:"omitempty,len=3"`
	StartDate     *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Duration      string  `json:"duration" validate:"max=100"`
	ContractType  string  `json:"contract_type" validate:"max=50"`
	WorkersNeeded int32   `json:"workers_needed" validate:"gte=0"`
	Requirements  string  `json:"requirements" validate:"max=5000"`
	Featured      string  `json:"featured" validate:"omitempty,oneof=7d 14d 30d 24h 72h"`
}

func (h *Handler) PublishListing(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	var req publishListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validationError(w, err)
		return
	}

	res, err := h.svc.Listings.Publish(r.Context(), userID, service.PublishInput{
		Type:          domain.ListingType(req.Type),
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		PayMin:        req.PayMin,
		PayMax:        req.PayMax,
		PayCurrency:   req.PayCurrency,
		StartDate:     req.StartDate,
		Duration:      req.Duration,
		ContractType:  req.ContractType,
		WorkersNeeded: req.WorkersNeeded,
		Requirements:  req.Requirements,
		Featured:      domain.FeaturedOption(req.Featured),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	listingType := domain.ListingType(r.URL.Query().Get("type"))
	if listingType == "" {
		listingType = domain.ListingTypeJob
	}
	limit, err := queryInt32(r, "limit", 6)
	if err != nil {
		writeError(w, err)
		return
	}
	listings, err := h.svc.Listings.ListActiveFeatured(r.Context(), listingType, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

type unlockRequest struct {
	CandidateID   string  `json:"candidate_id" validate:"required"`
	PostID        *string `json:"post_id"`
	ApplicationID *string `json:"application_id"`
}

func (h *Handler) UnlockContact(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	var req unlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validationError(w, err)
		return
	}
	res, err := h.svc.Unlocks.UnlockContact(r.Context(), service.UnlockInput{
		EmployerID:    userID,
		CandidateID:   req.CandidateID,
		PostID:        req.PostID,
		ApplicationID: req.ApplicationID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HasUnlocked(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	unlocked, err := h.svc.Unlocks.HasUnlocked(r.Context(), userID, mux.Vars(r)["candidateID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unlocked": unlocked})
}

type verificationRequest struct {
	Type    string  `json:"verification_type" validate:"required,oneof=id_document references certificates"`
	FileURL *string `json:"file_url" validate:"omitempty,url"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) SubmitVerification(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		validationError(w, err)
		return
	}
	res, err := h.svc.Verifications.SubmitVerification(r.Context(), userID, service.VerificationInput{
		Type:    domain.VerificationType(req.Type),
		FileURL: req.FileURL,
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) PurchaseFeaturedProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Verifications.PurchaseFeaturedProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ApplicationQuota(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	quota, err := h.svc.Quota.ApplicationQuota(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quota)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := queryInt32(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	pageSize, err := queryInt32(r, "page_size", 20)
	if err != nil {
		writeError(w, err)
		return
	}
	notes, total, err := h.svc.Notifications.GetNotifications(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notes, "total": total})
}
