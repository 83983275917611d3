package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Abtechguru/veritusblogs-engagement/internal/api/respond"
	"github.com/Abtechguru/veritusblogs-engagement/internal/api/validate"
	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/services"
)

// overrideHeader marks a trusted internal caller. The gateway strips it
// from external traffic; verification of the caller is out of scope here.
const overrideHeader = "X-Internal-Override"

// AwardHandler provides HTTP transport for XP grants and account reads.
type AwardHandler struct {
	award *services.AwardService
}

func NewAwardHandler(svc *services.AwardService) *AwardHandler {
	return &AwardHandler{award: svc}
}

// Grant POST /gamification/activities:grant
func (h *AwardHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		Kind        string `json:"kind"`
		Description string `json:"description,omitempty"`
		XPAmount    int64  `json:"xpAmount,omitempty"`
		EventID     string `json:"eventId,omitempty"`
		XPOverride  bool   `json:"xpOverride,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.UserID(req.UserID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Description(req.Description); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	// The body flag alone is not enough; the internal header is the
	// capability.
	override := req.XPOverride && strings.EqualFold(r.Header.Get(overrideHeader), "true")

	rec, created, err := h.award.Grant(r.Context(), model.GrantRequest{
		UserID:      req.UserID,
		Kind:        req.Kind,
		Description: req.Description,
		XPAmount:    req.XPAmount,
		EventID:     req.EventID,
		Override:    override,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	respond.WriteJSON(w, status, rec)
}

// GetUserXP GET /gamification/user-xp?userId=
func (h *AwardHandler) GetUserXP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	res, err := h.award.UserXP(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// PutAccount PUT /gamification/accounts/{userId}
func (h *AwardHandler) PutAccount(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var req struct {
		DisplayName string `json:"displayName"`
		AvatarRef   string `json:"avatarRef,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.DisplayName(req.DisplayName); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	acct, err := h.award.SetDisplay(r.Context(), userID, req.DisplayName, req.AvatarRef)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, acct)
}

// Rebuild POST /gamification/accounts:rebuild
func (h *AwardHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromSeq int64 `json:"fromSeq,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "Invalid JSON")
			return
		}
	}
	res, err := h.award.Rebuild(r.Context(), req.FromSeq)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// writeDomainError maps service errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidKind), errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrAmountMismatch):
		respond.WriteConflict(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrStoreUnavailable):
		respond.WriteUnavailable(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
