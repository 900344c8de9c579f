package api

import (
	"encoding/json"
	"net/http"

	"serwer-obrazow/internal/images"
	"serwer-obrazow/internal/models"
)

type CreateTierRequest struct {
	Name               string                 `json:"name" example:"Premium"`
	ThumbnailSizes     []models.ThumbnailSize `json:"thumbnail_sizes"`
	IncludeOriginal    bool                   `json:"include_original"`
	AllowExpiringLinks bool                   `json:"allow_expiring_links"`
}

// @Summary      List account tiers
// @Description  Returns every configured account tier.
// @Tags         tiers
// @Produce      json
// @Success      200  {array}   models.AccountTier
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Security     BearerAuth
// @Router       /account-tiers [get]
func (s *Server) ListTiersHandler(w http.ResponseWriter, r *http.Request) {
	tiers, err := s.service.ListTiers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tiers)
}

// @Summary      Create an account tier
// @Description  Creates a new account tier with arbitrary thumbnail sizes. Admin only.
// @Tags         tiers
// @Accept       json
// @Produce      json
// @Param        createTierRequest  body      CreateTierRequest  true  "Tier definition"
// @Success      201  {object}  models.AccountTier
// @Failure      400  {string}  string "Invalid tier definition"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      403  {string}  string "Admin privileges required"
// @Failure      500  {string}  string "Internal Server Error"
// @Security     BearerAuth
// @Router       /account-tiers [post]
func (s *Server) CreateTierHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil || !claims.IsAdmin {
		http.Error(w, "Admin privileges required", http.StatusForbidden)
		return
	}

	var req CreateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tier, err := s.service.CreateTier(r.Context(), images.CreateTierParams{
		Name:               req.Name,
		ThumbnailSizes:     req.ThumbnailSizes,
		IncludeOriginal:    req.IncludeOriginal,
		AllowExpiringLinks: req.AllowExpiringLinks,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tier)
}
