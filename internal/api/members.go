package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/identity"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// GetMemberHandler handles GET /v1/groups/{groupID}/members/{key}
func GetMemberHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))
		key := chi.URLParam(r, "key")

		member, err := deps.Repo.Members.GetByKey(r.Context(), groupID, key)
		if err != nil {
			if errors.Is(err, constants.ErrMemberNotFound) {
				respondWithError(w, http.StatusNotFound, constants.MsgMemberNotFound)
				return
			}
			logging.Error("Failed to fetch member", "group", groupID, "key", key, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch member")
			return
		}

		respondWithSuccess(w, http.StatusOK, member)
	}
}

// RedeemPointsHandler handles POST /v1/groups/{groupID}/members/{key}/redeem
func RedeemPointsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))
		key := chi.URLParam(r, "key")

		var req dtos.RedeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidRequestBody)
			return
		}

		member, err := deps.Services.Points.Redeem(r.Context(), groupID, key, req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, constants.ErrInsufficientPoints):
				respondWithError(w, http.StatusUnprocessableEntity, constants.MsgInsufficientPoints)
			case errors.Is(err, constants.ErrMemberNotFound):
				respondWithError(w, http.StatusNotFound, constants.MsgMemberNotFound)
			default:
				logging.Error("Redemption failed", "group", groupID, "key", key, "error", err.Error())
				respondWithError(w, http.StatusInternalServerError, "Redemption failed")
			}
			return
		}

		respondWithSuccess(w, http.StatusOK, member)
	}
}

// GetRankingHandler handles GET /v1/groups/{groupID}/ranking
func GetRankingHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, err := deps.Repo.Ranking.GetRanking(r.Context(), groupID, limit)
		if err != nil {
			logging.Error("Failed to fetch ranking", "group", groupID, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch ranking")
			return
		}

		respondWithSuccess(w, http.StatusOK, &entries)
	}
}

// GetGroupStatsHandler handles GET /v1/groups/{groupID}/stats
func GetGroupStatsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))

		stats, err := deps.Repo.Ranking.GetGroupStats(r.Context(), groupID)
		if err != nil {
			logging.Error("Failed to fetch group stats", "group", groupID, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch group stats")
			return
		}

		respondWithSuccess(w, http.StatusOK, stats)
	}
}
