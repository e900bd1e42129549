package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/identity"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// GetGroupHandler handles GET /v1/groups/{groupID}
func GetGroupHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))

		group, err := deps.Repo.Groups.GetByID(r.Context(), groupID)
		if err != nil {
			if errors.Is(err, constants.ErrGroupNotFound) {
				respondWithError(w, http.StatusNotFound, constants.MsgGroupNotFound)
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch group")
			return
		}

		respondWithSuccess(w, http.StatusOK, group)
	}
}

// PatchGroupHandler handles PATCH /v1/groups/{groupID}. Partial group
// configuration updates; absent fields stay untouched.
func PatchGroupHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))

		var patch dtos.GroupConfigPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidRequestBody)
			return
		}

		group, err := deps.Repo.Groups.GetOrDefault(r.Context(), groupID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to load group")
			return
		}

		if patch.Name != nil {
			group.Name = *patch.Name
		}
		if patch.PointsEnabled != nil {
			group.PointsEnabled = *patch.PointsEnabled
		}
		if patch.MessagesPerPoint != nil {
			group.MessagesPerPoint = *patch.MessagesPerPoint
		}
		if patch.AntiSpamEnabled != nil {
			group.Config.AntiSpam.Enabled = *patch.AntiSpamEnabled
		}
		if patch.SpamWindowSecs != nil {
			group.Config.AntiSpam.WindowSeconds = *patch.SpamWindowSecs
		}
		if patch.SpamThreshold != nil {
			group.Config.AntiSpam.Threshold = *patch.SpamThreshold
		}
		if patch.BannedWords != nil {
			group.Config.Words.Words = patch.BannedWords
		}
		if patch.WordsEnabled != nil {
			group.Config.Words.Enabled = *patch.WordsEnabled
		}
		if patch.AntiLinkEnabled != nil {
			group.Config.AntiLink.Enabled = *patch.AntiLinkEnabled
		}
		if patch.AllowedDomains != nil {
			group.Config.AntiLink.AllowedDomains = patch.AllowedDomains
		}

		if err := deps.Repo.Groups.Upsert(r.Context(), group); err != nil {
			logging.Error("Failed to save group config", "group", groupID, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to save group")
			return
		}

		respondWithSuccess(w, http.StatusOK, group)
	}
}
