package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/identity"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/models/dtos"
	"communa/tribune/internal/models/entities"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WarnActionHandler builds the handler appending one typed moderation
// event (WARN/UNWARN/KICK/EXIT) to a member's history.
func WarnActionHandler(deps *Dependencies, action constants.WarnAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))
		key := chi.URLParam(r, "key")

		var req dtos.WarnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidRequestBody)
			return
		}

		member, err := deps.Repo.Members.GetByKey(r.Context(), groupID, key)
		if err != nil {
			if errors.Is(err, constants.ErrMemberNotFound) {
				respondWithError(w, http.StatusNotFound, constants.MsgMemberNotFound)
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch member")
			return
		}

		event := entities.WarnEvent{
			ID:        uuid.NewString(),
			Action:    action,
			Actor:     req.Actor,
			Reason:    req.Reason,
			Timestamp: time.Now().UTC(),
		}

		if err := deps.Repo.Members.AppendWarnEvent(r.Context(), member, event); err != nil {
			logging.Error("Failed to append warn event",
				"group", groupID, "key", key, "action", string(action), "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to record moderation event")
			return
		}

		// KICK and EXIT also end the membership.
		if action == constants.WarnActionKick || action == constants.WarnActionExit {
			if err := deps.Repo.Members.SetMembership(r.Context(), groupID, key, false, event.Timestamp); err != nil {
				logging.Error("Failed to close membership",
					"group", groupID, "key", key, "error", err.Error())
			}
		}

		respondWithSuccess(w, http.StatusOK, &event)
	}
}

// ResetMemberHandler handles POST /v1/groups/{groupID}/members/{key}/reset,
// the explicit administrative accrual reset.
func ResetMemberHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))
		key := chi.URLParam(r, "key")

		if _, err := deps.Repo.Members.GetByKey(r.Context(), groupID, key); err != nil {
			if errors.Is(err, constants.ErrMemberNotFound) {
				respondWithError(w, http.StatusNotFound, constants.MsgMemberNotFound)
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch member")
			return
		}

		if err := deps.Repo.Members.ResetAccrual(r.Context(), groupID, key); err != nil {
			logging.Error("Failed to reset member", "group", groupID, "key", key, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Failed to reset member")
			return
		}

		logging.Info("Member accrual reset", "group", groupID, "key", key)
		respondWithSuccess[struct{}](w, http.StatusOK, nil)
	}
}

// MergeDuplicatesHandler handles POST /v1/groups/{groupID}/merge, the
// idempotent duplicate-record repair.
func MergeDuplicatesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := identity.NormalizeGroupID(chi.URLParam(r, "groupID"))

		report, err := deps.Services.Resolver.MergeDuplicates(r.Context(), groupID)
		if err != nil {
			logging.Error("Duplicate repair failed", "group", groupID, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "Duplicate repair failed")
			return
		}

		respondWithSuccess(w, http.StatusOK, report)
	}
}
