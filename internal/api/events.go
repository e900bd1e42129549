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
	"communa/tribune/internal/services"
)

// EventsHandler handles POST /v1/events, the gateway webhook. One
// call runs the full pipeline for a single inbound event: identity
// resolution, moderation gates, points accrual.
func EventsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event dtos.GatewayEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			respondWithError(w, http.StatusBadRequest, constants.MsgInvalidRequestBody)
			return
		}
		if event.GroupID == "" {
			respondWithError(w, http.StatusBadRequest, "groupId is required")
			return
		}

		deps.Metrics.EventsProcessedTotal.WithLabelValues(event.Type).Inc()

		switch constants.EventType(event.Type) {
		case constants.EventTypeMessage:
			outcome := handleMessageEvent(deps, r, &event)
			respondWithSuccess(w, http.StatusOK, outcome)

		case constants.EventTypeJoin, constants.EventTypeLeave:
			outcome, err := handleMembershipEvent(deps, r, &event)
			if err != nil {
				if errors.Is(err, constants.ErrInvalidIdentity) {
					respondWithError(w, http.StatusUnprocessableEntity, constants.MsgInvalidIdentity)
					return
				}
				respondWithError(w, http.StatusInternalServerError, constants.MsgEventRejected)
				return
			}
			respondWithSuccess(w, http.StatusOK, outcome)

		default:
			respondWithError(w, http.StatusBadRequest, "unknown event type")
		}
	}
}

func handleMessageEvent(deps *Dependencies, r *http.Request, event *dtos.GatewayEvent) *dtos.EventOutcome {
	groupID := identity.NormalizeGroupID(event.GroupID)
	outcome := &dtos.EventOutcome{Handled: true}

	// Moderation keys on the sender identity without touching storage.
	var senderKey string
	switch kind, value := identity.Classify(event.SenderValue()); kind {
	case identity.KindPhone:
		senderKey = value
	case identity.KindEphemeralToken:
		senderKey = identity.TokenDigits(value)
	}

	group, err := deps.Repo.Groups.GetOrDefault(r.Context(), groupID)
	if err != nil {
		logging.Error("Events: failed to load group", "group", groupID, "error", err.Error())
		return outcome
	}

	if violation := deps.Services.Moderation.CheckMessage(groupID, senderKey, event.Text, &group.Config); violation.Violation {
		outcome.Violation = &violation
		return outcome
	}

	points := deps.Services.Points.ProcessMessage(
		r.Context(), groupID, event.SenderValue(), eventHints(event), !event.IsCommand)
	outcome.Points = points
	return outcome
}

func handleMembershipEvent(deps *Dependencies, r *http.Request, event *dtos.GatewayEvent) (*dtos.EventOutcome, error) {
	groupID := identity.NormalizeGroupID(event.GroupID)

	member, err := deps.Services.Resolver.GetOrCreate(r.Context(), groupID, event.SenderValue(), eventHints(event))
	if err != nil {
		return nil, err
	}

	joining := constants.EventType(event.Type) == constants.EventTypeJoin
	if err := deps.Repo.Members.SetMembership(r.Context(), groupID, member.MemberKey, joining, time.Now().UTC()); err != nil {
		return nil, constants.NewStorageError("setMembership", groupID, member.MemberKey, err)
	}

	logging.Info("Membership event applied",
		"group", groupID, "key", member.MemberKey, "type", event.Type)

	return &dtos.EventOutcome{
		Handled:    true,
		MemberKey:  member.MemberKey,
		IsNewEntry: joining && member.MessagesTotal == 0,
	}, nil
}

func eventHints(event *dtos.GatewayEvent) *services.ResolveHints {
	if event.SenderAlt == "" && event.PushName == "" {
		return nil
	}
	return &services.ResolveHints{Phone: event.SenderAlt, DisplayName: event.PushName}
}
