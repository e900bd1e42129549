package routes

import (
	"communa/tribune/internal/api"
	"communa/tribune/internal/constants"
	"communa/tribune/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {
	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.AuthMiddleware())

		// gateway webhook: one inbound event per call
		v1.Post("/events", api.EventsHandler(deps))

		v1.Route("/groups/{groupID}", func(g chi.Router) {
			g.Get("/", api.GetGroupHandler(deps))
			g.Patch("/", api.PatchGroupHandler(deps))

			g.Get("/ranking", api.GetRankingHandler(deps))
			g.Get("/stats", api.GetGroupStatsHandler(deps))
			g.Post("/merge", api.MergeDuplicatesHandler(deps))

			g.Route("/members/{key}", func(m chi.Router) {
				m.Get("/", api.GetMemberHandler(deps))
				m.Post("/warn", api.WarnActionHandler(deps, constants.WarnActionWarn))
				m.Post("/unwarn", api.WarnActionHandler(deps, constants.WarnActionUnwarn))
				m.Post("/kick", api.WarnActionHandler(deps, constants.WarnActionKick))
				m.Post("/exit", api.WarnActionHandler(deps, constants.WarnActionExit))
				m.Post("/redeem", api.RedeemPointsHandler(deps))
				m.Post("/reset", api.ResetMemberHandler(deps))
			})
		})
	})
}
