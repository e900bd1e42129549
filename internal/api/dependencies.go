package api

import (
	"os"
	"time"

	"communa/tribune/internal/common"
	"communa/tribune/internal/constants"
	"communa/tribune/internal/db"
	"communa/tribune/internal/db/repositories"
	"communa/tribune/internal/identity"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/providers"
	"communa/tribune/internal/ratewindow"
	"communa/tribune/internal/services"
)

// Repositories groups all storage access objects.
type Repositories struct {
	Members *repositories.MemberRepository
	Groups  *repositories.GroupRepository
	Ranking *repositories.RankingRepository
}

// Services groups the business-logic services.
type Services struct {
	Resolver   *services.MemberResolver
	Points     *services.PointsService
	Moderation *services.ModerationService
	Cache      common.CacheInterface
}

// Dependencies is the container wired once at startup and handed to
// every handler.
type Dependencies struct {
	Repo     Repositories
	Services Services
	Metrics  *metrics.MetricsRegistry

	FloodWindow *ratewindow.Window
	SpamWindow  *ratewindow.Window
}

// InitDependencies wires repositories, caches, the identity resolver
// and the engines against the already-initialized databases.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	memberRepo := repositories.NewMemberRepository(db.PgDB)
	groupRepo := repositories.NewGroupRepository(db.PgDB)
	rankingRepo := repositories.NewRankingRepository(db.DB)

	// Resolution cache backend: in-memory by default, Redis when the
	// deployment runs several instances.
	var cacheSvc common.CacheInterface
	if os.Getenv("CACHE_BACKEND") == "redis" {
		redisCache, err := common.NewRedisCacheService()
		if err != nil {
			logging.Error("Failed to initialize Redis cache, falling back to in-memory", "error", err.Error())
			cacheSvc = common.NewCacheService(constants.ResolutionCacheTTL, constants.ResolutionSweepEvery)
		} else {
			cacheSvc = redisCache
		}
	} else {
		cacheSvc = common.NewCacheService(constants.ResolutionCacheTTL, constants.ResolutionSweepEvery)
	}

	gateway := providers.NewGatewayProvider()
	idResolver := identity.NewResolver(cacheSvc, gateway, constants.ResolutionCacheTTL, metricsReg)

	floodWindow := ratewindow.New(ratewindow.Config{
		Width: constants.FloodWindowWidth,
		Cap:   constants.FloodWindowCap,
	})
	spamWindow := ratewindow.New(ratewindow.Config{
		Width: time.Duration(constants.DefaultSpamWindowSeconds) * time.Second,
	})

	resolver := services.NewMemberResolver(memberRepo, idResolver, metricsReg)
	points := services.NewPointsService(resolver, memberRepo, groupRepo, floodWindow, metricsReg)
	moderation := services.NewModerationService(spamWindow, metricsReg)

	return &Dependencies{
		Repo: Repositories{
			Members: memberRepo,
			Groups:  groupRepo,
			Ranking: rankingRepo,
		},
		Services: Services{
			Resolver:   resolver,
			Points:     points,
			Moderation: moderation,
			Cache:      cacheSvc,
		},
		Metrics:     metricsReg,
		FloodWindow: floodWindow,
		SpamWindow:  spamWindow,
	}, nil
}
