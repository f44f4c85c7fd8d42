package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/metrics"
)

// RankingLimit is the number of users returned by the ranking.
const RankingLimit = 100

// rankingFillTimeout bounds a shared ranking query. The query is detached from
// the caller that started it so other waiters are not failed by its cancellation.
const rankingFillTimeout = 10 * time.Second

type UserService struct {
	users ports.UserRepository
	cache ports.RankingCache
	group singleflight.Group
	log   zerolog.Logger
}

// NewUserService returns a UserService. cache may be nil.
func NewUserService(users ports.UserRepository, cache ports.RankingCache, log zerolog.Logger) *UserService {
	return &UserService{users: users, cache: cache, log: log}
}

// Self returns the caller's full account, balance included.
func (s *UserService) Self(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Profile returns another user's public profile.
func (s *UserService) Profile(ctx context.Context, id string) (*domain.PublicUser, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

func (s *UserService) FinishRecipe(ctx context.Context, id string) error {
	if err := s.users.IncrementFinishedRecipe(ctx, id); err != nil {
		return fmt.Errorf("finish recipe: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate ranking cache")
		}
	}
	return nil
}

// Ranking returns users by finished recipe count. Results are cached; a
// cache failure falls through to the database.
func (s *UserService) Ranking(ctx context.Context) ([]domain.PublicUser, error) {
	if s.cache != nil {
		users, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			metrics.RankingCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Msg("ranking cache read failed")
		case ok:
			metrics.RankingCacheTotal.WithLabelValues("hit").Inc()
			return users, nil
		default:
			metrics.RankingCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	v, err, _ := s.group.Do("ranking", func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rankingFillTimeout)
		defer cancel()

		users, err := s.users.Ranking(fillCtx, RankingLimit)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(fillCtx, users); err != nil {
				s.log.Warn().Err(err).Msg("ranking cache write failed")
			}
		}
		return users, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	return v.([]domain.PublicUser), nil
}
