package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ekip-platform/ekip-api/internal/access/domain"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "access:subject:"
	cacheTTL       = 60 * time.Second
)

type SubjectLoader interface {
	LoadSubject(ctx context.Context, userID string) (domain.Subject, error)
}

type AccessService struct {
	repo  SubjectLoader
	cache *redis.Client
}

// NewAccessService builds the service. cache may be nil to always read
// through to the database.
func NewAccessService(repo SubjectLoader, cache *redis.Client) *AccessService {
	return &AccessService{repo: repo, cache: cache}
}

// Check returns nil when userID may perform action on screenKey, or one of
// the domain sentinel errors explaining why not.
func (s *AccessService) Check(ctx context.Context, userID, screenKey, action string) error {
	subj, err := s.subject(ctx, userID)
	if err != nil {
		return err
	}
	return subj.Check(screenKey, action)
}

func (s *AccessService) UserPermissions(ctx context.Context, userID string) (domain.UserPermissions, error) {
	subj, err := s.subject(ctx, userID)
	if err != nil {
		return domain.UserPermissions{}, err
	}
	return subj.Permissions(), nil
}

// Invalidate drops the cached subject, e.g. after a profile change.
func (s *AccessService) Invalidate(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, cacheKeyPrefix+userID).Err()
}

func (s *AccessService) subject(ctx context.Context, userID string) (domain.Subject, error) {
	log := logging.Op(ctx, "access.subject")
	key := cacheKeyPrefix + userID

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var subj domain.Subject
			if jerr := json.Unmarshal(raw, &subj); jerr == nil {
				return subj, nil
			}
			log.Warn("discarding corrupt cached subject")
		case err != redis.Nil:
			log.WithError(err).Warn("permission cache read failed")
		}
	}

	subj, err := s.repo.LoadSubject(ctx, userID)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("load subject: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(subj); err == nil {
			if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
				log.WithError(err).Warn("permission cache write failed")
			}
		}
	}
	return subj, nil
}
