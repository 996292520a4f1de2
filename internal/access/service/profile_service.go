package service

import (
	"context"
	"strings"

	"github.com/ekip-platform/ekip-api/internal/access/domain"
	"github.com/ekip-platform/ekip-api/internal/logging"
)

type ProfileStore interface {
	List(ctx context.Context) ([]domain.Profile, error)
	Get(ctx context.Context, id int64) (*domain.Profile, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, in domain.NewProfile) (*domain.Profile, error)
	Update(ctx context.Context, id int64, p domain.ProfilePatch) (*domain.Profile, error)
	Deactivate(ctx context.Context, id int64) error
	UserIDs(ctx context.Context, id int64) ([]string, error)
	Clone(ctx context.Context, sourceID int64, name string) (*domain.Profile, int64, error)
	Permissions(ctx context.Context, id int64) ([]domain.Grant, error)
	ReplacePermissions(ctx context.Context, id int64, grants []domain.Grant) error
}

// Invalidator drops a user's cached permission subject.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type ProfileService struct {
	store ProfileStore
	cache Invalidator
}

func NewProfileService(store ProfileStore, cache Invalidator) *ProfileService {
	return &ProfileService{store: store, cache: cache}
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.store.List(ctx)
}

func (s *ProfileService) Get(ctx context.Context, id int64) (*domain.Profile, error) {
	return s.store.Get(ctx, id)
}

func (s *ProfileService) Create(ctx context.Context, in domain.NewProfile) (*domain.Profile, error) {
	name, err := s.freeName(ctx, in.Name, 0)
	if err != nil {
		return nil, err
	}
	in.Name = name
	in.Description = trimmed(in.Description)
	return s.store.Create(ctx, in)
}

// Update edits a non-system profile and refreshes its users' permissions.
func (s *ProfileService) Update(ctx context.Context, id int64, p domain.ProfilePatch) (*domain.Profile, error) {
	if _, err := s.editable(ctx, id); err != nil {
		return nil, err
	}
	if p.Name != nil {
		name, err := s.freeName(ctx, *p.Name, id)
		if err != nil {
			return nil, err
		}
		p.Name = &name
	}
	p.Description = trimmed(p.Description)

	out, err := s.store.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return out, nil
}

// Delete deactivates a profile that is not a system profile and has no
// users.
func (s *ProfileService) Delete(ctx context.Context, id int64) error {
	if _, err := s.editable(ctx, id); err != nil {
		return err
	}
	users, err := s.store.UserIDs(ctx, id)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return domain.ErrProfileHasUsers
	}
	return s.store.Deactivate(ctx, id)
}

// Clone copies sourceID with all of its permissions. System profiles may
// be cloned; the copy is never a system profile.
func (s *ProfileService) Clone(ctx context.Context, sourceID int64, name string) (*domain.Profile, int64, error) {
	if _, err := s.store.Get(ctx, sourceID); err != nil {
		return nil, 0, err
	}
	name, err := s.freeName(ctx, name, 0)
	if err != nil {
		return nil, 0, err
	}
	return s.store.Clone(ctx, sourceID, name)
}

func (s *ProfileService) Permissions(ctx context.Context, id int64) (domain.ProfilePermissions, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.ProfilePermissions{}, err
	}
	if p.IsSystem {
		return domain.ProfilePermissions{IsSystemProfile: true, Permissions: []domain.Grant{}}, nil
	}
	grants, err := s.store.Permissions(ctx, id)
	if err != nil {
		return domain.ProfilePermissions{}, err
	}
	return domain.ProfilePermissions{Permissions: grants}, nil
}

// ReplacePermissions stores grants as the profile's full permission set,
// keeping the last entry for a repeated screen and action. It returns the
// number of rows written.
func (s *ProfileService) ReplacePermissions(ctx context.Context, id int64, grants []domain.Grant) (int, error) {
	if _, err := s.editable(ctx, id); err != nil {
		return 0, err
	}

	type key struct{ screen, action string }
	index := make(map[key]int, len(grants))
	clean := make([]domain.Grant, 0, len(grants))
	for _, g := range grants {
		g.ScreenKey, g.Action = strings.TrimSpace(g.ScreenKey), strings.TrimSpace(g.Action)
		if g.ScreenKey == "" || g.Action == "" {
			return 0, domain.ErrInvalidGrant
		}
		k := key{g.ScreenKey, g.Action}
		if i, ok := index[k]; ok {
			clean[i] = g
			continue
		}
		index[k] = len(clean)
		clean = append(clean, g)
	}

	if err := s.store.ReplacePermissions(ctx, id, clean); err != nil {
		return 0, err
	}
	s.invalidate(ctx, id)
	return len(clean), nil
}

func (s *ProfileService) editable(ctx context.Context, id int64) (*domain.Profile, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsSystem {
		return nil, domain.ErrSystemProfile
	}
	return p, nil
}

func (s *ProfileService) freeName(ctx context.Context, name string, excludeID int64) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalidProfile
	}
	taken, err := s.store.NameTaken(ctx, name, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.ErrDuplicateName
	}
	return name, nil
}

// invalidate is best effort; cached subjects expire on their own.
func (s *ProfileService) invalidate(ctx context.Context, profileID int64) {
	if s.cache == nil {
		return
	}
	log := logging.Op(ctx, "access.profile_invalidate").WithField("profile_id", profileID)
	users, err := s.store.UserIDs(ctx, profileID)
	if err != nil {
		log.WithError(err).Warn("list profile users")
		return
	}
	for _, id := range users {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			log.WithError(err).WithField("user_id", id).Warn("drop cached subject")
		}
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
