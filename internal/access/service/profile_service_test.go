package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ekip-platform/ekip-api/internal/access/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProfiles struct {
	items       map[int64]domain.Profile
	users       map[int64][]string
	grants      map[int64][]domain.Grant
	deactivated []int64
	replaced    []domain.Grant
}

func newProfiles() *memProfiles {
	return &memProfiles{
		items: map[int64]domain.Profile{
			1: {ID: 1, Name: "Administrador", IsSystem: true, IsActive: true},
			2: {ID: 2, Name: "Gestor", IsActive: true},
			3: {ID: 3, Name: "Consultor", IsActive: true},
		},
		users:  map[int64][]string{2: {"u-1", "u-2"}},
		grants: map[int64][]domain.Grant{2: {{ScreenKey: "domains", Action: "view", Allowed: true}}},
	}
}

func (m *memProfiles) List(ctx context.Context) ([]domain.Profile, error) {
	return []domain.Profile{m.items[1], m.items[3], m.items[2]}, nil
}

func (m *memProfiles) Get(ctx context.Context, id int64) (*domain.Profile, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *memProfiles) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	for id, p := range m.items {
		if p.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProfiles) Create(ctx context.Context, in domain.NewProfile) (*domain.Profile, error) {
	p := domain.Profile{ID: int64(len(m.items) + 1), Name: in.Name, Description: in.Description, IsActive: true}
	m.items[p.ID] = p
	return &p, nil
}

func (m *memProfiles) Update(ctx context.Context, id int64, patch domain.ProfilePatch) (*domain.Profile, error) {
	p := m.items[id]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	m.items[id] = p
	return &p, nil
}

func (m *memProfiles) Deactivate(ctx context.Context, id int64) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

func (m *memProfiles) UserIDs(ctx context.Context, id int64) ([]string, error) {
	return m.users[id], nil
}

func (m *memProfiles) Clone(ctx context.Context, sourceID int64, name string) (*domain.Profile, int64, error) {
	p, _ := m.Create(ctx, domain.NewProfile{Name: name})
	return p, int64(len(m.grants[sourceID])), nil
}

func (m *memProfiles) Permissions(ctx context.Context, id int64) ([]domain.Grant, error) {
	return m.grants[id], nil
}

func (m *memProfiles) ReplacePermissions(ctx context.Context, id int64, grants []domain.Grant) error {
	m.replaced = grants
	m.grants[id] = grants
	return nil
}

type recordingInvalidator struct {
	users []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, userID string) error {
	r.users = append(r.users, userID)
	return nil
}

func TestProfileService_CreateValidatesName(t *testing.T) {
	svc := NewProfileService(newProfiles(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.NewProfile{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)

	_, err = svc.Create(ctx, domain.NewProfile{Name: " Gestor "})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	p, err := svc.Create(ctx, domain.NewProfile{Name: " Financeiro "})
	require.NoError(t, err)
	assert.Equal(t, "Financeiro", p.Name)
	assert.False(t, p.IsSystem)
}

func TestProfileService_SystemProfilesAreReadOnly(t *testing.T) {
	store := newProfiles()
	svc := NewProfileService(store, nil)
	ctx := context.Background()
	name := "Root"

	_, err := svc.Update(ctx, 1, domain.ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrSystemProfile)
	assert.ErrorIs(t, svc.Delete(ctx, 1), domain.ErrSystemProfile)
	_, err = svc.ReplacePermissions(ctx, 1, nil)
	assert.ErrorIs(t, err, domain.ErrSystemProfile)

	perms, err := svc.Permissions(ctx, 1)
	require.NoError(t, err)
	assert.True(t, perms.IsSystemProfile)
	assert.Empty(t, perms.Permissions)
}

func TestProfileService_UpdateKeepsOwnName(t *testing.T) {
	inv := &recordingInvalidator{}
	svc := NewProfileService(newProfiles(), inv)
	ctx := context.Background()

	same := "Gestor"
	p, err := svc.Update(ctx, 2, domain.ProfilePatch{Name: &same})
	require.NoError(t, err)
	assert.Equal(t, "Gestor", p.Name)
	assert.Equal(t, []string{"u-1", "u-2"}, inv.users)

	taken := "Consultor"
	_, err = svc.Update(ctx, 2, domain.ProfilePatch{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = svc.Update(ctx, 99, domain.ProfilePatch{})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileService_DeleteRefusesAssignedProfiles(t *testing.T) {
	store := newProfiles()
	svc := NewProfileService(store, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, 2), domain.ErrProfileHasUsers)
	require.NoError(t, svc.Delete(ctx, 3))
	assert.Equal(t, []int64{3}, store.deactivated)
}

func TestProfileService_Clone(t *testing.T) {
	svc := NewProfileService(newProfiles(), nil)
	ctx := context.Background()

	_, _, err := svc.Clone(ctx, 99, "Novo")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	_, _, err = svc.Clone(ctx, 2, "Consultor")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	p, copied, err := svc.Clone(ctx, 2, " Gestor II ")
	require.NoError(t, err)
	assert.Equal(t, "Gestor II", p.Name)
	assert.Equal(t, int64(1), copied)
}

func TestProfileService_ReplacePermissionsDedupesAndInvalidates(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	require.NoError(t, mr.Set("access:subject:u-1", "{}"))
	require.NoError(t, mr.Set("access:subject:u-9", "{}"))

	store := newProfiles()
	access := NewAccessService(&countingLoader{subj: member()}, rdb)
	svc := NewProfileService(store, access)
	ctx := context.Background()

	_, err = svc.ReplacePermissions(ctx, 2, []domain.Grant{{ScreenKey: " ", Action: "view"}})
	assert.ErrorIs(t, err, domain.ErrInvalidGrant)

	n, err := svc.ReplacePermissions(ctx, 2, []domain.Grant{
		{ScreenKey: "domains", Action: "view", Allowed: true},
		{ScreenKey: "domains", Action: "edit", Allowed: false},
		{ScreenKey: " domains ", Action: "view", Allowed: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []domain.Grant{
		{ScreenKey: "domains", Action: "view", Allowed: false},
		{ScreenKey: "domains", Action: "edit", Allowed: false},
	}, store.replaced)

	assert.False(t, mr.Exists("access:subject:u-1"))
	assert.True(t, mr.Exists("access:subject:u-9"))

	perms, err := svc.Permissions(ctx, 2)
	require.NoError(t, err)
	assert.False(t, perms.IsSystemProfile)
	assert.Len(t, perms.Permissions, 2)
}
