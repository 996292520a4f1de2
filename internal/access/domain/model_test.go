package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func profileID(v int64) *int64 { return &v }

func TestSubject_Check(t *testing.T) {
	granted := []Permission{{ScreenKey: "domains", Action: ActionView}}

	cases := []struct {
		name string
		subj Subject
		want error
	}{
		{"unknown user", Subject{}, ErrUserNotFound},
		{"no profile", Subject{UserFound: true}, ErrNoProfile},
		{"missing profile row", Subject{UserFound: true, ProfileID: profileID(3)}, ErrProfileNotFound},
		{"inactive profile", Subject{UserFound: true, ProfileID: profileID(3), ProfileFound: true}, ErrProfileInactive},
		{"inactive system profile", Subject{UserFound: true, ProfileID: profileID(1), ProfileFound: true, IsSystem: true}, ErrProfileInactive},
		{"system profile", Subject{UserFound: true, ProfileID: profileID(1), ProfileFound: true, IsSystem: true, IsActive: true}, nil},
		{"granted", Subject{UserFound: true, ProfileID: profileID(3), ProfileFound: true, IsActive: true, Allowed: granted}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.subj.Check("domains", ActionView)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}

	s := Subject{UserFound: true, ProfileID: profileID(3), ProfileFound: true, IsActive: true, Allowed: granted}
	assert.ErrorIs(t, s.Check("domains", ActionEdit), ErrPermissionDenied)
}

func TestSubject_Permissions(t *testing.T) {
	assert.Equal(t, UserPermissions{Permissions: []Permission{}}, Subject{UserFound: true}.Permissions())

	admin := Subject{UserFound: true, ProfileID: profileID(1), ProfileFound: true, IsSystem: true, IsActive: true}
	p := admin.Permissions()
	assert.True(t, p.IsAdmin)
	assert.Empty(t, p.Permissions)

	member := Subject{
		UserFound: true, ProfileID: profileID(2), ProfileFound: true, IsActive: true,
		Allowed: []Permission{{ScreenKey: "allocations", Action: ActionView}},
	}
	p = member.Permissions()
	assert.False(t, p.IsAdmin)
	assert.Equal(t, int64(2), *p.ProfileID)
	assert.Len(t, p.Permissions, 1)
}
