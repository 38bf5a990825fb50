package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Approve(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		role    Role
		want    Status
		wantErr error
	}{
		{
			name:   "admin approves pending-admin",
			status: StatusPendingAdmin,
			role:   RoleAdmin,
			want:   StatusPendingDirector,
		},
		{
			name:   "director approves pending-director",
			status: StatusPendingDirector,
			role:   RoleDirector,
			want:   StatusApproved,
		},
		{
			name:    "director cannot skip the admin",
			status:  StatusPendingAdmin,
			role:    RoleDirector,
			want:    StatusPendingAdmin,
			wantErr: ErrNotYourTurn,
		},
		{
			name:    "admin cannot approve twice",
			status:  StatusPendingDirector,
			role:    RoleAdmin,
			want:    StatusPendingDirector,
			wantErr: ErrNotYourTurn,
		},
		{
			name:    "researcher cannot approve",
			status:  StatusPendingAdmin,
			role:    RoleResearcher,
			want:    StatusPendingAdmin,
			wantErr: ErrNotYourTurn,
		},
		{
			name:    "approved is final",
			status:  StatusApproved,
			role:    RoleDirector,
			want:    StatusApproved,
			wantErr: ErrAlreadyFinal,
		},
		{
			name:    "rejected is final",
			status:  StatusRejected,
			role:    RoleAdmin,
			want:    StatusRejected,
			wantErr: ErrAlreadyFinal,
		},
		{
			name:    "unknown status",
			status:  Status("lost"),
			role:    RoleAdmin,
			want:    Status("lost"),
			wantErr: ErrUnknownStatus,
		},
	}

	chain := NewChain()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chain.Approve(tt.status, tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChain_Reject(t *testing.T) {
	chain := NewChain()

	got, err := chain.Reject(StatusPendingAdmin, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got)

	got, err = chain.Reject(StatusPendingDirector, RoleDirector)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got)

	_, err = chain.Reject(StatusPendingDirector, RoleAdmin)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = chain.Reject(StatusApproved, RoleDirector)
	assert.ErrorIs(t, err, ErrAlreadyFinal)
}

func TestChain_AwaitingRole(t *testing.T) {
	chain := NewChain()

	role, ok := chain.AwaitingRole(StatusPendingAdmin)
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	role, ok = chain.AwaitingRole(StatusPendingDirector)
	assert.True(t, ok)
	assert.Equal(t, RoleDirector, role)

	_, ok = chain.AwaitingRole(StatusApproved)
	assert.False(t, ok)

	assert.Equal(t, StatusPendingAdmin, chain.Initial())
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"researcher", "admin", "director"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	_, err := ParseRole("dean")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPendingAdmin.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, Status("").IsValid())
	assert.False(t, StatusPendingDirector.IsFinal())
	assert.True(t, StatusApproved.IsFinal())
}
