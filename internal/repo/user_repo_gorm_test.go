package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"b2b-market-api/internal/domain"
)

func TestUserRepoFilters(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepo(db)

	seedUser(t, db, "b1", domain.RoleBuyer, false, true)
	seedUser(t, db, "s1", domain.RoleSeller, true, true)
	seedUser(t, db, "s2", domain.RoleSeller, false, true)
	seedUser(t, db, "a1", domain.RoleAdmin, false, true)

	t.Run("by role", func(t *testing.T) {
		n, err := r.Count(domain.UserFilter{Role: domain.RoleSeller})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("pending sellers", func(t *testing.T) {
		pending := false
		n, err := r.Count(domain.UserFilter{Role: domain.RoleSeller, Approved: &pending})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("search on email", func(t *testing.T) {
		items, total, err := r.List(domain.UserFilter{Search: "s1@"}, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "s1", items[0].ID)
	})
}

func TestUserRepoFindPublicSellers(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepo(db)

	seedUser(t, db, "ok", domain.RoleSeller, true, true)
	seedUser(t, db, "pending", domain.RoleSeller, false, true)
	seedUser(t, db, "banned", domain.RoleSeller, true, false)
	seedUser(t, db, "buyer", domain.RoleBuyer, true, true)

	sellers, err := r.FindPublicSellers(8)
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, "ok", sellers[0].ID)
}

func TestUserRepoUpdateFields(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepo(db)
	seedUser(t, db, "u1", domain.RoleSeller, true, true)

	u, err := r.UpdateFields("u1", map[string]any{
		"company_name": "Acme Metals",
		"phone":        "+91-12345",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Acme Metals", u.CompanyName)
	assert.Equal(t, "+91-12345", u.Phone)
	// 未触及的列保持原值
	assert.Equal(t, domain.RoleSeller, u.Role)
}

func TestUserRepoFindByEmailMissing(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepo(db)

	u, err := r.FindByEmail("ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}
