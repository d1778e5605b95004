package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"b2b-market-api/internal/domain"
)

// 每个测试独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Category{}, &domain.Product{}, &domain.Inquiry{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, role string, approved, active bool) *domain.User {
	t.Helper()
	u := &domain.User{
		ID: id, Name: "user-" + id, Email: id + "@example.com",
		PasswordHash: "x", Role: role, IsApproved: approved, IsActive: active,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, id, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{ID: id, Name: name, Slug: domain.Slugify(name), IsActive: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, id, sellerID, categoryID string, mut func(*domain.Product)) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID: id, Name: "product-" + id, Slug: "product-" + id,
		Description: "desc", CategoryID: categoryID, SellerID: sellerID,
		PriceMin: 100, MOQ: 1, IsActive: true, IsApproved: true,
	}
	if mut != nil {
		mut(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
