package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nnvstore/backend/internal/cache"
	"github.com/nnvstore/backend/internal/hash"
	"github.com/nnvstore/backend/internal/kv"
	"github.com/nnvstore/backend/internal/models"
	"github.com/nnvstore/backend/internal/ratelimit"
	"github.com/nnvstore/backend/internal/repo"
)

type testEnv struct {
	T       *testing.T
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Store   *kv.InMemoryStore
	Auth    *AuthService
	Cart    *CartService
	Orders  *OrderService
	Catalog *CatalogService
	Offers  *BestOfferService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named in-memory database per test keeps state isolated while staying
	// shared across the pool's connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	store := kv.NewInMemoryStore()
	r := repo.NewGormRepo(db)
	sharedCache := &cache.Cache{Store: store}

	env := &testEnv{
		T:     t,
		DB:    db,
		Repo:  r,
		Store: store,
	}
	env.Auth = &AuthService{
		Repo:      r,
		Limiter:   &ratelimit.LoginLimiter{Store: store},
		JWTSecret: []byte("test-secret"),
	}
	env.Cart = &CartService{Repo: r, Cache: sharedCache, Store: store}
	env.Orders = &OrderService{Repo: r, Cache: sharedCache}
	env.Catalog = &CatalogService{Repo: r, Cache: sharedCache, Search: &SearchService{Index: "products"}}
	env.Offers = &BestOfferService{Repo: r}
	return env
}

func (env *testEnv) seedUser(email, password string) *models.User {
	env.T.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := &models.User{Email: email, PasswordHash: pwHash}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

func (env *testEnv) seedProduct(brand, model string, price float64, stock uint) *models.Product {
	env.T.Helper()
	p := &models.Product{
		Brand:         brand,
		Model:         model,
		Category:      "phone",
		Price:         price,
		StockQuantity: stock,
	}
	require.NoError(env.T, env.DB.Create(p).Error)
	return p
}

func (env *testEnv) cartQuantity(userID, productID uint) uint {
	env.T.Helper()
	var item models.CartItem
	err := env.DB.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(env.T, err)
	return item.Quantity
}

func (env *testEnv) productStock(productID uint) uint {
	env.T.Helper()
	var p models.Product
	require.NoError(env.T, env.DB.First(&p, productID).Error)
	return p.StockQuantity
}
