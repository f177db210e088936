package repository_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-marketplace-ledger/internal/model"
	"go-marketplace-ledger/internal/repository"
	"go-marketplace-ledger/internal/testutil"
)

func TestLedgerInitKeepsOriginalName(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewLedgerRepo(db)
	ctx := context.Background()

	state, err := repo.Init(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "first", state.Name)

	state, err = repo.Init(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "first", state.Name)
	assert.Zero(t, state.ProductCount)
}

func TestLedgerNextProductID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewLedgerRepo(db)
	ctx := context.Background()
	_, err := repo.Init(ctx, "ledger")
	require.NoError(t, err)

	for want := uint64(1); want <= 3; want++ {
		var got uint64
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = repo.NextProductID(tx)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// A rolled back transaction does not consume an id.
	_ = db.Transaction(func(tx *gorm.DB) error {
		_, _ = repo.NextProductID(tx)
		return assert.AnError
	})
	state, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), state.ProductCount)
}

func TestProductMarkPurchasedOnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	p := &model.Product{
		ID:     1,
		Name:   "iPhone X",
		Price:  decimal.NewFromInt(1000),
		Owner:  testutil.Seller.Hex(),
		Seller: testutil.Seller.Hex(),
	}
	require.NoError(t, repo.Create(db, p))

	require.NoError(t, repo.MarkPurchased(db, 1, testutil.Buyer.Hex()))
	err := repo.MarkPurchased(db, 1, testutil.Stranger.Hex())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Purchased)
	assert.Equal(t, testutil.Buyer.Hex(), got.Owner)
	assert.Equal(t, testutil.Seller.Hex(), got.Seller)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(1000)))
}

func TestProductFindAllPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepo(db)
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, repo.Create(db, &model.Product{
			ID: i, Name: "p", Price: decimal.NewFromInt(1), Owner: testutil.Seller.Hex(), Seller: testutil.Seller.Hex(),
		}))
	}

	page, err := repo.FindAll(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(3), page[0].ID)
	assert.Equal(t, uint64(4), page[1].ID)

	all, err := repo.FindAll(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestAccountBalanceRoundTripsLargeValues(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepo(db)
	ctx := context.Background()

	big := decimal.RequireFromString("100000000000000000000") // 100 ether, beyond int64
	require.NoError(t, repo.Create(ctx, &model.Account{Address: testutil.Buyer.Hex(), Balance: big, IsActive: true}))

	got, err := repo.FindByAddress(ctx, testutil.Buyer.Hex())
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(big), got.Balance.String())

	more := big.Add(decimal.NewFromInt(1))
	require.NoError(t, repo.UpdateBalance(db, testutil.Buyer.Hex(), more))
	got, err = repo.FindByAddress(ctx, testutil.Buyer.Hex())
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000001", got.Balance.String())
}

func TestAccountFindOrCreateForUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepo(db)

	acc, err := repo.FindOrCreateForUpdate(db, testutil.Seller.Hex())
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())

	again, err := repo.FindOrCreateForUpdate(db, testutil.Seller.Hex())
	require.NoError(t, err)
	assert.Equal(t, acc.ID, again.ID)
}

func TestAccountUpdateSession(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepo(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Account{Address: testutil.Buyer.Hex(), Balance: decimal.Zero, IsActive: true}))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateSession(ctx, testutil.Buyer.Hex(), "v2", now))

	got, err := repo.FindByAddress(ctx, testutil.Buyer.Hex())
	require.NoError(t, err)
	assert.Equal(t, "v2", got.TokenVersion)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(now))
}

func TestTransfersByProduct(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTransferRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(db, &model.Transfer{ProductID: 1, From: testutil.Buyer.Hex(), To: testutil.Seller.Hex(), Amount: decimal.NewFromInt(5)}))
	require.NoError(t, repo.Create(db, &model.Transfer{ProductID: 2, From: testutil.Buyer.Hex(), To: testutil.Seller.Hex(), Amount: decimal.NewFromInt(7)}))

	got, err := repo.FindByProduct(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].Amount.String())
	assert.Equal(t, testutil.Buyer.Hex(), got[0].From)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductNameColumnIsUnbounded(t *testing.T) {
	db := testutil.NewDB(t)

	columns, err := db.Migrator().ColumnTypes(&model.Product{})
	require.NoError(t, err)

	var found bool
	for _, c := range columns {
		if c.Name() == "name" {
			found = true
			assert.True(t, strings.EqualFold(c.DatabaseTypeName(), "text"), c.DatabaseTypeName())
		}
	}
	assert.True(t, found)

	repo := repository.NewProductRepo(db)
	name := strings.Repeat("n", 300)
	require.NoError(t, repo.Create(db, &model.Product{
		ID: 1, Name: name, Price: decimal.NewFromInt(1),
		Owner: testutil.Seller.Hex(), Seller: testutil.Seller.Hex(),
	}))
	got, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
}

func TestAccountCreateDuplicateAddress(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Account{Address: testutil.Buyer.Hex(), Balance: decimal.Zero, IsActive: true}))
	err := repo.Create(ctx, &model.Account{Address: testutil.Buyer.Hex(), Balance: decimal.Zero, IsActive: true})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
