package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/pkg/database"
)

// mockProfileRepository is a mock implementation of ProfileRepositoryInterface.
type mockProfileRepository struct {
	getFn               func(ctx context.Context, userID string) (*model.LoyaltyProfile, error)
	createFn            func(ctx context.Context, userID string, joinedAt time.Time) error
	getForUpdateFn      func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error)
	updateBalanceFn     func(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error
	insertTransactionFn func(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error
	insertRedemptionFn  func(ctx context.Context, tx database.TxQuerier, userID string, redemption *model.RedeemedReward) error
	listTransactionsFn  func(ctx context.Context, userID string) ([]model.PointsTransaction, error)
	listRedemptionsFn   func(ctx context.Context, userID string) ([]model.RedeemedReward, error)
}

func (m *mockProfileRepository) Get(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepository) Create(ctx context.Context, userID string, joinedAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, joinedAt)
	}
	return nil
}

func (m *mockProfileRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, userID)
	}
	return nil, ErrProfileNotFound
}

func (m *mockProfileRepository) UpdateBalance(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error {
	if m.updateBalanceFn != nil {
		return m.updateBalanceFn(ctx, tx, userID, total, available, spent, tier)
	}
	return nil
}

func (m *mockProfileRepository) InsertTransaction(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error {
	if m.insertTransactionFn != nil {
		return m.insertTransactionFn(ctx, tx, userID, txn)
	}
	return nil
}

func (m *mockProfileRepository) InsertRedemption(ctx context.Context, tx database.TxQuerier, userID string, redemption *model.RedeemedReward) error {
	if m.insertRedemptionFn != nil {
		return m.insertRedemptionFn(ctx, tx, userID, redemption)
	}
	return nil
}

func (m *mockProfileRepository) ListTransactions(ctx context.Context, userID string) ([]model.PointsTransaction, error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx, userID)
	}
	return []model.PointsTransaction{}, nil
}

func (m *mockProfileRepository) ListRedemptions(ctx context.Context, userID string) ([]model.RedeemedReward, error) {
	if m.listRedemptionsFn != nil {
		return m.listRedemptionsFn(ctx, userID)
	}
	return []model.RedeemedReward{}, nil
}

// mockRewardRepository is a mock implementation of RewardRepositoryInterface.
type mockRewardRepository struct {
	getByIDFn func(ctx context.Context, id string) (*model.Reward, error)
	listFn    func(ctx context.Context) ([]model.Reward, error)
}

func (m *mockRewardRepository) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRewardRepository) List(ctx context.Context) ([]model.Reward, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Reward{}, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func defaultThresholds() TierThresholds {
	return TierThresholds{Silver: 500, Gold: 1500, Platinum: 3000}
}

func profileWith(total, available, spent int64, tier model.LoyaltyTier) *model.LoyaltyProfile {
	return &model.LoyaltyProfile{
		UserID:   "user_001",
		Points:   model.LoyaltyPoints{Total: total, Available: available, Spent: spent, Tier: tier},
		JoinedAt: time.Now(),
	}
}

func TestLoyaltyService_CalculateTier_Boundaries(t *testing.T) {
	svc := NewLoyaltyServiceWithTxBeginner(nil, &mockProfileRepository{}, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)

	tests := []struct {
		name   string
		points int64
		want   model.LoyaltyTier
	}{
		{"zero is bronze", 0, model.TierBronze},
		{"just below silver", 499, model.TierBronze},
		{"exactly silver", 500, model.TierSilver},
		{"just below gold", 1499, model.TierSilver},
		{"exactly gold", 1500, model.TierGold},
		{"just below platinum", 2999, model.TierGold},
		{"exactly platinum", 3000, model.TierPlatinum},
		{"far above platinum", 100000, model.TierPlatinum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.CalculateTier(tt.points))
		})
	}
}

func TestLoyaltyService_NextTier(t *testing.T) {
	svc := NewLoyaltyServiceWithTxBeginner(nil, &mockProfileRepository{}, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)

	next := svc.NextTier(0)
	require.NotNil(t, next)
	assert.Equal(t, model.TierSilver, next.Tier)
	assert.Equal(t, int64(500), next.PointsNeeded)

	next = svc.NextTier(499)
	require.NotNil(t, next)
	assert.Equal(t, model.TierSilver, next.Tier)
	assert.Equal(t, int64(1), next.PointsNeeded)

	next = svc.NextTier(500)
	require.NotNil(t, next)
	assert.Equal(t, model.TierGold, next.Tier)
	assert.Equal(t, int64(1000), next.PointsNeeded)

	next = svc.NextTier(2000)
	require.NotNil(t, next)
	assert.Equal(t, model.TierPlatinum, next.Tier)
	assert.Equal(t, int64(1000), next.PointsNeeded)

	assert.Nil(t, svc.NextTier(3000), "no tier above platinum")
	assert.Nil(t, svc.NextTier(99999), "no tier above platinum")
}

func TestLoyaltyService_NextTier_NegativeDistanceClampedToZero(t *testing.T) {
	// Misconfigured thresholds where gold sits below silver.
	svc := NewLoyaltyServiceWithTxBeginner(nil, &mockProfileRepository{}, &mockRewardRepository{}, TierThresholds{Silver: 500, Gold: 400, Platinum: 3000}, 90*24*time.Hour)

	next := svc.NextTier(450)
	require.NotNil(t, next)
	assert.Equal(t, int64(0), next.PointsNeeded, "negative distance should report zero")
}

func TestLoyaltyService_GetProfile_LazyCreate(t *testing.T) {
	created := false
	calls := 0
	mockProfileRepo := &mockProfileRepository{
		getFn: func(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
			calls++
			if calls == 1 {
				return nil, nil // First access: no profile yet
			}
			return profileWith(0, 0, 0, model.TierBronze), nil
		},
		createFn: func(ctx context.Context, userID string, joinedAt time.Time) error {
			created = true
			return nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(nil, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	profile, err := svc.GetProfile(context.Background(), "user_001")

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, created, "missing profile should be created on first access")
	assert.Equal(t, model.TierBronze, profile.Points.Tier)
	assert.Equal(t, int64(0), profile.Points.Total)
	assert.NotNil(t, profile.Transactions, "transactions should be empty slice, not nil")
	assert.NotNil(t, profile.RedeemedRewards, "redemptions should be empty slice, not nil")
}

func TestLoyaltyService_GetProfile_Existing(t *testing.T) {
	mockProfileRepo := &mockProfileRepository{
		getFn: func(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(600, 450, 150, model.TierSilver), nil
		},
		listTransactionsFn: func(ctx context.Context, userID string) ([]model.PointsTransaction, error) {
			return []model.PointsTransaction{
				{ID: "txn_1", Type: model.TransactionEarn, Points: 600},
				{ID: "txn_2", Type: model.TransactionSpend, Points: 150},
			}, nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(nil, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	profile, err := svc.GetProfile(context.Background(), "user_001")

	require.NoError(t, err)
	assert.Equal(t, int64(600), profile.Points.Total)
	assert.Equal(t, int64(450), profile.Points.Available)
	assert.Equal(t, int64(150), profile.Points.Spent)
	assert.Len(t, profile.Transactions, 2)
}

func TestLoyaltyService_AddPoints_Success(t *testing.T) {
	var gotTotal, gotAvailable, gotSpent int64
	var gotTier model.LoyaltyTier
	var capturedTxn *model.PointsTransaction

	mockProfileRepo := &mockProfileRepository{
		getFn: func(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(50, 50, 0, model.TierBronze), nil
		},
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(0, 0, 0, model.TierBronze), nil
		},
		insertTransactionFn: func(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error {
			capturedTxn = txn
			return nil
		},
		updateBalanceFn: func(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error {
			gotTotal, gotAvailable, gotSpent, gotTier = total, available, spent, tier
			return nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	profile, err := svc.AddPoints(context.Background(), "user_001", 50, "Welcome bonus", "")

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(50), gotTotal)
	assert.Equal(t, int64(50), gotAvailable)
	assert.Equal(t, int64(0), gotSpent)
	assert.Equal(t, model.TierBronze, gotTier)
	require.NotNil(t, capturedTxn)
	assert.Equal(t, model.TransactionEarn, capturedTxn.Type)
	assert.Equal(t, int64(50), capturedTxn.Points)
	assert.Equal(t, "Welcome bonus", capturedTxn.Description)
	assert.NotEmpty(t, capturedTxn.ID)
}

func TestLoyaltyService_AddPoints_CrossesTierBoundary(t *testing.T) {
	var gotTier model.LoyaltyTier
	mockProfileRepo := &mockProfileRepository{
		getFn: func(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(520, 520, 0, model.TierSilver), nil
		},
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(480, 480, 0, model.TierBronze), nil
		},
		updateBalanceFn: func(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error {
			gotTier = tier
			return nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	_, err := svc.AddPoints(context.Background(), "user_001", 40, "Purchase of R$ 40.00", "PED-1")

	require.NoError(t, err)
	assert.Equal(t, model.TierSilver, gotTier, "crossing 500 lifetime points should promote to silver")
}

func TestLoyaltyService_AddPoints_NonPositive(t *testing.T) {
	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, &mockProfileRepository{}, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)

	_, err := svc.AddPoints(context.Background(), "user_001", 0, "nothing", "")
	assert.True(t, errors.Is(err, ErrInvalidPoints), "zero points should be rejected")

	_, err = svc.AddPoints(context.Background(), "user_001", -10, "nothing", "")
	assert.True(t, errors.Is(err, ErrInvalidPoints), "negative points should be rejected")
}

func TestLoyaltyService_AddPoints_ProfileNotFound(t *testing.T) {
	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return nil, ErrProfileNotFound
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	_, err := svc.AddPoints(context.Background(), "ghost", 50, "Welcome bonus", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound), "error should be ErrProfileNotFound")
}

func TestLoyaltyService_SpendPoints_Success(t *testing.T) {
	var gotTotal, gotAvailable, gotSpent int64
	var gotTier model.LoyaltyTier
	mockProfileRepo := &mockProfileRepository{
		getFn: func(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(600, 500, 100, model.TierSilver), nil
		},
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(600, 600, 0, model.TierSilver), nil
		},
		updateBalanceFn: func(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error {
			gotTotal, gotAvailable, gotSpent, gotTier = total, available, spent, tier
			return nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	profile, err := svc.SpendPoints(context.Background(), "user_001", 100, "Discount at checkout", "")

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(600), gotTotal, "total never decreases on spend")
	assert.Equal(t, int64(500), gotAvailable)
	assert.Equal(t, int64(100), gotSpent)
	assert.Equal(t, model.TierSilver, gotTier, "tier reflects lifetime earnings, never demoted by spending")
}

func TestLoyaltyService_SpendPoints_ExactBalance(t *testing.T) {
	var gotAvailable int64 = -1
	mockProfileRepo := &mockProfileRepository{
		getFn: func(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(100, 0, 100, model.TierBronze), nil
		},
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(100, 100, 0, model.TierBronze), nil
		},
		updateBalanceFn: func(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error {
			gotAvailable = available
			return nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	_, err := svc.SpendPoints(context.Background(), "user_001", 100, "Spent it all", "")

	require.NoError(t, err, "spending the exact available balance should succeed")
	assert.Equal(t, int64(0), gotAvailable)
}

func TestLoyaltyService_SpendPoints_Insufficient(t *testing.T) {
	balanceUpdated := false
	txnInserted := false
	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(50, 50, 0, model.TierBronze), nil
		},
		updateBalanceFn: func(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error {
			balanceUpdated = true
			return nil
		},
		insertTransactionFn: func(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error {
			txnInserted = true
			return nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	_, err := svc.SpendPoints(context.Background(), "user_001", 80, "Too much", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientPoints), "error should be ErrInsufficientPoints")
	assert.False(t, balanceUpdated, "no balance mutation on overdraw")
	assert.False(t, txnInserted, "no ledger entry on overdraw")
}

func TestLoyaltyService_SpendPoints_RollbackOnFailure(t *testing.T) {
	rollbackCalled := false
	tx := &mockTx{
		rollbackFn: func(ctx context.Context) error {
			rollbackCalled = true
			return nil
		},
	}
	mockPool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			return tx, nil
		},
	}
	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(200, 200, 0, model.TierBronze), nil
		},
		insertTransactionFn: func(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error {
			return errors.New("database insert timeout")
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(mockPool, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	_, err := svc.SpendPoints(context.Background(), "user_001", 100, "Discount", "")

	require.Error(t, err)
	assert.True(t, rollbackCalled, "rollback should be called on failure")
}

func TestLoyaltyService_RedeemReward_Success(t *testing.T) {
	var capturedRedemption *model.RedeemedReward
	var capturedTxn *model.PointsTransaction
	reward := &model.Reward{
		ID:         "4",
		Name:       "Corte Gratis",
		PointsCost: 500,
		Category:   model.RewardCategoryService,
		Available:  true,
	}

	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(800, 700, 100, model.TierSilver), nil
		},
		insertTransactionFn: func(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error {
			capturedTxn = txn
			return nil
		},
		insertRedemptionFn: func(ctx context.Context, tx database.TxQuerier, userID string, redemption *model.RedeemedReward) error {
			capturedRedemption = redemption
			return nil
		},
	}
	mockRewardRepo := &mockRewardRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Reward, error) {
			return reward, nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, mockRewardRepo, defaultThresholds(), 90*24*time.Hour)
	redemption, err := svc.RedeemReward(context.Background(), "user_001", "4")

	require.NoError(t, err)
	require.NotNil(t, redemption)
	assert.Equal(t, "4", redemption.RewardID)
	assert.Regexp(t, `^REWARD-[0-9A-F]{8}$`, redemption.Code)
	assert.False(t, redemption.Used)
	assert.WithinDuration(t, redemption.RedeemedAt.Add(90*24*time.Hour), redemption.ExpiresAt, time.Second)

	require.NotNil(t, capturedTxn)
	assert.Equal(t, model.TransactionSpend, capturedTxn.Type)
	assert.Equal(t, int64(500), capturedTxn.Points)
	assert.Equal(t, "Redemption: Corte Gratis", capturedTxn.Description)
	assert.Equal(t, "4", capturedTxn.RelatedID)

	require.NotNil(t, capturedRedemption)
	assert.Equal(t, *reward, capturedRedemption.Reward, "redemption should snapshot the reward")
}

func TestLoyaltyService_RedeemReward_DistinctCodes(t *testing.T) {
	reward := &model.Reward{ID: "1", Name: "Desconto de R$ 10", PointsCost: 100, Available: true}
	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(1000, 1000, 0, model.TierSilver), nil
		},
	}
	mockRewardRepo := &mockRewardRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Reward, error) {
			return reward, nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, mockRewardRepo, defaultThresholds(), 90*24*time.Hour)

	first, err := svc.RedeemReward(context.Background(), "user_001", "1")
	require.NoError(t, err)
	second, err := svc.RedeemReward(context.Background(), "user_001", "1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Code, second.Code, "codes should be unique per redemption")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestLoyaltyService_RedeemReward_NotFound(t *testing.T) {
	mockRewardRepo := &mockRewardRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Reward, error) {
			return nil, nil // Not found
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, &mockProfileRepository{}, mockRewardRepo, defaultThresholds(), 90*24*time.Hour)
	redemption, err := svc.RedeemReward(context.Background(), "user_001", "NONEXISTENT")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRewardNotFound), "error should be ErrRewardNotFound")
	assert.Nil(t, redemption)
}

func TestLoyaltyService_RedeemReward_Unavailable(t *testing.T) {
	txBegun := false
	mockPool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			txBegun = true
			return &mockTx{}, nil
		},
	}
	mockRewardRepo := &mockRewardRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Reward, error) {
			return &model.Reward{ID: "6", Name: "Kit Barba Completo", PointsCost: 800, Available: false}, nil
		},
	}
	// Balance far above the cost: availability must still win.
	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(10000, 10000, 0, model.TierPlatinum), nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(mockPool, mockProfileRepo, mockRewardRepo, defaultThresholds(), 90*24*time.Hour)
	redemption, err := svc.RedeemReward(context.Background(), "user_001", "6")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRewardUnavailable), "error should be ErrRewardUnavailable")
	assert.Nil(t, redemption)
	assert.False(t, txBegun, "no transaction for an unavailable reward")
}

func TestLoyaltyService_RedeemReward_InsufficientPoints(t *testing.T) {
	redemptionInserted := false
	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(300, 300, 0, model.TierBronze), nil
		},
		insertRedemptionFn: func(ctx context.Context, tx database.TxQuerier, userID string, redemption *model.RedeemedReward) error {
			redemptionInserted = true
			return nil
		},
	}
	mockRewardRepo := &mockRewardRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Reward, error) {
			return &model.Reward{ID: "4", Name: "Corte Gratis", PointsCost: 500, Available: true}, nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(&mockTxBeginner{}, mockProfileRepo, mockRewardRepo, defaultThresholds(), 90*24*time.Hour)
	redemption, err := svc.RedeemReward(context.Background(), "user_001", "4")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientPoints), "error should be ErrInsufficientPoints")
	assert.Nil(t, redemption)
	assert.False(t, redemptionInserted, "no redemption record when the debit fails")
}

func TestLoyaltyService_RedeemReward_CommitError(t *testing.T) {
	commitErr := errors.New("database commit timeout")
	mockPool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			return &mockTx{commitFn: func(ctx context.Context) error { return commitErr }}, nil
		},
	}
	mockProfileRepo := &mockProfileRepository{
		getForUpdateFn: func(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
			return profileWith(1000, 1000, 0, model.TierSilver), nil
		},
	}
	mockRewardRepo := &mockRewardRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Reward, error) {
			return &model.Reward{ID: "1", Name: "Desconto de R$ 10", PointsCost: 100, Available: true}, nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(mockPool, mockProfileRepo, mockRewardRepo, defaultThresholds(), 90*24*time.Hour)
	redemption, err := svc.RedeemReward(context.Background(), "user_001", "1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, commitErr), "error should wrap commit error")
	assert.Nil(t, redemption)
}

func TestLoyaltyService_GetNextTier_ProfileNotFound(t *testing.T) {
	mockProfileRepo := &mockProfileRepository{
		getFn: func(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
			return nil, nil
		},
	}

	svc := NewLoyaltyServiceWithTxBeginner(nil, mockProfileRepo, &mockRewardRepository{}, defaultThresholds(), 90*24*time.Hour)
	next, err := svc.GetNextTier(context.Background(), "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileNotFound), "error should be ErrProfileNotFound")
	assert.Nil(t, next)
}
