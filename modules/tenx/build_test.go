package tenx

import (
	"context"
	"testing"
	"time"

	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/accounting"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/config"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/datagateway"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/priceoracle"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/repository/memory"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdt = "0x55d398326f99059fF775485246999027B3197955"

func testConfig() config.Config {
	return config.Config{
		ShareHolderLimit:   4,
		ReferralLevelLimit: 4,
		ReinvestmentWallet: "0x00000000000000000000000000000000000000aa",
		ReferralLevels:     []uint16{1000, 800, 600, 300},
		ShareHolders: []config.ShareHolderConfig{
			{Name: "founder", Wallet: "0x00000000000000000000000000000000000000a1", Percentage: 3000},
			{Name: "ops", Wallet: "0x00000000000000000000000000000000000000a2", Percentage: 3000},
			{Name: "marketing", Wallet: "0x00000000000000000000000000000000000000a3", Percentage: 1200},
			{Name: "dev", Wallet: "0x00000000000000000000000000000000000000a4", Percentage: 800},
		},
		Plans: []config.PlanConfig{
			{Months: 1, PriceUSD: 199},
			{Months: 3, PriceUSD: 538},
			{Months: 6, PriceUSD: 1194},
			{Months: 12, PriceUSD: 2388},
		},
		PaymentTokens: []config.PaymentTokenConfig{
			{PriceFeed: "bnb-usd"},
			{Address: usdt, PriceFeed: "usdt-usd"},
		},
		PriceFeeds: []config.PriceFeedConfig{
			{Name: "bnb-usd", UnitsPerUSD: "3333333333333333.33333333"},
			{Name: "usdt-usd", UnitsPerUSD: "1000000000000000000", Precision: 2},
		},
		Admin:          "0x00000000000000000000000000000000000000ad",
		Managers:       []string{"0x00000000000000000000000000000000000000ae"},
		MaxDiscountBps: 2000,
		Treasury:       "0x00000000000000000000000000000000000000c0",
		Balances: []config.BalanceConfig{
			{Address: "0x0000000000000000000000000000000000001001", Amount: "5000000000000000000"},
			{Address: "0x0000000000000000000000000000000000001002", Token: usdt, Amount: "1000000000000000000000", Allowance: "500000000000000000000"},
		},
	}
}

func TestNewConfigStore(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		store, err := NewConfigStore(testConfig())
		require.NoError(t, err)

		info := store.Info()
		assert.Equal(t, 4, info.TotalShareHolders)
		assert.Equal(t, entity.BasisPoints(8000), info.ShareHolderPercentage)
		assert.Equal(t, entity.BasisPoints(2700), info.ReferralLevelPercentage)
		assert.Equal(t, common.HexToAddress("0xaa"), info.ReinvestmentWallet)
		assert.Len(t, store.Plans(), 4)

		token, err := store.ActivePaymentToken(common.HexToAddress(usdt))
		require.NoError(t, err)
		assert.Equal(t, "usdt-usd", token.PriceFeed)
		_, err = store.ActivePaymentToken(entity.NativeToken)
		assert.NoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		testCases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"reinvestment_wallet", func(c *config.Config) { c.ReinvestmentWallet = "" }},
			{"share_holder_wallet", func(c *config.Config) { c.ShareHolders[0].Wallet = "founder" }},
			{"share_holders_over_100", func(c *config.Config) { c.ShareHolders[3].Percentage = 3000 }},
			{"share_holder_capacity", func(c *config.Config) { c.ShareHolderLimit = 3 }},
			{"referral_levels_limit", func(c *config.Config) { c.ReferralLevelLimit = 2 }},
			{"duplicate_plan", func(c *config.Config) { c.Plans = append(c.Plans, config.PlanConfig{Months: 1, PriceUSD: 10}) }},
			{"token_address", func(c *config.Config) { c.PaymentTokens[1].Address = "usdt" }},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				conf := testConfig()
				tc.mutate(&conf)
				_, err := NewConfigStore(conf)
				assert.Error(t, err)
			})
		}
	})
}

func TestNewPriceFeed(t *testing.T) {
	feed, err := NewPriceFeed(testConfig())
	require.NoError(t, err)

	rate, err := feed.GetRate(context.Background(), "usdt-usd")
	require.NoError(t, err)
	assert.Equal(t, uint8(2), rate.Decimals)
	assert.Equal(t, "100000000000000000000", rate.Value.String())

	conf := testConfig()
	conf.PriceFeeds[0].UnitsPerUSD = "-1"
	_, err = NewPriceFeed(conf)
	assert.ErrorIs(t, err, errs.Validation)

	conf = testConfig()
	conf.PriceServiceURL = "http://prices.local/v1"
	remote, err := NewPriceFeed(conf)
	require.NoError(t, err)
	assert.IsType(t, &priceoracle.HTTPFeed{}, remote)

	conf.PriceServiceURL = "prices"
	_, err = NewPriceFeed(conf)
	assert.Error(t, err)
}

func TestNewRails(t *testing.T) {
	rails, err := NewRails(testConfig())
	require.NoError(t, err)

	alice, bob := common.HexToAddress("0x1001"), common.HexToAddress("0x1002")
	assert.Equal(t, common.HexToAddress("0xc0"), rails.Custody())
	assert.Equal(t, "5000000000000000000", rails.Balance(alice).String())
	assert.Equal(t, "1000000000000000000000", rails.TokenBalance(common.HexToAddress(usdt), bob).String())
	assert.Equal(t, "500000000000000000000", rails.Allowance(common.HexToAddress(usdt), bob).String())

	conf := testConfig()
	conf.Balances[0].Amount = "lots"
	_, err = NewRails(conf)
	assert.Error(t, err)
}

func TestNewRoles(t *testing.T) {
	roles, err := NewRoles(testConfig())
	require.NoError(t, err)
	assert.True(t, roles.IsAdminOrManager(common.HexToAddress("0xad")))
	assert.True(t, roles.IsAdminOrManager(common.HexToAddress("0xae")))
	assert.False(t, roles.IsAdminOrManager(common.HexToAddress("0x1001")))

	conf := testConfig()
	conf.Managers = []string{"manager"}
	_, err = NewRoles(conf)
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	conf := testConfig()

	store, err := NewConfigStore(conf)
	require.NoError(t, err)
	feed, err := NewPriceFeed(conf)
	require.NoError(t, err)
	rails, err := NewRails(conf)
	require.NoError(t, err)
	roles, err := NewRoles(conf)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	alice := common.HexToAddress("0x1001")
	repo := memory.NewRepository()
	require.NoError(t, repo.UpsertUsers(ctx, []entity.User{{Address: alice, ReferralID: 1, ValidUntil: now.Add(entity.Months(1))}}))
	require.NoError(t, repo.SetState(ctx, datagateway.State{LastSeq: 7, FailedTransfers: uint128.From64(42), Paused: true}))

	c, err := accounting.NewCore(accounting.Options{
		Config:    store,
		PriceFeed: feed,
		Rails:     rails,
		Access:    roles,
		Now:       func() time.Time { return now },
	})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, restore(ctx, c, repo))

	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), info.LastSeq)
	assert.Equal(t, 1, info.TotalUsers)
	assert.True(t, info.Paused)
	assert.Equal(t, "42", info.FailedTransfers.String())

	user, err := c.UserInfo(ctx, alice)
	require.NoError(t, err)
	assert.True(t, user.IsSubscriptionActive)
	assert.Equal(t, uint64(1), user.ReferralID)
}
