package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RishalEP/tenx-blockchain/modules/tenx/accounting"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/priceoracle"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/rails"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/repository/memory"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/usecase"
	"github.com/RishalEP/tenx-blockchain/pkg/errorhandler"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = common.HexToAddress("0xad")
	custody = common.HexToAddress("0xc0")
	usdt    = common.HexToAddress("0x55d398326f99059ff775485246999027b3197955")
	alice   = common.HexToAddress("0x1001")
	bob     = common.HexToAddress("0x1002")
)

type fixture struct {
	app     *fiber.App
	core    *accounting.Core
	rails   *rails.Memory
	journal *memory.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := configstore.New(4, 4, common.HexToAddress("0xaa"))
	require.NoError(t, err)
	for i, pct := range []entity.BasisPoints{3000, 3200, 800, 800} {
		_, err := store.AddShareHolder(fmt.Sprintf("holder-%d", i), common.BigToAddress(big.NewInt(int64(0xa1+i))), pct)
		require.NoError(t, err)
	}
	require.NoError(t, store.SetReferralLevels([]entity.BasisPoints{1000, 800, 600, 400}))
	require.NoError(t, store.AddPlan(1, 199))
	require.NoError(t, store.AddPaymentToken(entity.NativeToken, "bnb-usd"))
	require.NoError(t, store.AddPaymentToken(usdt, "usdt-usd"))

	feed := priceoracle.NewStaticFeed()
	feed.Set("bnb-usd", priceoracle.Rate{Value: uint128.From64(5)})
	feed.Set("usdt-usd", priceoracle.Rate{Value: uint128.From64(5)})

	f := &fixture{
		rails:   rails.NewMemory(custody),
		journal: memory.NewRepository(),
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.core, err = accounting.NewCore(accounting.Options{
		Config:      store,
		PriceFeed:   feed,
		Rails:       f.rails,
		Access:      usecase.NewRoles(admin),
		MaxDiscount: 2000,
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)
	t.Cleanup(f.core.Close)

	require.NoError(t, f.rails.Deposit(alice, uint128.From64(10_000)))
	require.NoError(t, f.rails.Mint(usdt, bob, uint128.From64(10_000)))

	f.app = fiber.New(fiber.Config{ErrorHandler: errorhandler.NewHTTPErrorHandler()})
	require.NoError(t, New(f.core, f.journal, f.rails).Mount(f.app))
	return f
}

// do sends a request and decodes the result field of the response body.
func (f *fixture) do(t *testing.T, method, target string, caller common.Address, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if caller != (common.Address{}) {
		req.Header.Set(CallerHeader, caller.Hex())
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	if result, ok := decoded["result"].(map[string]any); ok {
		return resp.StatusCode, result
	}
	return resp.StatusCode, decoded
}

func str(v any) string {
	return fmt.Sprint(v)
}

func TestGetQuote(t *testing.T) {
	f := newFixture(t)

	status, result := f.do(t, http.MethodGet, "/tenx/v1/quote?months=1", common.Address{}, "")
	require.Equal(t, http.StatusOK, status, result)
	assert.Equal(t, "995", str(result["amount"]))

	status, result = f.do(t, http.MethodGet, "/tenx/v1/quote?months=1&discount=2000", common.Address{}, "")
	require.Equal(t, http.StatusOK, status, result)
	assert.Equal(t, "796", str(result["amount"]))

	status, _ = f.do(t, http.MethodGet, "/tenx/v1/quote?months=1&token=usdt", common.Address{}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, result = f.do(t, http.MethodGet, "/tenx/v1/quote?months=6", common.Address{}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "State", result["code"])
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)

	status, result := f.do(t, http.MethodPost, "/tenx/v1/subscribe", alice, `{"amount":"1000","months":1,"value":"1000"}`)
	require.Equal(t, http.StatusOK, status, result)
	assert.Equal(t, "995", str(result["quote"]))
	assert.Equal(t, "1", str(result["referralId"]))
	assert.NotEmpty(t, result["payouts"])

	status, result = f.do(t, http.MethodGet, "/tenx/v1/users/"+alice.Hex(), common.Address{}, "")
	require.Equal(t, http.StatusOK, status, result)
	assert.Equal(t, true, result["isSubscriptionActive"])
	assert.Equal(t, "1", str(result["referralId"]))

	t.Run("token", func(t *testing.T) {
		status, result := f.do(t, http.MethodPost, "/tenx/v1/subscribe", bob,
			fmt.Sprintf(`{"amount":"1000","months":1,"token":"%s","referrerId":1}`, usdt.Hex()))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Payment", result["code"])

		status, result = f.do(t, http.MethodPost, "/tenx/v1/rails/approve", bob,
			fmt.Sprintf(`{"token":"%s","amount":"1000"}`, usdt.Hex()))
		require.Equal(t, http.StatusOK, status, result)

		status, result = f.do(t, http.MethodPost, "/tenx/v1/subscribe", bob,
			fmt.Sprintf(`{"amount":"1000","months":1,"token":"%s","referrerId":1}`, usdt.Hex()))
		require.Equal(t, http.StatusOK, status, result)
		assert.Equal(t, alice.Hex(), result["referrer"])

		status, result = f.do(t, http.MethodGet, fmt.Sprintf("/tenx/v1/rails/balances/%s?token=%s", bob.Hex(), usdt.Hex()), common.Address{}, "")
		require.Equal(t, http.StatusOK, status, result)
		assert.Equal(t, "9000", str(result["balance"]))
		assert.Equal(t, "0", str(result["allowance"]))
	})

	t.Run("rejections", func(t *testing.T) {
		status, _ := f.do(t, http.MethodPost, "/tenx/v1/subscribe", common.Address{}, `{"amount":"1000","months":1,"value":"1000"}`)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = f.do(t, http.MethodPost, "/tenx/v1/subscribe", alice, `{"amount":"ten","months":1}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, result := f.do(t, http.MethodPost, "/tenx/v1/subscribe", alice, `{"amount":"900","months":1,"value":"900"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Payment", result["code"])

		status, _ = f.do(t, http.MethodGet, "/tenx/v1/users/"+common.HexToAddress("0xdead").Hex(), common.Address{}, "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodPost, "/tenx/v1/admin/plans", alice, `{"months":3,"priceUsd":538}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, result := f.do(t, http.MethodPost, "/tenx/v1/admin/plans", admin, `{"months":3,"priceUsd":538}`)
	require.Equal(t, http.StatusOK, status, result)

	status, _ = f.do(t, http.MethodPut, "/tenx/v1/admin/plans/3", admin, `{"priceUsd":500}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodPost, "/tenx/v1/admin/plans/3/disable", admin, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = f.do(t, http.MethodPost, "/tenx/v1/admin/plans/3/disable", admin, "")
	assert.Equal(t, http.StatusConflict, status)

	plans, err := f.core.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, configstore.Plan{Months: 3, PriceUSD: 500, Active: false}, plans[1])

	status, _ = f.do(t, http.MethodPut, "/tenx/v1/admin/referral-levels", admin, `{"levels":[1000,800]}`)
	require.Equal(t, http.StatusOK, status)
	levels, err := f.core.ReferralLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.BasisPoints{1000, 800}, levels)

	status, result = f.do(t, http.MethodPut, "/tenx/v1/admin/share-holders/1", admin,
		fmt.Sprintf(`{"name":"ops","wallet":"%s","percentage":3000}`, bob.Hex()))
	require.Equal(t, http.StatusOK, status, result)
	assert.Equal(t, bob.Hex(), result["wallet"])

	status, _ = f.do(t, http.MethodPost, "/tenx/v1/admin/pause", admin, "")
	require.Equal(t, http.StatusOK, status)
	status, result = f.do(t, http.MethodPost, "/tenx/v1/subscribe", alice, `{"amount":"1000","months":1,"value":"1000"}`)
	assert.Equal(t, http.StatusConflict, status, result)

	status, result = f.do(t, http.MethodPost, "/tenx/v1/admin/users/"+alice.Hex()+"/grant", admin, `{"months":1}`)
	require.Equal(t, http.StatusOK, status, result)
	status, result = f.do(t, http.MethodPost, "/tenx/v1/admin/users/"+alice.Hex()+"/disable", admin, "")
	require.Equal(t, http.StatusOK, status, result)
	assert.Equal(t, true, result["suspended"])

	status, result = f.do(t, http.MethodGet, "/tenx/v1/info", common.Address{}, "")
	require.Equal(t, http.StatusOK, status, result)
	assert.Equal(t, true, result["paused"])
	assert.Equal(t, "1", str(result["totalUsers"]))
}

func TestGetEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.journal.AddEvent(ctx, entity.Record{Seq: 1, At: at, Event: entity.SchemeEvent{Months: 3, PriceUSD: 538}}))
	require.NoError(t, f.journal.AddEvent(ctx, entity.Record{Seq: 2, At: at, Event: entity.CancelSubscriptionEvent{Payee: alice, Timestamp: at}}))

	req := httptest.NewRequest(http.MethodGet, "/tenx/v1/events?account="+alice.Hex(), nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body HttpResponse[[]event]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Result)
	require.Len(t, *body.Result, 1)
	assert.Equal(t, uint64(2), (*body.Result)[0].Seq)
	assert.Equal(t, entity.EventCancelSubscription, (*body.Result)[0].Name)

	status, _ := f.do(t, http.MethodGet, "/tenx/v1/events?limit=5000", common.Address{}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}
