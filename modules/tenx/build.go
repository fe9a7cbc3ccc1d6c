package tenx

import (
	"github.com/RishalEP/tenx-blockchain/modules/tenx/config"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/configstore"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/priceoracle"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/rails"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/usecase"
	"github.com/RishalEP/tenx-blockchain/pkg/decimals"
	"github.com/RishalEP/tenx-blockchain/pkg/httpclient"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, errors.Wrapf(entity.ErrInvalidArgument, "%s %q is not an address", field, value)
	}
	return common.HexToAddress(value), nil
}

// parseToken maps the empty string to the native currency.
func parseToken(field, value string) (common.Address, error) {
	if value == "" {
		return entity.NativeToken, nil
	}
	return parseAddress(field, value)
}

// NewConfigStore builds the configuration tables from conf, in the order an
// operator would enter them: share holders, referral levels, plans, tokens.
func NewConfigStore(conf config.Config) (*configstore.Store, error) {
	reinvestment, err := parseAddress("reinvestment wallet", conf.ReinvestmentWallet)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	store, err := configstore.New(conf.ShareHolderLimit, conf.ReferralLevelLimit, reinvestment)
	if err != nil {
		return nil, errors.Wrap(err, "can't create config store")
	}

	for _, h := range conf.ShareHolders {
		wallet, err := parseAddress("share holder wallet", h.Wallet)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if _, err := store.AddShareHolder(h.Name, wallet, entity.BasisPoints(h.Percentage)); err != nil {
			return nil, errors.Wrapf(err, "can't add share holder %q", h.Name)
		}
	}
	levels := lo.Map(conf.ReferralLevels, func(l uint16, _ int) entity.BasisPoints { return entity.BasisPoints(l) })
	if err := store.SetReferralLevels(levels); err != nil {
		return nil, errors.Wrap(err, "can't set referral levels")
	}
	for _, p := range conf.Plans {
		if err := store.AddPlan(p.Months, p.PriceUSD); err != nil {
			return nil, errors.Wrapf(err, "can't add %d months plan", p.Months)
		}
	}
	for _, t := range conf.PaymentTokens {
		token, err := parseToken("payment token", t.Address)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if err := store.AddPaymentToken(token, t.PriceFeed); err != nil {
			return nil, errors.Wrapf(err, "can't add payment token %s", token)
		}
	}
	return store, nil
}

// NewPriceFeed returns the remote price service client when one is configured,
// else a static feed holding the configured rates.
func NewPriceFeed(conf config.Config) (priceoracle.PriceFeed, error) {
	if conf.PriceServiceURL != "" {
		client, err := httpclient.New(conf.PriceServiceURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid price service url")
		}
		return priceoracle.NewHTTPFeed(client, priceoracle.DefaultPrecision), nil
	}

	feed := priceoracle.NewStaticFeed()
	for _, f := range conf.PriceFeeds {
		precision := f.Precision
		if precision == 0 {
			precision = priceoracle.DefaultPrecision
		}
		if err := feed.SetDecimal(f.Name, f.UnitsPerUSD, precision); err != nil {
			return nil, errors.Wrapf(err, "can't set price feed %q", f.Name)
		}
	}
	return feed, nil
}

// NewRails creates the in-memory payment rails and funds the configured accounts.
func NewRails(conf config.Config) (*rails.Memory, error) {
	custody, err := parseAddress("treasury", conf.Treasury)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	memory := rails.NewMemory(custody)
	for _, b := range conf.Balances {
		addr, err := parseAddress("balance address", b.Address)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		token, err := parseToken("balance token", b.Token)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		amount, err := decimals.ParseUint128(b.Amount, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of %s", addr)
		}
		if entity.IsNative(token) {
			err = memory.Deposit(addr, amount)
		} else {
			err = memory.Mint(token, addr, amount)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "can't fund %s", addr)
		}
		if b.Allowance != "" {
			allowance, err := decimals.ParseUint128(b.Allowance, 0)
			if err != nil {
				return nil, errors.Wrapf(err, "allowance of %s", addr)
			}
			memory.Approve(token, addr, allowance)
		}
	}
	return memory, nil
}

func NewRoles(conf config.Config) (*usecase.Roles, error) {
	admin, err := parseAddress("admin", conf.Admin)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	managers := make([]common.Address, 0, len(conf.Managers))
	for _, m := range conf.Managers {
		manager, err := parseAddress("manager", m)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		managers = append(managers, manager)
	}
	return usecase.NewRoles(admin, managers...), nil
}
