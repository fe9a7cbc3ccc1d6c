package config

type Config struct {
	// ShareHolderLimit is the maximum number of active share holders.
	ShareHolderLimit int `mapstructure:"share_holder_limit"`

	// ReferralLevelLimit is the maximum number of referral levels.
	ReferralLevelLimit int `mapstructure:"referral_level_limit"`

	ReinvestmentWallet string               `mapstructure:"reinvestment_wallet"`
	ReferralLevels     []uint16             `mapstructure:"referral_levels"`
	ShareHolders       []ShareHolderConfig  `mapstructure:"share_holders"`
	Plans              []PlanConfig         `mapstructure:"plans"`
	PaymentTokens      []PaymentTokenConfig `mapstructure:"payment_tokens"`

	// PriceFeeds are the static rates served to the price oracle, keyed by feed name.
	PriceFeeds []PriceFeedConfig `mapstructure:"price_feeds"`

	// PriceServiceURL replaces the static rates with a remote price service when set.
	PriceServiceURL string `mapstructure:"price_service_url"`

	// Admin holds every capability. Managers may run administrative operations
	// but can't change the manager set.
	Admin    string   `mapstructure:"admin"`
	Managers []string `mapstructure:"managers"`

	// MaxDiscountBps caps the discount a subscriber may claim. 0 means no discount.
	MaxDiscountBps uint16 `mapstructure:"max_discount_bps"`

	// Treasury is the custody account that receives payments before they are split.
	Treasury string `mapstructure:"treasury"`

	// Balances seed the in-memory payment rails.
	Balances []BalanceConfig `mapstructure:"balances"`

	// Persist enables the postgres event journal and user snapshots.
	Persist bool `mapstructure:"persist"`

	// JournalPath keeps the journal in a local bbolt file when postgres
	// persistence is off. Empty keeps it in memory.
	JournalPath string `mapstructure:"journal_path"`
}

type ShareHolderConfig struct {
	Name       string `mapstructure:"name"`
	Wallet     string `mapstructure:"wallet"`
	Percentage uint16 `mapstructure:"percentage"`
}

type PlanConfig struct {
	Months   uint32 `mapstructure:"months"`
	PriceUSD uint64 `mapstructure:"price_usd"`
}

type PaymentTokenConfig struct {
	// Address is empty for the native currency.
	Address   string `mapstructure:"address"`
	PriceFeed string `mapstructure:"price_feed"`
}

type PriceFeedConfig struct {
	Name string `mapstructure:"name"`

	// UnitsPerUSD is the decimal amount of token base units one USD buys.
	UnitsPerUSD string `mapstructure:"units_per_usd"`
	Precision   uint8  `mapstructure:"precision"`
}

type BalanceConfig struct {
	Address string `mapstructure:"address"`

	// Token is empty for the native currency.
	Token     string `mapstructure:"token"`
	Amount    string `mapstructure:"amount"`
	Allowance string `mapstructure:"allowance"`
}
