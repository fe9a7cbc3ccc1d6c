package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RishalEP/tenx-blockchain/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
logger:
  output: JSON
  level: warn
network: bsc-testnet
http_server:
  port: 9090
postgres:
  host: db
  dbname: tenx
tenx:
  share_holder_limit: 4
  referral_level_limit: 4
  reinvestment_wallet: "0x00000000000000000000000000000000000000aa"
  referral_levels: [1000, 800, 600, 300]
  share_holders:
    - name: alice
      wallet: "0x00000000000000000000000000000000000000a1"
      percentage: 3000
  plans:
    - months: 1
      price_usd: 199
`

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	conf := Parse(path)
	assert.Equal(t, "JSON", conf.Logger.Output)
	assert.Equal(t, "warn", conf.Logger.Level)
	assert.Equal(t, common.NetworkBSCTestnet, conf.Network)
	assert.Equal(t, 9090, conf.HTTPServer.Port)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "tenx", conf.Postgres.DBName)

	tenx := conf.Tenx
	assert.Equal(t, 4, tenx.ShareHolderLimit)
	assert.Equal(t, []uint16{1000, 800, 600, 300}, tenx.ReferralLevels)
	require.Len(t, tenx.ShareHolders, 1)
	assert.Equal(t, "alice", tenx.ShareHolders[0].Name)
	assert.Equal(t, uint16(3000), tenx.ShareHolders[0].Percentage)
	require.Len(t, tenx.Plans, 1)
	assert.Equal(t, uint64(199), tenx.Plans[0].PriceUSD)

	assert.Equal(t, conf, Load())
}

func TestParseDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("HTTP_SERVER_PORT=7070\n"), 0o600))

	old := dotEnvFile
	dotEnvFile = env
	t.Cleanup(func() {
		dotEnvFile = old
		os.Unsetenv("HTTP_SERVER_PORT")
	})

	conf := Parse(path)
	assert.Equal(t, 7070, conf.HTTPServer.Port)
	assert.Equal(t, "db", conf.Postgres.Host)
}
