package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_StockFile(t *testing.T) {
	cfg, err := Load("setup.yaml")
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Economics.MarketSeed)
	assert.Equal(t, 5.0, cfg.Economics.DefaultLiquidityB)
	assert.Equal(t, 1.0, cfg.Economics.UnitStake)
	assert.Equal(t, 0.1, cfg.Economics.PriceClipLow)
	assert.Equal(t, 0.9, cfg.Economics.PriceClipHigh)
	assert.Equal(t, DeletePolicyHide, cfg.Economics.DeletePolicy)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	path := writeConfig(t, "economics:\n  market_seed: 25.0\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Economics.MarketSeed)
	assert.Equal(t, 5.0, cfg.Economics.DefaultLiquidityB)
	assert.Equal(t, 50.0, cfg.Economics.StartingBalance)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DELETE_POLICY", DeletePolicyRefund)
	t.Setenv("MARKET_SEED", "12.5")

	path := writeConfig(t, "economics:\n  delete_policy: hide\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DeletePolicyRefund, cfg.Economics.DeletePolicy)
	assert.Equal(t, 12.5, cfg.Economics.MarketSeed)
}

func TestLoad_RejectsBadGuardBand(t *testing.T) {
	path := writeConfig(t, "economics:\n  price_clip_low: 0.95\n  price_clip_high: 0.9\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownDeletePolicy(t *testing.T) {
	path := writeConfig(t, "economics:\n  delete_policy: archive\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaults_Validate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}
