package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3.0, cfg.Momentum.PriceChangeThreshold)
	assert.Equal(t, 2.0, cfg.Momentum.GapThreshold)
	assert.Equal(t, 14, cfg.Technicals.RSIPeriod)
	assert.Equal(t, int64(100), cfg.Options.MinVolume)
	assert.Equal(t, int64(50), cfg.Options.MinOpenInterest)
	assert.Equal(t, 15, cfg.Limits.News)
	assert.Equal(t, 3, cfg.Limits.OptionsPerTicker)
	assert.Equal(t, []string{"SMH", "IGV", "XLE", "ITA", "ARKQ"}, cfg.Market.SectorETFs)
	assert.Len(t, cfg.Scan.AlwaysWatch, 8)
	assert.Len(t, cfg.News.BullishKeywords, 27)
	assert.Len(t, cfg.News.BearishKeywords, 17)
	assert.Equal(t, []string{"defense_aerospace"}, cfg.Macro.SectorMovers["LMT"])
	assert.True(t, cfg.Options.Enabled)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
finnhub:
  api_key: from-file
momentum:
  price_change_threshold: 4.5
news:
  bullish_keywords: [moon]
watchlist:
  ai_semiconductors: [nvda, AMD]
  nuclear_energy: [CCJ]
`)
	t.Setenv("FINNHUB_API_KEY", "from-env")
	t.Setenv("OUTPUT_DIR", "/tmp/scans")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Finnhub.APIKey)
	assert.Equal(t, "/tmp/scans", cfg.Output.Dir)
	assert.Equal(t, 4.5, cfg.Momentum.PriceChangeThreshold)
	assert.Equal(t, 2.0, cfg.Momentum.GapThreshold, "untouched keys keep defaults")
	assert.Equal(t, []string{"moon"}, cfg.News.BullishKeywords)
	assert.Len(t, cfg.News.BearishKeywords, 17)
	assert.Equal(t, []string{"NVDA", "AMD", "CCJ"}, cfg.Watchlist.Flatten())
	require.NoError(t, cfg.Validate())
}

func TestLoad_WatchlistFile(t *testing.T) {
	dir := t.TempDir()
	wl := writeFile(t, dir, "watchlist.json", `{"robotics": ["TSLA", "ISRG"], "nuclear_energy": ["CCJ"]}`)
	path := writeFile(t, dir, "config.yaml", "finnhub:\n  api_key: k\n")
	t.Setenv("WATCHLIST_PATH", wl)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Watchlist.Sectors, 2)
	assert.Equal(t, "robotics", cfg.Watchlist.Sectors[0].Name)
	assert.Equal(t, []string{"TSLA", "ISRG", "CCJ"}, cfg.Watchlist.Flatten())
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
watchlist:
  defense: [LMT]
options:
  unusual_ratio: 3
  high_ratio: 2
`)
	t.Setenv("FINNHUB_API_KEY", "")
	cfg, err := Load(path)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "finnhub.api_key is required"), err.Error())
	assert.True(t, strings.Contains(err.Error(), "options.high_ratio"), err.Error())

	cfg.Finnhub.APIKey = "k"
	cfg.Options.HighRatio = 3
	assert.NoError(t, cfg.Validate())

	cfg.Watchlist.Sectors = nil
	assert.ErrorContains(t, cfg.Validate(), "watchlist is empty")
}
