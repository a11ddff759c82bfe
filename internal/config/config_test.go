package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Grain.AllCrops(), 16)
	assert.Equal(t, "Wheat, all", cfg.Grain.AllCrops()[0])
	assert.Equal(t, 0.15, cfg.Grain.WithinThreshold)
	assert.Equal(t, 1960, cfg.Grain.CutoffYear)
}

func TestLoadYAMLKeepsGroupOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cropstats.yaml")
	data := `
statcan:
  request_timeout: 5s
grain:
  cutoff_year: 1980
  crop_groupings:
    Oilseeds:
      crops: ["Canola (rapeseed)", "Soybeans"]
    Wheat:
      crops: ["Wheat, all"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Chdir(dir)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Grain.Groups, 2)
	assert.Equal(t, "Oilseeds", cfg.Grain.Groups[0].Name)
	assert.Equal(t, "Wheat", cfg.Grain.Groups[1].Name)
	assert.Equal(t, []string{"Canola (rapeseed)", "Soybeans", "Wheat, all"}, cfg.Grain.AllCrops())
	assert.Equal(t, 1980, cfg.Grain.CutoffYear)
	assert.Equal(t, 5*time.Second, cfg.StatCan.RequestTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, "Canada", cfg.Grain.Geography)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STATCAN_BASE_URL", "http://localhost:9999/rest")
	t.Setenv("CROPSTATS_CUTOFF_YEAR", "1970")
	t.Setenv("CROPSTATS_CPI_YEARS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/rest", cfg.StatCan.BaseURL)
	assert.Equal(t, 1970, cfg.Grain.CutoffYear)
	assert.Equal(t, 10, cfg.CPI.Years)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no groups", func(c *Config) { c.Grain.Groups = nil }},
		{"empty group", func(c *Config) { c.Grain.Groups = CropGroups{{Name: "Empty"}} }},
		{"duplicate crop", func(c *Config) {
			c.Grain.Groups = CropGroups{
				{Name: "A", Crops: []string{"Oats"}},
				{Name: "B", Crops: []string{"Oats"}},
			}
		}},
		{"same dispositions", func(c *Config) { c.Grain.AreaDisposition = c.Grain.ProductionDisposition }},
		{"zero threshold", func(c *Config) { c.Grain.WithinThreshold = 0 }},
		{"wide spread", func(c *Config) { c.Grain.BarSpread = 0.5 }},
		{"no cpi years", func(c *Config) { c.CPI.Years = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCropGroupsDocument(t *testing.T) {
	doc := DefaultCropGroups().Document()
	require.Contains(t, doc, "crop_groupings")
	assert.Equal(t, []string{"Wheat, all"}, doc["crop_groupings"]["Wheat"]["crops"])
	assert.Len(t, doc["crop_groupings"], 4)
}
