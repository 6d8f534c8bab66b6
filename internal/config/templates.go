package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# marketdesk configuration

[simulation]
# Master seed for all pseudo-random market data. Same seed, same market.
seed = 42
# Optional CSV with a custom symbol universe (ticker,name,sector,base_price,tick_size,vol_mult,avg_volume).
universe_file = ""
refresh_interval = "2s"
history_days = 250
session_open = "09:30"
session_close = "16:00"

[analysis]
workers = 4

# Component weights for the composite signal score. Missing components
# fall back to built-in defaults.
[analysis.weights]
# rsi = 0.20
# macd = 0.20
# bollinger = 0.15
# adx = 0.15
# ema = 0.15
# volume = 0.15

[ai]
# Weights for the heuristic model ensemble.
openai_model = "gpt-4o-mini"
narrative = false
min_confidence = 0.0

[ai.model_weights]
# trend = 0.30
# momentum = 0.25
# meanrev = 0.20
# volatility = 0.10
# sentiment = 0.15

[portfolio]
initial_cash = 100000.0

[reports]
daily_at = "16:30"
top_n = 5

[ui]
color_enabled = true
time_format = "15:04:05"

[logging]
level = "info"
console = true
file = true
`

// writeTemplateConfig writes a commented config template on first run.
func writeTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
