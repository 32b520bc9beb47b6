package config

import (
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

// starterConfig — болванка конфига для первого запуска. MapSlice, чтобы
// сохранить человеческий порядок секций в файле.
func starterConfig() yaml.MapSlice {
	return yaml.MapSlice{
		{Key: "defaults", Value: yaml.MapSlice{
			{Key: "usd_amount", Value: 1.0},
			{Key: "spread", Value: 0.05},
			{Key: "price_variation_tolerance", Value: 0.02},
		}},
		{Key: "pairs", Value: []yaml.MapSlice{
			{
				{Key: "symbol", Value: "BLOCK/LTC"},
				{Key: "strategy", Value: StrategyPingPong},
				{Key: "disabled", Value: true},
			},
		}},
		{Key: "xbridge", Value: yaml.MapSlice{
			{Key: "host", Value: "127.0.0.1"},
			{Key: "port", Value: 41414},
			{Key: "max_concurrent", Value: 5},
			{Key: "timeout_seconds", Value: 120},
		}},
		{Key: "ccxt", Value: yaml.MapSlice{
			{Key: "base_url", Value: "http://127.0.0.1:3000"},
			{Key: "exchange", Value: "binance"},
			{Key: "rate_limit_ms", Value: 1000},
			{Key: "retries", Value: 3},
		}},
		{Key: "controller", Value: yaml.MapSlice{
			{Key: "interval_seconds", Value: 15},
			{Key: "cancel_all_on_exit", Value: true},
		}},
		{Key: "store", Value: yaml.MapSlice{
			{Key: "path", Value: "data/pingpong.json"},
		}},
	}
}

// writeStarterConfig — кладёт болванку по пути отсутствующего конфига,
// чтобы оператору было что править вместо пустого файла.
func writeStarterConfig(path string) error {
	data, err := yaml.Marshal(starterConfig())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
