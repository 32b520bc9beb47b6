package config

import (
	"fmt"
	"os"
	"strings"

	env "pingpong_bot/internal/config"
	"pingpong_bot/internal/helper"
	"pingpong_bot/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	defaultConfigFile = "pingpong.yaml"
)

// Стратегии пар.
const (
	StrategyPingPong    = "pingpong"
	StrategyBasicSeller = "basic_seller"
)

// PairConfig — уже распарсенный конфиг одной торговой пары.
// Никакой динамической инъекции атрибутов из YAML: только явные поля.
type PairConfig struct {
	Symbol   string `mapstructure:"symbol"` // "BLOCK/LTC"
	Strategy string `mapstructure:"strategy"`
	Disabled bool   `mapstructure:"disabled"`

	// pingpong
	USDAmount               float64 `mapstructure:"usd_amount"`
	Spread                  float64 `mapstructure:"spread"`
	PriceVariationTolerance float64 `mapstructure:"price_variation_tolerance"`

	// basic_seller (одноразовый продавец)
	SellAmount      float64 `mapstructure:"sell_amount"`
	MinSellPriceUSD float64 `mapstructure:"min_sell_price_usd"`
	SellPriceOffset float64 `mapstructure:"sell_price_offset"`
	PartialPercent  float64 `mapstructure:"partial_percent"` // 0 = без partial
}

// Token1/Token2 из символа пары.
func (p *PairConfig) Tokens() (string, string, bool) {
	return helper.SplitPair(p.Symbol)
}

type Config struct {
	Tokens []string     `mapstructure:"tokens"`
	Pairs  []PairConfig `mapstructure:"pairs"`

	// приоритетнее оракула: "SYM/BTC" -> цена
	CustomTickers map[string]float64 `mapstructure:"custom_tickers"`

	Defaults struct {
		USDAmount               float64 `mapstructure:"usd_amount"`
		Spread                  float64 `mapstructure:"spread"`
		PriceVariationTolerance float64 `mapstructure:"price_variation_tolerance"`
	} `mapstructure:"defaults"`

	XBridge struct {
		Host           string `mapstructure:"host"`
		Port           int    `mapstructure:"port"`
		User           string `mapstructure:"user"`
		Password       string `mapstructure:"password"`
		MaxConcurrent  int64  `mapstructure:"max_concurrent"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"xbridge"`

	CCXT struct {
		BaseURL        string `mapstructure:"base_url"`
		Exchange       string `mapstructure:"exchange"`
		RateLimitMS    int    `mapstructure:"rate_limit_ms"`
		Retries        int    `mapstructure:"retries"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"ccxt"`

	PriceFeed struct {
		Enabled bool   `mapstructure:"enabled"`
		URL     string `mapstructure:"url"`
	} `mapstructure:"price_feed"`

	Controller struct {
		IntervalSeconds int  `mapstructure:"interval_seconds"`
		CancelAllOnExit bool `mapstructure:"cancel_all_on_exit"`
	} `mapstructure:"controller"`

	Store struct {
		Path string `mapstructure:"path"`
		DSN  string `mapstructure:"dsn"`
	} `mapstructure:"store"`

	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`

	Jaeger struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"jaeger"`
}

// известные top-level ключи; всё остальное логируем и игнорируем
var knownKeys = map[string]struct{}{
	"tokens": {}, "pairs": {}, "custom_tickers": {}, "defaults": {},
	"xbridge": {}, "ccxt": {}, "price_feed": {}, "controller": {},
	"store": {}, "telegram": {}, "jaeger": {},
}

func NewConfig() (*Config, error) {
	env.LoadDotenv()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = defaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile("configs/" + configFileName)
	v.SetConfigType("yaml")

	config := defaults()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat("configs/" + configFileName); os.IsNotExist(statErr) {
			if wErr := writeStarterConfig("configs/" + configFileName); wErr == nil {
				return nil, errors.Errorf(
					"config file configs/%s did not exist, starter written — edit it and restart",
					configFileName)
			}
		}
		return nil, errors.Wrap(err, "read config file")
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "decode config file")
	}

	// viper приводит ключи мапов к нижнему регистру, а символы тикеров
	// в рантайме везде верхним ("BLOCK/BTC") — нормализуем обратно
	if len(config.CustomTickers) > 0 {
		tickers := make(map[string]float64, len(config.CustomTickers))
		for sym, price := range config.CustomTickers {
			tickers[strings.ToUpper(sym)] = price
		}
		config.CustomTickers = tickers
	}

	for _, key := range v.AllKeys() {
		top := key
		if i := strings.IndexByte(key, '.'); i > 0 {
			top = key[:i]
		}
		if _, ok := knownKeys[top]; !ok {
			logger.Info("config: unknown key %q ignored", key)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func defaults() *Config {
	c := &Config{}
	c.Defaults.USDAmount = 1.0
	c.Defaults.Spread = 0.05
	c.Defaults.PriceVariationTolerance = 0.02
	c.XBridge.Host = "127.0.0.1"
	c.XBridge.Port = 41414
	c.XBridge.MaxConcurrent = 5
	c.XBridge.TimeoutSeconds = 120
	c.CCXT.RateLimitMS = 1000
	c.CCXT.Retries = 3
	c.CCXT.TimeoutSeconds = 10
	c.Controller.IntervalSeconds = 15
	c.Store.Path = "data/pingpong.json"
	return c
}

func applyEnvOverrides(c *Config) {
	c.XBridge.User = env.GetenvDefault("XBRIDGE_RPC_USER", c.XBridge.User)
	c.XBridge.Password = env.GetenvDefault("XBRIDGE_RPC_PASSWORD", c.XBridge.Password)
	c.Store.DSN = env.GetenvDefault("DATABASE_DSN", c.Store.DSN)
	c.Telegram.Token = env.GetenvDefault("TELEGRAM_TOKEN", c.Telegram.Token)
	c.Telegram.ChatID = env.Int64FromEnv("TELEGRAM_CHAT_ID", c.Telegram.ChatID)
}

// ValidatePartialPercent — допустимый минимальный процент частичного
// исполнения: [0.001, 1.0). Ноль не принимаем — "нет partial" кодируется
// отсутствием ключа в конфиге.
func ValidatePartialPercent(p float64) error {
	if p < 0.001 || p >= 1.0 {
		return fmt.Errorf("partial_percent %v out of range [0.001, 1.0)", p)
	}
	return nil
}

func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Pairs))
	for i := range c.Pairs {
		p := &c.Pairs[i]
		if _, _, ok := p.Tokens(); !ok {
			return fmt.Errorf("pair %q: bad symbol, want T1/T2", p.Symbol)
		}
		if _, dup := seen[p.Symbol]; dup {
			return fmt.Errorf("pair %q: duplicate", p.Symbol)
		}
		seen[p.Symbol] = struct{}{}

		switch p.Strategy {
		case StrategyPingPong, "":
			p.Strategy = StrategyPingPong
			if p.USDAmount == 0 {
				p.USDAmount = c.Defaults.USDAmount
			}
			if p.Spread == 0 {
				p.Spread = c.Defaults.Spread
			}
			if p.PriceVariationTolerance == 0 {
				p.PriceVariationTolerance = c.Defaults.PriceVariationTolerance
			}
		case StrategyBasicSeller:
			if p.SellAmount <= 0 {
				return fmt.Errorf("pair %q: basic_seller requires sell_amount > 0", p.Symbol)
			}
			if p.PartialPercent != 0 {
				if err := ValidatePartialPercent(p.PartialPercent); err != nil {
					return fmt.Errorf("pair %q: %w", p.Symbol, err)
				}
			}
		default:
			return fmt.Errorf("pair %q: unknown strategy %q", p.Symbol, p.Strategy)
		}
	}
	return nil
}

// Tolerance — допуск дрейфа цены для пары. Для basic_seller жёстко 1%.
func (c *Config) Tolerance(p *PairConfig) float64 {
	if p.Strategy == StrategyBasicSeller {
		return 0.01
	}
	return p.PriceVariationTolerance
}
