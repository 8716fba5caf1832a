package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "marketsim"
)

// Load 读取配置文件并结合环境变量返回 Config。
// 默认值复刻了基准负载：500个账户、10个交易对、每秒2~4笔订单。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.seed", 0)

	v.SetDefault("target.base_url", "http://localhost:5000")
	v.SetDefault("target.order_path", "/add-order")
	v.SetDefault("target.timeout", "2s")

	v.SetDefault("accounts.count", 500)

	v.SetDefault("market.instruments", defaultInstruments())
	v.SetDefault("market.amount_mean", 2.0)
	v.SetDefault("market.amount_stddev", 1.2)
	v.SetDefault("market.amount_min", 0.01)
	v.SetDefault("market.price_floor", 0.0001)
	v.SetDefault("market.buy_bias", 0.52)

	v.SetDefault("pacer.tick_interval", "1s")
	v.SetDefault("pacer.min_ops_per_tick", 2.0)
	v.SetDefault("pacer.max_ops_per_tick", 4.0)

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.port", 8090)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

func defaultInstruments() []map[string]interface{} {
	models := []struct {
		pair   string
		mean   float64
		stddev float64
	}{
		{"btcusdt", 65000, 1200},
		{"ethusdt", 3200, 120},
		{"bnbusdt", 600, 25},
		{"solusdt", 150, 10},
		{"adausdt", 0.6, 0.05},
		{"xrpusdt", 0.7, 0.06},
		{"dogeusdt", 0.15, 0.02},
		{"avaxusdt", 45, 4},
		{"dotusdt", 7, 0.7},
		{"linkusdt", 18, 1.5},
	}

	out := make([]map[string]interface{}, 0, len(models))
	for _, m := range models {
		out = append(out, map[string]interface{}{
			"pair_id":      m.pair,
			"price_mean":   m.mean,
			"price_stddev": m.stddev,
		})
	}
	return out
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
