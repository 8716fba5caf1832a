package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了模拟器运行所需的全部配置项。
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Target   TargetConfig   `mapstructure:"target"`
	Accounts AccountsConfig `mapstructure:"accounts"`
	Market   MarketConfig   `mapstructure:"market"`
	Pacer    PacerConfig    `mapstructure:"pacer"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。Seed 为 0 时按时钟播种，非 0 时整次运行可复现。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
	Seed        int64  `mapstructure:"seed"`
}

// TargetConfig 描述下游订单接收服务的接入信息。
type TargetConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	OrderPath string        `mapstructure:"order_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AccountsConfig 控制模拟账户池，账户编号为 1..Count。
type AccountsConfig struct {
	Count int `mapstructure:"count"`
}

// InstrumentConfig 描述单个交易对及其价格模型。
type InstrumentConfig struct {
	PairID      string  `mapstructure:"pair_id"`
	PriceMean   float64 `mapstructure:"price_mean"`
	PriceStddev float64 `mapstructure:"price_stddev"`
}

// MarketConfig 描述订单合成所用的统计模型。
type MarketConfig struct {
	Instruments  []InstrumentConfig `mapstructure:"instruments"`
	AmountMean   float64            `mapstructure:"amount_mean"`
	AmountStddev float64            `mapstructure:"amount_stddev"`
	AmountMin    float64            `mapstructure:"amount_min"`
	PriceFloor   float64            `mapstructure:"price_floor"`
	BuyBias      float64            `mapstructure:"buy_bias"`
}

// PacerConfig 控制调度节奏，每个 tick 的批量从
// [MinOpsPerTick, MaxOpsPerTick) 均匀抽取后截断，下限为1。
type PacerConfig struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	MinOpsPerTick float64       `mapstructure:"min_ops_per_tick"`
	MaxOpsPerTick float64       `mapstructure:"max_ops_per_tick"`
}

// MonitorConfig 控制运行统计接口。
type MonitorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。空账户池或空交易对列表会让
// 订单合成无从进行，必须在启动时失败。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Target.BaseURL == "" {
		err = multierr.Append(err, errors.New("target.base_url 不能为空"))
	}
	if c.Target.OrderPath == "" {
		err = multierr.Append(err, errors.New("target.order_path 不能为空"))
	}
	if c.Target.Timeout <= 0 {
		err = multierr.Append(err, errors.New("target.timeout 必须大于0"))
	}
	if c.Accounts.Count <= 0 {
		err = multierr.Append(err, errors.New("accounts.count 必须大于0"))
	}
	if len(c.Market.Instruments) == 0 {
		err = multierr.Append(err, errors.New("market.instruments 至少包含一个交易对"))
	}
	for i, inst := range c.Market.Instruments {
		if inst.PairID == "" {
			err = multierr.Append(err, fmt.Errorf("market.instruments[%d].pair_id 不能为空", i))
		}
		if inst.PriceMean <= 0 {
			err = multierr.Append(err, fmt.Errorf("market.instruments[%d].price_mean 必须大于0", i))
		}
		if inst.PriceStddev < 0 {
			err = multierr.Append(err, fmt.Errorf("market.instruments[%d].price_stddev 不能为负", i))
		}
	}
	if c.Market.AmountMean <= 0 {
		err = multierr.Append(err, errors.New("market.amount_mean 必须大于0"))
	}
	if c.Market.AmountStddev < 0 {
		err = multierr.Append(err, errors.New("market.amount_stddev 不能为负"))
	}
	if c.Market.AmountMin <= 0 {
		err = multierr.Append(err, errors.New("market.amount_min 必须大于0"))
	}
	if c.Market.PriceFloor <= 0 {
		err = multierr.Append(err, errors.New("market.price_floor 必须大于0"))
	}
	if c.Market.BuyBias < 0 || c.Market.BuyBias > 1 {
		err = multierr.Append(err, errors.New("market.buy_bias 必须位于[0,1]"))
	}
	if c.Pacer.TickInterval <= 0 {
		err = multierr.Append(err, errors.New("pacer.tick_interval 必须大于0"))
	}
	if c.Pacer.MinOpsPerTick <= 0 {
		err = multierr.Append(err, errors.New("pacer.min_ops_per_tick 必须大于0"))
	}
	if c.Pacer.MaxOpsPerTick < c.Pacer.MinOpsPerTick {
		err = multierr.Append(err, errors.New("pacer.max_ops_per_tick 不能小于 min_ops_per_tick"))
	}
	if c.Monitor.Enabled && (c.Monitor.Port < 1 || c.Monitor.Port > 65535) {
		err = multierr.Append(err, errors.New("monitor.port 必须位于[1,65535]"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
