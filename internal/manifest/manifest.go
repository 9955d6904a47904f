// Package manifest loads the host parameters that configure one backtest
// run: initial capital, commission and slippage models, margin and sizing
// rules, and exit-policy defaults. It mirrors the teacher stack's layered
// configuration idiom — defaults, then an optional file, then environment
// overrides — using viper as the merge engine.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CommissionType selects the commission model.
type CommissionType string

const (
	CommissionPerShare   CommissionType = "per_share"
	CommissionPercentage CommissionType = "percentage"
	CommissionFlat       CommissionType = "flat"
)

// SlippageModel selects how a scheduled fill timestamp is derived from an
// order's creation timestamp.
type SlippageModel string

const (
	SlippageNone            SlippageModel = "none"
	SlippageTimeBased       SlippageModel = "time_based"
	SlippageTimeVolumeBased SlippageModel = "time_volume_based"
)

// PositionSizingMethod selects how a Signal is sized into an Order.
type PositionSizingMethod string

const (
	SizingFixedPercentage PositionSizingMethod = "fixed_percentage"
	SizingFixedDollar     PositionSizingMethod = "fixed_dollar"
	SizingEqualWeight     PositionSizingMethod = "equal_weight"
)

// HostParams is the full set of configuration a backtest run is given.
// Every field here corresponds to one row of the host-parameter table;
// missing or out-of-range values are a Configuration error and abort
// setup before any bar is processed.
type HostParams struct {
	InitialCapital       string  `mapstructure:"initial_capital"`
	MarketHoursOnly      bool    `mapstructure:"market_hours_only"`
	AllowFractionalShares bool   `mapstructure:"allow_fractional_shares"`
	AllowShortSelling    bool    `mapstructure:"allow_short_selling"`

	Commission     float64        `mapstructure:"commission"`
	CommissionType CommissionType `mapstructure:"commission_type"`

	Slippage      float64       `mapstructure:"slippage"`
	SlippageModel SlippageModel `mapstructure:"slippage_model"`

	FillMaxPctOfVolume float64 `mapstructure:"fill_max_pct_of_volume"`

	InitialMarginPct float64 `mapstructure:"initial_margin_pct"`
	MaxLeverage      float64 `mapstructure:"max_leverage"`

	PositionSizingMethod PositionSizingMethod `mapstructure:"position_sizing_method"`
	PositionSizeValue    float64              `mapstructure:"position_size_value"`
	MaxPositionSize      float64              `mapstructure:"max_position_size"`

	UseStopLoss     bool    `mapstructure:"use_stop_loss"`
	StopLossPct     float64 `mapstructure:"stop_loss_pct"`
	UseTakeProfit   bool    `mapstructure:"use_take_profit"`
	TakeProfitPct   float64 `mapstructure:"take_profit_pct"`

	// TimezoneName is the IANA location name used for the market-hours
	// gate and for formatting exchange-local timestamps. It is not part
	// of the original host-parameter table; added so a single simulator
	// binary can back-test exchanges outside the one market the engine
	// was first built for.
	TimezoneName string `mapstructure:"timezone"`

	Seed int64 `mapstructure:"seed"`

	// RiskFreeRate is the annual risk-free rate used to compute the
	// Sharpe and Sortino ratios. Not part of the original host-parameter
	// table; added so those ratios are configurable per run instead of
	// hardcoded to zero.
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
}

// setDefaults registers the baseline values consumed when neither a file
// nor an environment variable supplies them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("initial_capital", "100000.00")
	v.SetDefault("market_hours_only", true)
	v.SetDefault("allow_fractional_shares", false)
	v.SetDefault("allow_short_selling", true)

	v.SetDefault("commission", 0.0)
	v.SetDefault("commission_type", string(CommissionPerShare))

	v.SetDefault("slippage", 0.0)
	v.SetDefault("slippage_model", string(SlippageNone))

	v.SetDefault("fill_max_pct_of_volume", 1.0)

	v.SetDefault("initial_margin_pct", 0.5)
	v.SetDefault("max_leverage", 1.0)

	v.SetDefault("position_sizing_method", string(SizingFixedPercentage))
	v.SetDefault("position_size_value", 0.1)
	v.SetDefault("max_position_size", 1.0)

	v.SetDefault("use_stop_loss", false)
	v.SetDefault("stop_loss_pct", 0.0)
	v.SetDefault("use_take_profit", false)
	v.SetDefault("take_profit_pct", 0.0)

	v.SetDefault("timezone", "America/New_York")
	v.SetDefault("seed", int64(1))
	v.SetDefault("risk_free_rate", 0.0)
}

// Load builds a HostParams from defaults, an optional config file
// ("manifest.yaml"/".yml"/".json" under ./config, ~/.backforge, or
// /etc/backforge), and BACKFORGE_-prefixed environment overrides, in
// that ascending priority order.
func Load() (*HostParams, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("manifest")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".backforge"))
	}
	v.AddConfigPath("/etc/backforge")

	v.SetEnvPrefix("BACKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("manifest: reading config: %w", err)
		}
	}

	var params HostParams
	if err := v.Unmarshal(&params); err != nil {
		return nil, fmt.Errorf("manifest: unmarshaling: %w", err)
	}

	if err := Validate(&params); err != nil {
		return nil, err
	}
	return &params, nil
}

// LoadFromFile loads a HostParams from one explicit file path, still
// applying defaults and environment overrides underneath it.
func LoadFromFile(path string) (*HostParams, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	v.SetEnvPrefix("BACKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("manifest: reading %s: %w", path, err)
	}

	var params HostParams
	if err := v.Unmarshal(&params); err != nil {
		return nil, fmt.Errorf("manifest: unmarshaling: %w", err)
	}

	if err := Validate(&params); err != nil {
		return nil, err
	}
	return &params, nil
}

// Validate checks the enumerated and range-bound fields of a HostParams,
// returning a Configuration-kind error (see internal/engine) describing
// the first violation found.
func Validate(p *HostParams) error {
	switch p.CommissionType {
	case CommissionPerShare, CommissionPercentage, CommissionFlat:
	default:
		return fmt.Errorf("manifest: invalid commission_type %q", p.CommissionType)
	}

	switch p.SlippageModel {
	case SlippageNone, SlippageTimeBased, SlippageTimeVolumeBased:
	default:
		return fmt.Errorf("manifest: invalid slippage_model %q", p.SlippageModel)
	}

	switch p.PositionSizingMethod {
	case SizingFixedPercentage, SizingFixedDollar, SizingEqualWeight:
	default:
		return fmt.Errorf("manifest: invalid position_sizing_method %q", p.PositionSizingMethod)
	}

	if p.FillMaxPctOfVolume < 0 || p.FillMaxPctOfVolume > 1 {
		return fmt.Errorf("manifest: fill_max_pct_of_volume %v out of [0,1]", p.FillMaxPctOfVolume)
	}
	if p.InitialMarginPct < 0 || p.InitialMarginPct > 1 {
		return fmt.Errorf("manifest: initial_margin_pct %v out of [0,1]", p.InitialMarginPct)
	}
	if p.MaxLeverage < 1 {
		return fmt.Errorf("manifest: max_leverage %v must be >= 1", p.MaxLeverage)
	}

	return nil
}
