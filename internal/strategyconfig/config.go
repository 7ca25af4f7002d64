package strategyconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/inout/backend/internal/contracts"
)

// Config는 in/out 전략의 전체 설정 (startup 이후 변경 불가)
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Schedule Schedule `yaml:"schedule" json:"schedule"`
	Signals  Signals  `yaml:"signals" json:"signals"`
	WaitDays WaitDays `yaml:"wait_days" json:"wait_days"`
	Universe Universe `yaml:"universe" json:"universe"`
	Holdings Holdings `yaml:"holdings" json:"holdings"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Schedule places both evaluations at market open + offset.
// The weekly in-check runs on the last trading day up to WeeklyDay, after that
// day's daily out-check. Holidays are exchange closures in Meta.Timezone.
type Schedule struct {
	MarketOpen    string   `yaml:"market_open" json:"market_open"` // HH:MM
	OffsetMinutes int      `yaml:"offset_minutes" json:"offset_minutes"`
	WeeklyDay     string   `yaml:"weekly_day" json:"weekly_day"` // MON..FRI
	Holidays      []string `yaml:"holidays" json:"holidays"`     // YYYY-MM-DD
}

// Signals SignalComputer / ExtremeDetector 설정
type Signals struct {
	LookbackDays         int         `yaml:"lookback_days" json:"lookback_days"`
	Smoothing            Smoothing   `yaml:"smoothing" json:"smoothing"`
	MinRows              int         `yaml:"min_rows" json:"min_rows"`
	Percentile           float64     `yaml:"percentile" json:"percentile"`
	MinPercentileSamples int         `yaml:"min_percentile_samples" json:"min_percentile_samples"`
	Macro                []MacroSpec `yaml:"macro" json:"macro"`
	Pairs                []PairSpec  `yaml:"pairs" json:"pairs"`
}

// Smoothing baseline = mean of closes at lags LagMin..LagMax inclusive
type Smoothing struct {
	LagMin int `yaml:"lag_min" json:"lag_min"`
	LagMax int `yaml:"lag_max" json:"lag_max"`
}

// Samples returns the number of lagged closes averaged into the baseline
func (s Smoothing) Samples() int {
	return s.LagMax - s.LagMin + 1
}

// MacroSpec is one raw macro signal. Invert flips a "rising is bearish" series.
type MacroSpec struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Invert bool   `yaml:"invert" json:"invert"`
}

// PairSpec is a safe-vs-risk leg pair; its signal is -(r_safe - r_risk)
type PairSpec struct {
	Name string `yaml:"name" json:"name"`
	Safe string `yaml:"safe" json:"safe"`
	Risk string `yaml:"risk" json:"risk"`
}

// WaitDays WaitDayAdjuster 설정
type WaitDays struct {
	Initial int     `yaml:"initial" json:"initial"`
	Decay   float64 `yaml:"decay" json:"decay"`
	Ceiling int     `yaml:"ceiling" json:"ceiling"`
}

// Universe 시장 기준 자산
type Universe struct {
	Market string `yaml:"market" json:"market"`
}

// Holdings nominal weights of the traded assets
type Holdings struct {
	Growth     []HoldingSpec `yaml:"growth" json:"growth"`
	DefensiveA HoldingSpec   `yaml:"defensive_a" json:"defensive_a"`
	DefensiveB HoldingSpec   `yaml:"defensive_b" json:"defensive_b"`
}

// HoldingSpec one traded asset and its nominal weight
type HoldingSpec struct {
	Symbol string  `yaml:"symbol" json:"symbol"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Default returns the stock configuration: 15 wait days, 1st percentile,
// 252-day lookback, lag 55–65 smoothing, 50% decay, 60-day ceiling.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "inout_default",
			Version:    "1.0.0",
			Timezone:   "America/New_York",
		},
		Schedule: Schedule{
			MarketOpen:    "09:30",
			OffsetMinutes: 120,
			WeeklyDay:     "FRI",
		},
		Signals: Signals{
			LookbackDays:         252,
			Smoothing:            Smoothing{LagMin: 55, LagMax: 65},
			MinRows:              67,
			Percentile:           1,
			MinPercentileSamples: 100,
			Macro: []MacroSpec{
				{Symbol: "XLI"},               // production (industrials)
				{Symbol: "DBB"},               // input prices (metals)
				{Symbol: "IGE"},               // input prices (natural resources)
				{Symbol: "SHY"},               // cost of debt
				{Symbol: "UUP", Invert: true}, // safe haven USD
			},
			Pairs: []PairSpec{
				{Name: "G_S", Safe: "GLD", Risk: "SLV"},
				{Name: "U_I", Safe: "XLU", Risk: "XLI"},
				{Name: "C_A", Safe: "FXF", Risk: "FXA"},
			},
		},
		WaitDays: WaitDays{
			Initial: 15,
			Decay:   0.5,
			Ceiling: 60,
		},
		Universe: Universe{Market: "SPY"},
		Holdings: Holdings{
			Growth:     []HoldingSpec{{Symbol: "TQQQ", Weight: 1}},
			DefensiveA: HoldingSpec{Symbol: "TMF", Weight: 0.5},
			DefensiveB: HoldingSpec{Symbol: "TYD", Weight: 0.5},
		},
	}
}

// ColumnNames returns the signal columns in evaluation order: macro then pairs
func (c *Config) ColumnNames() []string {
	names := make([]string, 0, len(c.Signals.Macro)+len(c.Signals.Pairs))
	for _, m := range c.Signals.Macro {
		names = append(names, m.Symbol)
	}
	for _, p := range c.Signals.Pairs {
		names = append(names, p.Name)
	}
	return names
}

// RoleTable builds the symbol → roles table
func (c *Config) RoleTable() *contracts.RoleTable {
	rt := contracts.NewRoleTable()
	rt.Assign(c.Universe.Market, contracts.RoleMarket)
	for _, m := range c.Signals.Macro {
		rt.Assign(m.Symbol, contracts.RoleMacroSignal)
	}
	for _, p := range c.Signals.Pairs {
		rt.Assign(p.Safe, contracts.RolePairLegA)
		rt.Assign(p.Risk, contracts.RolePairLegB)
	}
	for _, g := range c.Holdings.Growth {
		rt.Assign(g.Symbol, contracts.RoleGrowthHolding)
	}
	rt.Assign(c.Holdings.DefensiveA.Symbol, contracts.RoleDefensiveHoldingA)
	rt.Assign(c.Holdings.DefensiveB.Symbol, contracts.RoleDefensiveHoldingB)
	return rt
}

// Location resolves Meta.Timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Meta.Timezone)
}

var weekdays = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
}

// WeeklyWeekday returns the weekday of the weekly in-check
func (s Schedule) WeeklyWeekday() (time.Weekday, error) {
	wd, ok := weekdays[strings.ToUpper(s.WeeklyDay)]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s.WeeklyDay)
	}
	return wd, nil
}

// IsHoliday reports whether the calendar date of day is a listed closure
func (s Schedule) IsHoliday(day time.Time) bool {
	key := day.Format(time.DateOnly)
	for _, h := range s.Holidays {
		if h == key {
			return true
		}
	}
	return false
}

// IsTradingDay: a weekday that is not a listed closure
func (s Schedule) IsTradingDay(day time.Time) bool {
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday && !s.IsHoliday(day)
}

// WeeklyDue reports whether day hosts the weekly in-check: the weekly weekday
// itself, or an earlier trading day of the same week when every day after it
// up to the weekly weekday is a closure (Good Friday moves it to Thursday).
func (s Schedule) WeeklyDue(day time.Time) bool {
	wd, err := s.WeeklyWeekday()
	if err != nil || !s.IsTradingDay(day) || day.Weekday() > wd {
		return false
	}
	for next := day.AddDate(0, 0, 1); next.Weekday() <= wd; next = next.AddDate(0, 0, 1) {
		if !s.IsHoliday(next) {
			return false
		}
	}
	return true
}

// CronSpec returns the 6-field (seconds) cron expression for
// market open + offset on trading weekdays.
func (s Schedule) CronSpec() (string, error) {
	open, err := time.Parse("15:04", s.MarketOpen)
	if err != nil {
		return "", fmt.Errorf("market_open: %w", err)
	}
	at := open.Add(time.Duration(s.OffsetMinutes) * time.Minute)
	if at.Day() != open.Day() {
		return "", fmt.Errorf("market_open + offset crosses midnight")
	}
	return fmt.Sprintf("0 %d %d * * MON-FRI", at.Minute(), at.Hour()), nil
}
