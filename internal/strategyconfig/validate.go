package strategyconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
		return ValidationError{"meta.timezone", err.Error()}
	}

	// === Schedule ===
	if err := validateHHMM(cfg.Schedule.MarketOpen); err != nil {
		return ValidationError{"schedule.market_open", err.Error()}
	}
	if cfg.Schedule.OffsetMinutes < 0 || cfg.Schedule.OffsetMinutes > 390 {
		return ValidationError{"schedule.offset_minutes", "must be in [0, 390]"}
	}
	if _, err := cfg.Schedule.CronSpec(); err != nil {
		return ValidationError{"schedule", err.Error()}
	}
	if _, err := cfg.Schedule.WeeklyWeekday(); err != nil {
		return ValidationError{"schedule.weekly_day", "must be one of MON, TUE, WED, THU, FRI"}
	}
	for _, h := range cfg.Schedule.Holidays {
		if _, err := time.Parse(time.DateOnly, h); err != nil {
			return ValidationError{"schedule.holidays", fmt.Sprintf("%q is not YYYY-MM-DD", h)}
		}
	}

	// === Signals ===
	s := cfg.Signals
	if s.Smoothing.LagMin < 1 || s.Smoothing.LagMin > s.Smoothing.LagMax {
		return ValidationError{"signals.smoothing", "must satisfy 1 <= lag_min <= lag_max"}
	}
	if s.MinRows < s.Smoothing.LagMax+2 {
		return ValidationError{"signals.min_rows", fmt.Sprintf("must be >= lag_max+2 (%d)", s.Smoothing.LagMax+2)}
	}
	if s.LookbackDays < s.MinRows {
		return ValidationError{"signals.lookback_days", "must be >= min_rows"}
	}
	if s.Percentile <= 0 || s.Percentile >= 100 {
		return ValidationError{"signals.percentile", "must be in (0, 100)"}
	}
	if s.MinPercentileSamples < 2 {
		return ValidationError{"signals.min_percentile_samples", "must be >= 2"}
	}
	if s.MinPercentileSamples > s.LookbackDays-s.Smoothing.LagMax {
		return ValidationError{"signals.min_percentile_samples", "can never be reached within lookback_days"}
	}
	if len(s.Macro) == 0 {
		return ValidationError{"signals.macro", "required"}
	}
	if len(s.Pairs) == 0 {
		return ValidationError{"signals.pairs", "required"}
	}

	columns := make(map[string]bool)
	for i, m := range s.Macro {
		if strings.TrimSpace(m.Symbol) == "" {
			return ValidationError{fmt.Sprintf("signals.macro[%d].symbol", i), "required"}
		}
		if columns[m.Symbol] {
			return ValidationError{fmt.Sprintf("signals.macro[%d]", i), "duplicate signal " + m.Symbol}
		}
		columns[m.Symbol] = true
	}
	for i, p := range s.Pairs {
		field := fmt.Sprintf("signals.pairs[%d]", i)
		if p.Name == "" || p.Safe == "" || p.Risk == "" {
			return ValidationError{field, "name, safe and risk are required"}
		}
		if p.Safe == p.Risk {
			return ValidationError{field, "safe and risk legs must differ"}
		}
		if columns[p.Name] {
			return ValidationError{field, "duplicate signal " + p.Name}
		}
		columns[p.Name] = true
	}

	// === WaitDays ===
	w := cfg.WaitDays
	if w.Initial < 0 {
		return ValidationError{"wait_days.initial", "must be >= 0"}
	}
	if w.Decay < 0 || w.Decay >= 1 {
		return ValidationError{"wait_days.decay", "must be in [0, 1)"}
	}
	if w.Ceiling < 0 {
		return ValidationError{"wait_days.ceiling", "must be >= 0"}
	}

	// === Universe / Holdings ===
	if cfg.Universe.Market == "" {
		return ValidationError{"universe.market", "required"}
	}
	return validateHoldings(cfg.Holdings)
}

func validateHoldings(h Holdings) error {
	if len(h.Growth) == 0 {
		return ValidationError{"holdings.growth", "required"}
	}

	growth := make(map[string]bool)
	total := 0.0
	for i, g := range h.Growth {
		if g.Symbol == "" || g.Weight <= 0 {
			return ValidationError{fmt.Sprintf("holdings.growth[%d]", i), "symbol required and weight must be > 0"}
		}
		growth[g.Symbol] = true
		total += g.Weight
	}
	if total > 1+1e-9 {
		return ValidationError{"holdings.growth", fmt.Sprintf("weights sum to %.4f > 1", total)}
	}

	for field, d := range map[string]HoldingSpec{"holdings.defensive_a": h.DefensiveA, "holdings.defensive_b": h.DefensiveB} {
		if d.Symbol == "" || d.Weight <= 0 {
			return ValidationError{field, "symbol required and weight must be > 0"}
		}
		// growth와 defensive는 동시에 보유할 수 없음
		if growth[d.Symbol] {
			return ValidationError{field, d.Symbol + " is also a growth holding"}
		}
	}
	if h.DefensiveA.Symbol == h.DefensiveB.Symbol {
		return ValidationError{"holdings", "defensive_a and defensive_b must differ"}
	}
	if h.DefensiveA.Weight+h.DefensiveB.Weight > 1+1e-9 {
		return ValidationError{"holdings", "defensive weights sum to more than 1"}
	}
	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Signals.Percentile > 5 {
		warnings = append(warnings, Warning{
			Code:    "WIDE_TAIL",
			Message: fmt.Sprintf("percentile %.1f is not a tail threshold; expect frequent OUT flips", cfg.Signals.Percentile),
		})
	}
	if cfg.WaitDays.Ceiling < cfg.WaitDays.Initial {
		warnings = append(warnings, Warning{
			Code:    "CEILING_BELOW_INITIAL",
			Message: "wait_days.ceiling < wait_days.initial: escalation is clipped",
		})
	}
	if cfg.WaitDays.Initial == 0 {
		warnings = append(warnings, Warning{
			Code:    "ZERO_WAIT",
			Message: "wait_days.initial = 0: a breach day can re-enter IN on the same evaluation",
		})
	}
	return warnings
}

// === Helper Functions ===

var hhmm = regexp.MustCompile(`^\d{2}:\d{2}$`)

func validateHHMM(s string) error {
	if !hhmm.MatchString(s) {
		return errors.New("must be HH:MM format")
	}
	_, err := time.Parse("15:04", s)
	return err
}
