package main

import (
	"fmt"

	"github.com/zulandar/mashtun/internal/config"
	"github.com/zulandar/mashtun/internal/db"
	"gorm.io/gorm"
)

// connectFromConfig loads config and returns a GORM DB connection.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, gormDB, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatGravity renders a specific gravity to three decimals, or "-" when
// the value was never recorded.
func formatGravity(g float64) string {
	if g == 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", g)
}

// formatAmount renders an ingredient amount with its unit.
func formatAmount(amount float64, unit string) string {
	return fmt.Sprintf("%g %s", amount, unit)
}

// formatUse renders a hop line's use and schedule. Fermentable and yeast
// lines carry no use.
func formatUse(use string, t float64, timeUnit string) string {
	if use == "" {
		return "-"
	}
	return fmt.Sprintf("%s, %g %s", use, t, timeUnit)
}
