package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"

	"github.com/bobmcallan/stock-radar/internal/common"
)

// PrintBanner writes the startup banner to w and logs the same facts.
func PrintBanner(w io.Writer, cfg *Config, logger *common.Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 64) + banner.ColorReset

	art := []string{
		`  ___ _____ ___   ___ _  __  ___    _   ___   _   ___ `,
		` / __|_   _/ _ \ / __| |/ / | _ \  /_\ |   \ /_\ | _ \`,
		` \__ \ | || (_) | (__| ' <  |   / / _ \| |) / _ \|   /`,
		` |___/ |_| \___/ \___|_|\_\ |_|_\/_/ \_\___/_/ \_\_|_\`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Analisis Inteligente de Inversiones%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", cfg.Environment},
		{"Dashboard", cfg.BaseURL()},
		{"Provider", cfg.Analysis.Provider},
		{"Model", cfg.Analysis.Model},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", cfg.Environment).
		Str("url", cfg.BaseURL()).
		Str("provider", cfg.Analysis.Provider).
		Str("model", cfg.Analysis.Model).
		Msg("application started")
}

// PrintShutdownBanner writes the shutdown banner to w.
func PrintShutdownBanner(w io.Writer, logger *common.Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 40) + banner.ColorReset
	fmt.Fprintf(w, "\n%s\n%s  STOCK RADAR - SHUTTING DOWN%s\n%s\n\n", hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)
	logger.Info().Msg("application shutting down")
}
