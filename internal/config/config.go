// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
)

const (
	defaultPriceChangeURLUK = "https://docs.google.com/spreadsheets/d/e/2PACX-1vRQdch8ifiMx_U_itOI8x2OOEUwc0gj_NGgGO6gDvbV88UoTOqqA_Lick99Ka8jYKwF18itR14stkFE/pub?gid=0&single=true&output=csv"
	defaultPriceChangeURLEU = "https://docs.google.com/spreadsheets/d/e/2PACX-1vRQdch8ifiMx_U_itOI8x2OOEUwc0gj_NGgGO6gDvbV88UoTOqqA_Lick99Ka8jYKwF18itR14stkFE/pub?gid=1300694374&single=true&output=csv"
	defaultStockReportURL   = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTMRiRm7_GGUY1gmeGXQc3q85qNUvry1OKXWWYkPVQIdTFQTXi7LUS1IgVjrDVnmsLDvL8M12aWYqQ4/pub?output=csv"
)

// Config holds configuration knobs for the HTTP server, fetcher and pipeline.
type Config struct {
	HTTPAddr           string        `validate:"required"`
	ShutdownTimeout    time.Duration `validate:"gt=0"`
	FetchTimeout       time.Duration `validate:"gt=0"`
	FetchRPS           float64       `validate:"gt=0"`
	FetchBurst         int           `validate:"gte=1"`
	ProcessRatePerMin  int           `validate:"gte=1"`
	ProcessBurst       int           `validate:"gte=1"`
	LogLevel           string        `validate:"oneof=debug info warn warning error"`
	LogFormat          string        `validate:"oneof=json text"`
	TrimIdentifiers    bool
	IncludeDescription bool
	OutputDir          string `validate:"required"`
	CORSAllowedOrigins []string
	Regions            map[string]model.Region `validate:"required,min=1,dive"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func atofenv(key string, def float64) float64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func listenv(key string, def []string) []string {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load collects configuration from an optional .env file and the environment,
// applying defaults and validating the result.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(getenv("ENV_FILE", ".env"))

	stockURL := getenv("STOCK_REPORT_URL", defaultStockReportURL)
	cfg := Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:    durenvs("SHUTDOWN_TIMEOUT", 15),
		FetchTimeout:       durenvs("FETCH_TIMEOUT", 60),
		FetchRPS:           atofenv("FETCH_RPS", 2),
		FetchBurst:         atoienv("FETCH_BURST", 4),
		ProcessRatePerMin:  atoienv("PROCESS_RATE_PER_MIN", 30),
		ProcessBurst:       atoienv("PROCESS_BURST", 10),
		LogLevel:           strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getenv("LOG_FORMAT", "json")),
		TrimIdentifiers:    boolenv("TRIM_IDENTIFIERS", true),
		IncludeDescription: boolenv("INCLUDE_DESCRIPTION", true),
		OutputDir:          getenv("OUTPUT_DIR", "."),
		CORSAllowedOrigins: listenv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Regions: map[string]model.Region{
			"UK": {
				Code:           "UK",
				PriceChangeURL: getenv("PRICE_CHANGE_URL_UK", defaultPriceChangeURLUK),
				StockReportURL: stockURL,
				OutputName:     "data_UK.csv",
			},
			"EU": {
				Code:           "EU",
				PriceChangeURL: getenv("PRICE_CHANGE_URL_EU", defaultPriceChangeURLEU),
				StockReportURL: stockURL,
				OutputName:     "data_EU.csv",
			},
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for key, r := range c.Regions {
		if key != r.Code {
			return fmt.Errorf("config validation failed: region key %q does not match code %q", key, r.Code)
		}
	}
	return nil
}

// Region looks up a region by its code, case-insensitively.
func (c Config) Region(code string) (model.Region, bool) {
	r, ok := c.Regions[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// RegionCodes returns the configured region codes in display order.
func (c Config) RegionCodes() []string {
	codes := make([]string, 0, len(c.Regions))
	for code := range c.Regions {
		codes = append(codes, code)
	}
	// UK first, then alphabetical.
	sort.Slice(codes, func(i, j int) bool {
		if codes[i] == "UK" || codes[j] == "UK" {
			return codes[i] == "UK"
		}
		return codes[i] < codes[j]
	})
	return codes
}
