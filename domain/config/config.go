package config

import (
	"fmt"
	"time"

	lo "github.com/samber/lo"
)

// DefaultSheetURL is the published CSV export of the collection sheet.
const DefaultSheetURL = "https://docs.google.com/spreadsheets/d/134CwkH3U0MwytTpSbMdqevAC4h5GDnhc8WHEPqL5A8A/gviz/tq?tqx=out:csv"

// Config represents the structure of config.yml used by the tool.
// Every field is optional; Defaults fills the gaps. Numeric settings
// whose zero is meaningful (sheet.retries, report.gap, report.padding)
// are pointers so an explicit 0 is kept.
type Config struct {
	Sheet struct {
		URL     string   `yaml:"url"`
		Token   string   `yaml:"token"`
		Timeout Duration `yaml:"timeout"`
		Retries *int     `yaml:"retries"`
	} `yaml:"sheet"`
	Data struct {
		Dir      string `yaml:"dir"`
		Snapshot string `yaml:"snapshot"`
	} `yaml:"data"`
	Refresh struct {
		Schedule string `yaml:"schedule"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"refresh"`
	Report Report `yaml:"report"`
	Web    struct {
		Addr string `yaml:"addr"`
		UI   string `yaml:"ui"`
	} `yaml:"web"`
	Import struct {
		// Aliases replaces the built-in header aliases of a workbook field,
		// keyed by field name (date, totalWaste, plastic.bags, ...).
		Aliases map[string][]string `yaml:"aliases"`
	} `yaml:"import"`
}

type Report struct {
	Dir         string   `yaml:"dir"`
	Sections    []string `yaml:"sections"`
	Gap         *float64 `yaml:"gap"`
	Padding     *float64 `yaml:"padding"`
	SettleDelay Duration `yaml:"settle_delay"`
}

// Duration is a time.Duration written as a Go duration string ("24h", "1m30s").
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Sheet.URL == "" {
		c.Sheet.URL = DefaultSheetURL
	}
	if c.Sheet.Timeout == 0 {
		c.Sheet.Timeout = Duration(30 * time.Second)
	}
	if c.Sheet.Retries == nil {
		c.Sheet.Retries = lo.ToPtr(3)
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.Snapshot == "" {
		c.Data.Snapshot = "waste.csv"
	}
	if c.Refresh.Schedule == "" {
		c.Refresh.Schedule = "@every 24h"
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	if len(c.Report.Sections) == 0 {
		c.Report.Sections = []string{"header", "summary-stats", "dry-waste-methane", "overview", "breakdown", "landfill", "collection", "table"}
	}
	if c.Report.Gap == nil {
		c.Report.Gap = lo.ToPtr(40.0)
	}
	if c.Report.Padding == nil {
		c.Report.Padding = lo.ToPtr(60.0)
	}
	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
}
