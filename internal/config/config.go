package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// DefaultStrategyTemplate renders the creative strategy when no template file is configured.
const DefaultStrategyTemplate = `
# Creative Strategy Recommendations

## Executive Summary
Based on analysis of {{.InsightCount}} validated insights and {{.HypothesisCount}} validated hypotheses for {{.Brand}} ({{.ProductCategory}}), we recommend a three-pronged creative strategy:

1. **Creative Refresh**: Combat engagement fatigue with new visual styles and messaging angles
2. **Audience Expansion**: Scale to broader audiences with social proof-driven creatives
3. **Conversion Optimization**: Improve post-click experience with clearer value propositions
{{if .Findings}}
## Findings Driving This Strategy
{{range .Findings}}- {{.}}
{{end}}{{end}}
## Key Strategic Pillars

### 1. Address Creative Fatigue
- Rotate in 3-5 new creative variants immediately
- Test video formats to drive re-engagement
- Introduce new visual styles (lifestyle vs. product-focused)

### 2. Optimize for Efficiency
- Bundle offers to increase AOV and improve ROAS
- Value-focused messaging for price-conscious segments
- Social proof to reduce friction for new audiences

### 3. Scale What Works
- Identify top-performing creative/audience combinations
- Systematically test into new audience segments
- Monitor for saturation signals (rising CPM, declining CTR)

## Testing Roadmap
- Week 1-2: Creative refresh + format tests
- Week 3-4: Audience expansion tests
- Week 5-6: Messaging angle tests
`

type CreativeConfig struct {
	StrategyTemplatePath string `yaml:"strategy_template_path"`
	StrategyTemplate     string `yaml:"strategy_template"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type Config struct {
	DataPath          string         `yaml:"data_path"`
	MinConfidence     float64        `yaml:"min_confidence"`
	BrandName         string         `yaml:"brand_name"`
	ProductCategory   string         `yaml:"product_category"`
	OutputDir         string         `yaml:"output_dir"`
	LogDir            string         `yaml:"log_dir"`
	DefaultSegments   []string       `yaml:"default_segments"`
	DefaultWindowDays int            `yaml:"default_window_days"`
	Creative          CreativeConfig `yaml:"creative"`
	Server            ServerConfig   `yaml:"server"`
}

func Default() Config {
	return Config{
		DataPath:          "data/synthetic_fb_ads_undergarments.csv",
		MinConfidence:     0.6,
		BrandName:         "ComfortPlus",
		ProductCategory:   "undergarments",
		OutputDir:         "reports",
		LogDir:            "logs",
		DefaultSegments:   []string{"campaign_name", "creative_type"},
		DefaultWindowDays: 30,
		Creative: CreativeConfig{
			StrategyTemplate: DefaultStrategyTemplate,
		},
		Server: ServerConfig{Port: "8080"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error; found reports whether it was read.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	if path != "" {
		data, rerr := os.ReadFile(path)
		switch {
		case rerr == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, false, fmt.Errorf("parse config %s: %w", path, err)
			}
			found = true
		case errors.Is(rerr, fs.ErrNotExist):
		default:
			return Config{}, false, fmt.Errorf("read config %s: %w", path, rerr)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, found, err
	}
	if cfg.Creative.StrategyTemplate == "" {
		cfg.Creative.StrategyTemplate = DefaultStrategyTemplate
	}
	return cfg, found, cfg.Validate()
}

func (c *Config) applyEnv() error {
	c.DataPath = envOr("DATA_PATH", c.DataPath)
	c.OutputDir = envOr("OUTPUT_DIR", c.OutputDir)
	c.LogDir = envOr("LOG_DIR", c.LogDir)
	c.Server.Port = envOr("PORT", c.Server.Port)
	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: MIN_CONFIDENCE=%q", ErrInvalidConfig, v)
		}
		c.MinConfidence = f
	}
	return nil
}

func (c Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence %.2f outside [0,1]", ErrInvalidConfig, c.MinConfidence)
	}
	if c.DefaultWindowDays <= 0 {
		return fmt.Errorf("%w: default_window_days must be positive", ErrInvalidConfig)
	}
	if c.DataPath == "" {
		return fmt.Errorf("%w: data_path is empty", ErrInvalidConfig)
	}
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
