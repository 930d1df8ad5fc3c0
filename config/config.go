package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// External service configurations
	FMP     FMPConfig
	NewsAPI NewsAPIConfig
	Bedrock BedrockConfig

	// Screening policy configuration
	Screening ScreeningConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey string
}

// NewsAPIConfig holds NewsAPI configuration
type NewsAPIConfig struct {
	APIKey string
}

// BedrockConfig holds AWS Bedrock configuration for the classifier strategy
type BedrockConfig struct {
	Region  string
	ModelID string
}

// Textual evaluation strategies
const (
	TextStrategyKeyword    = "keyword"
	TextStrategyClassifier = "classifier"
)

// ScreeningConfig holds the screening policy: ratio thresholds, the excluded
// sector denylist, and the keyword severity tiers. All of it is data, not
// code, so policy can change without touching the pipeline.
type ScreeningConfig struct {
	DebtRatioMax        float64  // Debt / market cap ceiling (default: 0.30)
	InterestRatioMax    float64  // Interest income / revenue ceiling (default: 0.05)
	LiquidityRatioMax   float64  // (Cash + short-term investments) / market cap ceiling (default: 0.30)
	HaramSectors        []string // Excluded sector/industry terms, ordered
	ClearViolationTerms []string // Headline terms that immediately fail the textual check
	DoubtfulTerms       []string // Headline terms that flag a company for review
	TextStrategy        string   // keyword or classifier
	NewsArticleLimit    int      // Headlines fetched per company (default: 10)
	BatchConcurrency    int      // Max tickers screened concurrently (default: 5)
	TimeoutSeconds      int      // Per-ticker pipeline timeout (default: 30)
	Universe            []string // Default ticker list for the halal-stocks endpoint
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// defaultHaramSectors is the AAOIFI-style business activity denylist.
// Order matters: the first matching term names the exclusion reason.
var defaultHaramSectors = []string{
	"Gambling",
	"Alcohol",
	"Tobacco",
	"Adult Entertainment",
	"Conventional Banking",
	"Insurance",
	"Military Hardware",
	"Defense",
	"Weapons",
}

// defaultClearViolationTerms end the textual check with a non-compliant
// verdict on first match.
var defaultClearViolationTerms = []string{
	"war crime",
	"weapons",
	"arms sales",
	"surveillance",
	"occupation",
	"military contract",
	"genocide",
	"oppression",
}

// defaultDoubtfulTerms flag a company for human review.
var defaultDoubtfulTerms = []string{
	"accused of",
	"under investigation",
	"allegations",
	"boycott",
	"controversy",
	"lawsuit",
}

// defaultUniverse mirrors the original screening watch list.
var defaultUniverse = []string{"AAPL", "MSFT", "TSLA", "JPM", "KO", "NVDA", "META", "MKDW"}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		FMP: FMPConfig{
			APIKey: os.Getenv("FMP_API_KEY"),
		},
		NewsAPI: NewsAPIConfig{
			APIKey: os.Getenv("NEWS_API_KEY"),
		},
		Bedrock: BedrockConfig{
			Region:  os.Getenv("AWS_REGION"),
			ModelID: os.Getenv("BEDROCK_MODEL_ID"),
		},
		Screening: ScreeningConfig{
			DebtRatioMax:        getEnvFloat("SCREEN_DEBT_RATIO_MAX", 0.30),
			InterestRatioMax:    getEnvFloat("SCREEN_INTEREST_RATIO_MAX", 0.05),
			LiquidityRatioMax:   getEnvFloat("SCREEN_LIQUIDITY_RATIO_MAX", 0.30),
			HaramSectors:        getEnvStringSlice("SCREEN_HARAM_SECTORS", defaultHaramSectors),
			ClearViolationTerms: getEnvStringSlice("SCREEN_CLEAR_VIOLATION_TERMS", defaultClearViolationTerms),
			DoubtfulTerms:       getEnvStringSlice("SCREEN_DOUBTFUL_TERMS", defaultDoubtfulTerms),
			TextStrategy:        getEnvString("SCREEN_TEXT_STRATEGY", TextStrategyKeyword),
			NewsArticleLimit:    getEnvInt("SCREEN_NEWS_ARTICLE_LIMIT", 10),
			BatchConcurrency:    getEnvInt("SCREEN_BATCH_CONCURRENCY", 5),
			TimeoutSeconds:      getEnvInt("SCREEN_TIMEOUT_SECONDS", 30),
			Universe:            getEnvStringSlice("SCREEN_UNIVERSE", defaultUniverse),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("HTTP_PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Screening.DebtRatioMax <= 0 {
		return fmt.Errorf("SCREEN_DEBT_RATIO_MAX must be positive, got %.2f", c.Screening.DebtRatioMax)
	}
	if c.Screening.InterestRatioMax <= 0 {
		return fmt.Errorf("SCREEN_INTEREST_RATIO_MAX must be positive, got %.2f", c.Screening.InterestRatioMax)
	}
	if c.Screening.LiquidityRatioMax <= 0 {
		return fmt.Errorf("SCREEN_LIQUIDITY_RATIO_MAX must be positive, got %.2f", c.Screening.LiquidityRatioMax)
	}

	if c.Screening.TextStrategy != TextStrategyKeyword && c.Screening.TextStrategy != TextStrategyClassifier {
		return fmt.Errorf("SCREEN_TEXT_STRATEGY must be %q or %q, got %q",
			TextStrategyKeyword, TextStrategyClassifier, c.Screening.TextStrategy)
	}

	if len(c.Screening.HaramSectors) == 0 {
		return fmt.Errorf("SCREEN_HARAM_SECTORS must not be empty")
	}
	if c.Screening.TextStrategy == TextStrategyKeyword {
		if len(c.Screening.ClearViolationTerms) == 0 {
			return fmt.Errorf("SCREEN_CLEAR_VIOLATION_TERMS must not be empty for the keyword strategy")
		}
		if len(c.Screening.DoubtfulTerms) == 0 {
			return fmt.Errorf("SCREEN_DOUBTFUL_TERMS must not be empty for the keyword strategy")
		}
	}

	if c.Screening.NewsArticleLimit <= 0 {
		return fmt.Errorf("SCREEN_NEWS_ARTICLE_LIMIT must be positive, got %d", c.Screening.NewsArticleLimit)
	}
	if c.Screening.BatchConcurrency <= 0 {
		return fmt.Errorf("SCREEN_BATCH_CONCURRENCY must be positive, got %d", c.Screening.BatchConcurrency)
	}
	if c.Screening.TimeoutSeconds <= 0 {
		return fmt.Errorf("SCREEN_TIMEOUT_SECONDS must be positive, got %d", c.Screening.TimeoutSeconds)
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasFMP returns true if Financial Modeling Prep configuration is available
func (c *Config) HasFMP() bool {
	return c.FMP.APIKey != ""
}

// HasNewsAPI returns true if NewsAPI configuration is available
func (c *Config) HasNewsAPI() bool {
	return c.NewsAPI.APIKey != ""
}

// HasBedrock returns true if AWS Bedrock configuration is available
func (c *Config) HasBedrock() bool {
	return c.Bedrock.Region != "" && c.Bedrock.ModelID != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		FMP: FMPConfig{
			APIKey: "",
		},
		NewsAPI: NewsAPIConfig{
			APIKey: "",
		},
		Bedrock: BedrockConfig{
			Region:  "",
			ModelID: "",
		},
		Screening: ScreeningConfig{
			DebtRatioMax:        0.30,
			InterestRatioMax:    0.05,
			LiquidityRatioMax:   0.30,
			HaramSectors:        defaultHaramSectors,
			ClearViolationTerms: defaultClearViolationTerms,
			DoubtfulTerms:       defaultDoubtfulTerms,
			TextStrategy:        TextStrategyKeyword,
			NewsArticleLimit:    10,
			BatchConcurrency:    5,
			TimeoutSeconds:      30,
			Universe:            defaultUniverse,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
		},
	}
}
