package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "MORNING_DIGEST_CONFIG"
	outputPathEnv   = "MORNING_DIGEST_OUTPUT"
	logLevelEnv     = "MORNING_DIGEST_LOG_LEVEL"
	modelNameEnv    = "MORNING_DIGEST_MODEL"
	geminiAPIKeyEnv = "GEMINI_API_KEY"
	openAIAPIKeyEnv = "OPENAI_API_KEY"
)

//go:embed persona.txt
var defaultPersona string

// CategoryMode selects how a category is treated downstream.
type CategoryMode string

const (
	// ModeAnalyze sends the category's papers to the model for scoring.
	ModeAnalyze CategoryMode = "analyze"
	// ModeLinks renders the category as plain reference links.
	ModeLinks CategoryMode = "links"
)

// Provider names a text-generation backend.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds every setting of a digest run. It is built once at start-up and
// passed by value afterwards.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Run        RunConfig        `yaml:"run"`
	Providers  ProviderConfig   `yaml:"providers"`
	Model      ModelConfig      `yaml:"model"`
	FullText   FullTextConfig   `yaml:"fullText"`
	Render     RenderConfig     `yaml:"render"`
	Persona    string           `yaml:"persona"`
	Categories []CategoryConfig `yaml:"categories" validate:"min=1,dive"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// RunConfig defines the batch window and the output artifact.
type RunConfig struct {
	HoursBack  int    `yaml:"hoursBack" validate:"min=1"`
	OutputPath string `yaml:"outputPath" validate:"required"`
}

// Window returns the recency lookback as a duration.
func (r RunConfig) Window() time.Duration {
	return time.Duration(r.HoursBack) * time.Hour
}

// ProviderConfig groups settings for the metadata APIs.
type ProviderConfig struct {
	ArxivAPIURL    string        `yaml:"arxivApiUrl" validate:"required,url"`
	RxivAPIURL     string        `yaml:"rxivApiUrl" validate:"required,url"`
	UserAgent      string        `yaml:"userAgent"`
	RequestTimeout time.Duration `yaml:"requestTimeout" validate:"min=0"`
	// Pause is the fixed gap between consecutive calls to a metadata API.
	Pause       time.Duration `yaml:"pause" validate:"min=0"`
	RxivPageCap int           `yaml:"rxivPageCap" validate:"min=1"`
}

// ModelConfig defines how to contact the generation service.
type ModelConfig struct {
	Provider        string        `yaml:"provider" validate:"oneof=gemini openai"`
	Name            string        `yaml:"name" validate:"required"`
	Endpoint        string        `yaml:"endpoint" validate:"omitempty,url"`
	APIKey          string        `yaml:"-"`
	Temperature     float32       `yaml:"temperature" validate:"min=0,max=2"`
	MaxOutputTokens int32         `yaml:"maxOutputTokens" validate:"min=1"`
	Timeout         time.Duration `yaml:"timeout" validate:"min=0"`
}

// FullTextConfig bounds the full-text enrichment stage.
type FullTextConfig struct {
	Timeout         time.Duration `yaml:"timeout" validate:"min=0"`
	Pause           time.Duration `yaml:"pause" validate:"min=0"`
	MinBytes        int           `yaml:"minBytes" validate:"min=0"`
	MinTextChars    int           `yaml:"minTextChars" validate:"min=0"`
	IntroChars      int           `yaml:"introChars" validate:"min=1"`
	ConclusionChars int           `yaml:"conclusionChars" validate:"min=1"`
	TotalChars      int           `yaml:"totalChars" validate:"min=1"`
	AbstractChars   int           `yaml:"abstractChars" validate:"min=1"`
	Markers         []string      `yaml:"markers" validate:"min=1"`
	Readability     bool          `yaml:"readability"`
}

// RenderConfig holds score thresholds and locale strings.
type RenderConfig struct {
	TopPickScore int          `yaml:"topPickScore" validate:"min=0"`
	CardScore    int          `yaml:"cardScore" validate:"min=0"`
	MaxScore     int          `yaml:"maxScore" validate:"min=1,max=10"`
	Locale       LocaleConfig `yaml:"locale"`
}

// LocaleConfig externalizes every visible string of the rendered page.
type LocaleConfig struct {
	Lang             string `yaml:"lang"`
	Title            string `yaml:"title"`
	TopPicks         string `yaml:"topPicks"`
	TopPicksCounter  string `yaml:"topPicksCounter"`
	NoTopPicks       string `yaml:"noTopPicks"`
	NoPapers         string `yaml:"noPapers"`
	AllPapers        string `yaml:"allPapers"`
	Discovery        string `yaml:"discovery"`
	Insight          string `yaml:"insight"`
	Action           string `yaml:"action"`
	Implementable    string `yaml:"implementable"`
	NotImplementable string `yaml:"notImplementable"`
	Generated        string `yaml:"generated"`
	Footer           string `yaml:"footer"`
}

// CategoryConfig describes one section of the digest and the sources feeding it.
type CategoryConfig struct {
	Name          string           `yaml:"name" validate:"required"`
	Label         string           `yaml:"label" validate:"required"`
	Badge         string           `yaml:"badge"`
	Color         string           `yaml:"color"`
	Icon          string           `yaml:"icon"`
	Mode          CategoryMode     `yaml:"mode" validate:"oneof=analyze links"`
	MaxPapers     int              `yaml:"maxPapers" validate:"min=1"`
	ContentBudget int              `yaml:"contentBudget" validate:"min=1"`
	FullText      bool             `yaml:"fullText"`
	FullTextURL   string           `yaml:"fullTextUrl" validate:"required_if=FullText true"`
	Relevance     *RelevanceConfig `yaml:"relevance"`
	Sources       []SourceConfig   `yaml:"sources" validate:"min=1,dive"`
}

// Analyzed reports whether the category goes through the model stage.
func (c CategoryConfig) Analyzed() bool {
	return c.Mode == ModeAnalyze
}

// SourceConfig binds a scanner strategy to its topics.
type SourceConfig struct {
	Name       string            `yaml:"name" validate:"required"`
	Scanner    string            `yaml:"scanner" validate:"required"`
	Topics     []string          `yaml:"topics"`
	MaxResults int               `yaml:"maxResults" validate:"min=1"`
	ScoreBonus int               `yaml:"scoreBonus"`
	Options    map[string]string `yaml:"options"`
}

// RelevanceConfig lists the keyword tiers used to pre-rank secondary sources.
type RelevanceConfig struct {
	Strong   []string `yaml:"strong" validate:"min=1"`
	Weak     []string `yaml:"weak"`
	MinScore int      `yaml:"minScore" validate:"min=0"`
}

// Load reads YAML configuration (if a path is given or set in the
// environment), applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		// Decoding onto the defaults keeps every field the file omits;
		// lists present in the file replace the default lists.
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if strings.TrimSpace(cfg.Persona) == "" {
		cfg.Persona = defaultPersona
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := map[string]struct{}{}
	for _, cat := range c.Categories {
		if _, ok := seen[cat.Name]; ok {
			return fmt.Errorf("invalid config: duplicate category %q", cat.Name)
		}
		seen[cat.Name] = struct{}{}
	}
	if c.Render.CardScore > c.Render.TopPickScore {
		return errors.New("invalid config: render.cardScore must not exceed render.topPickScore")
	}
	return nil
}

// AnalyzedCategories returns categories in analyze mode, in configured order.
func (c Config) AnalyzedCategories() []CategoryConfig {
	var out []CategoryConfig
	for _, cat := range c.Categories {
		if cat.Analyzed() {
			out = append(out, cat)
		}
	}
	return out
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(outputPathEnv); v != "" {
		c.Run.OutputPath = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(modelNameEnv); v != "" {
		c.Model.Name = v
	}

	switch c.Model.Provider {
	case ProviderOpenAI:
		c.Model.APIKey = os.Getenv(openAIAPIKeyEnv)
	default:
		c.Model.APIKey = os.Getenv(geminiAPIKeyEnv)
	}
}

// APIKeyEnv names the environment variable holding the model credential.
func (m ModelConfig) APIKeyEnv() string {
	if m.Provider == ProviderOpenAI {
		return openAIAPIKeyEnv
	}
	return geminiAPIKeyEnv
}
