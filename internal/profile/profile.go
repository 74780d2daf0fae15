package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory
	Data string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// DSN points to where the server stores its own data
	DSN string
	// Version is the current version of the server
	Version string

	// LLM configuration
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float32
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	// HistoryContextLimit is the number of recent turns sent to the LLM as context.
	HistoryContextLimit int

	// MockStats serves fixed dashboard numbers instead of querying the database.
	MockStats bool
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate checks the profile and fills derived defaults.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			p.Data = "/var/opt/adminparrot"
		} else {
			p.Data = "."
		}
	}
	absData, err := filepath.Abs(p.Data)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve data directory %q", p.Data)
	}
	if _, err := os.Stat(absData); err != nil {
		return errors.Wrapf(err, "unable to access data directory %q", absData)
	}
	p.Data = absData

	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			p.DSN = filepath.Join(p.Data, fmt.Sprintf("adminparrot_%s.db", p.Mode))
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for postgres driver")
		}
	default:
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.LLMTemperature == 0 {
		p.LLMTemperature = 0.7
	}
	if p.LLMMaxTokens == 0 {
		p.LLMMaxTokens = 1000
	}
	if p.LLMTimeout == 0 {
		p.LLMTimeout = 60 * time.Second
	}
	if p.HistoryContextLimit <= 0 {
		p.HistoryContextLimit = 10
	}
	return nil
}

// FromViper builds a profile from the given viper instance.
// All keys are also bound to ADMINPARROT_* environment variables.
func FromViper(v *viper.Viper, version string) (*Profile, error) {
	v.SetEnvPrefix("adminparrot")
	v.AutomaticEnv()

	v.SetDefault("mode", "dev")
	v.SetDefault("addr", "")
	v.SetDefault("port", 8081)
	v.SetDefault("driver", "sqlite")
	v.SetDefault("llm-base-url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm-model", "openai/gpt-4o-mini")
	v.SetDefault("llm-temperature", 0.7)
	v.SetDefault("llm-max-tokens", 1000)
	v.SetDefault("llm-timeout", "60s")
	v.SetDefault("history-context-limit", 10)
	v.SetDefault("mock-stats", false)

	profile := &Profile{
		Mode:                v.GetString("mode"),
		Addr:                v.GetString("addr"),
		Port:                v.GetInt("port"),
		Data:                v.GetString("data"),
		Driver:              v.GetString("driver"),
		DSN:                 v.GetString("dsn"),
		Version:             version,
		LLMBaseURL:          v.GetString("llm-base-url"),
		LLMAPIKey:           v.GetString("llm-api-key"),
		LLMModel:            v.GetString("llm-model"),
		LLMTemperature:      float32(v.GetFloat64("llm-temperature")),
		LLMMaxTokens:        v.GetInt("llm-max-tokens"),
		LLMTimeout:          v.GetDuration("llm-timeout"),
		HistoryContextLimit: v.GetInt("history-context-limit"),
		MockStats:           v.GetBool("mock-stats"),
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}
