// Package config loads kitchencheck settings from defaults, an optional YAML
// file and KITCHENCHECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the typed configuration tree.
type Settings struct {
	Company  CompanySettings  `mapstructure:"company"`
	Database DatabaseSettings `mapstructure:"database"`
	AI       AISettings       `mapstructure:"ai"`
	Report   ReportSettings   `mapstructure:"report"`
	Server   ServerSettings   `mapstructure:"server"`
	Log      LogSettings      `mapstructure:"log"`
}

// CompanySettings identifies the tenant a CLI invocation acts for. The HTTP
// surface takes the tenant from the request instead.
type CompanySettings struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// DatabaseSettings selects and configures the backend store.
type DatabaseSettings struct {
	Driver string         `mapstructure:"driver"` // sqlite, mysql or memory
	SQLite SQLiteSettings `mapstructure:"sqlite"`
	MySQL  MySQLSettings  `mapstructure:"mysql"`
	// SlowQuery is the threshold above which queries are logged at warn.
	SlowQuery time.Duration `mapstructure:"slowquery"`
}

type SQLiteSettings struct {
	Path string `mapstructure:"path"`
}

type MySQLSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// DSN returns the go-sql-driver DSN for the configured server.
func (m MySQLSettings) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		m.Username, m.Password, m.Host, m.Port, m.Database)
}

// AISettings configures the optional completion provider. API keys are read
// from the provider's standard environment variable, never from this file.
type AISettings struct {
	Enabled     bool          `mapstructure:"enabled"`
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"maxtokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ReportSettings holds scoring and layout knobs.
type ReportSettings struct {
	CriticalPenalty int     `mapstructure:"criticalpenalty"`
	WarningPenalty  int     `mapstructure:"warningpenalty"`
	Tolerance       float64 `mapstructure:"tolerance"`
	CompanyName     string  `mapstructure:"companyname"`
	LogoPath        string  `mapstructure:"logopath"`
	OutputDir       string  `mapstructure:"outputdir"`
}

type ServerSettings struct {
	Listen string `mapstructure:"listen"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("company.id", "default")
	v.SetDefault("company.name", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite.path", "kitchencheck.db")
	v.SetDefault("database.mysql.host", "localhost")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "kitchencheck")
	v.SetDefault("database.slowquery", 200*time.Millisecond)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.maxtokens", 2048)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", 60*time.Second)

	v.SetDefault("report.criticalpenalty", 15)
	v.SetDefault("report.warningpenalty", 5)
	v.SetDefault("report.tolerance", 0.5)
	v.SetDefault("report.outputdir", ".")

	v.SetDefault("server.listen", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads settings. An empty path searches ./kitchencheck.yaml and
// $HOME/.config/kitchencheck; a missing file is not an error, defaults and
// environment still apply.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KITCHENCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kitchencheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kitchencheck")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings the rest of the program cannot act on.
func (s *Settings) Validate() error {
	switch s.Database.Driver {
	case "sqlite", "mysql", "memory":
	default:
		return fmt.Errorf("config: unknown database driver %q", s.Database.Driver)
	}
	if s.Report.CriticalPenalty < 0 || s.Report.WarningPenalty < 0 {
		return fmt.Errorf("config: penalties must be non-negative")
	}
	if s.Report.Tolerance < 0 {
		return fmt.Errorf("config: tolerance must be non-negative")
	}
	return nil
}
