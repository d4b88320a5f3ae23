package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by Validate for any configuration that fails its constraints.
var ErrInvalid = errors.New("invalid configuration")

// Global configuration structure.
type Global struct {
	// Store connection
	Host              string `mapstructure:"host" yaml:"host" validate:"required"`
	Port              int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	Keyspace          string `mapstructure:"keyspace" yaml:"keyspace" validate:"required,keyspace"`
	ReplicationClass  string `mapstructure:"replication_class" yaml:"replication_class" validate:"oneof=SimpleStrategy NetworkTopologyStrategy"`
	ReplicationFactor int    `mapstructure:"replication_factor" yaml:"replication_factor" validate:"min=1"`
	// Datacenter is only used with NetworkTopologyStrategy.
	Datacenter        string `mapstructure:"datacenter" yaml:"datacenter" validate:"required_if=ReplicationClass NetworkTopologyStrategy"`
	Consistency       string `mapstructure:"consistency" yaml:"consistency" validate:"oneof=ANY ONE TWO THREE QUORUM ALL LOCAL_QUORUM EACH_QUORUM LOCAL_ONE"`
	TimeoutSec        int    `mapstructure:"timeout_sec" yaml:"timeout_sec" validate:"min=1"`
	ConnectTimeoutSec int    `mapstructure:"connect_timeout_sec" yaml:"connect_timeout_sec" validate:"min=1"`

	// Schema script; empty means the embedded default.
	SchemaPath string `mapstructure:"schema_path" yaml:"schema_path"`

	// Input files
	GamesPath       string `mapstructure:"games_path" yaml:"games_path" validate:"required"`
	GameDetailsPath string `mapstructure:"game_details_path" yaml:"game_details_path" validate:"required"`
	TeamsPath       string `mapstructure:"teams_path" yaml:"teams_path" validate:"required"`

	// Ingest behavior
	SeasonalWeighting string `mapstructure:"seasonal_weighting" yaml:"seasonal_weighting" validate:"oneof=game side"`
	TruncateOnIngest  bool   `mapstructure:"truncate_on_ingest" yaml:"truncate_on_ingest"`
}

// Dir returns the default configuration directory (~/.nbastat).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".nbastat"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.nbastat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flag overrides are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("NBASTAT")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 9042)
	v.SetDefault("keyspace", "nba_data")
	v.SetDefault("replication_class", "SimpleStrategy")
	v.SetDefault("replication_factor", 1)
	v.SetDefault("datacenter", "")
	v.SetDefault("consistency", "QUORUM")
	v.SetDefault("timeout_sec", 10)
	v.SetDefault("connect_timeout_sec", 5)
	v.SetDefault("schema_path", "")
	v.SetDefault("games_path", filepath.Join("raw", "games.csv"))
	v.SetDefault("game_details_path", filepath.Join("raw", "games_details.csv"))
	v.SetDefault("teams_path", filepath.Join("raw", "teams.csv"))
	v.SetDefault("seasonal_weighting", "game")
	v.SetDefault("truncate_on_ingest", true)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit --config that cannot be read is an error; a missing default file is not
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	// CQL unquoted identifiers: letter first, then letters, digits, underscores; max 48 chars
	_ = vd.RegisterValidation("keyspace", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" || len(s) > 48 {
			return false
		}
		for i, r := range s {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case i > 0 && (r == '_' || (r >= '0' && r <= '9')):
			default:
				return false
			}
		}
		return true
	})
	return vd
}

// Validate checks the configuration constraints and reports the first failing fields.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalid, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
