package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"todoapi/internal/activity/repository"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultPort       = 1234
	MinPort           = 1024
	MaxPort           = 65535
	DefaultConfigFile = "todoapi.toml"
	DefaultLogLevel   = "info"
)

// ErrInvalidPort is returned when the configured port is outside MinPort..MaxPort.
var ErrInvalidPort = errors.New("invalid port")

type Config struct {
	Port        int    `toml:"port"`
	DataFile    string `toml:"data_file"`
	DatabaseURL string `toml:"database_url"`
	LogLevel    string `toml:"log_level"`

	// ConfigFile is the TOML file that was applied, if any.
	ConfigFile string `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.Port = DefaultPort
	cfg.DataFile = repository.DefaultDataFile
	cfg.LogLevel = DefaultLogLevel
}

// LoadDotEnv loads .env into the process environment. It reports whether a
// file was found; a missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load builds the configuration from, in increasing priority: defaults, the
// TOML file (--config, else todoapi.toml when present), environment
// variables, and flags set explicitly on the command line. It returns
// flag.ErrHelp when -h/--help was given.
func Load(fs *flag.FlagSet, args []string, usageOut io.Writer) (*Config, error) {
	if fs == nil {
		fs = flag.NewFlagSet("todoapi", flag.ContinueOnError)
	}
	fs.SetOutput(usageOut)

	var port int
	var configFile, dataFile string
	fs.IntVar(&port, "port", DefaultPort, "Port to listen on (1024-65535)")
	fs.IntVar(&port, "p", DefaultPort, "Port to listen on (shorthand)")
	fs.StringVar(&configFile, "config", "", "Path to a TOML config file")
	fs.StringVar(&dataFile, "data", "", "Path to the JSON file holding the activities")
	fs.Usage = func() { PrintUsage(usageOut, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{}
	setDefaults(cfg)

	if configFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configFile = DefaultConfigFile
		}
	}
	if configFile != "" {
		if _, err := toml.DecodeFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
		cfg.ConfigFile = configFile
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port", "p":
			cfg.Port = port
		case "data":
			cfg.DataFile = dataFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("TODOAPI_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TODOAPI_PORT=%q", ErrInvalidPort, v)
		}
		cfg.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("TODOAPI_DATA_FILE")); v != "" {
		cfg.DataFile = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Port < MinPort || c.Port > MaxPort {
		return fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidPort, c.Port, MinPort, MaxPort)
	}
	return nil
}

// Addr is the listen address for the configured port.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
