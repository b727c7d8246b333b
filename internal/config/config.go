// Package config is the daemon and CLI settings, read by viper from
// fealden.yaml, FEALDEN_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfig is wrapped by every configuration failure.
var ErrConfig = errors.New("configuration error")

// EnvPrefix prefixes environment overrides, e.g. FEALDEN_SEARCH_MAX_TIME.
const EnvPrefix = "FEALDEN"

// Locations are the files and directories the daemon works in.
type Locations struct {
	// daemon log file, used when log.file is unset
	Log string `mapstructure:"log"`
	// one output directory per recognition site
	Solutions string `mapstructure:"solutions"`
	// request queue directory shared with submitters
	WorkQueue string `mapstructure:"workqueue"`
	// scratch space for the structure predictor
	WorkingDirectory string `mapstructure:"working_directory"`
	PID              string `mapstructure:"pid"`
}

// Predictor configures hybrid-ss-min.
type Predictor struct {
	Command     string        `mapstructure:"command"`
	Temperature float64       `mapstructure:"temperature"`
	Sodium      float64       `mapstructure:"sodium"`
	Magnesium   float64       `mapstructure:"magnesium"`
	Mfold       int           `mapstructure:"mfold"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"` // 0 disables the prediction cache
}

// Search holds the default acceptance criteria; requests may override them.
type Search struct {
	MaxTime      time.Duration `mapstructure:"max_time"`
	RatioLo      float64       `mapstructure:"ratio_lo"`
	RatioHi      float64       `mapstructure:"ratio_hi"`
	MaxUnknown   float64       `mapstructure:"max_unknown"`
	MaxSolutions int           `mapstructure:"max_solutions"`
	// FoldLo and FoldHi bound the fold count when both are positive.
	FoldLo    int      `mapstructure:"fold_lo"`
	FoldHi    int      `mapstructure:"fold_hi"`
	MaxEnergy *float64 `mapstructure:"max_energy"`
}

// Server configures `fealden serve`.
type Server struct {
	Workers      int           `mapstructure:"workers"`
	Listen       string        `mapstructure:"listen"` // empty disables the HTTP front end
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Log configures the process logger.
type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Mail configures completion notices. An empty Host disables them.
type Mail struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// BaseURL is where the HTTP front end is reachable from outside; the
	// notice links to the solution under it when set.
	BaseURL string `mapstructure:"base_url"`
}

// Config is the root-level settings struct.
type Config struct {
	Locations Locations `mapstructure:"locations"`
	Predictor Predictor `mapstructure:"predictor"`
	Search    Search    `mapstructure:"search"`
	Server    Server    `mapstructure:"server"`
	Log       Log       `mapstructure:"log"`
	Mail      Mail      `mapstructure:"mail"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// SetDefaults registers every default. Keys without a default are not
// picked up from the environment by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("locations.log", "/var/log/fealden.log")
	v.SetDefault("locations.solutions", "/var/fealden/solutions")
	v.SetDefault("locations.workqueue", "/var/fealden/workqueue")
	v.SetDefault("locations.working_directory", "/var/fealden/work")
	v.SetDefault("locations.pid", "/var/run/fealden.pid")

	v.SetDefault("predictor.command", "hybrid-ss-min")
	v.SetDefault("predictor.temperature", 25.0)
	v.SetDefault("predictor.sodium", 0.15)
	v.SetDefault("predictor.magnesium", 0.005)
	v.SetDefault("predictor.mfold", 50)
	v.SetDefault("predictor.cache_ttl", 10*time.Minute)

	v.SetDefault("search.max_time", 60*time.Second)
	v.SetDefault("search.ratio_lo", 0.9)
	v.SetDefault("search.ratio_hi", 1.1)
	v.SetDefault("search.max_unknown", 0.2)
	v.SetDefault("search.max_solutions", 1)
	v.SetDefault("search.fold_lo", 0)
	v.SetDefault("search.fold_hi", 0)

	v.SetDefault("server.workers", 2)
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.poll_interval", 100*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "fealden@localhost")
	v.SetDefault("mail.base_url", "")
}

// NewViper returns a viper instance with defaults and environment
// overrides registered. Flags may be bound to it before Read.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads file, or fealden.yaml from /etc/fealden, ./etc or the working
// directory when file is empty. Only an explicitly named file must exist.
func Read(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fealden")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/fealden")
		v.AddConfigPath("./etc")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: unable to decode into struct: %v", ErrConfig, err)
	}
	c.File = v.ConfigFileUsed()
	if c.Search.RatioLo >= c.Search.RatioHi {
		return Config{}, fmt.Errorf("%w: search.ratio_lo %g must be below search.ratio_hi %g", ErrConfig, c.Search.RatioLo, c.Search.RatioHi)
	}
	if c.Search.MaxUnknown < 0 || c.Search.MaxUnknown > 1 {
		return Config{}, fmt.Errorf("%w: search.max_unknown %g outside [0, 1]", ErrConfig, c.Search.MaxUnknown)
	}
	return c, nil
}

// Load is NewViper, Read and Decode in one step.
func Load(file string) (Config, error) {
	v := NewViper()
	if err := Read(v, file); err != nil {
		return Config{}, err
	}
	return Decode(v)
}
