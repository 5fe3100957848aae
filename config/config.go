package config

import (
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/TaihuLight/partecl-codegen/logger"
	"github.com/TaihuLight/partecl-codegen/naming"
)

// ErrConfig wraps errors of loading and validating the configuration
var ErrConfig = fmt.Errorf("config error")

// LogLevel defines levels in logrus-style
type LogLevel int

// Enum levels
const (
	Error LogLevel = iota
	Warn
	Info
	Debug
	Trace
)

var logLevelNames = [...]string{"Error", "Warn", "Info", "Debug", "Trace"}

func (l LogLevel) String() string {
	if l < Error || l > Trace {
		return strconv.Itoa(int(l))
	}
	return logLevelNames[l]
}

// UnmarshalText implements encoding.TextUnmarshaler interface,
// accepts a level name or its number
func (l *LogLevel) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	for i, name := range logLevelNames {
		if strings.EqualFold(s, name) {
			*l = LogLevel(i)
			return nil
		}
	}
	if i, err := strconv.Atoi(s); err == nil && i >= int(Error) && i <= int(Trace) {
		*l = LogLevel(i)
		return nil
	}
	return fmt.Errorf("unknown log level %q", s)
}

// Set implements pflag.Value interface
func (l *LogLevel) Set(s string) error { return l.UnmarshalText([]byte(s)) }

// Type implements pflag.Value interface
func (l *LogLevel) Type() string { return "level" }

// Generator defines the generation run
type Generator struct {
	// ManifestPath accepts the YAML file with field declarations
	ManifestPath string `env:"MANIFEST" yaml:"manifest"`
	// OutputPath accepts the file for generated code, stdout if empty
	OutputPath string `env:"OUTPUT" yaml:"output"`
	// Diagnostics enables advisories on unrecognized field types
	Diagnostics bool `env:"DIAGNOSTICS" yaml:"diagnostics"`
	// EmitStructs adds the input and result struct definitions
	EmitStructs bool `env:"EMITSTRUCTS" yaml:"emitStructs"`
	// MetricsTextfile accepts the file for generation stats
	// in node-exporter textfile format, skipped if empty
	MetricsTextfile string `env:"METRICSTEXTFILE" yaml:"metricsTextfile"`
}

// Logging defines logger configuration
type Logging struct {
	// LogCondense accepts time duration for condensing similar records
	// if 0 turn off condensing
	LogCondense time.Duration `env:"LOGCONDENSE" yaml:"logCondense"`
	// LogFile accepts file path to log in addition to stderr
	LogFile        string `env:"LOGFILE" yaml:"logFile"`
	LogFileMaxSize int64  `env:"LOGFILEMAXSIZE" yaml:"logFileMaxSize"`
	// Log files are rotated count times before being removed.
	// If count is 0, old versions are removed rather than rotated.
	LogFileRotate int      `env:"LOGFILEROTATE" yaml:"logFileRotate"`
	LogLevel      LogLevel `env:"LOGLEVEL" yaml:"logLevel"`
	LogColors     bool     `env:"LOGCOLORS" yaml:"logColors"`
	LogTimeFormat string   `env:"LOGTIMEFORMAT" yaml:"logTimeFormat"`
}

// Config defines the generator configuration
type Config struct {
	Generator Generator    `envPrefix:"GENERATOR_" yaml:"generator"`
	Names     naming.Names `envPrefix:"NAMES_" yaml:"names"`
	Logging   Logging      `envPrefix:"LOGGING_" yaml:"logging"`

	// ShowVersion is set by the command line only
	ShowVersion bool `yaml:"-"`
}

func defaults() Config {
	return Config{
		Names: naming.Defaults(),
		Logging: Logging{
			LogCondense:    0,
			LogFileMaxSize: 1024 * 1024 * 10, // 10MB
			LogFileRotate:  5,
			LogLevel:       Warn,
			LogColors:      false,
			LogTimeFormat:  time.RFC3339,
		},
	}
}

// Load merges defaults, config file, environment, and command line
// arguments, in that order of precedence, and inits the logger.
// Records logged while loading are buffered and written to the new logger.
func Load(args []string) (*Config, error) {
	/* buffer the logging while configuring */
	logBuf := &logger.LogBuffer{
		Level: zerolog.TraceLevel,
		Size:  16,
	}
	log.Logger = zerolog.New(logBuf).
		With().Timestamp().Caller().Logger()
	log.Debug().Msgf("Build info: %s / %s", buildTag, buildTime)

	cfg, err := load(args)
	cfg.InitLogger()
	logger.WriteLogBuffer(logBuf)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(args []string) (*Config, error) {
	cfg := new(Config)
	*cfg = defaults()

	/* the first pass only looks for the config path and reports bad flags */
	probe := defaults()
	configPath := ""
	flags := newFlagSet(&probe, &configPath)
	if err := flags.Parse(args); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if err := cfg.loadFile(configPath); err != nil {
		return cfg, err
	}
	if err := applyEnv(cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	/* flags bound to the merged config override only what is passed */
	flags = newFlagSet(cfg, &configPath)
	if err := flags.Parse(args); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if flags.NArg() > 0 && cfg.Generator.ManifestPath == "" {
		cfg.Generator.ManifestPath = flags.Arg(0)
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	return cfg, cfg.Validate()
}

func (cfg *Config) loadFile(configPath string) error {
	required := configPath != ""
	if !required {
		configPath = ConfigPath()
		required = os.Getenv(ConfigEnv) != ""
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("configPath", configPath).Msg("no config file")
			return nil
		}
		return fmt.Errorf("%w: could not read config: %w", ErrConfig, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Debug().
			Str("configData", string(data)).
			Str("configPath", configPath).
			Msg("could not parse config")
		return fmt.Errorf("%w: could not parse config %s: %w", ErrConfig, configPath, err)
	}
	log.Info().Str("configPath", configPath).Msg("config loaded")
	return nil
}

// ConfigPath returns the config file path from environment or
// the default name in work directory
func ConfigPath() string {
	configPath := os.Getenv(ConfigEnv)
	if configPath == "" {
		configPath = ConfigName
		if wd, err := os.Getwd(); err == nil {
			configPath = path.Join(wd, ConfigName)
		}
	}
	return configPath
}

// Validate checks the merged configuration
func (cfg Config) Validate() error {
	var ee []error
	if cfg.Generator.ManifestPath == "" {
		ee = append(ee, fmt.Errorf("%w: manifest path is required", ErrConfig))
	}
	if err := cfg.Names.Validate(); err != nil {
		ee = append(ee, fmt.Errorf("%w: names: %w", ErrConfig, err))
	}
	if cfg.Logging.LogFileRotate < 0 {
		ee = append(ee, fmt.Errorf("%w: logFileRotate must not be negative", ErrConfig))
	}
	return errors.Join(ee...)
}

// InitLogger applies the logging configuration to the global logger
func (cfg Config) InitLogger() {
	lvl := cfg.Logging.LogLevel
	if lvl > Trace {
		lvl = Trace
	}
	if lvl < Error {
		lvl = Error
	}
	zlvl := [...]zerolog.Level{3, 2, 1, 0, -1}[lvl]
	condense := cfg.Logging.LogCondense
	if zlvl <= zerolog.DebugLevel {
		condense = 0
	}
	opts := []logger.Option{
		logger.WithNoColor(!cfg.Logging.LogColors),
		logger.WithCondense(condense),
		logger.WithLastErrors(10),
		logger.WithLevel(zlvl),
		logger.WithTimeFormat(cfg.Logging.LogTimeFormat),
	}
	if cfg.Logging.LogFile != "" {
		opts = append(opts, logger.WithLogFile(&logger.LogFile{
			FilePath: cfg.Logging.LogFile,
			MaxSize:  cfg.Logging.LogFileMaxSize,
			Rotate:   cfg.Logging.LogFileRotate,
		}))
	}
	logger.SetLogger(opts...)
	/* set as standard logger output */
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}
