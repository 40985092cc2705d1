package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Tables TablesConfig `yaml:"tables" mapstructure:"tables"`
	Vector VectorConfig `yaml:"vector" mapstructure:"vector"`
}

// StoreConfig configures the Postgres backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BatchConfig configures bulk exceedance runs.
type BatchConfig struct {
	Concurrency   int `yaml:"concurrency" mapstructure:"concurrency"`
	ChunkSize     int `yaml:"chunk_size" mapstructure:"chunk_size"`
	CopyBatchSize int `yaml:"copy_batch_size" mapstructure:"copy_batch_size"`
}

// TablesConfig names the tables read and written by the exceed command.
// CLF and Deposition may be schema-qualified.
type TablesConfig struct {
	CLF          string `yaml:"clf" mapstructure:"clf"`
	Deposition   string `yaml:"deposition" mapstructure:"deposition"`
	ResultSchema string `yaml:"result_schema" mapstructure:"result_schema"`
	ResultTable  string `yaml:"result_table" mapstructure:"result_table"`
}

// VectorConfig names the shapefile attributes holding a CLF.
type VectorConfig struct {
	IDField     string `yaml:"id_field" mapstructure:"id_field"`
	ClnMinField string `yaml:"cln_min_field" mapstructure:"cln_min_field"`
	ClnMaxField string `yaml:"cln_max_field" mapstructure:"cln_max_field"`
	ClsMinField string `yaml:"cls_min_field" mapstructure:"cls_min_field"`
	ClsMaxField string `yaml:"cls_max_field" mapstructure:"cls_max_field"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CRITLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.chunk_size", 10000)
	v.SetDefault("batch.copy_batch_size", 50000)
	v.SetDefault("tables.clf", "critical_loads.clf_values")
	v.SetDefault("tables.deposition", "deposition.dep_values_0_1deg_grid")
	v.SetDefault("tables.result_schema", "critical_loads")
	v.SetDefault("tables.result_table", "exceedance_values")
	v.SetDefault("vector.id_field", "cell_id")
	v.SetDefault("vector.cln_min_field", "cln_min")
	v.SetDefault("vector.cln_max_field", "cln_max")
	v.SetDefault("vector.cls_min_field", "cls_min")
	v.SetDefault("vector.cls_max_field", "cls_max")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "classify", "diagram":
	case "exceed":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
			errs = append(errs, "batch.concurrency must be between 1 and 64")
		}
		if c.Batch.ChunkSize <= 0 {
			errs = append(errs, "batch.chunk_size must be > 0")
		}
		if c.Batch.CopyBatchSize <= 0 {
			errs = append(errs, "batch.copy_batch_size must be > 0")
		}
		if c.Tables.CLF == "" || c.Tables.Deposition == "" {
			errs = append(errs, "tables.clf and tables.deposition are required")
		}
		if c.Tables.ResultSchema == "" || c.Tables.ResultTable == "" {
			errs = append(errs, "tables.result_schema and tables.result_table are required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
