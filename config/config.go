package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// DefaultChunkSize is the upload segment size used when none is given.
const DefaultChunkSize = 5242880

var defaultCreationOptions = []string{"BIGTIFF=YES", "COMPRESS=DEFLATE", "NUM_THREADS=ALL_CPUS"}

// DefaultCreationOptions returns a copy of the COG creation options passed
// to gdal_translate when none are configured.
func DefaultCreationOptions() []string {
	return append([]string(nil), defaultCreationOptions...)
}

var ErrUsage = errors.New("usage")

type Config struct {
	InPath          string
	OutPath         string
	KeyPathname     string
	ChunkSize       int
	TmpPath         string
	CreationOptions []string

	GDALInfoBin      string
	GDALTranslateBin string

	LogLevel  string
	LogPretty bool

	S3Region       string
	AWSS3AccessKey string
	AWSS3SecretKey string
	AWSProfile     string
	S3Endpoint     string
	S3UsePathStyle bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	DatabaseURL   string
}

// Load returns the environment derived defaults. Parse overlays flags.
func Load() *Config {
	return &Config{
		KeyPathname:      getEnv("COG_KEY_PATHNAME", ""),
		ChunkSize:        getEnvInt("COG_CHUNK_SIZE", DefaultChunkSize),
		TmpPath:          getEnv("COG_TMP_PATH", ""),
		CreationOptions:  DefaultCreationOptions(),
		GDALInfoBin:      getEnv("GDALINFO_BIN", "gdalinfo"),
		GDALTranslateBin: getEnv("GDAL_TRANSLATE_BIN", "gdal_translate"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getEnvBool("LOG_PRETTY", false),
		// Prefer unified S3_* vars, fall back to AWS_* vars
		S3Region:       getEnvWithFallback("S3_REGION", "AWS_DEFAULT_REGION", "us-east-1"),
		AWSS3AccessKey: getEnvWithFallback("S3_KEY", "AWS_ACCESS_KEY_ID", ""),
		AWSS3SecretKey: getEnvWithFallback("S3_SECRET", "AWS_SECRET_ACCESS_KEY", ""),
		AWSProfile:     getEnv("AWS_PROFILE", "default"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3UsePathStyle: getEnvBool("S3_USE_PATH_STYLE_ENDPOINT", false),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPrefix:    getEnv("REDIS_PREFIX", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
	}
}

// Parse reads command line arguments (without the program name) on top of
// the values from Load and validates the result.
func Parse(args []string) (*Config, error) {
	cfg := Load()

	fs := pflag.NewFlagSet("cogconverter", pflag.ContinueOnError)
	fs.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
	})
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: cogconverter [flags] in_path out_path")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.KeyPathname, "key_pathname", cfg.KeyPathname, "credentials file for the storage client")
	fs.IntVar(&cfg.ChunkSize, "chunk_size", cfg.ChunkSize, "upload chunk size in bytes")
	fs.StringVar(&cfg.TmpPath, "tmp_path", cfg.TmpPath, "directory for intermediate COG files")
	fs.StringSliceVar(&cfg.CreationOptions, "creation_option", cfg.CreationOptions, "COG creation option (repeatable)")
	fs.StringVar(&cfg.LogLevel, "log_level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.LogPretty, "log_pretty", cfg.LogPretty, "human readable console logs")
	fs.StringVar(&cfg.RedisAddr, "redis_addr", cfg.RedisAddr, "record outcomes in redis at this address")
	fs.StringVar(&cfg.DatabaseURL, "database_url", cfg.DatabaseURL, "record outcomes in this postgres database")

	if err := fs.Parse(legacyArgs(args)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return nil, fmt.Errorf("%w: expected in_path and out_path, got %d arguments", ErrUsage, fs.NArg())
	}
	cfg.InPath = fs.Arg(0)
	cfg.OutPath = fs.Arg(1)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing or out of range values.
func (c *Config) Validate() error {
	switch {
	case c.InPath == "":
		return fmt.Errorf("%w: in_path is required", ErrUsage)
	case c.OutPath == "":
		return fmt.Errorf("%w: out_path is required", ErrUsage)
	case c.TmpPath == "":
		return fmt.Errorf("%w: tmp_path is required (flag --tmp_path or COG_TMP_PATH)", ErrUsage)
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrUsage, c.ChunkSize)
	case len(c.CreationOptions) == 0:
		return fmt.Errorf("%w: at least one creation option is required", ErrUsage)
	}
	for _, opt := range c.CreationOptions {
		if !strings.Contains(opt, "=") {
			return fmt.Errorf("%w: creation option %q is not KEY=VALUE", ErrUsage, opt)
		}
	}
	return nil
}

// legacyArgs rewrites single dash long flags ("-chunk_size 10") into the
// double dash form pflag expects. Single letter shorthands are left alone.
func legacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if len(arg) > 2 && arg[0] == '-' && arg[1] != '-' {
			arg = "-" + arg
		}
		out = append(out, arg)
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvWithFallback(primaryKey, secondaryKey, fallback string) string {
	if value := os.Getenv(primaryKey); value != "" {
		return value
	}
	if value := os.Getenv(secondaryKey); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}
