package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/lexkit/internal/compiler"
	"github.com/zjrosen/lexkit/internal/config"
	"github.com/zjrosen/lexkit/internal/log"
	"github.com/zjrosen/lexkit/internal/tracing"
)

const defaultConfigPath = ".lexkit/config.yaml"

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config

	provider *tracing.Provider
	comp     *compiler.Compiler
	cleanup  []func()
)

// ErrDiagnostics is returned when a scan reported errors, or warnings
// under --strict.
var ErrDiagnostics = errors.New("diagnostics reported")

// ErrNoDeclarations is returned when neither --decl nor the declarations
// config key names a document.
var ErrNoDeclarations = errors.New("no declaration document: pass --decl or set declarations in config")

var rootCmd = &cobra.Command{
	Use:   "lexkit",
	Short: "A declarative tokenizer",
	Long: `lexkit splits text into tokens described by a YAML declaration document:
runs of characters from a set, regions between an opener and a closer,
and literals composed from other tokens.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .lexkit/config.yaml or ~/.config/lexkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write a debug log (also enabled by LEXKIT_DEBUG=1)")
	rootCmd.PersistentFlags().StringP("decl", "d", "",
		"declaration document")
	rootCmd.PersistentFlags().StringP("output", "o", "",
		"output format: text, json, or highlight")
	rootCmd.PersistentFlags().Bool("strict", false,
		"fail on warnings as well as errors")

	bindFlags()
}

func bindFlags() {
	_ = viper.BindPFlag("declarations", rootCmd.PersistentFlags().Lookup("decl"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("drop_tags", defaults.DropTags)
	viper.SetDefault("strict", defaults.Strict)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("cache.expiration", defaults.Cache.Expiration)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	viper.SetEnvPrefix("LEXKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .lexkit/config.yaml (current directory)
		// 2. ~/.config/lexkit/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "lexkit"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .lexkit/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	cfg = config.Defaults()
	_ = viper.Unmarshal(&cfg)
}

// configPath is the file theme edits are saved to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if debug || os.Getenv("LEXKIT_DEBUG") != "" {
		closeLog, err := log.Init(cfg.Log.File)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, closeLog)
		level, _ := log.ParseLevel(cfg.Log.Level)
		log.SetMinLevel(level)
	}
	log.Debug(log.CatCLI, "command", "name", cmd.CommandPath(), "config", viper.ConfigFileUsed())

	var err error
	provider, err = tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	comp = compiler.New(cfg.Cache.Expiration, provider.Tracer())
	return nil
}

// teardown flushes spans and closes the log. It runs after every command,
// including failed ones.
func teardown() {
	if provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "flushing spans", err)
		}
		cancel()
		provider = nil
	}
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
	cleanup = nil
	log.Reset()
}

// startRun gives one command invocation a run ID and a root span.
func startRun(ctx context.Context, command string) (context.Context, trace.Span) {
	ctx = tracing.ContextWithRunID(ctx, tracing.NewRunID())
	return tracing.Start(ctx, provider.Tracer(), tracing.SpanRun, attribute.String(tracing.AttrCommand, command))
}

func declarationsPath() (string, error) {
	if cfg.Declarations == "" {
		return "", ErrNoDeclarations
	}
	return cfg.Declarations, nil
}

// Execute runs the root command
func Execute() error {
	defer teardown()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
