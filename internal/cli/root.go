package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/atlasprompt/internal/llm"
	"github.com/ppiankov/atlasprompt/internal/logger"
	"github.com/ppiankov/atlasprompt/internal/model"
	"github.com/ppiankov/atlasprompt/internal/pipeline"
	"github.com/ppiankov/atlasprompt/internal/store"
)

// version is overridden at build time with -ldflags "-X"
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool

	// Resolved in PersistentPreRunE
	cfg     *model.Config
	log     *logger.Logger
	cfgUsed string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "atlasprompt",
	Short: "atlasprompt - turn a location prompt into an annotated static map",
	Long: `atlasprompt asks a language model to extract the places mentioned in a
free-text prompt, validates the result, and renders it as a styled static map
with numbered markers and highlighted historical facts.

The latest validated result set is kept as the "current set"; the map,
the JSON download and the API all read from it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, used, err := loadConfig(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg, cfgUsed = loaded, used

		if verbose {
			cfg.Log.Level = "debug"
		}
		log, err = logger.New(cfg.Log.Mode, cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if cfgUsed != "" {
			log.Debug("using config file", "path", cfgUsed)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("atlasprompt %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.atlasprompt/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.AddCommand(versionCmd)
}

// flagKeys maps command flags onto config keys; flags win over every other source
var flagKeys = map[string]string{
	"provider":   "llm.provider",
	"model":      "llm.model",
	"store":      "store.backend",
	"store-path": "store.path",
	"host":       "server.host",
	"port":       "server.port",
	"width":      "render.width",
	"height":     "render.height",
	"log-level":  "log.level",
}

// loadConfig resolves configuration: defaults, then the config file, then
// ATLASPROMPT_* and provider key env vars, then explicitly set flags.
// It returns the config file used, if any.
func loadConfig(path string, flags *pflag.FlagSet) (*model.Config, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults are loaded as a YAML document so every key is known to viper
	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil, "", fmt.Errorf("marshal defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, "", fmt.Errorf("read defaults: %w", err)
	}

	used := ""
	if path == "" {
		path = defaultConfigPath()
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			path = ""
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, "", fmt.Errorf("read config file %s: %w", path, err)
		}
		used = path
	}

	v.SetEnvPrefix("ATLASPROMPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("render.api_key", "ATLASPROMPT_RENDER_API_KEY", "MAPS_API_KEY")

	// Keys omitted from the defaults document are unknown to AutomaticEnv
	for _, key := range []string{"llm.api_key", "llm.base_url", "http.http_proxy", "http.https_proxy", "http.no_proxy"} {
		_ = v.BindEnv(key)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var out model.Config
	if err := v.Unmarshal(&out); err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}

	applyProviderEnv(&out.LLM)
	return &out, used, nil
}

// applyProviderEnv fills provider credentials from the provider's conventional env vars
func applyProviderEnv(c *model.LLMConfig) {
	switch strings.ToLower(c.Provider) {
	case "gemini", "google", "":
		if c.APIKey == "" {
			c.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
	case "openai":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".atlasprompt"
	}
	return filepath.Join(home, ".atlasprompt")
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// newPipeline wires provider, store and logger. The provider is optional for
// commands that only read the current set.
func newPipeline(needProvider bool) (*pipeline.Pipeline, error) {
	results, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var provider llm.Provider
	if needProvider {
		provider, err = llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			return nil, fmt.Errorf("init provider: %w", err)
		}
		log.Debug("extraction provider ready", "provider", provider.Name(), "model", cfg.LLM.Model)
	}

	return pipeline.NewPipeline(cfg, provider, results, log), nil
}
