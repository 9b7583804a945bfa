// mtracker is a single-user CLI calorie and macro tracker. Meals are
// described in free text, resolved to nutrition facts through an LLM
// extraction call with a persistent fact cache, and logged to SQLite.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mtracker/internal/config"
	"mtracker/internal/extract"
	"mtracker/internal/llm"
	"mtracker/internal/store"
	"mtracker/internal/tracker"
)

var (
	// Global flags
	verbose    bool
	configPath string
	removeItem string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "mtracker [food description]",
	Short: "mtracker - calorie and macro tracker",
	Long: `mtracker logs meals described in plain language.

An LLM extraction call turns the description into a food item, quantity,
and per-100g macro estimate; estimates are cached per food label so
repeated meals resolve without another call. Entries are confirmed before
anything is written.

Run with a food description to log it directly:
  mtracker "175g of banana cake"

Run without arguments to enter the interactive menu.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if removeItem != "" {
			if removeItem != "last" {
				fmt.Printf("Unsupported remove argument: %s. Only 'last' is supported.\n", removeItem)
				return nil
			}
			a.removeLastEntry()
			return nil
		}

		if len(args) > 0 {
			a.logFood(cmd.Context(), strings.Join(args, " "))
			return nil
		}

		return a.runMenu(cmd.Context())
	},
}

// setupCmd writes the .env file with the collaborator credentials.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a .env file with the LLM credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup()
	},
}

// app bundles the wired components for one invocation. All user input goes
// through the single shared stdin reader so prompts never drop buffered
// bytes between each other.
type app struct {
	cfg    *config.Config
	engine *tracker.Engine
	cache  *store.Cache
	log    *store.LogStore
	in     *bufio.Reader
}

// newApp loads configuration and opens the stores. The LLM client is built
// from config once here and injected; nothing else touches the environment.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	cache, err := store.NewCache(cfg.CacheDBPath(), logger)
	if err != nil {
		return nil, err
	}
	logStore, err := store.NewLogStore(cfg.LogDBPath(), logger)
	if err != nil {
		cache.Close()
		return nil, err
	}

	client := llm.NewOpenAIClientWithConfig(llm.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})
	extractor := extract.NewExtractor(client, logger)

	return &app{
		cfg:    cfg,
		engine: tracker.NewEngine(extractor, cache, logStore, logger),
		cache:  cache,
		log:    logStore,
		in:     bufio.NewReader(os.Stdin),
	}, nil
}

func (a *app) Close() {
	a.cache.Close()
	a.log.Close()
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mtracker.yaml", "path to the config file")
	rootCmd.Flags().StringVarP(&removeItem, "remove", "r", "",
		"remove an entry; only 'last' is supported (removes the last entry of the day)")

	rootCmd.AddCommand(setupCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
