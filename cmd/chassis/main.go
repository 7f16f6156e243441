package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/chassis/internal/actions"
	"github.com/everstacklabs/chassis/internal/adapters"
	"github.com/everstacklabs/chassis/internal/adapters/filecache"
	"github.com/everstacklabs/chassis/internal/adapters/httpfetch"
	"github.com/everstacklabs/chassis/internal/adapters/memcache"
	"github.com/everstacklabs/chassis/internal/adapters/sqlitestore"
	"github.com/everstacklabs/chassis/internal/adapters/yamlconfig"
	"github.com/everstacklabs/chassis/internal/config"
	"github.com/everstacklabs/chassis/internal/lint"
	"github.com/everstacklabs/chassis/internal/registry"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "chassis",
		Short: "Adapter registry runtime",
		Long:  "Inspects and resolves the capability adapters available to the framework.",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(
		listCmd(),
		capabilitiesCmd(),
		resolveCmd(),
		statusCmd(),
		checkCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := setup()
			if err != nil {
				return err
			}

			fmt.Printf("%-18s %-10s %-9s %-12s %-13s %s\n",
				"IDENTITY", "VERSION", "PRIORITY", "FINGERPRINT", "STATUS", "CAPABILITIES")
			for _, info := range reg.List() {
				meta, err := reg.Metadata(info.Identity)
				if err != nil {
					return err
				}
				fp := actions.Fingerprint(meta.Identity, meta.Version.String(), meta.ModulePath)
				fmt.Printf("%-18s %-10s %-9d %-12s %-13s %s\n",
					info.Identity, info.Version, info.Priority, fp, info.Status,
					strings.Join(info.Capabilities, ","))
			}
			return nil
		},
	}
}

func capabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show capability resolution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, err := setup()
			if err != nil {
				return err
			}

			seen := map[string]bool{}
			for _, info := range reg.List() {
				for _, capability := range info.Capabilities {
					if seen[capability] {
						continue
					}
					seen[capability] = true

					ids, err := reg.Candidates(capability)
					if err != nil {
						return err
					}
					line := strings.Join(ids, " > ")
					if pinned, ok := cfg.Overrides[capability]; ok {
						line = pinned + " (pinned) | " + line
					}
					fmt.Printf("%-12s %s\n", capability, line)
				}
			}
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <capability>",
		Short: "Resolve a capability to a concrete adapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := setup()
			if err != nil {
				return err
			}

			capability := args[0]
			instance, err := reg.Get(cmd.Context(), capability)
			if err != nil {
				return err
			}

			ids, _ := reg.Candidates(capability)
			for _, id := range ids {
				st, err := reg.Status(id)
				if err != nil {
					continue
				}
				if st == registry.StatusActive {
					fmt.Printf("%s -> %s (%T)\n", capability, id, instance)
					return nil
				}
			}
			fmt.Printf("%s -> %T\n", capability, instance)
			return nil
		},
	}
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <identity>",
		Short: "Show one adapter's lifecycle status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := setup()
			if err != nil {
				return err
			}

			identity := args[0]
			st, err := reg.Status(identity)
			if err != nil {
				return err
			}
			meta, err := reg.Metadata(identity)
			if err != nil {
				return err
			}

			fmt.Printf("identity:     %s\n", identity)
			fmt.Printf("status:       %s\n", st)
			fmt.Printf("version:      %s\n", meta.Version)
			fmt.Printf("compat:       %s - %s\n", meta.Compat.Min, meta.Compat.Max)
			fmt.Printf("module path:  %s\n", meta.ModulePath)
			if len(meta.LegacyPaths) > 0 {
				fmt.Printf("legacy paths: %s\n", strings.Join(meta.LegacyPaths, ", "))
			}
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Lint announced adapter metadata (CI check)",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := lint.CheckSet(adapters.Announced())
			fmt.Println(lint.FormatResult(result))

			if result.HasErrors() {
				os.Exit(1)
			}
			return nil
		},
	}
}

// setup loads config, configures the built-in adapters, and builds a registry
// populated from the discovery manifest with config overrides applied.
func setup() (*config.Config, *registry.Registry, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	setupLogging(cfg.LogLevel)

	memcache.Configure(cfg.Cache.MaxEntries)
	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		ttl = time.Hour
	}
	filecache.Configure(cfg.Cache.Dir, ttl)
	sqlitestore.Configure(cfg.Storage.Path)
	yamlconfig.Configure(cfg.Source.Path)
	httpfetch.Configure(cfg.Fetch.RateLimit)

	reg := registry.New()
	if err := reg.RegisterAdapters(adapters.Announced()); err != nil {
		return nil, nil, fmt.Errorf("registering adapters: %w", err)
	}
	for capability, identity := range cfg.Overrides {
		if err := reg.PinOverride(capability, identity); err != nil {
			return nil, nil, fmt.Errorf("applying override: %w", err)
		}
	}

	return cfg, reg, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
