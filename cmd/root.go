package cmd

import (
	"fmt"
	"log/slog"

	"github.com/cottand/typealg/frontend/registry"
	"github.com/cottand/typealg/frontend/types"
	"github.com/cottand/typealg/internal/log"
	"github.com/spf13/cobra"
)

var logger = log.DefaultLogger.With("section", "cli")

// globalFlags are shared by every subcommand
type globalFlags struct {
	logLevel     int
	registryPath string
	maxUnits     int
}

// env is what subcommands work with once the global flags are applied
type env struct {
	builder  *types.Builder
	registry types.Registry
	checker  *types.Checker
}

func (f *globalFlags) env() (*env, error) {
	log.SetLevel(slog.Level(f.logLevel))
	in := types.NewInterner()
	builder := types.NewBuilder(types.Config{MaxUnits: f.maxUnits}).WithInterner(in)

	var reg types.Registry = types.NoPrograms
	if f.registryPath != "" {
		loaded, err := registry.LoadYAML(f.registryPath, builder)
		if err != nil {
			return nil, fmt.Errorf("could not load registry: %w", err)
		}
		logger.Debug("using registry", "path", f.registryPath, "programs", loaded.Len())
		reg = loaded
	}
	return &env{
		builder:  builder,
		registry: reg,
		checker:  types.NewChecker(reg, types.WithInterner(in)),
	}, nil
}

// parse parses every text into a type
func (e *env) parse(texts ...string) ([]types.Type, error) {
	parsed := make([]types.Type, len(texts))
	for i, text := range texts {
		t, err := e.builder.ParseType(text)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q: %w", text, err)
		}
		parsed[i] = t
	}
	return parsed, nil
}

// NewRootCmd returns the typealg command with all of its subcommands
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "typealg [subcommand]",
		Short:        "typealg inspects, matches and derives types of the type algebra",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVarP(&flags.logLevel, "log-level", "l", int(slog.LevelError), "log level")
	root.PersistentFlags().StringVarP(&flags.registryPath, "registry", "r", "", "YAML file defining programs")
	root.PersistentFlags().IntVar(&flags.maxUnits, "max-units", types.DefaultConfig().MaxUnits, "largest type the parser may build, in encoding units")

	root.AddCommand(
		newDescribeCmd(flags),
		newEncodeCmd(flags),
		newArityCmd(flags),
		newMatchCmd(flags),
		newCallCmd(flags),
		newIndexCmd(flags),
		newStoreCmd(flags),
	)
	return root
}
