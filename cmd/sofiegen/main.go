// Command sofiegen reads a model description and emits Go inference
// code for it.
//
// Usage:
//
//	sofiegen generate model.yaml -o model_gen.go
//	sofiegen infer model.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zeff020/root"
	"github.com/Zeff020/root/internal/logging"
	"github.com/Zeff020/root/sofie"
)

var (
	logger *zap.Logger

	configPath string
	outputPath string
	pkgName    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sofiegen",
	Short: "Generate Go inference code from model descriptions",
	Long: `sofiegen turns a YAML model description into standalone Go source
implementing the model's forward pass. Shape inference runs at
generation time, so the emitted code contains no dynamic shape logic.`,
	Version:       versionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := defaultGenConfig()
		if configPath != "" {
			var err error
			cfg, err = loadGenConfig(configPath)
			if err != nil {
				return err
			}
		}
		// Flags set explicitly win over the config file.
		if !cmd.Flags().Changed("package") && cfg.Package != "" {
			pkgName = cfg.Package
		}
		if !cmd.Flags().Changed("output") && cfg.Output != "" {
			outputPath = cfg.Output
		}
		if !cmd.Flags().Changed("verbose") {
			verbose = cfg.Verbose
		}

		var err error
		logger, err = logging.New(verbose)
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
}

var generateCmd = &cobra.Command{
	Use:   "generate [model.yaml]",
	Short: "Emit Go source implementing the model's forward pass",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := buildModel(args[0])
		if err != nil {
			return err
		}

		src, err := model.Generate()
		if err != nil {
			return fmt.Errorf("generate %s: %w", args[0], err)
		}

		if outputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), src)
			return nil
		}
		if err := os.WriteFile(outputPath, []byte(src), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("wrote generated source",
			zap.String("model", args[0]),
			zap.String("output", outputPath))
		return nil
	},
}

var inferCmd = &cobra.Command{
	Use:   "infer [model.yaml]",
	Short: "Run shape inference and print the operator output shapes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := buildModel(args[0])
		if err != nil {
			return err
		}

		for _, op := range model.Operators() {
			for _, out := range op.Outputs() {
				info, err := model.Tensor(out)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					out, info.DType, info.Shape)
			}
		}
		return nil
	},
}

// buildModel parses the description, assembles the model and runs
// shape inference over its operators.
func buildModel(path string) (*sofie.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model description: %w", err)
	}

	desc, err := sofie.ParseModelDesc(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	model, err := desc.Build(
		sofie.WithLogger(logger),
		sofie.WithPackage(pkgName),
	)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}

	if err := model.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", path, err)
	}
	return model, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a sofiegen TOML config file")
	rootCmd.PersistentFlags().StringVarP(&pkgName, "package", "p", "model", "package name for the generated source")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (stdout if empty)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inferCmd)
}

func versionString() string {
	v, _ := root.Version()
	if v == "" {
		return "devel"
	}
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
