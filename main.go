package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *Config
	logger     *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "qcolsim",
		Short:         "Column-operator quantum circuit simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(a.v, a.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.Bool("strict", true, "Reject columns that break the register layout rules")
	pf.Int("workers", 1, "Build column operators with this many workers")
	pf.Bool("observe", false, "Sample one branch per measurement/noise column")
	pf.Uint64("seed", 1, "Seed for --observe")
	pf.String("format", "text", "Output format: text, table, yaml")
	pf.Int("precision", 6, "Decimals in printed amplitudes")
	pf.Float64("threshold", 0, "Hide basis states with probability at or below this value in tables")

	for key, flag := range map[string]string{
		"log.level":        "log-level",
		"simulate.strict":  "strict",
		"simulate.workers": "workers",
		"simulate.observe": "observe",
		"simulate.seed":    "seed",
		"output.format":    "format",
		"output.precision": "precision",
		"output.threshold": "threshold",
	} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(a.runCmd(), a.inspectCmd(), a.gatesCmd(), a.configCmd())
	return root
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE.qasm",
		Short: "Simulate a circuit and print the final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			circuit, err := loadCircuit(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			res, err := NewSimulator(a.cfg.SimulatorOptions(a.logger)...).Run(cmd.Context(), circuit)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.qasm",
		Short: "Step through the state after every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return fmt.Errorf("inspect needs a file, stdin is used by the terminal")
			}
			circuit, err := loadCircuit(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			var snapshots []Snapshot
			opts := append(a.cfg.SimulatorOptions(a.logger), WithObserver(func(s Snapshot) {
				snapshots = append(snapshots, s)
			}))
			res, err := NewSimulator(opts...).Run(cmd.Context(), circuit)
			if err != nil {
				return err
			}
			m := newInspector(snapshots, res, a.cfg.Output.Precision, a.cfg.Output.Threshold)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

func (a *app) gatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gates",
		Short: "List the supported gates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderCatalog())
			return err
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func (a *app) printResult(w io.Writer, res *Result) error {
	switch a.cfg.Output.Format {
	case "yaml":
		out, err := res.YAML(a.cfg.Output.Precision)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "table":
		_, err := fmt.Fprintln(w, RenderTable(res, a.cfg.Output.Precision, a.cfg.Output.Threshold))
		return err
	default:
		_, err := io.WriteString(w, res.Text(a.cfg.Output.Precision))
		return err
	}
}

// loadCircuit parses QASM from path, or from stdin when path is "-".
func loadCircuit(stdin io.Reader, path string) (*Circuit, error) {
	var (
		src []byte
		err error
	)
	if path == "-" {
		src, err = io.ReadAll(stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read circuit: %w", err)
	}
	c := &Circuit{}
	if err := c.ParseQASM(string(src)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}
