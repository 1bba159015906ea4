package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	workers    int

	frame      int
	surface    string
	components []int
	frozen     []bool

	potKind string
	preset  string
	epsilon float64
	sigma   float64
	cutoff  float64
	mix     []string
	command []string

	save      bool
	withSites bool
	tolerance float64

	rmin, rmax float64
	samples    int

	svgPath string
	theme   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pairenergy",
		Short:         "pairwise energy decomposition of periodic particle systems",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory for stored runs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker goroutines, 0 for every core")

	evalCmd := &cobra.Command{
		Use:   "eval [system.xyz]",
		Short: "decompose the energy of one or all frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEval,
	}
	addSystemFlags(evalCmd)
	evalCmd.Flags().BoolVar(&save, "save", false, "store each evaluation in the data directory")
	evalCmd.Flags().BoolVar(&withSites, "sites", false, "also compute single-site energies")

	siteCmd := &cobra.Command{
		Use:   "site [system.xyz] [index]",
		Short: "single-site energy of one particle",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runSite,
	}
	addSystemFlags(siteCmd)
	siteCmd.Flags().StringVar(&svgPath, "svg", "", "write a projection of the cell with the particle marked")

	checkCmd := &cobra.Command{
		Use:   "check [system.xyz]",
		Short: "verify that frozen + interacting and the site sum match the total",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	addSystemFlags(checkCmd)
	checkCmd.Flags().Float64Var(&tolerance, "tol", 1e-9, "relative tolerance")

	inspectCmd := &cobra.Command{
		Use:   "inspect [system.xyz]",
		Short: "browse single-site energies interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}
	addSystemFlags(inspectCmd)
	inspectCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme (cyberpunk, minimal, ocean)")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "plot the pair potential",
		Args:  cobra.NoArgs,
		RunE:  runCurve,
	}
	addPotentialFlags(curveCmd)
	curveCmd.Flags().Float64Var(&rmin, "rmin", 0, "smallest separation, 0 for 0.9 sigma")
	curveCmd.Flags().Float64Var(&rmax, "rmax", 0, "largest separation, 0 for the cutoff or 3 sigma")
	curveCmd.Flags().IntVar(&samples, "samples", 80, "number of samples")
	curveCmd.Flags().StringVar(&svgPath, "svg", "", "also write the curve as SVG")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list Lennard-Jones parameter presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(evalCmd, siteCmd, checkCmd, inspectCmd, curveCmd, listCmd, showCmd, exportCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frame, "frame", 0, "frame index, -1 for every frame")
	cmd.Flags().StringVar(&surface, "surface", "", "xyz file with a fixed surface")
	cmd.Flags().IntSliceVar(&components, "components", nil, "particle count of each component")
	cmd.Flags().BoolSliceVar(&frozen, "frozen", nil, "frozen flag of each component")
	addPotentialFlags(cmd)
}

func addPotentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&potKind, "potential", "scalar", "potential kind (scalar, composite, external)")
	cmd.Flags().StringVar(&preset, "preset", "", "parameter preset")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "well depth")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "zero-crossing distance")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "cutoff (reported, not applied)")
	cmd.Flags().StringSliceVar(&mix, "mix", nil, "presets mixed per component (composite)")
	cmd.Flags().StringSliceVar(&command, "command", nil, "external calculator command")
}
