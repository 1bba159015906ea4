package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pairenergy/internal/config"
	"github.com/san-kum/pairenergy/internal/storage"
	"github.com/san-kum/pairenergy/internal/viz"
)

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tFRAME\tTIME\tPOTENTIAL\tN\tTOTAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%.8g\n",
			run.ID,
			run.System,
			run.Frame,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Report.Potential,
			run.Report.Particles,
			run.Report.TotalEnergy,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	sites, err := st.LoadSites(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s (frame %d)\n", meta.System, meta.Frame)
	fmt.Printf("species: %v\n\n", meta.Species)
	fmt.Println(viz.RenderReport(&meta.Report))

	if len(sites) == 0 {
		return nil
	}

	data := make([]float64, len(sites))
	for i, s := range sites {
		data[i] = s.Energy
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("site energy by particle index"),
	)
	fmt.Println()
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	return st.ExportJSON(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEPSILON\tSIGMA\tCUTOFF\tR_MIN")
	for _, name := range config.ListPresets() {
		lj, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%.4g\n", name, lj.Epsilon, lj.Sigma, lj.Cutoff, lj.Minimum())
	}
	return w.Flush()
}
