package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pairenergy/internal/compute"
	"github.com/san-kum/pairenergy/internal/energy"
	"github.com/san-kum/pairenergy/internal/export"
	"github.com/san-kum/pairenergy/internal/potential"
	"github.com/san-kum/pairenergy/internal/storage"
	"github.com/san-kum/pairenergy/internal/viz"
)

type frameResult struct {
	frame   int
	report  *energy.Report
	sites   []float64
	elapsed time.Duration
}

// evaluateFrames decomposes every selected frame. A single frame gets all
// workers; several frames run concurrently, one serial evaluation each.
func evaluateFrames(ctx context.Context, s *session, sites bool) ([]frameResult, error) {
	var backend compute.Backend = compute.NewCPUBackend(s.cfg.Workers)
	limit := 1
	if len(s.indices) > 1 {
		limit = backend.Workers()
		backend = compute.NewSerialBackend()
	}
	eval := s.evaluator(backend)

	results := make([]frameResult, len(s.indices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for k, idx := range s.indices {
		k, idx := k, idx
		g.Go(func() error {
			start := time.Now()
			sys := s.frames[idx]

			r, err := eval.Decompose(ctx, sys, s.pot, s.part, s.surfaceSystem())
			if err != nil {
				return fmt.Errorf("frame %d: %w", idx, err)
			}
			res := frameResult{frame: idx, report: r}
			if sites {
				res.sites, err = eval.Sites(ctx, sys, s.pot, s.part, s.surfaceSystem())
				if err != nil {
					return fmt.Errorf("frame %d: %w", idx, err)
				}
			}
			res.elapsed = time.Since(start)
			results[k] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	if s.pot.Kind() == potential.KindExternal {
		return evalExternal(cmd.Context(), s)
	}

	results, err := evaluateFrames(cmd.Context(), s, withSites || save)
	if err != nil {
		return err
	}

	var st *storage.Store
	if save {
		st = storage.New(s.cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	for _, res := range results {
		fmt.Printf("frame %d (%v)\n", res.frame, res.elapsed.Round(time.Microsecond))
		fmt.Println(viz.RenderReport(res.report))
		if withSites {
			fmt.Println(viz.SparklineChart(res.sites, 60))
		}
		if st != nil {
			id, err := st.Save(s.cfg.System, res.frame, s.frames[res.frame], res.report, res.sites)
			if err != nil {
				return err
			}
			fmt.Printf("run id: %s\n", id)
		}
		fmt.Println()
	}
	return nil
}

// evalExternal runs the calculator frame by frame; it may hold state and
// must not be called concurrently.
func evalExternal(ctx context.Context, s *session) error {
	eval := s.evaluator(compute.NewSerialBackend())
	s.log.Warnf("external potential: frozen energy is reported as 0 and no decomposition is available")

	for _, idx := range s.indices {
		e, err := eval.Interacting(ctx, s.frames[idx], s.pot, s.part, s.surfaceSystem())
		if err != nil {
			return fmt.Errorf("frame %d: %w", idx, err)
		}
		fmt.Printf("frame %d: %s %.10g\n", idx, viz.MetricLabel.Render("energy"), e)
	}
	return nil
}

func runSite(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		return fmt.Errorf("bad particle index %q", args[len(args)-1])
	}
	s, err := openSession(cmd, args[:len(args)-1])
	if err != nil {
		return err
	}

	eval := s.evaluator(compute.NewCPUBackend(s.cfg.Workers))
	for _, idx := range s.indices {
		e, err := eval.SingleSite(cmd.Context(), index, s.frames[idx], s.pot, s.part, s.surfaceSystem())
		if err != nil {
			return fmt.Errorf("frame %d: %w", idx, err)
		}
		fmt.Printf("frame %d particle %d (%s): %.10g\n", idx, index, s.frames[idx].Species(index), e)
	}

	if svgPath != "" {
		sys := s.frames[s.indices[0]]
		lengths, err := sys.Cell().Lengths()
		if err != nil {
			return err
		}
		c := viz.NewCanvas(60, 30)
		viz.Projection(c, sys.Positions, lengths, index)
		if err := writeSVG(svgPath, func(w io.Writer) error { return export.CanvasSVG(w, c, 4) }); err != nil {
			return err
		}
		s.log.Infof("projection written to %s", svgPath)
	}
	return nil
}

func writeSVG(path string, draw func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := draw(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	if s.cfg.Surface != "" {
		s.log.Warnf("check ignores the surface")
	}

	eval := s.evaluator(compute.NewCPUBackend(s.cfg.Workers))
	failed := 0
	for _, idx := range s.indices {
		c, err := eval.Verify(cmd.Context(), s.frames[idx], s.pot, s.part)
		if err != nil {
			return fmt.Errorf("frame %d: %w", idx, err)
		}
		fmt.Printf("frame %d\n%s\n", idx, viz.RenderConsistency(c, tolerance))
		if !c.OK(tolerance) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d frames inconsistent", failed, len(s.indices))
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	if len(s.indices) > 1 {
		s.log.Infof("inspecting frame %d only", s.indices[0])
		s.indices = s.indices[:1]
	}

	results, err := evaluateFrames(cmd.Context(), s, true)
	if err != nil {
		return err
	}
	res := results[0]

	m, err := viz.NewInspector(s.frames[res.frame], res.report, res.sites)
	if err != nil {
		return err
	}
	if m, err = m.WithTheme(theme); err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runCurve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	lj, err := cfg.Potential.Scalar()
	if err != nil {
		return err
	}

	lo, hi := rmin, rmax
	if lo <= 0 {
		lo = 0.9 * lj.Sigma
	}
	if hi <= 0 {
		hi = 3 * lj.Sigma
		if lj.HasCutoff() {
			hi = lj.Cutoff
		}
	}
	if hi <= lo {
		return fmt.Errorf("rmax %g must exceed rmin %g", hi, lo)
	}

	rs, es := potential.Curve(lj, lo, hi, samples)
	// the repulsive wall would flatten the well
	for i := range es {
		es[i] = math.Min(es[i], 2*lj.Epsilon)
	}

	if svgPath != "" {
		points := make([]export.Point, len(rs))
		for i := range rs {
			points[i] = export.Point{X: rs[i], Y: es[i]}
		}
		if err := writeSVG(svgPath, func(w io.Writer) error {
			return export.CurveSVG(w, points, 640, 360, "#00ff00")
		}); err != nil {
			return err
		}
	}

	graph := asciigraph.Plot(es,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s, r from %.3g to %.3g", lj, lo, hi)),
	)
	fmt.Println(graph)
	fmt.Printf("\nminimum %.6g at r = %.6g\n", lj.Energy(lj.Minimum()), lj.Minimum())
	return nil
}
