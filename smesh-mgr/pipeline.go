package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/smesh-lab/smesh/config"
	"github.com/smesh-lab/smesh/fwk"
	"github.com/smesh-lab/smesh/plots"
	"github.com/smesh-lab/smesh/rolling"
	"github.com/smesh-lab/smesh/table"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

// loader loads the sensor tables of a deployment through a driver and
// restricts them to the configured datetime window.
type loader struct {
	*fwk.Base
	cfg    *config.Config
	driver string

	drv fwk.Driver
	set *table.Set
}

func newLoader(cfg *config.Config, driver string) *loader {
	if driver == "" {
		driver = cfg.Driver
	}
	return &loader{
		Base:   fwk.NewBase("load"),
		cfg:    cfg,
		driver: driver,
	}
}

func (ld *loader) Boot(ctx context.Context) error {
	var err error
	ld.drv, err = fwk.System.Driver(ld.driver)
	return err
}

func (ld *loader) Run(ctx context.Context) error {
	ld.Infof("loading data with driver [%s]...", fwk.Color(ld.drv.Name()))
	set, err := ld.drv.Load(ctx, ld.cfg)
	if err != nil {
		return err
	}
	if set.Len() == 0 {
		return fmt.Errorf("no sensor data loaded (driver=%s)", ld.drv.Name())
	}

	if ld.cfg.Trimmed() {
		ld.Infof(
			"trimming data to [%s, %s]...",
			ld.cfg.Start.Format(config.DatetimeFormat),
			ld.cfg.End.Format(config.DatetimeFormat),
		)
		set, err = table.Trim(set, ld.cfg.Start, ld.cfg.End)
		if err != nil {
			return err
		}
	}
	for _, name := range set.Names() {
		ld.Debugf("sensor [%s]: %d rows", name, set.Table(name).Len())
	}
	ld.set = set
	return nil
}

func (ld *loader) Shutdown(ctx context.Context) error {
	return nil
}

// floatVars returns the vars of t holding numbers.
func floatVars(b *fwk.Base, t *table.Table, vars []string) []string {
	o := make([]string, 0, len(vars))
	for _, v := range vars {
		k, err := t.Kind(v)
		switch {
		case err != nil:
			b.Warnf("table [%s] has no column %q", t.Name, v)
		case k != table.Float:
			b.Warnf("table [%s]: column %q is %v, skipping", t.Name, v, k)
		default:
			o = append(o, v)
		}
	}
	return o
}

type job struct {
	name string
	fig  func() (*plots.Figure, error)
}

// renderer draws the plot battery of every loaded sensor.
type renderer struct {
	*fwk.Base
	cfg     *config.Config
	src     *loader
	window  time.Duration
	workers int

	dir   string
	mu    sync.Mutex
	files []string
}

func newRenderer(cfg *config.Config, src *loader, window time.Duration, workers int) *renderer {
	return &renderer{
		Base:    fwk.NewBase("plot"),
		cfg:     cfg,
		src:     src,
		window:  window,
		workers: workers,
	}
}

func (r *renderer) Boot(ctx context.Context) error {
	var err error
	r.dir, err = table.RangeDir(r.cfg.PlotFolderPath, r.cfg.Start, r.cfg.End)
	if err != nil {
		return err
	}
	r.Infof("saving plots under [%s]", fwk.Color(r.dir))
	return nil
}

func (r *renderer) Run(ctx context.Context) error {
	grp, ctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		grp.SetLimit(r.workers)
	}
	for _, sensor := range r.src.set.Names() {
		sensor := sensor
		grp.Go(func() error {
			return r.render(ctx, sensor)
		})
	}
	return grp.Wait()
}

func (r *renderer) Shutdown(ctx context.Context) error {
	r.Infof("saved %d plots under [%s] (time=%v)", len(r.Files()), r.dir, r.Elapsed())
	return nil
}

// Files returns the saved plots, sorted by name.
func (r *renderer) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := append([]string(nil), r.files...)
	sort.Strings(o)
	return o
}

func (r *renderer) jobs(sensor string) []job {
	var (
		t      = r.src.set.Table(sensor)
		vars   = floatVars(r.Base, t, r.src.set.Vars(sensor))
		events = r.cfg.EventDatetimes
	)

	jobs := []job{
		{"all_vars_timeseries", func() (*plots.Figure, error) {
			return plots.TimeSeries(t, vars, events, false)
		}},
	}
	if r.cfg.IsLogY(sensor) {
		jobs = append(jobs, job{"all_vars_timeseries_logy", func() (*plots.Figure, error) {
			return plots.TimeSeries(t, vars, events, true)
		}})
	}
	jobs = append(jobs,
		job{"all_vars_timeseries_moving_avg", func() (*plots.Figure, error) {
			avgs, err := rolling.PerNode(t, vars, r.window, "")
			if err != nil {
				return nil, err
			}
			for _, s := range avgs {
				if s.Dropped > 0 {
					r.Warnf("[%s] node %s: dropped %d rows without datetime", sensor, s.Node, s.Dropped)
				}
			}
			return plots.MovingAverages(t, avgs, vars, events)
		}},
		job{"correlation_matrix", func() (*plots.Figure, error) {
			return plots.CorrMatrix(t, vars)
		}},
		job{"correlation_scatter", func() (*plots.Figure, error) {
			return plots.CorrScatter(t, vars)
		}},
		job{"datetime_histogram", func() (*plots.Figure, error) {
			return plots.DatetimeHist(t, sensor, events)
		}},
		job{"sensor_interval", func() (*plots.Figure, error) {
			return plots.IntervalScatter(t, sensor, events)
		}},
		job{"sensor_interval_boxplot", func() (*plots.Figure, error) {
			return plots.IntervalBox(t, sensor, nil, false)
		}},
	)

	if b, ok := r.cfg.IntervalBounds[sensor]; ok {
		bounds := b
		suffix := fmt.Sprintf("bound_%d-%ds", int(b[0]), int(b[1]))
		jobs = append(jobs,
			job{"sensor_interval_boxplot_" + suffix, func() (*plots.Figure, error) {
				return plots.IntervalBox(t, sensor, &bounds, false)
			}},
			job{"sensor_interval_violin_" + suffix, func() (*plots.Figure, error) {
				return plots.IntervalBox(t, sensor, &bounds, true)
			}},
		)
	}
	return jobs
}

func (r *renderer) render(ctx context.Context, sensor string) error {
	r.Infof("plotting [%s]...", fwk.Color(sensor))
	start := time.Now()
	for _, j := range r.jobs(sensor) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		err := r.save(sensor, j)
		if err != nil {
			r.Errorf("plotting [%s]... [err=%v] (time=%v)", sensor, err, time.Since(start))
			return err
		}
	}
	r.Infof("plotting [%s]... [ok] (time=%v)", fwk.Color(sensor), time.Since(start))
	return nil
}

func (r *renderer) save(sensor string, j job) error {
	fname := filepath.Join(r.dir, sensor+"_"+j.name+".png")
	start := time.Now()
	fig, err := j.fig()
	if errors.Is(err, plots.ErrNoData) {
		r.Warnf("no data for [%s] plot %s, skipping", sensor, j.name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	err = fig.Save(fname, r.cfg.DPI)
	if err != nil {
		return err
	}
	r.Debugf("saving [%s]... [ok] (time=%v)", fname, time.Since(start))

	r.mu.Lock()
	r.files = append(r.files, fname)
	r.mu.Unlock()
	return nil
}

// exporter writes the loaded tables and their per-node moving averages as
// CSV files.
type exporter struct {
	*fwk.Base
	cfg    *config.Config
	src    *loader
	window time.Duration
	root   string

	dir   string
	files []string
}

func newExporter(cfg *config.Config, src *loader, window time.Duration, root string) *exporter {
	return &exporter{
		Base:   fwk.NewBase("export"),
		cfg:    cfg,
		src:    src,
		window: window,
		root:   root,
	}
}

func (e *exporter) Boot(ctx context.Context) error {
	var err error
	e.dir, err = table.RangeDir(e.root, e.cfg.Start, e.cfg.End)
	return err
}

func (e *exporter) Run(ctx context.Context) error {
	var err error
	for _, sensor := range e.src.set.Names() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := e.src.set.Table(sensor)
		err = e.write(sensor+".csv", t)
		if err != nil {
			return err
		}

		vars := floatVars(e.Base, t, e.src.set.Vars(sensor))
		if t.Len() == 0 || len(vars) == 0 {
			e.Warnf("no data for [%s] moving averages, skipping", sensor)
			continue
		}
		avgs, err := rolling.PerNode(t, vars, e.window, "")
		if err != nil {
			return fmt.Errorf("%s: %w", sensor, err)
		}
		for _, s := range avgs {
			err = e.write(sensor+"_moving_avg_"+s.Node+".csv", s.Table)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *exporter) write(name string, t *table.Table) (err error) {
	fname := filepath.Join(e.dir, name)
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = table.WriteCSV(f, t)
	if err != nil {
		return fmt.Errorf("could not write %q: %w", fname, err)
	}
	e.Debugf("writing [%s]... [ok] (rows=%d)", fname, t.Len())
	e.files = append(e.files, fname)
	return nil
}

func (e *exporter) Shutdown(ctx context.Context) error {
	e.Infof("exported %d files under [%s] (time=%v)", len(e.files), e.dir, e.Elapsed())
	return nil
}

// summary prints, for every loaded sensor, its size, time span and the
// median reading interval of each node.
type summary struct {
	*fwk.Base
	src *loader
	w   io.Writer
}

func newSummary(src *loader, w io.Writer) *summary {
	return &summary{
		Base: fwk.NewBase("info"),
		src:  src,
		w:    w,
	}
}

func (s *summary) Boot(ctx context.Context) error { return nil }

func (s *summary) Run(ctx context.Context) error {
	for _, sensor := range s.src.set.Names() {
		t := s.src.set.Table(sensor)
		fmt.Fprintf(s.w, "sensor %s: rows=%d vars=%v\n", sensor, t.Len(), s.src.set.Vars(sensor))
		beg, end, ok := t.Span(table.TimeCol)
		if !ok {
			fmt.Fprintf(s.w, "  no datetime\n")
			continue
		}
		fmt.Fprintf(
			s.w, "  span: %s -> %s (%v)\n",
			beg.Format(config.DatetimeFormat),
			end.Format(config.DatetimeFormat),
			end.Sub(beg),
		)
		ivs, err := plots.Intervals(t)
		if err != nil {
			return fmt.Errorf("%s: %w", sensor, err)
		}
		for _, ni := range ivs {
			fmt.Fprintf(
				s.w, "  node %-8s intervals=%-6d median=%.1fs\n",
				ni.Node, len(ni.Secs), ni.Median(),
			)
		}
	}
	return nil
}

func (s *summary) Shutdown(ctx context.Context) error { return nil }

var (
	_ fwk.Module = (*loader)(nil)
	_ fwk.Module = (*renderer)(nil)
	_ fwk.Module = (*exporter)(nil)
	_ fwk.Module = (*summary)(nil)
)
