package concat

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/smesh-lab/smesh/fwk"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

// Merger concatenates all the chunks of a logger, one output file per
// sensor type.
type Merger struct {
	*fwk.Base

	Logger    string // short name of the logger
	DataDir   string // directory holding the chunks
	OutDir    string // directory receiving the merged files
	Ext       string // extension of the chunks
	HasHeader bool   // whether chunks start with a header row
	Rename    bool   // whether to prefix unnamed chunks with the logger name
	Workers   int    // maximum number of groups merged concurrently

	groups []FileGroup

	mu      sync.Mutex
	results []string
}

// NewMerger returns a merger with the default settings: .csv chunks with a
// header row, renaming allowed and one worker per CPU.
func NewMerger(logger, dataDir, outDir string) *Merger {
	return &Merger{
		Base:      fwk.NewBase("concat-" + logger),
		Logger:    logger,
		DataDir:   dataDir,
		OutDir:    outDir,
		Ext:       ".csv",
		HasHeader: true,
		Rename:    true,
		Workers:   runtime.NumCPU(),
	}
}

func (m *Merger) Boot(ctx context.Context) error {
	var err error
	err = os.MkdirAll(m.OutDir, 0755)
	if err != nil {
		return err
	}

	files, err := LoggerFiles(m.Logger, m.DataDir, m.Ext, m.Rename)
	if err != nil {
		return err
	}
	m.Infof("found %d files for logger [%s]", len(files), fwk.Color(m.Logger))

	m.groups = Group(files)
	if len(m.groups) == 0 {
		return fmt.Errorf("concat: no sensor type found among %d files of logger %q", len(files), m.Logger)
	}
	for _, g := range m.groups {
		m.Debugf("sensor [%s]: %d files", g.Sensor, len(g.Files))
	}
	return err
}

func (m *Merger) Run(ctx context.Context) error {
	grp, ctx := errgroup.WithContext(ctx)
	if m.Workers > 0 {
		grp.SetLimit(m.Workers)
	}

	for _, g := range m.groups {
		g := g
		grp.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return m.merge(g)
		})
	}

	return grp.Wait()
}

func (m *Merger) merge(g FileGroup) error {
	out := filepath.Join(m.OutDir, m.Logger+"_"+g.Sensor+m.Ext)
	m.Infof(
		"concatenating [%s] data for [%s] to %s...",
		fwk.Color(g.Sensor), fwk.Color(m.Logger), out,
	)

	start := time.Now()
	err := Files(g.Files, out, m.HasHeader)
	delta := time.Since(start)
	if err != nil {
		m.Errorf("concatenating [%s]... [err=%v] (time=%v)", g.Sensor, err, delta)
		return err
	}
	m.Infof("concatenating [%s]... [ok] (time=%v)", fwk.Color(g.Sensor), delta)

	m.mu.Lock()
	m.results = append(m.results, out)
	m.mu.Unlock()
	return nil
}

func (m *Merger) Shutdown(ctx context.Context) error {
	m.Infof(
		"merged %d sensor types of logger [%s] into %s (time=%v)",
		len(m.Results()), fwk.Color(m.Logger), m.OutDir, m.Elapsed(),
	)
	return nil
}

// Groups returns the chunk groups found at boot.
func (m *Merger) Groups() []FileGroup {
	return m.groups
}

// Results returns the merged files, sorted by name.
func (m *Merger) Results() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := append([]string(nil), m.results...)
	sort.Strings(o)
	return o
}
