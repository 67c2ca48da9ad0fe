/*
	Package convert drives the per-series pipeline: load a slice series, write
	the chunked store and its metadata sidecar, then read both back and
	reconstruct a slice directory.  Failures are contained at the series
	boundary so one bad series never halts a batch, and every series yields an
	explicit result instead of relying on log output.
*/

package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/hammb/voxstore/series"
	"github.com/hammb/voxstore/sidecar"
	"github.com/hammb/voxstore/store"
	"github.com/hammb/voxstore/voxstore"
)

// Status classifies a series result.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// SeriesResult is the outcome of processing one series.
type SeriesResult struct {
	ID     string
	Status Status

	// Err holds the failure reason for StatusFailed, or the DiscoveryError
	// behind a skip.
	Err error

	StorePath   string
	SidecarPath string
	OutputDir   string

	// Slices are the per-slice reconstruction outcomes for an ok series.
	Slices []series.SliceOutcome
}

// Pipeline converts and reconstructs series under the configured roots.
type Pipeline struct {
	cfg      *Config
	format   series.Format
	compress store.Compression
	loader   *series.Loader
	writer   *series.Writer
}

// NewPipeline wires a pipeline for the given slice format.
func NewPipeline(cfg *Config, format series.Format) (*Pipeline, error) {
	compress, err := store.CompressionByName(cfg.Run.Compression)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		format:   format,
		compress: compress,
		loader:   series.NewLoader(format),
		writer:   series.NewWriter(format),
	}, nil
}

// StorePath returns where the chunked store for a series id lives.
func (p *Pipeline) StorePath(id string) string {
	return filepath.Join(p.cfg.Paths.Converted, id+store.Ext)
}

// OutputDir returns where a series id is reconstructed to.
func (p *Pipeline) OutputDir(id string) string {
	return filepath.Join(p.cfg.Paths.Reconstructed, id)
}

// ConvertSeries loads one series and writes its store plus sidecar.
func (p *Pipeline) ConvertSeries(id string) error {
	voxstore.Infof("Processing series %s\n", id)

	vol, files, tags, geom, err := p.loader.Load(filepath.Join(p.cfg.Paths.Raw, id))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.cfg.Paths.Converted, 0755); err != nil {
		return &voxstore.WriteError{Path: p.cfg.Paths.Converted, Err: err}
	}

	storePath := p.StorePath(id)
	written, err := store.WriteWith(storePath, vol, store.WriteConfig{Compression: p.compress})
	if err != nil {
		return err
	}
	rawBytes := vol.NumVoxels() * int64(voxstore.DataTypeBytes(vol.ElemType))
	voxstore.Infof("Series %s: stored %s of voxel data as %s of chunks in %s\n",
		id, humanize.Bytes(uint64(rawBytes)), humanize.Bytes(uint64(written)), storePath)

	sidecarPath := sidecar.PathFor(storePath)
	if err := sidecar.Write(sidecarPath, sidecar.NewRecord(files, geom, tags)); err != nil {
		return err
	}
	return nil
}

// ReconstructSeries reads a series' store and sidecar back and rebuilds its
// slice directory, returning the per-slice outcomes.
func (p *Pipeline) ReconstructSeries(id string) ([]series.SliceOutcome, error) {
	storePath := p.StorePath(id)
	s, err := store.OpenWith(storePath, p.cfg.Run.CacheSize*1024*1024)
	if err != nil {
		return nil, err
	}
	vol, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	rec, err := sidecar.Read(sidecar.PathFor(storePath))
	if err != nil {
		return nil, err
	}

	outcomes, err := p.writer.Reconstruct(vol, rec, p.OutputDir(id))
	if err != nil {
		return nil, err
	}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			voxstore.Warningf("Series %s: slice %d not reconstructed: %v\n", id, outcome.Index, outcome.Err)
		}
		for _, tf := range outcome.TagFailures {
			voxstore.Debugf("Series %s: slice %d: %v\n", id, outcome.Index, tf.Err)
		}
	}
	return outcomes, nil
}

// ProcessSeries runs the full convert-then-reconstruct pipeline for one series.
// The store is fully written and closed before the paired read begins; there is
// no in-memory handoff between the writer and reader halves.
func (p *Pipeline) ProcessSeries(id string) SeriesResult {
	result := SeriesResult{
		ID:          id,
		StorePath:   p.StorePath(id),
		SidecarPath: sidecar.PathFor(p.StorePath(id)),
		OutputDir:   p.OutputDir(id),
	}

	if err := p.ConvertSeries(id); err != nil {
		var derr *voxstore.DiscoveryError
		if errors.As(err, &derr) {
			voxstore.Infof("Series %s: no source files, skipping\n", id)
			result.Status = StatusSkipped
			result.Err = err
			return result
		}
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	outcomes, err := p.ReconstructSeries(id)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	result.Status = StatusOK
	result.Slices = outcomes
	return result
}

// Run processes every series directory under the raw root.  A missing raw root
// aborts the whole run; everything below that is contained per series.
// Series are independent, so they may be processed concurrently up to the
// configured worker bound.
func (p *Pipeline) Run() ([]SeriesResult, error) {
	entries, err := os.ReadDir(p.cfg.Paths.Raw)
	if err != nil {
		return nil, fmt.Errorf("raw directory %q: %v", p.cfg.Paths.Raw, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	if len(ids) == 0 {
		voxstore.Infof("No series folders found in %s\n", p.cfg.Paths.Raw)
		return nil, nil
	}

	results := make([]SeriesResult, len(ids))
	var g errgroup.Group
	g.SetLimit(p.cfg.Run.Workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = p.ProcessSeries(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
