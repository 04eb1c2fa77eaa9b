// Package materialize builds the on-disk dataset layout expected by the
// downstream vision pipeline out of loaded metadata:
//
//	<root>/<category>/train/good/<image>
//	<root>/<category>/test/<bucket>/<image>
//	<root>/<category>/ground_truth/<bucket>/<image>   (masks)
//
// Entries are filesystem links back to the source images, never copies
// of the data (unless copy mode is selected). The whole package is
// written against billy.Filesystem so tests run on an in-memory
// filesystem and the CLI runs on the real one.
package materialize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/dinoprep/api"
)

// ErrOutputExists is returned by Prepare when the output root already
// exists and merging was not explicitly requested.
var ErrOutputExists = errors.New("output directory already exists (pass merge to populate it anyway)")

// LinkMode selects the mechanism used to materialize a reference to a
// source file. The contract is only "the output path resolves to the
// same content as the source".
type LinkMode int

const (
	LinkSymlink LinkMode = iota
	LinkCopy
)

// ParseLinkMode maps a config/flag string to a LinkMode.
func ParseLinkMode(s string) (LinkMode, error) {
	switch s {
	case "", "symlink":
		return LinkSymlink, nil
	case "copy":
		return LinkCopy, nil
	}
	return 0, fmt.Errorf("unknown link mode %q (want symlink or copy)", s)
}

func (m LinkMode) String() string {
	if m == LinkCopy {
		return "copy"
	}
	return "symlink"
}

// Link describes one materialized entry, as reported to a Recorder.
type Link struct {
	Path     string // link location inside the output tree
	Source   string // resolved source file
	Category string
	Phase    api.Phase
	Bucket   string
	Mode     LinkMode
}

// Recorder receives every link the materializer creates. The SQLite
// manifest implements it; a failing Recorder aborts the run.
type Recorder interface {
	Record(l Link) error
}

// Options configures a Materializer.
type Options struct {
	// Mode selects symlinks (default) or full copies.
	Mode LinkMode
	// Recorder, when set, is notified of every created link.
	Recorder Recorder
	// Out receives progress lines and data-quality warnings.
	// Defaults to os.Stdout.
	Out io.Writer
}

// CategoryStats accumulates per-category sample counts.
type CategoryStats struct {
	Train   int
	Buckets []BucketCount // test buckets, first-seen order
}

// BucketCount is the number of test samples grouped into one bucket.
type BucketCount struct {
	Bucket  string
	Samples int
}

// Test returns the total number of test samples across buckets.
func (c *CategoryStats) Test() int {
	n := 0
	for _, b := range c.Buckets {
		n += b.Samples
	}
	return n
}

// AnomalyTypes returns how many non-good buckets the category has.
func (c *CategoryStats) AnomalyTypes() int {
	n := 0
	for _, b := range c.Buckets {
		if b.Bucket != api.GoodBucket {
			n++
		}
	}
	return n
}

// Stats is the accumulated outcome of one materializer run. It is
// returned to the caller rather than kept in process-wide counters.
type Stats struct {
	Categories   []string
	PerCategory  map[string]*CategoryStats
	TotalLinks   int
	MissingFiles int
}

// Materializer populates an output tree from a loaded dataset.
type Materializer struct {
	fs   billy.Filesystem
	opts Options
}

// New returns a Materializer writing through fs.
func New(fs billy.Filesystem, opts Options) *Materializer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Materializer{fs: fs, opts: opts}
}

// Prepare checks the output-root precondition: an already existing root
// is only populated when merge is set. On success the root directory
// exists. Declining to merge leaves the filesystem untouched.
func Prepare(fs billy.Filesystem, outputRoot string, merge bool) error {
	if _, err := fs.Stat(outputRoot); err == nil {
		if !merge {
			return fmt.Errorf("%w: %s", ErrOutputExists, outputRoot)
		}
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return fs.MkdirAll(outputRoot, 0o755)
}

// Run materializes every category of ds under outputRoot.
//
// Links are created at most once per target name, so re-running over an
// existing tree only fills in what is missing. Missing source files are
// counted and reported, never fatal; only filesystem errors and
// Recorder failures abort the run.
func (m *Materializer) Run(ds api.Dataset, outputRoot string) (*Stats, error) {
	if err := m.fs.MkdirAll(outputRoot, 0o755); err != nil {
		return nil, err
	}

	stats := &Stats{PerCategory: map[string]*CategoryStats{}}

	categories := make([]string, 0, len(ds))
	for c := range ds {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(m.opts.Out, "Processing category: %s\n", category)
		cs := &CategoryStats{}
		stats.Categories = append(stats.Categories, category)
		stats.PerCategory[category] = cs

		if err := m.runCategory(ds[category], outputRoot, category, cs, stats); err != nil {
			return nil, fmt.Errorf("category %s: %w", category, err)
		}
	}
	return stats, nil
}

func (m *Materializer) runCategory(split *api.Split, outputRoot, category string, cs *CategoryStats, stats *Stats) error {
	trainDir := m.fs.Join(outputRoot, category, api.TrainDir, api.GoodBucket)
	if err := m.fs.MkdirAll(trainDir, 0o755); err != nil {
		return err
	}

	cs.Train = len(split.Train)
	for _, sample := range split.Train {
		if !m.exists(sample.ImagePath) {
			m.warnf("image not found: %s", sample.ImagePath)
			stats.MissingFiles++
			continue
		}
		if err := m.link(sample.ImagePath, trainDir, Link{
			Source:   sample.ImagePath,
			Category: category,
			Phase:    api.PhaseTrain,
			Bucket:   api.GoodBucket,
		}, stats); err != nil {
			return err
		}
	}
	fmt.Fprintf(m.opts.Out, "  - %d train samples\n", cs.Train)

	for _, bucket := range groupByBucket(split.Test) {
		testDir := m.fs.Join(outputRoot, category, api.TestDir, bucket.name)
		if err := m.fs.MkdirAll(testDir, 0o755); err != nil {
			return err
		}
		cs.Buckets = append(cs.Buckets, BucketCount{Bucket: bucket.name, Samples: len(bucket.samples)})

		for _, sample := range bucket.samples {
			if !m.exists(sample.ImagePath) {
				m.warnf("image not found: %s", sample.ImagePath)
				stats.MissingFiles++
				continue
			}
			if err := m.link(sample.ImagePath, testDir, Link{
				Source:   sample.ImagePath,
				Category: category,
				Phase:    api.PhaseTest,
				Bucket:   bucket.name,
			}, stats); err != nil {
				return err
			}

			if !sample.Label || sample.MaskPath == "" {
				continue
			}
			if !m.exists(sample.MaskPath) {
				m.warnf("mask not found: %s", sample.MaskPath)
				stats.MissingFiles++
				continue
			}
			// The mask link is named after the image, not the mask, so
			// test/<bucket>/x.png and ground_truth/<bucket>/x.png pair up.
			maskDir := m.fs.Join(outputRoot, category, api.GroundTruthDir, bucket.name)
			if err := m.fs.MkdirAll(maskDir, 0o755); err != nil {
				return err
			}
			if err := m.linkNamed(sample.MaskPath, maskDir, filepath.Base(sample.ImagePath), Link{
				Source:   sample.MaskPath,
				Category: category,
				Phase:    api.PhaseTest,
				Bucket:   bucket.name,
			}, stats); err != nil {
				return err
			}
		}
		fmt.Fprintf(m.opts.Out, "  - %d test samples in %q\n", len(bucket.samples), bucket.name)
	}
	return nil
}

type bucketGroup struct {
	name    string
	samples []api.Sample
}

// groupByBucket splits test samples into buckets keyed by Sample.Bucket,
// preserving first-seen order.
func groupByBucket(samples []api.Sample) []bucketGroup {
	index := map[string]int{}
	var groups []bucketGroup
	for _, s := range samples {
		key := s.Bucket()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, bucketGroup{name: key})
		}
		groups[i].samples = append(groups[i].samples, s)
	}
	return groups
}

func (m *Materializer) link(src, dir string, l Link, stats *Stats) error {
	return m.linkNamed(src, dir, filepath.Base(src), l, stats)
}

// linkNamed creates dir/name referring to src, unless dir/name already
// exists. Colliding base names within one bucket silently keep the
// first entry.
func (m *Materializer) linkNamed(src, dir, name string, l Link, stats *Stats) error {
	dst := m.fs.Join(dir, name)
	if _, err := m.fs.Lstat(dst); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	switch m.opts.Mode {
	case LinkCopy:
		if err := m.copyFile(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", dst, err)
		}
	default:
		if err := m.fs.Symlink(src, dst); err != nil {
			return fmt.Errorf("symlink %s: %w", dst, err)
		}
	}
	stats.TotalLinks++

	if m.opts.Recorder != nil {
		l.Path = dst
		l.Mode = m.opts.Mode
		if err := m.opts.Recorder.Record(l); err != nil {
			return fmt.Errorf("record %s: %w", dst, err)
		}
	}
	return nil
}

func (m *Materializer) copyFile(src, dst string) error {
	in, err := m.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := m.fs.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func (m *Materializer) exists(path string) bool {
	_, err := m.fs.Stat(path)
	return err == nil
}
