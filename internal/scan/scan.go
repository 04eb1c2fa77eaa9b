// Package scan re-derives dataset structure from a materialized tree.
// It is a pure directory walk: it does not read JSON metadata and does
// not care how the tree was produced.
package scan

import (
	"fmt"
	"sort"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/dinoprep/api"
)

// Result describes a materialized tree: the object (category) list and
// the anomaly types found per object, both alphabetically sorted. The
// counts are informational only.
type Result struct {
	Objects     []string
	Anomalies   map[string][]string
	TrainCounts map[string]int
	TestCounts  map[string]int
}

// Scan walks the tree rooted at root. Directory entries under the root
// are objects; directories under <object>/test other than "good" are
// anomaly types. Non-directories are ignored at both levels, and a
// missing test directory yields an empty anomaly list.
//
// A missing root is an error.
func Scan(fs billy.Filesystem, root string) (*Result, error) {
	if _, err := fs.Stat(root); err != nil {
		return nil, fmt.Errorf("data root not found: %s: %w", root, err)
	}
	entries, err := fs.ReadDir(root)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Anomalies:   map[string][]string{},
		TrainCounts: map[string]int{},
		TestCounts:  map[string]int{},
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		res.Objects = append(res.Objects, e.Name())
	}
	sort.Strings(res.Objects)

	for _, object := range res.Objects {
		testDir := fs.Join(root, object, api.TestDir)

		anomalies := []string{}
		if sub, err := fs.ReadDir(testDir); err == nil {
			for _, e := range sub {
				if e.IsDir() && e.Name() != api.GoodBucket {
					anomalies = append(anomalies, e.Name())
				}
			}
		}
		sort.Strings(anomalies)
		res.Anomalies[object] = anomalies

		res.TrainCounts[object] = countFiles(fs, fs.Join(root, object, api.TrainDir, api.GoodBucket), false)
		res.TestCounts[object] = countFiles(fs, testDir, true)
	}

	return res, nil
}

// countFiles counts regular files under dir, optionally recursing.
// A missing directory counts as zero.
func countFiles(fs billy.Filesystem, dir string, recursive bool) int {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			if recursive {
				n += countFiles(fs, fs.Join(dir, e.Name()), true)
			}
			continue
		}
		n++
	}
	return n
}
