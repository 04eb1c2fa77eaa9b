// Package meta loads per-category JSON metadata documents into the
// normalized in-memory dataset consumed by the materializer.
//
// Each document is named <category>.json and describes one object
// category: a meta block (normal_class, prefix) plus train and test
// sample lists. Paths inside a document are relative to
// <image-root>/<prefix>.
package meta

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/dinoprep/api"
)

var (
	normalClassExpr = jp.C("meta").C("normal_class")
	prefixExpr      = jp.C("meta").C("prefix")
)

// Load parses every *.json document in jsonDir and returns the combined
// dataset. Image and mask paths are resolved against imageRoot but not
// checked for existence; that is the materializer's job.
//
// A malformed document fails the whole load: partially loaded
// categories would silently shrink the output tree.
func Load(jsonDir, imageRoot string) (api.Dataset, error) {
	entries, err := os.ReadDir(jsonDir)
	if err != nil {
		return nil, fmt.Errorf("read metadata directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	ds := api.Dataset{}
	for _, name := range names {
		category := strings.TrimSuffix(name, ".json")
		split, err := LoadDocument(filepath.Join(jsonDir, name), imageRoot)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		ds[category] = split
	}
	return ds, nil
}

// LoadDocument parses a single category document.
func LoadDocument(path, imageRoot string) (*api.Split, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	normalClass, ok := firstString(normalClassExpr, doc)
	if !ok {
		return nil, fmt.Errorf("missing meta.normal_class")
	}
	prefix, ok := firstString(prefixExpr, doc)
	if !ok {
		return nil, fmt.Errorf("missing meta.prefix")
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root is not an object")
	}

	split := &api.Split{}

	for i, raw := range listField(root, "train") {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("train[%d]: entry is not an object", i)
		}
		rel, ok := stringField(item, "image_path")
		if !ok {
			return nil, fmt.Errorf("train[%d]: missing image_path", i)
		}
		anomalyClass, ok := stringField(item, "anomaly_class")
		if !ok {
			anomalyClass = normalClass
		}
		// Anomalous training entries are dropped: downstream training
		// expects only normal samples under train/good.
		if anomalyClass != normalClass {
			continue
		}
		split.Train = append(split.Train, api.Sample{
			ImagePath:    filepath.Join(imageRoot, prefix, rel),
			Label:        false,
			AnomalyClass: normalClass,
		})
	}

	for i, raw := range listField(root, "test") {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("test[%d]: entry is not an object", i)
		}
		rel, ok := stringField(item, "image_path")
		if !ok {
			return nil, fmt.Errorf("test[%d]: missing image_path", i)
		}
		anomalyClass, ok := stringField(item, "anomaly_class")
		if !ok {
			return nil, fmt.Errorf("test[%d]: missing anomaly_class", i)
		}

		sample := api.Sample{
			ImagePath:    filepath.Join(imageRoot, prefix, rel),
			Label:        anomalyClass != normalClass,
			AnomalyClass: anomalyClass,
		}
		// Masks only make sense for anomalous samples; a mask_path on a
		// normal entry is ignored.
		if sample.Label {
			if maskRel, ok := stringField(item, "mask_path"); ok {
				sample.MaskPath = filepath.Join(imageRoot, prefix, maskRel)
			}
		}
		split.Test = append(split.Test, sample)
	}

	return split, nil
}

func firstString(x jp.Expr, doc any) (string, bool) {
	for _, v := range x.Get(doc) {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

func listField(m map[string]any, key string) []any {
	list, _ := m[key].([]any)
	return list
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}
