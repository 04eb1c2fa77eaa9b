package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	jsonDir := t.TempDir()
	imageRoot := t.TempDir()

	writeDoc(t, jsonDir, "catA.json", `{
		"meta": {"normal_class": "good", "prefix": "catA"},
		"train": [
			{"image_path": "0.png"},
			{"image_path": "bad.png", "anomaly_class": "crack"}
		],
		"test": [
			{"image_path": "1.png", "anomaly_class": "good"},
			{"image_path": "2.png", "anomaly_class": "scratch", "mask_path": "m2.png"}
		]
	}`)

	ds, err := Load(jsonDir, imageRoot)
	require.NoError(t, err)
	require.Contains(t, ds, "catA")
	split := ds["catA"]

	// Anomalous train entries are dropped entirely.
	require.Len(t, split.Train, 1)
	assert.Equal(t, filepath.Join(imageRoot, "catA", "0.png"), split.Train[0].ImagePath)
	assert.False(t, split.Train[0].Label)
	assert.Equal(t, "good", split.Train[0].AnomalyClass)
	assert.Empty(t, split.Train[0].MaskPath)

	require.Len(t, split.Test, 2)
	normal, anomalous := split.Test[0], split.Test[1]

	assert.False(t, normal.Label)
	assert.Equal(t, "good", normal.AnomalyClass)
	assert.Empty(t, normal.MaskPath)

	assert.True(t, anomalous.Label)
	assert.Equal(t, "scratch", anomalous.AnomalyClass)
	assert.Equal(t, filepath.Join(imageRoot, "catA", "m2.png"), anomalous.MaskPath)
}

func TestLoad_LabelMatchesAnomalyClass(t *testing.T) {
	jsonDir := t.TempDir()

	// normal_class other than "good": the literal class name decides the
	// label, not the word "good".
	writeDoc(t, jsonDir, "widget.json", `{
		"meta": {"normal_class": "ok", "prefix": "w"},
		"test": [
			{"image_path": "a.png", "anomaly_class": "ok"},
			{"image_path": "b.png", "anomaly_class": "good"}
		]
	}`)

	ds, err := Load(jsonDir, t.TempDir())
	require.NoError(t, err)
	split := ds["widget"]
	require.Len(t, split.Test, 2)
	assert.False(t, split.Test[0].Label)
	assert.True(t, split.Test[1].Label, `"good" differs from normal_class "ok"`)
}

func TestLoad_MaskOnNormalEntryIgnored(t *testing.T) {
	jsonDir := t.TempDir()
	writeDoc(t, jsonDir, "c.json", `{
		"meta": {"normal_class": "good", "prefix": "c"},
		"test": [{"image_path": "a.png", "anomaly_class": "good", "mask_path": "m.png"}]
	}`)

	ds, err := Load(jsonDir, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, ds["c"].Test[0].MaskPath)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"malformed json", `{"meta": {`},
		{"missing normal_class", `{"meta": {"prefix": "p"}, "test": []}`},
		{"missing prefix", `{"meta": {"normal_class": "good"}, "test": []}`},
		{"test missing anomaly_class", `{
			"meta": {"normal_class": "good", "prefix": "p"},
			"test": [{"image_path": "a.png"}]
		}`},
		{"train missing image_path", `{
			"meta": {"normal_class": "good", "prefix": "p"},
			"train": [{"anomaly_class": "good"}]
		}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			jsonDir := t.TempDir()
			writeDoc(t, jsonDir, "cat.json", tc.doc)
			_, err := Load(jsonDir, t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoad_SkipsNonJSONFiles(t *testing.T) {
	jsonDir := t.TempDir()
	writeDoc(t, jsonDir, "readme.txt", "not metadata")
	writeDoc(t, jsonDir, "cat.json", `{
		"meta": {"normal_class": "good", "prefix": "p"},
		"train": [], "test": []
	}`)

	ds, err := Load(jsonDir, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, ds, 1)
	assert.Contains(t, ds, "cat")
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.Error(t, err)
}
