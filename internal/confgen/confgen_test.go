package confgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams(preprocess string) Params {
	return Params{
		Dataset:    "MyDataset",
		Preprocess: preprocess,
		Objects:    []string{"bolt", "gear"},
		Anomalies: map[string][]string{
			"bolt": {"crack", "scratch"},
			"gear": {},
		},
	}
}

func TestRender(t *testing.T) {
	code, err := Render(testParams("agnostic"))
	require.NoError(t, err)

	assert.Contains(t, code, `elif dataset == "MyDataset":`)
	assert.Contains(t, code, `objects = ["bolt", "gear"]`)
	assert.Contains(t, code, `"bolt": ["crack", "scratch"]`)
	assert.Contains(t, code, `"gear": []`)
}

func TestRender_PreprocessTable(t *testing.T) {
	cases := []struct {
		preprocess string
		masking    string
		rotation   string // empty = line omitted
	}{
		{"informed_no_mask", "False", "False"},
		{"agnostic_no_mask", "False", "True"},
		{"agnostic", "True", "True"},
		{"informed", "True", "False"},
		{"masking_only", "True", "False"},
		{"something_else", "True", ""},
	}
	for _, tc := range cases {
		t.Run(tc.preprocess, func(t *testing.T) {
			code, err := Render(testParams(tc.preprocess))
			require.NoError(t, err)

			assert.Contains(t, code, "masking_default = {o: "+tc.masking+" for o in objects}")
			if tc.rotation == "" {
				assert.NotContains(t, code, "rotation_default")
			} else {
				assert.Contains(t, code, "rotation_default = {o: "+tc.rotation+" for o in objects}")
			}
		})
	}
}

func TestRender_ObjectOrderPreserved(t *testing.T) {
	p := testParams("agnostic")
	code, err := Render(p)
	require.NoError(t, err)

	bolt := strings.Index(code, `"bolt": [`)
	gear := strings.Index(code, `"gear": [`)
	require.True(t, bolt >= 0 && gear >= 0)
	assert.Less(t, bolt, gear)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, code, err := WriteFile(dir, testParams("informed"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dataset_config_MyDataset.txt"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// Two-line instructional header, then the snippet verbatim.
	assert.True(t, strings.HasPrefix(string(content),
		"# Add this code to src/utils.py in the get_dataset_info() function\n"+
			"# Insert it before the final 'else' clause that raises ValueError\n\n"))
	assert.True(t, strings.HasSuffix(string(content), code))
}
