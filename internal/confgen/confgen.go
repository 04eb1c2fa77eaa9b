// Package confgen renders the dataset-registration snippet consumed by
// the downstream pipeline's get_dataset_info() function. The output is
// deliberately a text artifact for manual copy-paste, not a structured
// object: that is the integration contract on the other side.
package confgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// fileHeader precedes the snippet in the written file.
const fileHeader = "# Add this code to src/utils.py in the get_dataset_info() function\n" +
	"# Insert it before the final 'else' clause that raises ValueError\n\n"

const snippetTemplate = `
    elif dataset == "{{.Dataset}}":
        objects = [{{.Objects}}]

        object_anomalies = {
{{.Anomalies}}
        }

        masking_default = {o: {{.Masking}} for o in objects}
{{- if .Rotation}}
        rotation_default = {o: {{.Rotation}} for o in objects}
{{- end}}
`

var snippet = template.Must(template.New("snippet").Parse(snippetTemplate))

// Params is the input to Render: the scanner's result plus the dataset
// name and preprocess mode.
type Params struct {
	Dataset    string
	Preprocess string
	Objects    []string            // scanner order
	Anomalies  map[string][]string // per object, scanner order
}

// Render produces the registration snippet. The masking and rotation
// defaults are resolved from the preprocess mode:
//
//	informed_no_mask, agnostic_no_mask  -> masking off
//	everything else                     -> masking on
//	agnostic, agnostic_no_mask          -> rotation on
//	informed, masking_only, informed_no_mask -> rotation off
//	anything else                       -> rotation line omitted
func Render(p Params) (string, error) {
	masking, rotation := lookupDefaults(p.Preprocess)

	anomalyLines := make([]string, 0, len(p.Objects))
	for _, obj := range p.Objects {
		anomalyLines = append(anomalyLines,
			fmt.Sprintf("            %q: [%s]", obj, quoteList(p.Anomalies[obj])))
	}

	var b strings.Builder
	err := snippet.Execute(&b, map[string]string{
		"Dataset":   p.Dataset,
		"Objects":   quoteList(p.Objects),
		"Anomalies": strings.Join(anomalyLines, ",\n"),
		"Masking":   pyBool(masking),
		"Rotation":  rotation,
	})
	if err != nil {
		return "", fmt.Errorf("render snippet: %w", err)
	}
	return b.String(), nil
}

// WriteFile renders the snippet and writes it, prefixed by the
// instructional header, to dataset_config_<name>.txt under dir.
// It returns the written path and the bare snippet.
func WriteFile(dir string, p Params) (string, string, error) {
	code, err := Render(p)
	if err != nil {
		return "", "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("dataset_config_%s.txt", p.Dataset))
	if err := os.WriteFile(path, []byte(fileHeader+code), 0o644); err != nil {
		return "", "", fmt.Errorf("write config snippet: %w", err)
	}
	return path, code, nil
}

func lookupDefaults(preprocess string) (masking bool, rotation string) {
	switch preprocess {
	case "informed_no_mask", "agnostic_no_mask":
		masking = false
	default:
		masking = true
	}
	switch preprocess {
	case "agnostic", "agnostic_no_mask":
		rotation = pyBool(true)
	case "informed", "masking_only", "informed_no_mask":
		rotation = pyBool(false)
	}
	return masking, rotation
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
