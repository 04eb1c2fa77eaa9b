package api

// Phase identifies which split of a category a sample belongs to.
type Phase string

const (
	PhaseTrain Phase = "train"
	PhaseTest  Phase = "test"
)

// Directory names shared by the materializer and the structure scanner.
// Every materialized tree follows <root>/<category>/{train,test,ground_truth}/...
const (
	TrainDir       = "train"
	TestDir        = "test"
	GroundTruthDir = "ground_truth"
	GoodBucket     = "good"
)

// Sample is one dataset entry resolved against the image root.
type Sample struct {
	// ImagePath is the resolved path of the source image.
	ImagePath string `json:"image_path"`
	// MaskPath is the resolved path of the segmentation mask, or empty
	// when the sample carries no mask. Only anomalous test samples may
	// declare one.
	MaskPath string `json:"mask_path,omitempty"`
	// Label is true for anomalous samples.
	Label bool `json:"label"`
	// AnomalyClass is the defect label, or the category's normal class
	// for non-defective samples.
	AnomalyClass string `json:"anomaly_class"`
}

// Bucket returns the directory grouping key for the sample: "good" for
// normal samples, the anomaly class otherwise.
func (s Sample) Bucket() string {
	if !s.Label {
		return GoodBucket
	}
	return s.AnomalyClass
}

// Split holds the train and test samples of a single category.
type Split struct {
	Train []Sample `json:"train"`
	Test  []Sample `json:"test"`
}

// Dataset maps a category name to its samples. Categories are
// independent of each other.
type Dataset map[string]*Split
