package train

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/marinelab/underwater-detect/models"
)

// LabelMap is the dataset descriptor consumed by the validation run over the
// held-out test split.
type LabelMap struct {
	Path  string   `yaml:"path"`
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// TestLabelMap describes the test split rooted at datasetRoot, with the
// images directory standing in as the validation set.
func TestLabelMap(datasetRoot string) LabelMap {
	return LabelMap{
		Path:  datasetRoot,
		Train: "",
		Val:   "images",
		NC:    len(models.Classes),
		Names: models.Classes,
	}
}

// WriteTestLabelMap serializes the test label map to path.
func WriteTestLabelMap(path, datasetRoot string) error {
	data, err := yaml.Marshal(TestLabelMap(datasetRoot))
	if err != nil {
		return fmt.Errorf("marshal label map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write label map: %w", err)
	}
	return nil
}
