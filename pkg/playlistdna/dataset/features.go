package dataset

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/features"
	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

// FeatureRow is one track of a features table.
type FeatureRow struct {
	Track      string    `parquet:"track"`
	Label      string    `parquet:"label"`
	LabelIndex int64     `parquet:"label_index"`
	Features   []float64 `parquet:"features,list"`
}

// WriteFeatures stores a transform result as a Parquet table at path.
func WriteFeatures(path string, res *features.Result) error {
	rows := make([]FeatureRow, len(res.Arrays))
	for i, arr := range res.Arrays {
		rows[i] = FeatureRow{
			Track:      res.Names[i],
			Label:      res.Labels[i],
			LabelIndex: int64(res.LabelIndex(i)),
			Features:   arr,
		}
	}
	tmp := utils.TempPath(path)
	if err := parquet.WriteFile(tmp, rows); err != nil {
		return fmt.Errorf("writing features: %w", err)
	}
	return utils.MoveFile(tmp, path)
}

// ReadFeatures loads a table written by WriteFeatures.
func ReadFeatures(path string) ([]FeatureRow, error) {
	rows, err := parquet.ReadFile[FeatureRow](path)
	if err != nil {
		return nil, fmt.Errorf("reading features %s: %w", path, err)
	}
	return rows, nil
}
