package train

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoMetrics means the validation output held no parsable summary row.
var ErrNoMetrics = errors.New("no mAP50 found in validation output")

// ExtractMAP50 pulls the box mAP50 out of `yolo detect val` console output.
// The CLI prints a per-class table whose summary row reads
//
//	all  <images>  <instances>  <P>  <R>  <mAP50>  <mAP50-95>
//
// so the metric is the sixth column of the "all" row. The last such row
// wins when the output holds several tables.
func ExtractMAP50(output string) (float64, error) {
	var value float64
	found := false

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 7 || fields[0] != "all" {
			continue
		}
		v, err := strconv.ParseFloat(fields[5], 64)
		if err != nil || v < 0 || v > 1 {
			continue
		}
		value = v
		found = true
	}

	if !found {
		return 0, ErrNoMetrics
	}
	return value, nil
}
