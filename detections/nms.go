package detections

// SuppressOverlaps applies class-aware non-max suppression. Candidates must
// be sorted by descending confidence; a box is dropped when it overlaps an
// already-kept box of the same class above the IoU threshold.
func SuppressOverlaps(candidates []candidate, iouThreshold float32) []candidate {
	if len(candidates) == 0 {
		return nil
	}
	if iouThreshold <= 0 {
		iouThreshold = DefaultIoUThreshold
	}

	kept := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		suppressed := false
		for _, k := range kept {
			if k.ClassID != c.ClassID {
				continue
			}
			if iou(k.BBox, c.BBox) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}

// iou is intersection area over union area of two corner-format boxes.
func iou(a, b [4]int32) float32 {
	interW := minI32(a[2], b[2]) - maxI32(a[0], b[0])
	interH := minI32(a[3], b[3]) - maxI32(a[1], b[1])
	if interW <= 0 || interH <= 0 {
		return 0
	}

	inter := float32(interW) * float32(interH)
	areaA := float32(a[2]-a[0]) * float32(a[3]-a[1])
	areaB := float32(b[2]-b[0]) * float32(b[3]-b[1])
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
