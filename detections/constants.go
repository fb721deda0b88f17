package detections

const (
	InputWidth  = 640
	InputHeight = 640

	// NumClasses is the size of the underwater label set the models emit.
	NumClasses = 7

	// NumPredictions is the YOLOv8 anchor-free grid size at 640x640 input.
	NumPredictions = 8400

	// OutputChannels is cx, cy, w, h plus one score per class.
	OutputChannels = 4 + NumClasses

	DefaultConfThreshold = 0.25
	DefaultIoUThreshold  = 0.45

	RetryAttempts = 3
	RetryDelayMs  = 100
)
