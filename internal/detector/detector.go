// Package detector adapts the external object-detection and pose-estimation
// sidecar into the signals the activity classifier consumes. The sidecar is
// treated as an opaque model service: this package only filters its raw
// output and derives the body-geometry flags.
package detector

// Confidence and geometry thresholds. The pixel offsets assume typical
// camera framing and are intentionally not normalized by person scale.
const (
	// minConfidence filters raw detections from the sidecar.
	minConfidence = 0.5

	// headDownOffset: nose this many pixels below the shoulder average
	// reads as head down.
	headDownOffset = 30

	// handRaisedOffset: wrist this many pixels above its shoulder reads
	// as a raised hand.
	handRaisedOffset = 50
)

// Point is a 2D keypoint in image pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Keypoints holds the named body keypoints the classifier cares about.
// Coordinates of zero mean the point was not located in the frame.
type Keypoints struct {
	Nose          Point
	LeftShoulder  Point
	RightShoulder Point
	LeftWrist     Point
	RightWrist    Point
}

// Detection is one confidence-filtered object label.
type Detection struct {
	Label      string
	Confidence float64
}

// Result is the adapter output for one frame.
type Result struct {
	Objects   []Detection
	Keypoints *Keypoints
}

// Labels returns the detected object labels in detection order.
// Duplicates are preserved, mirroring the raw detections.
func (r *Result) Labels() []string {
	labels := make([]string, 0, len(r.Objects))
	for _, d := range r.Objects {
		labels = append(labels, d.Label)
	}
	return labels
}

// HeadDown reports whether the nose sits below the shoulder average by the
// fixed offset. Both the nose and left shoulder must have valid (positive)
// coordinates.
func (k *Keypoints) HeadDown() bool {
	if k == nil {
		return false
	}
	if k.Nose.Y <= 0 || k.LeftShoulder.Y <= 0 {
		return false
	}
	avgShoulder := (k.LeftShoulder.Y + k.RightShoulder.Y) / 2
	return k.Nose.Y > avgShoulder+headDownOffset
}

// HandRaised reports whether either wrist sits above its shoulder by the
// fixed offset.
func (k *Keypoints) HandRaised() bool {
	if k == nil {
		return false
	}
	return k.LeftWrist.Y < k.LeftShoulder.Y-handRaisedOffset ||
		k.RightWrist.Y < k.RightShoulder.Y-handRaisedOffset
}
