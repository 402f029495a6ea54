//go:build !cgo

package spatial

// ONNXConfig locates and names the monocular depth model. Without CGO the
// ONNX runtime cannot be linked, so the configuration is accepted but
// never usable.
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string
	InputName   string
	OutputName  string
}

// NewONNXEstimator always reports depth as unavailable in non-CGO builds;
// the pipeline degrades to the edge-based heuristics.
func NewONNXEstimator(ONNXConfig) (Estimator, error) {
	return nil, ErrDepthUnavailable
}
