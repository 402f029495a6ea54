//go:build cgo

package spatial

import (
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// onnx runtime environment is process-wide; initialize it exactly once no
// matter how many estimators are constructed.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// ONNXConfig locates and names the monocular depth model.
type ONNXConfig struct {
	// ModelPath is the .onnx file of a relative-depth model (MiDaS or
	// DepthAnything exports work; anything taking a 1x3x384x384 NCHW
	// float input and producing a single depth plane).
	ModelPath string

	// LibraryPath optionally points at the onnxruntime shared library.
	// Empty uses the platform default search path.
	LibraryPath string

	// InputName and OutputName default to "image" and "depth".
	InputName  string
	OutputName string
}

// ONNXEstimator runs a monocular depth model through ONNX Runtime. The
// session is created once at construction and is safe for concurrent
// EstimateDepth calls; Run serializes internally per session, which is
// acceptable since depth is the minority cost of a pipeline run.
type ONNXEstimator struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
}

const onnxInputSide = 384

// NewONNXEstimator loads the configured model. A missing model file or an
// unloadable runtime returns ErrDepthUnavailable wrapped with detail, so
// callers can treat misconfiguration as "no depth" rather than an error.
func NewONNXEstimator(cfg ONNXConfig) (Estimator, error) {
	if cfg.ModelPath == "" {
		return nil, ErrDepthUnavailable
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("depth model %s: %w", cfg.ModelPath, ErrDepthUnavailable)
	}

	ortInitOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("onnxruntime init: %w", ortInitErr)
	}

	inputName := cfg.InputName
	if inputName == "" {
		inputName = "image"
	}
	outputName := cfg.OutputName
	if outputName == "" {
		outputName = "depth"
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{inputName},
		[]string{outputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create onnx session: %w", err)
	}
	return &ONNXEstimator{session: session}, nil
}

func (*ONNXEstimator) Name() string { return "onnx-monodepth" }

// EstimateDepth resizes the image to the model's square input, runs
// inference, and returns the min-max normalized plane resampled back to
// the image's dimensions.
func (e *ONNXEstimator) EstimateDepth(img *image.NRGBA) ([][]float64, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty image")
	}

	input, err := ort.NewTensor(
		ort.NewShape(1, 3, onnxInputSide, onnxInputSide),
		nchwInput(img, onnxInputSide),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	e.mu.Lock()
	err = e.session.Run([]ort.Value{input}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("depth inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	plane, err := planeFromTensor(tensor)
	if err != nil {
		return nil, err
	}
	return ResamplePlane(NormalizePlane(plane), width, height), nil
}

// nchwInput produces the 1x3xXxX float input: nearest-neighbor resize,
// values scaled to [0,1], channel-major layout.
func nchwInput(img *image.NRGBA, side int) []float32 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]float32, 3*side*side)
	planeSize := side * side
	for y := 0; y < side; y++ {
		sy := y * height / side
		for x := 0; x < side; x++ {
			sx := x * width / side
			off := img.PixOffset(bounds.Min.X+sx, bounds.Min.Y+sy)
			idx := y*side + x
			data[idx] = float32(img.Pix[off]) / 255.0
			data[planeSize+idx] = float32(img.Pix[off+1]) / 255.0
			data[2*planeSize+idx] = float32(img.Pix[off+2]) / 255.0
		}
	}
	return data
}

// planeFromTensor interprets the model output as a single depth plane. The
// last two shape dimensions are rows and columns; leading batch/channel
// dimensions must be 1.
func planeFromTensor(t *ort.Tensor[float32]) ([][]float64, error) {
	shape := t.GetShape()
	if len(shape) < 2 {
		return nil, fmt.Errorf("unexpected depth output shape %v", shape)
	}
	for _, d := range shape[:len(shape)-2] {
		if d != 1 {
			return nil, fmt.Errorf("unexpected depth output shape %v", shape)
		}
	}
	rows := int(shape[len(shape)-2])
	cols := int(shape[len(shape)-1])

	data := t.GetData()
	if len(data) < rows*cols {
		return nil, fmt.Errorf("depth output has %d values, want %d", len(data), rows*cols)
	}

	plane := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		row := make([]float64, cols)
		for x := 0; x < cols; x++ {
			row[x] = float64(data[y*cols+x])
		}
		plane[y] = row
	}
	return plane, nil
}
