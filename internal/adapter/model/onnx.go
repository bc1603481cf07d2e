package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/EpsilonIndustries21/sentiment/internal/domain/service"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXClassifier runs a scikit-learn classifier exported to ONNX with
// zipmap disabled: one float input [batch, n_features], an int64 label
// output and a float probability output [batch, 2].
type ONNXClassifier struct {
	mu          sync.Mutex
	session     *ort.DynamicAdvancedSession
	inputName   string
	labelName   string
	probName    string
	numFeatures int64
}

var _ service.JointClassifier = (*ONNXClassifier)(nil)

// NewONNXClassifier loads the model at modelPath. When libPath is empty the
// runtime library is expected next to the model as libonnxruntime.so.
func NewONNXClassifier(modelPath, libPath string) (*ONNXClassifier, error) {
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	c := &ONNXClassifier{}
	if err := c.bindTensors(inputs, outputs); err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	_ = opts.SetIntraOpNumThreads(1)
	_ = opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{c.inputName},
		[]string{c.labelName, c.probName},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}
	c.session = session
	return c, nil
}

// bindTensors picks the input and the label/probability outputs by type.
func (c *ONNXClassifier) bindTensors(inputs, outputs []ort.InputOutputInfo) error {
	if len(inputs) != 1 {
		return fmt.Errorf("onnx: expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if in.DataType != ort.TensorElementDataTypeFloat || len(in.Dimensions) != 2 || in.Dimensions[1] <= 0 {
		return fmt.Errorf("onnx: input %q must be float [batch, n_features], got %v", in.Name, in.Dimensions)
	}
	c.inputName = in.Name
	c.numFeatures = in.Dimensions[1]

	for _, out := range outputs {
		switch {
		case out.OrtValueType != ort.ONNXTypeTensor:
			continue
		case out.DataType == ort.TensorElementDataTypeInt64 && c.labelName == "":
			c.labelName = out.Name
		case out.DataType == ort.TensorElementDataTypeFloat && c.probName == "":
			if len(out.Dimensions) != 2 || (out.Dimensions[1] != 2 && out.Dimensions[1] != -1) {
				return fmt.Errorf("onnx: probability output %q must be [batch, 2], got %v", out.Name, out.Dimensions)
			}
			c.probName = out.Name
		}
	}
	if c.labelName == "" || c.probName == "" {
		return errors.New("onnx: model needs an int64 label tensor and a float probability tensor (export with zipmap disabled)")
	}
	return nil
}

func (c *ONNXClassifier) infer(v service.Vector) (int, []float64, error) {
	if int64(v.Dim) != c.numFeatures {
		return 0, nil, fmt.Errorf("dimension mismatch: vector has %d features, model expects %d", v.Dim, c.numFeatures)
	}

	input, err := ort.NewTensor(ort.NewShape(1, c.numFeatures), v.Dense())
	if err != nil {
		return 0, nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	label, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, nil, fmt.Errorf("onnx: failed to create label tensor: %w", err)
	}
	defer label.Destroy()

	probs, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return 0, nil, fmt.Errorf("onnx: failed to create probability tensor: %w", err)
	}
	defer probs.Destroy()

	c.mu.Lock()
	err = c.session.Run([]ort.Value{input}, []ort.Value{label, probs})
	c.mu.Unlock()
	if err != nil {
		return 0, nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	p := probs.GetData()
	return int(label.GetData()[0]), []float64{float64(p[0]), float64(p[1])}, nil
}

// Predict returns the label emitted by the model
func (c *ONNXClassifier) Predict(v service.Vector) (int, error) {
	label, _, err := c.infer(v)
	return label, err
}

// PredictProbability returns the model's probability pair
func (c *ONNXClassifier) PredictProbability(v service.Vector) ([]float64, error) {
	_, probs, err := c.infer(v)
	return probs, err
}

// PredictWithProbability runs the session once for both outputs
func (c *ONNXClassifier) PredictWithProbability(v service.Vector) (int, []float64, error) {
	return c.infer(v)
}

// Classes returns the labels of the exported binary model
func (c *ONNXClassifier) Classes() []int { return []int{0, 1} }

// NumFeatures returns the expected input dimension
func (c *ONNXClassifier) NumFeatures() int { return int(c.numFeatures) }

// Type returns the backend name
func (c *ONNXClassifier) Type() string { return TypeONNXClassifier }

// Close releases the ONNX session
func (c *ONNXClassifier) Close() error {
	if c.session == nil {
		return nil
	}
	return c.session.Destroy()
}
