package detect

import (
	"context"
	"os"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/etho-ai/go-tracking/images"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

const (
	// maskCoeffCount is the per-detection mask coefficient count of
	// segmentation heads; the prototype tensor has the matching channel
	// count at 1/4 input resolution.
	maskCoeffCount = 32
	// skeletonKeypoints is the keypoint count of the mouse pose models.
	skeletonKeypoints = 7
	// maxMaskDetections caps how many surviving detections get their mask
	// decoded; mask assembly is the expensive part of segmentation decode.
	maxMaskDetections = 4
)

// ONNXDetector runs a YOLO-family model through onnxruntime and implements
// the Detector contract for all three output kinds. Raw anchor outputs are
// confidence-filtered and reduced with greedy NMS before they leave Detect.
type ONNXDetector struct {
	config  Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	proto   *ort.Tensor[float32] // segmentation prototype masks, nil otherwise
	anchors int
}

// NewONNXDetector loads the model artifact and allocates the fixed-shape
// input/output tensors for its output kind.
func NewONNXDetector(config Config) (*ONNXDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Check if the shared library exists before trying to use it.
	libPath := sharedLibPath()
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "initializing ORT environment")
	}

	size := config.InferenceSize
	// One anchor per cell of the three YOLO detection strides.
	anchors := (size/8)*(size/8) + (size/16)*(size/16) + (size/32)*(size/32)

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(size), int64(size)))
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(attributeCount(config.Kind)), int64(anchors)))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "creating output tensor")
	}

	outputNames := []string{"output0"}
	outputTensors := []ort.ArbitraryTensor{output}

	var proto *ort.Tensor[float32]
	if config.Kind == KindSegmentation {
		protoSize := int64(size / 4)
		proto, err = ort.NewEmptyTensor[float32](ort.NewShape(1, maskCoeffCount, protoSize, protoSize))
		if err != nil {
			input.Destroy()
			output.Destroy()
			return nil, errors.Wrap(err, "creating prototype tensor")
		}
		outputNames = append(outputNames, "output1")
		outputTensors = append(outputTensors, proto)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "creating ORT session options")
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(4)
	options.SetInterOpNumThreads(2)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{"images"},
		outputNames,
		[]ort.ArbitraryTensor{input},
		outputTensors,
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		if proto != nil {
			proto.Destroy()
		}
		return nil, errors.Wrapf(err, "creating ORT session for %s", config.ModelPath)
	}

	return &ONNXDetector{
		config:  config,
		session: session,
		input:   input,
		output:  output,
		proto:   proto,
		anchors: anchors,
	}, nil
}

// attributeCount is the per-anchor row count of the output tensor for
// single-class models of each kind.
func attributeCount(kind OutputKind) int {
	switch kind {
	case KindPose:
		return 5 + 3*skeletonKeypoints
	case KindSegmentation:
		return 5 + maskCoeffCount
	default:
		return 5
	}
}

// Kind implements Detector.
func (d *ONNXDetector) Kind() OutputKind { return d.config.Kind }

// Detect implements Detector. The frame is resized to the inference
// resolution, normalized CHW into the input tensor, and the raw anchor grid
// is decoded back into frame coordinates.
func (d *ONNXDetector) Detect(ctx context.Context, frame gocv.Mat) ([]Detection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if frame.Empty() {
		return nil, errors.New("empty frame")
	}

	if err := d.prepareInput(frame); err != nil {
		return nil, err
	}
	if err := d.session.Run(); err != nil {
		return nil, errors.Wrap(err, "running inference")
	}

	return d.decode(frame.Cols(), frame.Rows()), nil
}

// prepareInput fills the input tensor with the frame in normalized CHW
// layout, resized with Lanczos3.
func (d *ONNXDetector) prepareInput(frame gocv.Mat) error {
	img, err := frame.ToImage()
	if err != nil {
		return errors.Wrap(err, "converting frame")
	}

	size := d.config.InferenceSize
	img = images.DownscaleForInference(img, size)

	data := d.input.GetData()
	channelSize := size * size
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}

// decode walks the anchor grid, keeps anchors above the confidence
// threshold, scales boxes and keypoints back to frame resolution and applies
// NMS. Segmentation masks are assembled only for the NMS survivors.
func (d *ONNXDetector) decode(frameW, frameH int) []Detection {
	data := d.output.GetData()
	attrs := attributeCount(d.config.Kind)
	size := float32(d.config.InferenceSize)
	scaleX := float32(frameW) / size
	scaleY := float32(frameH) / size

	if len(data) < attrs*d.anchors {
		// Model output disagrees with the declared kind; treat the frame as
		// a miss rather than reading out of bounds.
		return nil
	}

	at := func(attr, anchor int) float32 { return data[attr*d.anchors+anchor] }

	var detections []Detection
	var coeffs [][]float32

	for a := 0; a < d.anchors; a++ {
		conf := at(4, a)
		if conf < d.config.ConfidenceThreshold {
			continue
		}

		cx, cy := at(0, a), at(1, a)
		w, h := at(2, a), at(3, a)
		det := Detection{
			Confidence: conf,
			Box: images.Rect{
				X1: int((cx - w/2) * scaleX),
				Y1: int((cy - h/2) * scaleY),
				X2: int((cx + w/2) * scaleX),
				Y2: int((cy + h/2) * scaleY),
			},
		}

		switch d.config.Kind {
		case KindPose:
			det.Keypoints = make([]Keypoint, skeletonKeypoints)
			for k := 0; k < skeletonKeypoints; k++ {
				det.Keypoints[k] = Keypoint{
					Name:       KeypointName(k),
					X:          at(5+3*k, a) * scaleX,
					Y:          at(5+3*k+1, a) * scaleY,
					Confidence: at(5+3*k+2, a),
				}
			}
		case KindSegmentation:
			c := make([]float32, maskCoeffCount)
			for k := 0; k < maskCoeffCount; k++ {
				c[k] = at(5+k, a)
			}
			coeffs = append(coeffs, c)
		}

		detections = append(detections, det)
	}

	if d.config.Kind == KindSegmentation {
		// Attach coefficients through the detection index so NMS survivors
		// can find theirs.
		for i := range detections {
			detections[i].Mask = &Mask{Probs: coeffs[i]} // placeholder until assembly
		}
	}

	kept := ApplyGreedyNMS(detections, d.config.IoUThreshold)

	if d.config.Kind == KindSegmentation {
		d.assembleMasks(kept)
	}
	return kept
}

// assembleMasks turns each survivor's 32 coefficients into a probability
// mask: sigmoid of the coefficient-weighted sum of the prototype channels.
func (d *ONNXDetector) assembleMasks(detections []Detection) {
	protoData := d.proto.GetData()
	protoSize := d.config.InferenceSize / 4
	pixels := protoSize * protoSize

	for i := range detections {
		if i >= maxMaskDetections {
			detections[i].Mask = nil
			continue
		}
		c := detections[i].Mask.Probs
		probs := make([]float32, pixels)
		for p := 0; p < pixels; p++ {
			var sum float32
			for k := 0; k < maskCoeffCount; k++ {
				sum += c[k] * protoData[k*pixels+p]
			}
			probs[p] = sigmoid(sum)
		}
		detections[i].Mask = &Mask{Width: protoSize, Height: protoSize, Probs: probs}
	}
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// Close implements Detector.
func (d *ONNXDetector) Close() error {
	d.input.Destroy()
	d.output.Destroy()
	if d.proto != nil {
		d.proto.Destroy()
	}
	d.session.Destroy()
	return nil
}

// sharedLibPath returns the path to the onnxruntime shared library for the
// current platform.
func sharedLibPath() string {
	if env := os.Getenv("ONNXRUNTIME_LIB"); env != "" {
		return env
	}
	switch runtime.GOOS {
	case "windows":
		return "third_party/onnxruntime.dll"
	case "darwin":
		return "third_party/libonnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.so"
		}
		return "third_party/onnxruntime.so"
	}
}
