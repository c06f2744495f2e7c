package images

import (
	"image"

	"github.com/nfnt/resize"
	"gocv.io/x/gocv"
)

// UpscaleProbMask resizes a low-resolution probability mask to frame
// resolution with nearest-neighbor sampling and binarizes it at 0.5.
//
// Segmentation heads emit masks at the model's internal resolution; the
// nearest-neighbor upscale keeps the mask crisp-edged rather than feathered,
// so the subsequent binarization does not shift the region boundary.
//
// Arguments:
//   - probs: Row-major mask probabilities in [0,1], maskW*maskH values.
//   - maskW, maskH: The mask's own resolution.
//   - frameW, frameH: The target frame resolution.
//
// Returns:
//   - gocv.Mat: A CV8UC1 binary mask (0/255) at frame resolution. The caller
//     owns the Mat.
func UpscaleProbMask(probs []float32, maskW, maskH, frameW, frameH int) gocv.Mat {
	gray := image.NewGray(image.Rect(0, 0, maskW, maskH))
	for i, p := range probs {
		if p < 0 {
			p = 0
		} else if p > 1 {
			p = 1
		}
		gray.Pix[i] = uint8(p * 255)
	}

	scaled := resize.Resize(uint(frameW), uint(frameH), gray, resize.NearestNeighbor)

	mask := gocv.NewMatWithSize(frameH, frameW, gocv.MatTypeCV8UC1)
	for y := 0; y < frameH; y++ {
		for x := 0; x < frameW; x++ {
			r, _, _, _ := scaled.At(x, y).RGBA()
			// 0.5 probability maps to 127 after the 8-bit quantization.
			if uint8(r>>8) > 127 {
				mask.SetUCharAt(y, x, 255)
			} else {
				mask.SetUCharAt(y, x, 0)
			}
		}
	}
	return mask
}

// DownscaleForInference shrinks a frame to the detector's input resolution
// using Lanczos3 resampling.
func DownscaleForInference(img image.Image, size int) image.Image {
	return resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
}
