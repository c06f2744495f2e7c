// Command track runs the full pipeline on one video: background estimation,
// per-frame detection with fallback, ROI resolution, and JSON result export.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/etho-ai/go-tracking/analysis"
	"github.com/etho-ai/go-tracking/background"
	"github.com/etho-ai/go-tracking/detect"
	"github.com/etho-ai/go-tracking/roi"
	"github.com/etho-ai/go-tracking/tracking"
	"github.com/etho-ai/go-tracking/video"
)

func main() {
	var (
		videoPath  = flag.String("video", "", "path to the video file")
		modelPath  = flag.String("model", "", "path to the ONNX model artifact")
		modelKind  = flag.String("kind", "segmentation", "model output kind: segmentation, pose or detection")
		presetPath = flag.String("preset", "", "optional ROI preset JSON file")
		outPath    = flag.String("out", "", "output JSON path (default: <video>_tracking.json)")
		confidence = flag.Float64("confidence", 0.5, "detection confidence threshold")
		iou        = flag.Float64("iou", 0.7, "NMS IoU threshold")
		size       = flag.Int("size", 640, "inference resolution")
		bgSamples  = flag.Int("bg-samples", background.DefaultSampleCount, "background sample frame count")
		noBg       = flag.Bool("no-background", false, "skip background estimation (disables fallback)")
		restrict   = flag.Bool("restrict-fallback", false, "limit fallback detection to the ROI union")
	)
	flag.Parse()

	if *videoPath == "" || *modelPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*videoPath, *presetPath, *outPath, detect.Config{
		ModelPath:           *modelPath,
		Kind:                detect.OutputKind(*modelKind),
		ConfidenceThreshold: float32(*confidence),
		IoUThreshold:        float32(*iou),
		InferenceSize:       *size,
	}, *bgSamples, *noBg, *restrict); err != nil {
		log.Fatal(err)
	}
}

func run(videoPath, presetPath, outPath string, cfg detect.Config, bgSamples int, noBg, restrict bool) error {
	var rois []roi.ROI
	if presetPath != "" {
		data, err := os.ReadFile(presetPath)
		if err != nil {
			return fmt.Errorf("reading preset: %w", err)
		}
		var preset roi.Preset
		if err := json.Unmarshal(data, &preset); err != nil {
			return fmt.Errorf("parsing preset: %w", err)
		}
		collection, err := preset.Collection()
		if err != nil {
			return err
		}
		rois = collection.Snapshot()
		log.Printf("loaded preset %q with %d ROIs", preset.PresetName, len(rois))
	}

	src, err := video.OpenFile(videoPath)
	if err != nil {
		return err
	}
	defer src.Close()

	var bgModel *background.Model
	if !noBg {
		total := src.FrameCount()
		// Sample the middle half of the video; the experimenter's hand is
		// usually visible at the start and end.
		bgModel, err = background.Estimate(src, background.Options{
			SampleCount: bgSamples,
			WindowStart: total / 4,
			WindowEnd:   total * 3 / 4,
		})
		switch {
		case err == nil:
			defer bgModel.Close()
			log.Printf("background model ready from %d samples", bgModel.SampleCount)
		case errors.Is(err, background.ErrUnavailable):
			log.Printf("background unavailable, fallback detection disabled: %v", err)
		default:
			return err
		}
		if err := src.Reset(); err != nil {
			return err
		}
	}

	detector, err := detect.NewONNXDetector(cfg)
	if err != nil {
		return err
	}
	defer detector.Close()

	tracker, err := tracking.NewTracker(tracking.Options{
		Detector:         detector,
		Background:       bgModel,
		ROIs:             rois,
		RestrictFallback: restrict,
		VideoName:        filepath.Base(videoPath),
		Progress: func(current, total int) {
			if total > 0 && current%100 == 0 {
				log.Printf("frame %d/%d (%.1f%%)", current, total, float64(current)/float64(total)*100)
			}
		},
	})
	if err != nil {
		return err
	}
	defer tracker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := tracker.Run(ctx, src)
	if err != nil {
		return err
	}

	stats := result.Statistics
	log.Printf("processed %d frames: primary=%d fallback=%d none=%d rate=%.2f",
		len(result.Records), stats.PrimaryDetections, stats.FallbackDetections,
		stats.FramesWithoutDetection, stats.DetectionRate)

	movement := analysis.AnalyzeMovement(result.Records)
	log.Printf("distance=%.1fpx avg velocity=%.2fpx/frame max=%.2fpx/frame",
		movement.TotalDistance, movement.AverageVelocity, movement.MaxVelocity)

	if outPath == "" {
		base := videoPath[:len(videoPath)-len(filepath.Ext(videoPath))]
		outPath = base + "_tracking.json"
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	log.Printf("results written to %s", outPath)
	return nil
}
