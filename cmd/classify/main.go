package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/akamensky/argparse"
	"go.uber.org/zap"

	"binwatch/internal/config"
	"binwatch/internal/logger"
	"binwatch/internal/model"
	"binwatch/internal/pipeline"
	"binwatch/internal/service/ai"
	"binwatch/internal/service/alert"
	"binwatch/internal/service/storage"
	"binwatch/internal/service/video"
)

type report struct {
	File       string             `json:"file"`
	Type       model.MediaType    `json:"type"`
	Label      model.Label        `json:"label"`
	Confidence float64            `json:"confidence"`
	Votes      int                `json:"votes,omitempty"`
	Frames     int                `json:"frames,omitempty"`
	Skipped    int                `json:"skipped,omitempty"`
	Status     model.ResultStatus `json:"status"`
	Alert      alert.Alert        `json:"alert"`
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func main() {
	parser := argparse.NewParser("classify", "Classify the fill level of a garbage bin in an image or video")
	input := parser.String("i", "input", &argparse.Options{Help: "Input image or video file", Required: true})
	modelPath := parser.String("m", "model", &argparse.Options{Help: "Model file (defaults to MODEL_PATH)", Required: false, Default: ""})
	modelConfig := parser.String("c", "config", &argparse.Options{Help: "Model config file, for frameworks that need one", Required: false, Default: ""})
	samples := parser.Int("n", "samples", &argparse.Options{Help: "Frames to sample from a video (defaults to SAMPLE_COUNT)", Required: false, Default: 0})
	workers := parser.Int("w", "workers", &argparse.Options{Help: "Networks to load for parallel frame classification", Required: false, Default: 0})
	strict := parser.Flag("", "strict", &argparse.Options{Help: "Fail on videos with no classifiable frames instead of reporting an empty bin"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Log pipeline progress to stderr"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	check(err)
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *modelConfig != "" {
		cfg.ModelConfigPath = *modelConfig
	}
	if *workers > 0 {
		cfg.ClassifierWorkers = *workers
	}
	if *strict {
		cfg.StrictEmpty = true
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if *verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := zcfg.Build()
	check(err)
	log := logger.FromZap(zl)
	defer log.Sync()

	mediaType, err := storage.MediaTypeOf(*input)
	check(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := ai.NewClassifierPool(cfg, log)
	check(err)
	defer pool.Close()

	out := report{File: *input, Type: mediaType, Status: model.StatusOK}

	switch mediaType {
	case model.MediaImage:
		p, err := pipeline.NewImageClassifier(video.NewImageService(), pool, log).ClassifyImage(ctx, *input)
		check(err)
		out.Label, out.Confidence = p.Label, p.Confidence

	case model.MediaVideo:
		vc := pipeline.NewVideoClassifier(video.NewCaptureService(log), pool, log, pipeline.Options{
			SampleCount:    cfg.SampleCount,
			MaxSampleCount: cfg.MaxSampleCount,
			Workers:        cfg.ClassifierWorkers,
			StrictEmpty:    cfg.StrictEmpty,
		})
		res, err := vc.ClassifyVideo(ctx, *input, *samples)
		check(err)
		out.Label, out.Confidence = res.Label, res.Confidence
		out.Votes, out.Frames, out.Skipped, out.Status = res.Votes, res.Frames, res.Skipped, res.Status
	}
	out.Alert = alert.For(out.Label)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	check(encoder.Encode(out))
}
