// Package visual prepares featured images for upload: downscaling,
// flattening transparency, and recompressing to a byte budget.
package visual

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"blogagent/internal/config"
	"blogagent/internal/logger"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Options controls image preparation
type Options struct {
	TargetKB    int // Byte budget in KiB; images at or below it are left alone
	MaxWidth    int // Wider images are downscaled, keeping aspect ratio
	Quality     int // Initial JPEG quality
	MinQuality  int // Quality floor
	QualityStep int // Quality decrease per re-encode
}

// DefaultOptions returns the standard featured-image settings
func DefaultOptions() Options {
	return Options{
		TargetKB:    100,
		MaxWidth:    1200,
		Quality:     85,
		MinQuality:  10,
		QualityStep: 5,
	}
}

// OptionsFromConfig maps image settings to Options
func OptionsFromConfig(cfg config.Images) Options {
	opts := DefaultOptions()
	opts.TargetKB = cfg.TargetKB
	opts.MaxWidth = cfg.MaxWidth
	if cfg.Quality > 0 {
		opts.Quality = cfg.Quality
	}
	if cfg.MinQuality > 0 {
		opts.MinQuality = cfg.MinQuality
	}
	return opts
}

// Result describes a prepared image
type Result struct {
	Path    string
	Bytes   int64
	Width   int
	Height  int
	Quality int  // 0 when the source was used unchanged
	Floored bool // Quality floor reached before the budget was met
}

// Optimize returns the path of an upload-ready version of path. The source
// is returned as is when it already fits the budget.
func Optimize(path string, opts Options) (string, error) {
	res, err := Prepare(path, opts)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// Prepare downsizes and recompresses path as JPEG into a derived path. The
// source file is never overwritten.
func Prepare(path string, opts Options) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat image: %w", err)
	}
	budget := int64(opts.TargetKB) * 1024
	if info.Size() <= budget {
		return Result{Path: path, Bytes: info.Size()}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, format, err := image.Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode image: %w", err)
	}

	canvas := flatten(src, opts.MaxWidth)

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultOptions().Quality
	}
	step := opts.QualityStep
	if step <= 0 {
		step = DefaultOptions().QualityStep
	}
	floor := opts.MinQuality
	if floor <= 0 {
		floor = DefaultOptions().MinQuality
	}

	data, err := encodeJPEG(canvas, quality)
	if err != nil {
		return Result{}, err
	}
	for int64(len(data)) > budget && quality > floor {
		quality = max(quality-step, floor)
		if data, err = encodeJPEG(canvas, quality); err != nil {
			return Result{}, err
		}
	}

	out := OptimizedPath(path)
	if err := os.WriteFile(out, data, 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write optimized image: %w", err)
	}

	bounds := canvas.Bounds()
	res := Result{
		Path:    out,
		Bytes:   int64(len(data)),
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Quality: quality,
		Floored: int64(len(data)) > budget,
	}
	logger.Debug("Image optimized",
		"source", path,
		"format", format,
		"source_kb", info.Size()/1024,
		"output_kb", res.Bytes/1024,
		"width", res.Width,
		"quality", res.Quality)
	return res, nil
}

// OptimizedPath derives the output path: same directory, "_optimized.jpg"
// suffix.
func OptimizedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_optimized.jpg"
}

// flatten draws src onto an opaque white canvas no wider than maxWidth.
func flatten(src image.Image, maxWidth int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth > 0 && w > maxWidth {
		h = max(1, int(float64(maxWidth)/float64(w)*float64(h)))
		w = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
