// Package main is the reconstruction command: it loads a ring of turntable
// captures from disk, carves the visual hull, and writes the point cloud out.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/turnscan/visualhull/carve"
	"github.com/turnscan/visualhull/pointcloud"
	"github.com/turnscan/visualhull/scan"
	"github.com/turnscan/visualhull/silhouette"
)

const (
	flagImages     = "images"
	flagNumImages  = "num-images"
	flagResolution = "resolution"
	flagSize       = "size"
	flagPolarity   = "polarity"
	flagBlur       = "blur"
	flagOut        = "out"
	flagFormat     = "format"
	flagDebug      = "debug"
)

func main() {
	app := &cli.App{
		Name:  "reconstruct",
		Usage: "carve a 3D point cloud from turntable silhouette captures",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagImages,
				Value: "scan_images",
				Usage: "directory holding numbered captures (01.png, 02.png, ...)",
			},
			&cli.IntFlag{
				Name:  flagNumImages,
				Value: scan.DefaultNumImages,
				Usage: "number of captures in the ring",
			},
			&cli.IntFlag{
				Name:  flagResolution,
				Value: carve.DefaultResolution,
				Usage: fmt.Sprintf("voxel grid side length (max %d)", carve.MaxResolution),
			},
			&cli.Float64Flag{
				Name:  flagSize,
				Value: scan.DefaultBoundingSize,
				Usage: "physical edge length of the carved cube",
			},
			&cli.StringFlag{
				Name:  flagPolarity,
				Value: "object-dark",
				Usage: "silhouette polarity: object-dark or object-light",
			},
			&cli.Float64Flag{
				Name:  flagBlur,
				Value: silhouette.DefaultBlurSigma,
				Usage: "gaussian blur sigma applied before thresholding",
			},
			&cli.StringFlag{
				Name:  flagOut,
				Value: "result_visual_hull.ply",
				Usage: "output file path",
			},
			&cli.StringFlag{
				Name:  flagFormat,
				Value: "ply",
				Usage: "output format: ply or pcd",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: runReconstruct,
	}
	if err := app.Run(os.Args); err != nil {
		golog.Global.Fatal(err)
	}
}

func runReconstruct(c *cli.Context) error {
	var logger golog.Logger
	if c.Bool(flagDebug) {
		logger = golog.NewDevelopmentLogger("reconstruct")
	} else {
		logger = golog.NewLogger("reconstruct")
	}

	polarity, err := parsePolarity(c.String(flagPolarity))
	if err != nil {
		return err
	}
	format := c.String(flagFormat)
	if format != "ply" && format != "pcd" {
		return errors.Errorf("unsupported output format %q (want ply or pcd)", format)
	}

	set, err := loadCaptureSet(c.String(flagImages), c.Int(flagNumImages), logger)
	if err != nil {
		return err
	}

	cfg := scan.DefaultConfig()
	cfg.Resolution = c.Int(flagResolution)
	cfg.NumImages = c.Int(flagNumImages)
	cfg.BoundingSize = c.Float64(flagSize)
	cfg.Polarity = polarity
	cfg.BlurSigma = c.Float64(flagBlur)

	rec, err := scan.NewReconstructor(cfg, func(e carve.Event) {
		switch e.Kind {
		case carve.EventStarted:
			logger.Info("carving started")
		case carve.EventProgress:
			logger.Debugf("carving %3.0f%% complete", e.Fraction*100)
		case carve.EventCompleted:
			logger.Infof("carving completed with %d points", e.PointCount)
		case carve.EventCancelled:
			logger.Info("carving cancelled")
		case carve.EventFailed:
			logger.Errorw("carving failed", "error", e.Err)
		}
	}, logger)
	if err != nil {
		return err
	}

	report, err := rec.Reconstruct(c.Context, set)
	if err != nil {
		return err
	}
	if report.Empty {
		logger.Warn("carving removed every voxel; silhouettes may be inconsistent or the object out of frame")
	}
	if report.Hull != nil {
		logger.Infof("boundary hull: %d triangles, volume %.6f", len(report.Hull.Triangles()), report.Hull.Volume())
	}

	out := c.String(flagOut)
	if err := writeCloud(report.Cloud, out, format); err != nil {
		return err
	}
	logger.Infof("wrote %d points to %s", report.PointCount, out)
	return nil
}

func parsePolarity(s string) (silhouette.Polarity, error) {
	switch s {
	case "object-dark":
		return silhouette.ObjectDark, nil
	case "object-light":
		return silhouette.ObjectLight, nil
	default:
		return 0, errors.Errorf("unknown polarity %q (want object-dark or object-light)", s)
	}
}

// loadCaptureSet reads numbered captures from dir and assigns each the evenly
// spaced turntable angle it was taken at.
func loadCaptureSet(dir string, numImages int, logger golog.Logger) (scan.CaptureSet, error) {
	if numImages <= 0 {
		return nil, errors.Errorf("number of images must be positive, got %d", numImages)
	}
	set := make(scan.CaptureSet, 0, numImages)
	for i := 0; i < numImages; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%02d.png", i+1))
		img, err := imaging.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading capture %d", i+1)
		}
		logger.Debugf("loaded %s (%dx%d)", path, img.Bounds().Dx(), img.Bounds().Dy())
		set = append(set, scan.Frame{
			AngleDegrees: 360 * float64(i) / float64(numImages),
			Image:        img,
		})
	}
	return set, nil
}

func writeCloud(cloud pointcloud.PointCloud, path, format string) (err error) {
	if format == "ply" {
		return pointcloud.WritePLYToFile(cloud, path)
	}
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return pointcloud.WritePCD(cloud, f)
}
