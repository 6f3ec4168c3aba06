package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/imageio"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, renders the selected scene and writes the image
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(stdout)
	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *flags.help {
		printHelp(fs, stdout)
		return flag.ErrHelp
	}

	conf, err := buildConfig(fs, flags)
	if err != nil {
		return err
	}

	selectedScene, err := conf.BuildScene()
	if err != nil {
		return err
	}

	outputPath := conf.Output
	if outputPath == "" {
		outputPath = createOutputPath(conf.Scene, time.Now())
	}

	logger := &writerLogger{w: stdout}
	sampling := selectedScene.GetSamplingConfig()
	logger.Printf("Rendering %s scene (%d spheres) at %dx%d, %d samples/pixel, max depth %d\n",
		conf.Scene, selectedScene.GetPrimitiveCount(), sampling.Width, sampling.Height,
		sampling.SamplesPerPixel, sampling.MaxDepth)

	raytracer, err := renderer.NewProgressiveRaytracer(selectedScene, conf.ProgressiveConfig(), logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	img, stats, err := raytracer.Render(ctx)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	logger.Printf("Render completed in %v\n", time.Since(startTime))
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)

	if err := imageio.Save(outputPath, img); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", outputPath)
	return nil
}

type cliFlags struct {
	scene      *string
	configFile *string
	out        *string
	width      *int
	height     *int
	samples    *int
	depth      *int
	seed       *int64
	workers    *int
	passes     *int
	tile       *int
	help       *bool
}

func registerFlags(fs *flag.FlagSet) cliFlags {
	defaults := config.Default()
	return cliFlags{
		scene:      fs.String("scene", defaults.Scene, "Scene: 'default', 'random' or 'single-sphere'"),
		configFile: fs.String("config", "", "Render config file (JSON, // comments allowed)"),
		out:        fs.String("out", "", "Output file; the extension picks the format (ppm, png, bmp, tiff)"),
		width:      fs.Int("width", 0, "Image width (0 = scene default)"),
		height:     fs.Int("height", 0, "Image height (0 = scene default)"),
		samples:    fs.Int("samples", 0, "Samples per pixel (0 = scene default)"),
		depth:      fs.Int("depth", -1, "Maximum bounce depth (-1 = scene default)"),
		seed:       fs.Int64("seed", defaults.Seed, "Random seed"),
		workers:    fs.Int("workers", 0, "Parallel workers (0 = CPU count)"),
		passes:     fs.Int("passes", defaults.Passes, "Progressive passes"),
		tile:       fs.Int("tile", defaults.TileSize, "Tile size in pixels"),
		help:       fs.Bool("help", false, "Show help information"),
	}
}

// buildConfig loads the config file, if any, and applies the flags given on the command line over it
func buildConfig(fs *flag.FlagSet, flags cliFlags) (config.RenderConfig, error) {
	conf := config.Default()
	if *flags.configFile != "" {
		loaded, err := config.Load(*flags.configFile)
		if err != nil {
			return conf, err
		}
		conf = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			conf.Scene = *flags.scene
		case "out":
			conf.Output = *flags.out
		case "width":
			conf.Width = *flags.width
		case "height":
			conf.Height = *flags.height
		case "samples":
			conf.SamplesPerPixel = *flags.samples
		case "depth":
			if *flags.depth >= 0 {
				conf.MaxDepth = flags.depth
			}
		case "seed":
			conf.Seed = *flags.seed
		case "workers":
			conf.Workers = *flags.workers
		case "passes":
			conf.Passes = *flags.passes
		case "tile":
			conf.TileSize = *flags.tile
		}
	})

	return conf, conf.Validate()
}

// createOutputPath returns output/<scene>/render_<timestamp>.png
func createOutputPath(sceneName string, now time.Time) string {
	name := filepath.Base(sceneName)
	if name == "." || name == string(filepath.Separator) {
		name = "scene"
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", name, fmt.Sprintf("render_%s.png", timestamp))
}

func printHelp(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Sphere Path Tracer")
	fmt.Fprintln(w, "Usage: pathtracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, name := range scene.Names() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags override values from -config.")
	fmt.Fprintln(w, "Output defaults to output/<scene>/render_<timestamp>.png")
}

// writerLogger implements core.Logger on top of an io.Writer
type writerLogger struct {
	w io.Writer
}

func (l *writerLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format, args...)
}
