package main

import (
	"flag"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/metrics"
	"github.com/swdee/go-cvtrack/opencv"
	"github.com/swdee/go-cvtrack/render"
	"github.com/swdee/go-cvtrack/tracker"
	"gocv.io/x/gocv"
	"image"
	"image/color"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// Timing holds the timers used for finding execution time of each frame
type Timing struct {
	ProcessStart time.Time
	ConvertEnd   time.Time
	TrackEnd     time.Time
	ProcessEnd   time.Time
}

// Demo tracks the seeded targets through a video file
type Demo struct {
	// video is the source of frames
	video *gocv.VideoCapture
	// writer saves the annotated frames, nil when no output file was given
	writer *gocv.VideoWriter
	// multi holds a tracker for every seeded target
	multi *cvtrack.MultiTracker
	// trail records the path of each target
	trail *cvtrack.Trail
	font  render.Font
	style render.TrailStyle
}

// newBackend returns the tracking backend by name
func newBackend(name string) (cvtrack.Backend, error) {
	switch name {
	case "opencv":
		return opencv.NewBackend()
	case "go":
		return tracker.NewBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q, use opencv or go", name)
	}
}

// NewDemo opens the video and seeds a MultiTracker with the targets on its
// first frame
func NewDemo(b cvtrack.Backend, vidFile, outFile string, seeds []cvtrack.Seed,
	opts ...cvtrack.Option) (*Demo, error) {

	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return nil, fmt.Errorf("error opening video: %w", err)
	}

	d := &Demo{
		video: video,
		trail: cvtrack.NewTrail(60),
		font:  render.DefaultFont(),
		style: render.DefaultTrailStyle(),
	}

	d.multi, err = cvtrack.NewMultiTracker(b, opts...)

	if err != nil {
		video.Close()
		return nil, fmt.Errorf("error creating multi tracker: %w", err)
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := video.Read(&img); !ok || img.Empty() {
		d.Close()
		return nil, fmt.Errorf("error reading first frame of %s", vidFile)
	}

	frame, err := opencv.FrameFromMat(img)

	if err != nil {
		d.Close()
		return nil, err
	}

	for _, s := range seeds {
		ok, err := d.multi.Add(s.Variant, frame, s.Region)

		if err != nil {
			log.Printf("Skipping %s seed %s: %v", s.Variant, s.Region, err)
			continue
		}

		if !ok {
			log.Printf("Tracker %s rejected seed %s", s.Variant, s.Region)
			continue
		}

		log.Printf("Tracking %s with %s", s.Region, s.Variant)
	}

	if d.multi.Len() == 0 {
		d.Close()
		return nil, fmt.Errorf("no targets could be tracked")
	}

	if outFile != "" {
		d.writer, err = gocv.VideoWriterFile(outFile, "MJPG",
			video.Get(gocv.VideoCaptureFPS), img.Cols(), img.Rows(), true)

		if err != nil {
			d.Close()
			return nil, fmt.Errorf("error creating video writer: %w", err)
		}

		d.annotate(&img, d.seedRegions(), 0, &Timing{ProcessStart: time.Now()})

		if err := d.writer.Write(img); err != nil {
			d.Close()
			return nil, fmt.Errorf("error writing frame: %w", err)
		}
	}

	return d, nil
}

// seedRegions returns the initial regions of the trackers in slot order
func (d *Demo) seedRegions() []*cvtrack.Region {

	regions := make([]*cvtrack.Region, 0, d.multi.Len())

	for _, m := range d.multi.Models() {
		regions = append(regions, m.Region)
	}

	return regions
}

// Run tracks the targets through the remaining frames of the video
func (d *Demo) Run() error {

	img := gocv.NewMat()
	defer img.Close()

	frameNum := 0
	start := time.Now()

	for {
		if ok := d.video.Read(&img); !ok {
			break
		}

		if img.Empty() {
			continue
		}

		frameNum++

		timing := &Timing{ProcessStart: time.Now()}

		frame, err := opencv.FrameFromMat(img)

		if err != nil {
			return fmt.Errorf("error converting frame %d: %w", frameNum, err)
		}

		timing.ConvertEnd = time.Now()

		regions, err := d.multi.Update(frame)

		if err != nil {
			return fmt.Errorf("error tracking frame %d: %w", frameNum, err)
		}

		timing.TrackEnd = time.Now()

		d.trail.AddAll(regions)
		d.annotate(&img, regions, frameNum, timing)

		if d.writer != nil {
			if err := d.writer.Write(img); err != nil {
				return fmt.Errorf("error writing frame %d: %w", frameNum, err)
			}
		}

		log.Printf("Frame %d: %d/%d tracked, convert %.2fms, track %.2fms, total %.2fms",
			frameNum, countFound(regions), len(regions),
			float32(timing.ConvertEnd.Sub(timing.ProcessStart))/float32(time.Millisecond),
			float32(timing.TrackEnd.Sub(timing.ConvertEnd))/float32(time.Millisecond),
			float32(timing.ProcessEnd.Sub(timing.ProcessStart))/float32(time.Millisecond),
		)
	}

	elapsed := time.Since(start)

	if frameNum > 0 {
		log.Printf("Processed %d frames in %s, %.2f FPS", frameNum, elapsed,
			float64(frameNum)/elapsed.Seconds())
	}

	return nil
}

// annotate renders the tracked regions, their trails and frame statistics
func (d *Demo) annotate(img *gocv.Mat, regions []*cvtrack.Region, frameNum int,
	timing *Timing) {

	variants := d.multi.Variants()

	render.Trail(img, regions, d.trail, d.style)
	render.TrackerBoxes(img, regions, variants, d.font, 2)
	render.LostSlots(img, regions, d.font)

	timing.ProcessEnd = time.Now()

	gocv.PutText(img, fmt.Sprintf("Frame: %d, Tracked: %d/%d, Tracking: %.2fms",
		frameNum, countFound(regions), len(regions),
		float32(timing.TrackEnd.Sub(timing.ConvertEnd))/float32(time.Millisecond)),
		image.Pt(4, img.Rows()-8), gocv.FontHersheyDuplex, 0.5,
		color.RGBA{R: 255, G: 0, B: 0, A: 255}, 1)
}

// Close releases the video, writer and trackers
func (d *Demo) Close() {

	if d.multi != nil {
		if err := d.multi.Close(); err != nil {
			log.Printf("Error closing trackers: %v", err)
		}
	}

	if d.writer != nil {
		d.writer.Close()
	}

	d.video.Close()
}

// countFound returns the number of targets not lost
func countFound(regions []*cvtrack.Region) int {

	n := 0

	for _, r := range regions {
		if r != nil {
			n++
		}
	}

	return n
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("v", "../data/palace.mp4", "Video file to track objects in")
	backendName := flag.String("b", "opencv", "Tracking backend, opencv or go")
	seedFile := flag.String("r", "", "Text file of regions to track, one x,y,width,height[,variant] per line")
	variantName := flag.String("t", "KCF", "Tracker variant used for regions without one")
	roi := flag.String("roi", "", "Single region to track in format x,y,width,height")
	outFile := flag.String("o", "", "Save annotated video to this file")
	workers := flag.Int("w", 1, "Number of trackers updated in parallel")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, format address:port")
	list := flag.Bool("list", false, "Print the tracker capabilities of the backend and exit")

	flag.Parse()

	b, err := newBackend(*backendName)

	if err != nil {
		log.Fatalf("Error creating backend: %v", err)
	}

	if *list {
		if err := cvtrack.QueryCapabilities(os.Stdout, b); err != nil {
			log.Fatalf("Error querying capabilities: %v", err)
		}
		return
	}

	variant, err := cvtrack.ParseVariant(*variantName)

	if err != nil {
		log.Fatalf("Error with tracker variant: %v", err)
	}

	var seeds []cvtrack.Seed

	switch {
	case *seedFile != "":
		seeds, err = cvtrack.LoadSeeds(*seedFile, variant)
	case *roi != "":
		seeds, err = cvtrack.ReadSeeds(strings.NewReader(*roi), variant)
	default:
		log.Fatalf("Provide regions to track with -r or -roi")
	}

	if err != nil {
		log.Fatalf("Error reading regions: %v", err)
	}

	opts := []cvtrack.Option{cvtrack.WithWorkers(*workers)}

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		observer, err := metrics.NewObserver(reg)

		if err != nil {
			log.Fatalf("Error creating metrics: %v", err)
		}

		opts = append(opts, cvtrack.WithObserver(observer))

		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		go func() {
			log.Printf("Serving metrics at http://%s/metrics", *metricsAddr)
			log.Fatal(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	log.Printf("Using %s backend, library version %s", b.Name(), b.Version())

	demo, err := NewDemo(b, *vidFile, *outFile, seeds, opts...)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	if err := demo.Run(); err != nil {
		log.Fatalf("Error running demo: %v", err)
	}
}
