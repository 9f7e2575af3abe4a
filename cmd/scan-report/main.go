// Command scan-report renders a captured scan (the newline-delimited
// JSON records produced by lidar-replay) as a static HTML top-down X/Y
// scatter plot colored by intensity, for eyeballing a decode without the full monitoring
// stack. Chart construction is grounded on the reference repo's
// echarts debug-dashboard handlers, adapted from an HTTP handler to a
// one-shot file writer.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/banshee-data/lidar-decoder/internal/lidar/points"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type scanRecord struct {
	ScanIndex   int            `json:"scan_index"`
	TimestampSec float64       `json:"timestamp_sec"`
	Points      []points.Point `json:"points"`
}

func main() {
	inPath := flag.String("in", "", "path to newline-delimited scan JSON (required)")
	outPath := flag.String("out", "scan.html", "path to write the rendered HTML report")
	scanIndex := flag.Int("scan", -1, "scan_index to render (default: the last scan in the file)")
	maxPoints := flag.Int("max-points", 20000, "downsample to at most this many points")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "scan-report: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	scan, err := selectScan(*inPath, *scanIndex)
	if err != nil {
		log.Fatalf("scan-report: %v", err)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("scan-report: create %q: %v", *outPath, err)
	}
	defer out.Close()

	if err := render(scan, *maxPoints, out); err != nil {
		log.Fatalf("scan-report: render: %v", err)
	}
	fmt.Printf("wrote %s (%d points)\n", *outPath, len(scan.Points))
}

// selectScan reads line-delimited scanRecords from path and returns
// the one with the requested index, or the last one read if index < 0.
func selectScan(path string, index int) (scanRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return scanRecord{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	var last scanRecord
	found := false
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	for sc.Scan() {
		var rec scanRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return scanRecord{}, fmt.Errorf("decode scan record: %w", err)
		}
		if index >= 0 && rec.ScanIndex == index {
			return rec, nil
		}
		last = rec
		found = true
	}
	if err := sc.Err(); err != nil {
		return scanRecord{}, fmt.Errorf("read %q: %w", path, err)
	}
	if index >= 0 {
		return scanRecord{}, fmt.Errorf("scan_index %d not found in %q", index, path)
	}
	if !found {
		return scanRecord{}, fmt.Errorf("%q contains no scans", path)
	}
	return last, nil
}

// render draws a Cartesian X/Y scatter of scan's points, colored by
// intensity and downsampled by stride to at most maxPoints, as static
// HTML.
func render(scan scanRecord, maxPoints int, out io.Writer) error {
	stride := 1
	if n := len(scan.Points); maxPoints > 0 && n > maxPoints {
		stride = int(math.Ceil(float64(n) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, len(scan.Points)/stride+1)
	pad := 1.0
	for i := 0; i < len(scan.Points); i += stride {
		p := scan.Points[i]
		if math.Abs(p.X) > pad {
			pad = math.Abs(p.X)
		}
		if math.Abs(p.Y) > pad {
			pad = math.Abs(p.Y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, float64(p.Intensity)}})
	}
	pad *= 1.05

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "LiDAR Scan", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "LiDAR Scan",
			Subtitle: fmt.Sprintf("scan=%d points=%d stride=%d", scan.ScanIndex, len(data), stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        255,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("scan", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := out.Write(buf.Bytes())
	return err
}
