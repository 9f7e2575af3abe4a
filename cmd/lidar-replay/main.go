//go:build pcap
// +build pcap

// Command lidar-replay feeds a recorded PCAP capture through a decoder
// as if it were arriving live over UDP, for offline testing and
// regression capture. Requires libpcap at build time, hence the pcap
// build tag shared with the reference repo's own capture-reading code.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/banshee-data/lidar-decoder/internal/lidar/calib"
	"github.com/banshee-data/lidar-decoder/internal/lidar/calibstore"
	"github.com/banshee-data/lidar-decoder/internal/lidar/configio"
	"github.com/banshee-data/lidar-decoder/internal/lidar/decoder"
	"github.com/banshee-data/lidar-decoder/internal/lidar/points"
	"github.com/banshee-data/lidar-decoder/internal/lidar/registry"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

func main() {
	pcapPath := flag.String("pcap", "", "path to a PCAP capture (required)")
	calibPath := flag.String("calib", "", "path to a calibration YAML file (required)")
	udpPort := flag.Int("port", 2369, "UDP port the sensor's packets were captured on")
	outPath := flag.String("out", "", "path to write the decoded scans as newline-delimited JSON (default: stdout)")
	cutAngle := flag.Float64("cut-angle", 0, "cut angle in degrees")
	minRange := flag.Float64("min-range", 0.3, "minimum range in meters")
	maxRange := flag.Float64("max-range", 200, "maximum range in meters")
	configPath := flag.String("config", "", "optional JSON file overlaying the sensor config (see configio)")
	sensorID := flag.String("sensor-id", "", "sensor id to register the decoder under (default: a generated uuid)")
	calibDBPath := flag.String("calib-db", "", "optional calibration-history sqlite path; when set, the loaded calibration is recorded as a new version")
	flag.Parse()

	if *pcapPath == "" || *calibPath == "" {
		fmt.Fprintln(os.Stderr, "lidar-replay: -pcap and -calib are required")
		flag.Usage()
		os.Exit(2)
	}

	calFile, err := os.Open(*calibPath)
	if err != nil {
		log.Fatalf("lidar-replay: open calibration: %v", err)
	}
	cal, err := calib.Load(calFile)
	calFile.Close()
	if err != nil {
		log.Fatalf("lidar-replay: load calibration: %v", err)
	}

	model := decoder.NewPandar40PSensorModel()
	cfg := decoder.SensorConfig{
		CloudMinAngleDeg:             0,
		CloudMaxAngleDeg:             360,
		CutAngleDeg:                  *cutAngle,
		MinRangeM:                    *minRange,
		MaxRangeM:                    *maxRange,
		DualReturnDistanceThresholdM: 0.1,
	}
	if *configPath != "" {
		cfg, err = configio.Load(*configPath, cfg)
		if err != nil {
			log.Fatalf("lidar-replay: load config overlay: %v", err)
		}
	}

	d, err := decoder.New(model, cal, cfg)
	if err != nil {
		log.Fatalf("lidar-replay: new decoder: %v", err)
	}

	id := *sensorID
	if id == "" {
		id = registry.NewSensorID()
	}
	registry.Register(id, d)
	defer registry.Unregister(id)
	log.Printf("lidar-replay: sensor %q registered (%d decoders live)", id, registry.Len())

	if *calibDBPath != "" {
		store, err := calibstore.Open(*calibDBPath)
		if err != nil {
			log.Fatalf("lidar-replay: open calibration store: %v", err)
		}
		defer store.Close()
		versionID, err := store.SaveVersion(id, cal, time.Now().UnixNano())
		if err != nil {
			log.Fatalf("lidar-replay: record calibration version: %v", err)
		}
		log.Printf("lidar-replay: recorded calibration version %d for sensor %q", versionID, id)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("lidar-replay: create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := replay(context.Background(), *pcapPath, *udpPort, d, out); err != nil {
		log.Fatalf("lidar-replay: %v", err)
	}
}

// replay streams payloads from pcapPath's UDP/port packets into d,
// writing one JSON scan per line each time a full sweep completes.
func replay(ctx context.Context, pcapPath string, udpPort int, d *decoder.Decoder, out *os.File) error {
	handle, err := pcap.OpenOffline(pcapPath)
	if err != nil {
		return fmt.Errorf("open pcap %q: %w", pcapPath, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filter); err != nil {
		return fmt.Errorf("set bpf filter %q: %w", filter, err)
	}

	enc := json.NewEncoder(out)
	source := gopacket.NewPacketSource(handle, handle.LinkType())
	packetCount, scanCount := 0, 0
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case packet, ok := <-source.Packets():
			if !ok {
				log.Printf("lidar-replay: %d packets, %d scans in %v", packetCount, scanCount, time.Since(start))
				return nil
			}
			packetCount++

			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}

			if _, err := d.PushPacket(udp.Payload); err != nil {
				log.Printf("lidar-replay: packet %d: %v", packetCount, err)
				continue
			}

			if d.HasScanned() {
				scanCount++
				scan, timestamp := d.PollScan()
				if err := enc.Encode(scanRecord{ScanIndex: scanCount, TimestampSec: timestamp, Points: scan}); err != nil {
					return fmt.Errorf("encode scan %d: %w", scanCount, err)
				}
			}
		}
	}
}

type scanRecord struct {
	ScanIndex   int            `json:"scan_index"`
	TimestampSec float64       `json:"timestamp_sec"`
	Points      []points.Point `json:"points"`
}
