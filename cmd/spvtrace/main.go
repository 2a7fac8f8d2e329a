// Command spvtrace instruments a SPIR-V module with basic-block
// execution counters.
//
// Usage:
//
//	spvtrace [options] <input.spv>
//
// Examples:
//
//	spvtrace -o traced.spv shader.spv            # 32-bit counters
//	spvtrace -width 64 -o traced.spv shader.spv  # 64-bit counters
//	spvtrace -map blocks.json -o traced.spv shader.spv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/peterbourgon/ff/v3"
	log "github.com/sirupsen/logrus"

	"github.com/gogpu/spvtrace"
	"github.com/gogpu/spvtrace/trace"
)

const spvtraceVersion = "0.1.0-dev"

type config struct {
	output  string
	mapFile string
	width   uint
	verbose bool
	version bool
}

func parseArgs() (*config, []string, error) {
	var cfg config

	fs := flag.NewFlagSet("spvtrace", flag.ExitOnError)
	fs.StringVar(&cfg.output, "o", "", "Output file for the instrumented module (default: stdout).")
	fs.StringVar(&cfg.mapFile, "map", "", "Write the block-to-counter mapping as JSON to this file.")
	fs.UintVar(&cfg.width, "width", 32, "Counter width in bits, 32 or 64.")
	fs.BoolVar(&cfg.verbose, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Enable verbose logging.")
	fs.BoolVar(&cfg.version, "version", false, "Show version.")

	err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SPVTRACE"),
	)
	return &cfg, fs.Args(), err
}

// mappingJSON is the on-disk form of the block-to-counter mapping,
// consumed by host tooling that sizes and decodes the readback buffer.
type mappingJSON struct {
	CounterCount  int            `json:"counter_count"`
	DescriptorSet int            `json:"descriptor_set"`
	Binding       int            `json:"binding"`
	WidthBits     uint32         `json:"width_bits"`
	Blocks        map[string]int `json:"blocks"` // label id -> counter slot
}

func main() {
	cfg, args, err := parseArgs()
	if err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if cfg.version {
		fmt.Printf("spvtrace version %s\n", spvtraceVersion)
		return
	}
	if cfg.verbose {
		log.SetLevel(log.DebugLevel)
	}

	if len(args) < 1 {
		log.Fatal("No input file specified")
	}
	inputPath := args[0]

	opts := spvtrace.DefaultOptions()
	switch cfg.width {
	case 32:
		opts.Width = trace.Counter32
	case 64:
		opts.Width = trace.Counter64
	default:
		log.Fatalf("Invalid counter width %d, must be 32 or 64", cfg.width)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", inputPath, err)
	}

	out, report, err := spvtrace.Instrument(data, opts)
	if err != nil {
		log.Fatalf("Failed to instrument %s: %v", inputPath, err)
	}
	log.Infof("Instrumented %d basic blocks (%s counters)", report.BlockCount, opts.Width)
	if !report.Changed {
		log.Warn("No block received instrumentation")
	}

	if cfg.mapFile != "" {
		if err = writeMapping(cfg.mapFile, report, opts.Width); err != nil {
			log.Fatalf("Failed to write mapping: %v", err)
		}
	}

	if cfg.output != "" {
		if err = os.WriteFile(cfg.output, out, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", cfg.output, err)
		}
		log.Infof("Wrote %s (%d bytes)", cfg.output, len(out))
	} else {
		if _, err = os.Stdout.Write(out); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
	}
}

func writeMapping(path string, report *spvtrace.Report, width trace.CounterWidth) error {
	blocks := make(map[string]int, len(report.Mapping))
	for label, slot := range report.Mapping {
		blocks[strconv.FormatUint(uint64(label), 10)] = slot
	}

	data, err := json.MarshalIndent(mappingJSON{
		CounterCount:  report.BlockCount,
		DescriptorSet: trace.CounterDescriptorSet,
		Binding:       trace.CounterBinding,
		WidthBits:     width.Bits(),
		Blocks:        blocks,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
