package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	Rd "github.com/maroda/respira/display"
	Ro "github.com/maroda/respira/obvy"
	Rs "github.com/maroda/respira/server"
	Rt "github.com/maroda/respira/types"
)

func main() {
	os.Exit(start())
}

// start runs Respira and returns the exit code,
// so deferred tracing shutdown runs before the process exits
func start() int {
	// Load .env file if it exists
	_ = godotenv.Load()

	var (
		config   = flag.String("config", Rs.EnvOr("RESPIRA_CONFIG", ""), "JSON config file of segments")
		source   = flag.String("source", Rs.EnvOr("RESPIRA_SOURCE", "data"), "record directory, base URL, or sim:")
		counter  = flag.String("counter", Rs.EnvOr("RESPIRA_COUNTER", ""), "peak counter for the breath estimate")
		record   = flag.String("record", "", "record to analyse when no config is given")
		offset   = flag.Int("offset", 0, "segment offset in seconds")
		seconds  = flag.Int("seconds", 60, "segment length in seconds")
		workers  = flag.Int("workers", Rs.FillEnvVarInt("RESPIRA_WORKERS", 4), "segments analysed in parallel")
		output   = flag.String("output", Rs.EnvOr("RESPIRA_OUTPUT", ""), "badger, nats, midi or empty")
		web      = flag.Bool("web", false, "serve the API instead of printing a report")
		addr     = flag.String("addr", Rs.EnvOr("RESPIRA_ADDR", ":8090"), "http address")
		interval = flag.Duration("interval", 10*time.Second, "sweep interval in web mode")
		logLevel = flag.String("log", Rs.EnvOr("RESPIRA_LOG_LEVEL", "info"), "log level")
	)
	flag.Parse()

	Rs.InitLogger(*logLevel)

	shutdown := Ro.InitOTel(Rs.EnvOr("RESPIRA_OTEL", ""))
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, options{
		config:   *config,
		source:   *source,
		counter:  *counter,
		segment:  Rt.Segment{Record: *record, Offset: *offset, Seconds: *seconds},
		workers:  *workers,
		output:   *output,
		web:      *web,
		addr:     *addr,
		interval: *interval,
	}); err != nil {
		slog.Error("Respira failed", slog.Any("Error", err))
		return 1
	}
	return 0
}

type options struct {
	config   string
	source   string
	counter  string
	segment  Rt.Segment
	workers  int
	output   string
	web      bool
	addr     string
	interval time.Duration
}

func run(ctx context.Context, o options) error {
	// Either the config file or the flags describe the work
	var cf []Rs.ConfigFile
	if o.config != "" {
		var err error
		cf, err = Rs.LoadConfigFileName(o.config)
		if err != nil {
			return err
		}
	} else if o.segment.Record != "" {
		cf = []Rs.ConfigFile{{
			ID:       "cli",
			Source:   o.source,
			Counter:  o.counter,
			Segments: []Rt.Segment{o.segment},
		}}
	} else if !o.web {
		return fmt.Errorf("nothing to analyse: give -config or -record")
	}

	jobs, err := Rs.NewJobsFromConfig(cf)
	if err != nil {
		return err
	}

	out, err := Rd.InitOutput(o.output)
	if err != nil {
		return err
	}
	if out != nil {
		defer out.Close()
	}

	for _, j := range jobs {
		if an, ok := j.Analyzer.(*Rs.Analyzer); ok {
			an.Output = out
		}
	}

	// On-demand requests in web mode read from the flag source
	var onDemand Rs.Respira
	if provider, err := Rs.NewProvider(o.source); err == nil {
		an, err := Rs.NewAnalyzer(provider, o.counter)
		if err != nil {
			return err
		}
		an.Output = out
		onDemand = an
	} else if o.web {
		slog.Warn("On-demand analysis disabled", slog.String("source", o.source), slog.Any("Error", err))
	}

	view := Rd.NewView(jobs, onDemand, out, o.workers)

	if o.web {
		return view.StartWeb(ctx, o.addr, o.interval)
	}

	for _, r := range view.AnalyzeJobs(ctx) {
		if r.Err != nil {
			return r.Err
		}
		report(r.Analysis)
	}
	return nil
}

func report(a *Rt.Analysis) {
	fmt.Printf("%s from %ds for %ds: %d beats, %d intervals, heart rate %.1f bpm\n",
		a.Segment.Record, a.Segment.Offset, a.Segment.Seconds,
		len(a.Beats), len(a.Intervals), a.HeartRate)
	fmt.Printf("Predicted breathing frequency is %v Hz (%.1f breaths/min)\n\n",
		a.BreathFrequency, a.BreathsPerMin)
}
