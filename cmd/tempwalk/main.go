package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/tempwalk/internal/config"
	"github.com/sanonone/tempwalk/internal/mcp"
	"github.com/sanonone/tempwalk/internal/server"
	"github.com/sanonone/tempwalk/pkg/dataset"
	"github.com/sanonone/tempwalk/pkg/persistence"
	"github.com/sanonone/tempwalk/pkg/walk"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	dataPath := flag.String("data", "", "Edge table (day origin destination timestamp); overrides dataset.path")
	mode := flag.String("mode", "sample", "One of: sample, serve, mcp, record, replay, stats, impute")
	batches := flag.Int("batches", 1, "Number of batches for sample/record")
	httpAddr := flag.String("http-addr", "", "HTTP listen address; overrides server.http_addr")
	out := flag.String("out", "", "Recording file for record/replay; overrides record.path")
	loc := flag.Float64("loc", 0, "Center of the posterior for impute")
	points := flag.Int("n", 10, "Number of imputed times")
	logLevel := flag.String("log-level", "info", "debug, info, warn, error")
	flag.Parse()

	setupLogging(*logLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Cannot load configuration: %v", err)
	}
	if *dataPath != "" {
		cfg.Dataset.Path = *dataPath
	}
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}
	if *out != "" {
		cfg.Record.Path = *out
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *mode == "replay" {
		if err := replay(cfg.Record.Path, os.Stdout); err != nil {
			log.Fatalf("Replay failed: %v", err)
		}
		return
	}

	edges, err := loadEdges(cfg.Dataset)
	if err != nil {
		log.Fatalf("Cannot load dataset: %v", err)
	}

	switch *mode {
	case "stats":
		err = writeJSON(os.Stdout, dataset.Summarize(edges))
	case "impute":
		err = impute(edges, *loc, cfg.Walker.Scale, *points, cfg.Walker.Seed)
	default:
		err = runWalker(ctx, *mode, cfg, edges, *batches)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", *mode, err)
	}
}

func runWalker(ctx context.Context, mode string, cfg config.Config, edges *dataset.EdgeSet, batches int) error {
	w, err := walk.NewWalker(edges, cfg.WalkConfig(edges.MaxNode()))
	if err != nil {
		return err
	}

	switch mode {
	case "sample":
		return sample(ctx, w, os.Stdout, batches)

	case "record":
		return record(ctx, w, edges.MaxNode(), cfg.Record, batches)

	case "serve":
		srv, err := server.NewServer(edges, w, server.Options{
			HTTPAddr:   cfg.Server.HTTPAddr,
			AuthToken:  cfg.Server.AuthToken,
			RecordPath: cfg.Record.Path,
			Precision:  cfg.Record.Precision,
		})
		if err != nil {
			return err
		}
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Run() }()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		srv.Shutdown()
		return nil

	case "mcp":
		s := mcp.NewMCPServer(edges, w)
		return s.Run(ctx, &gomcp.StdioTransport{})

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func loadEdges(dc config.DatasetConfig) (*dataset.EdgeSet, error) {
	if dc.Path == "" {
		return nil, errors.New("no dataset: set dataset.path or -data")
	}
	edges, err := dataset.Load(dc.Path)
	if err != nil {
		return nil, err
	}
	if dc.TrainRatio > 0 {
		train, test, err := dataset.SplitByDay(edges, dc.TrainRatio)
		if err != nil {
			return nil, err
		}
		slog.Info("dataset split", "train_edges", train.Len(), "test_edges", test.Len())
		edges = train
	}
	slog.Info("dataset loaded", "path", dc.Path, "edges", edges.Len(), "max_node", edges.MaxNode())
	return edges, nil
}

// errBatchCount rejects a -batches value that would produce nothing.
var errBatchCount = errors.New("-batches must be at least 1")

// sample writes n batches to out, one JSON array per line.
func sample(ctx context.Context, w *walk.Walker, out io.Writer, n int) error {
	if n < 1 {
		return errBatchCount
	}
	for b, err := range w.Batches(ctx) {
		if err != nil {
			return err
		}
		if err := writeJSON(out, b.Slices()); err != nil {
			return err
		}
		if n--; n == 0 {
			return nil
		}
	}
	return nil
}

func record(ctx context.Context, w *walk.Walker, maxNode int, rc config.RecordConfig, n int) error {
	if n < 1 {
		return errBatchCount
	}
	h := persistence.NewHeader(w.Sampler().Config(), w.Seed(), maxNode, rc.Precision)
	rec, err := persistence.NewBatchRecorder(rc.Path, h)
	if err != nil {
		return err
	}
	defer rec.Close()

	for range n {
		b, err := w.Next(ctx)
		if err != nil {
			return err
		}
		if err := rec.Record(b); err != nil {
			return err
		}
	}
	if err := rec.Sync(); err != nil {
		return err
	}
	slog.Info("recording written", "path", rc.Path, "run_id", h.RunID, "batches", rec.Count())
	return nil
}

func replay(path string, out io.Writer) error {
	br, err := persistence.OpenRecording(path)
	if err != nil {
		return err
	}
	defer br.Close()

	slog.Info("replaying", "run_id", br.Header().RunID, "precision", br.Header().Precision)
	for {
		b, err := br.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := writeJSON(out, b.Slices()); err != nil {
			return err
		}
	}
}

func impute(edges *dataset.EdgeSet, loc, scale float64, n int, seed uint64) error {
	kde, err := dataset.NewKDE(edges.Times)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	times, err := dataset.SamplePosterior(kde, loc, scale, n, rand.NewPCG(seed, seed))
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, map[string]any{
		"loc":       loc,
		"scale":     scale,
		"bandwidth": kde.Bandwidth(),
		"times":     times,
	})
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
