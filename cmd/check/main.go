package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/config"
	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/internal/platform/storage/memory"
	"github.com/rgdevment/scam-shield/internal/platform/storage/scylla"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	inputPtr := flag.String("input", "", "Phone number, URL or message text to analyze once")
	phonePtr := flag.Bool("phone", false, "Validate -input as a phone number before lookup")
	watchPtr := flag.Bool("watch", false, "Analyze every line read from stdin, printing only the latest verdict")
	seedPtr := flag.String("seed", "", "JSON file of reports to load into in-memory storage")
	flag.Parse()

	if *inputPtr == "" && !*watchPtr {
		fmt.Fprintln(os.Stderr, "Usage: check -input='+1 415 555 1234' [-phone] | check -watch < inputs.txt")
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder, closeFn, err := openFinder(ctx, cfg, *seedPtr, logger)
	if err != nil {
		logger.Error("failed to open report storage", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	engine := analysis.NewEngine(finder, analysis.NewNormalizer(cfg.DefaultRegion), logger, nil)

	if *watchPtr {
		if err := watch(ctx, engine, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			logger.Error("watch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	result, err := engine.Analyze(ctx, analysis.Request{Input: *inputPtr, ExpectPhone: *phonePtr})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func openFinder(ctx context.Context, cfg *config.Config, seedPath string, logger *logging.Logger) (analysis.ReportFinder, func(), error) {
	if cfg.StorageDriver == config.DriverScylla {
		session, err := scylla.Connect(cfg.ScyllaKeyspace, cfg.ScyllaTimeout, cfg.ScyllaHosts...)
		if err != nil {
			return nil, nil, err
		}
		return scylla.NewScyllaRepository(session, logger), session.Close, nil
	}

	repo := memory.NewRepository()
	if seedPath == "" {
		return repo, func() {}, nil
	}
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read seed file: %w", err)
	}
	var reports []*domain.ScamReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, nil, fmt.Errorf("parse seed file: %w", err)
	}
	for _, r := range reports {
		repo.Seed(r.Record())
	}
	logger.Info("seeded in-memory storage", "reports", len(reports))
	return repo, func() {}, nil
}

type outcome struct {
	seq    uint64
	input  string
	result *domain.AnalysisResult
	err    error
}

type verdictLine struct {
	domain.Session
	Error string `json:"error,omitempty"`
}

// watch starts an analysis for every input line. A newer line supersedes
// any analysis still running, whose result is then discarded.
func watch(ctx context.Context, engine *analysis.Engine, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(chan outcome)
	enc := json.NewEncoder(out)
	var session domain.Session
	inFlight := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				if inFlight == 0 {
					return nil
				}
				lines = nil
				continue
			}
			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}
			session = session.Begin(input)
			inFlight++
			go func(seq uint64, input string) {
				res, err := engine.Analyze(ctx, analysis.Request{Input: input})
				select {
				case results <- outcome{seq: seq, input: input, result: res, err: err}:
				case <-ctx.Done():
				}
			}(session.Seq, input)

		case o := <-results:
			inFlight--
			if next, ok := session.Complete(o.seq, o.input, o.result, o.err); ok {
				session = next
				if err := enc.Encode(verdictLine{Session: session, Error: session.ErrMessage()}); err != nil {
					return err
				}
			}
			if lines == nil && inFlight == 0 {
				return nil
			}
		}
	}
}
