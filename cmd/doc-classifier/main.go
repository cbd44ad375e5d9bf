package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/maj/doc-classifier/internal/adapters/store"
	"github.com/maj/doc-classifier/internal/config"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/di"
	"github.com/maj/doc-classifier/internal/factory"
	"github.com/maj/doc-classifier/internal/ports"
	"github.com/maj/doc-classifier/internal/worker"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to single-document or batch mode based on the flags.
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	docFilter ports.DocumentFilter,
	service *core.ClassifierService,
	cfg *config.Config,
	stores *factory.StoreFactory,
) error {
	defer logger.Sync()

	ctx := context.Background()

	if flags.InputDir != "" {
		return runBatch(ctx, flags.InputDir, service, cfg, stores, logger)
	}
	if flags.OCRText {
		return runOCRFile(ctx, flags.InputFile, docFilter, logger)
	}
	return runEmail(ctx, flags.InputFile, docFilter, logger)
}

// runEmail classifies a single email read from a file or stdin.
func runEmail(ctx context.Context, inputFile string, docFilter ports.DocumentFilter, logger *zap.Logger) error {
	var emailReader io.Reader
	if inputFile != "" {
		file, err := os.Open(inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}

	contentType := core.ContentText
	if strings.Contains(strings.ToLower(msg.Header.Get("Content-Type")), "text/html") {
		contentType = core.ContentHTML
	}

	doc := &core.Document{
		ID:          msg.Header.Get("Message-Id"),
		Subject:     msg.Header.Get("Subject"),
		Sender:      msg.Header.Get("From"),
		Recipient:   msg.Header.Get("To"),
		Body:        string(bodyBytes),
		ContentType: contentType,
	}
	if doc.ID == "" {
		doc.ID = doc.Sender + "-" + doc.Subject
	}

	_, err = docFilter.ProcessDocument(ctx, doc)
	return err
}

// runOCRFile classifies a single OCR'd document text file.
func runOCRFile(ctx context.Context, inputFile string, docFilter ports.DocumentFilter, logger *zap.Logger) error {
	var text []byte
	var err error
	filename := "stdin.txt"

	if inputFile != "" {
		text, err = os.ReadFile(inputFile)
		if err != nil {
			logger.Fatal("Failed to read input file", zap.Error(err), zap.String("file", inputFile))
		}
		filename = filepath.Base(inputFile)
	} else {
		text, err = io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read stdin", zap.Error(err))
		}
	}

	doc := &core.Document{
		ID:       filename,
		Body:     string(text),
		Filename: filename,
	}

	_, err = docFilter.ProcessDocument(ctx, doc)
	return err
}

// runBatch classifies every .txt file in a directory through the
// worker pool, with checkpointing so an interrupted run can resume.
func runBatch(
	ctx context.Context,
	dir string,
	service *core.ClassifierService,
	cfg *config.Config,
	stores *factory.StoreFactory,
	logger *zap.Logger,
) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var docs []*core.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		text, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable file", zap.Error(err), zap.String("file", path))
			continue
		}
		docs = append(docs, &core.Document{
			ID:       entry.Name(),
			Body:     string(text),
			Filename: entry.Name(),
		})
	}
	if len(docs) == 0 {
		logger.Info("No documents to classify", zap.String("dir", dir))
		return nil
	}

	wc := cfg.GetWorkers()
	pool := worker.NewPool(worker.Config{
		Initial:        wc.Initial,
		Min:            wc.Min,
		Max:            wc.Max,
		QueueSize:      wc.QueueSize,
		AdjustInterval: wc.AdjustInterval,
	}, logger)
	pool.Start(ctx)
	defer pool.Shutdown()

	checkpoints, err := batchCheckpoints(stores, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := checkpoints.(interface{ Close() error }); ok {
			closer.Close()
		}
	}()
	runner := worker.NewRunner(pool, checkpoints, logger)

	var classified, rejected, failed, retries int64
	processed, err := runner.Run(ctx, dir, docs, func(ctx context.Context, doc *core.Document) {
		rec, err := service.ClassifyDocument(ctx, doc)
		if err != nil {
			atomic.AddInt64(&failed, 1)
			logger.Error("Failed to classify document", zap.Error(err), zap.String("file", doc.Filename))
			return
		}
		if rec.Accepted() {
			atomic.AddInt64(&classified, 1)
		} else {
			atomic.AddInt64(&rejected, 1)
		}
		if rec.Oracle != nil && rec.Oracle.Attempts > 1 {
			atomic.AddInt64(&retries, int64(rec.Oracle.Attempts-1))
		}
		fmt.Printf("%-40s %3d/%d %-10s", doc.Filename, rec.TotalScore, rec.MaxScore, rec.Level)
		if rec.ServiceName != "" {
			fmt.Printf(" %s", rec.ServiceName)
		}
		fmt.Println()
	})
	if err != nil {
		return err
	}

	logger.Info("Batch complete",
		zap.Int("processed", processed),
		zap.Int("total", len(docs)),
		zap.Int64("classified", atomic.LoadInt64(&classified)),
		zap.Int64("rejected", atomic.LoadInt64(&rejected)),
		zap.Int64("errors", atomic.LoadInt64(&failed)),
		zap.Int64("retries", atomic.LoadInt64(&retries)),
		zap.Int("adjustments", pool.Adjustments()))
	return nil
}

// batchCheckpoints builds the checkpoint store for a batch run. With
// persistence enabled the configured result store doubles as the
// checkpoint store, so an interrupted run survives a restart; without
// it checkpoints live in memory for the lifetime of the process.
func batchCheckpoints(stores *factory.StoreFactory, logger *zap.Logger) (core.CheckpointStore, error) {
	if !stores.IsStoreEnabled() {
		return store.NewMemoryStore(logger), nil
	}
	rs, err := stores.CreateResultStore()
	if err != nil {
		return nil, err
	}
	return stores.CreateCheckpointStore(rs)
}
