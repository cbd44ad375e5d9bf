package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maj/doc-classifier/internal/core"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for one-shot classification
type CliFilter struct {
	service *core.ClassifierService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.ClassifierService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessDocument classifies a document and displays the results
func (f *CliFilter) ProcessDocument(ctx context.Context, doc *core.Document) (*core.ClassificationRecord, error) {
	f.logger.Debug("Processing document", zap.String("sender", doc.Sender))

	// Print document summary
	fmt.Printf("\n=== Document Summary ===\n")
	fmt.Printf("From: %s\n", doc.Sender)
	fmt.Printf("Subject: %s\n", doc.Subject)
	fmt.Printf("Body length: %d bytes\n", len(doc.Body))

	// Print body preview if verbose
	if f.verbose {
		preview := doc.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n")

	startTime := time.Now()
	var rec *core.ClassificationRecord
	var err error
	if doc.Filename != "" {
		rec, err = f.service.ClassifyDocument(ctx, doc)
	} else {
		rec, err = f.service.ClassifyEmail(ctx, doc)
	}
	if err != nil {
		f.logger.Error("Failed to classify document", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	// Print results
	fmt.Print(rec.Score.Report())

	if rec.Oracle != nil {
		fmt.Printf("\n=== Oracle ===\n")
		fmt.Printf("Status: %s\n", rec.Oracle.Status)
		fmt.Printf("Model: %s\n", rec.Oracle.ModelUsed)
		fmt.Printf("Attempts: %d\n", rec.Oracle.Attempts)
		if rec.Oracle.FailureReason != "" {
			fmt.Printf("Failure reason: %s\n", rec.Oracle.FailureReason)
		}
		if rec.Oracle.Subscription != nil {
			fmt.Printf("Is subscription: %t (confidence %d%%)\n",
				rec.Oracle.Subscription.IsSubscription, rec.Oracle.Subscription.Confidence)
			fmt.Printf("Reasoning: %s\n", rec.Oracle.Subscription.Reasoning)
		}
		if rec.Oracle.Document != nil {
			fmt.Printf("Document type: %s (%.1f%%)\n",
				rec.Oracle.Document.DocumentType, rec.Oracle.Document.ConfidencePercent)
			fmt.Printf("Reasoning: %s\n", rec.Oracle.Document.Reasoning)
		}
	}

	if rec.Legal != nil {
		fmt.Printf("\n=== Legal Document ===\n")
		fmt.Printf("Type: %s (confidence %d%%)\n", rec.Legal.DocumentType, rec.Legal.Confidence)
		if len(rec.Legal.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(rec.Legal.Tags, ", "))
		}
		for k, v := range rec.Legal.Metadata {
			fmt.Printf("%s: %s\n", k, v)
		}
	} else if rec.ServiceName != "" {
		fmt.Printf("Service: %s\n", rec.ServiceName)
	}
	fmt.Printf("Accepted: %t\n", rec.Accepted())
	fmt.Printf("Processing time: %v\n", duration)

	return rec, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
