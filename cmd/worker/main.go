package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"golang.org/x/sync/errgroup"

	"hirevision-backend/internal/bootstrap"
	"hirevision-backend/internal/shared/config"
	"hirevision-backend/internal/shared/metrics"
	"hirevision-backend/internal/shared/telemetry"
	"hirevision-backend/internal/workerproc"
)

func main() {
	cfg := config.Load()
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		log.Fatal("SQS_QUEUE_URL is required")
	}
	// The worker consumes SQS; handing records to the inline queue from
	// here would loop them back into this process.
	cfg.QueueBackend = config.QueueSQS

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SQSRegion))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	w := &worker{
		sqs:         sqs.NewFromConfig(awsCfg),
		queueURL:    cfg.SQSQueueURL,
		dispatcher:  app.Dispatcher,
		visibility:  cfg.WorkerVisibilityTimeout,
		concurrency: cfg.WorkerConcurrency,
		log:         telemetry.Default(),
	}

	w.log.Info("worker.started", map[string]any{
		"queue_url":          cfg.SQSQueueURL,
		"concurrency":        w.concurrency,
		"visibility_seconds": int(w.visibility / time.Second),
	})

	done := make(chan struct{})
	go func() {
		w.run(ctx)
		close(done)
	}()

	<-ctx.Done()
	w.log.Info("worker.shutdown", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
	select {
	case <-done:
	case <-time.After(cfg.ShutdownTimeout):
		w.log.Error("worker.shutdown_timeout", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type worker struct {
	sqs         sqsAPI
	queueURL    string
	dispatcher  *workerproc.Dispatcher
	visibility  time.Duration
	concurrency int
	log         telemetry.Logger
}

// run long-polls until ctx is cancelled, then waits for in-flight messages.
func (w *worker) run(ctx context.Context) {
	g := new(errgroup.Group)
	g.SetLimit(max(1, w.concurrency))

	for ctx.Err() == nil {
		resp, err := w.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(w.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(w.visibility / time.Second),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				break
			}
			w.log.Error("worker.receive_failed", map[string]any{"error": err.Error()})
			sleep(ctx, time.Second)
			continue
		}
		for _, msg := range resp.Messages {
			msg := msg
			// Messages already received are finished with a fresh context so
			// shutdown does not strand them mid-task.
			g.Go(func() error {
				w.handle(context.WithoutCancel(ctx), msg)
				return nil
			})
		}
	}
	_ = g.Wait()
}

// handle processes one SQS message. The message is deleted when it succeeds
// or can never succeed; any other failure is left for redelivery.
func (w *worker) handle(ctx context.Context, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	decoded, err := w.dispatcher.HandleBody(ctx, body)
	fields := baseFields(msg, string(decoded.Kind), decoded.RecordID, decoded.RequestID)

	switch {
	case err == nil:
		if w.deleteMessage(ctx, msg, fields) {
			w.log.Info("worker.message.completed", fields)
		}
		metrics.IncWorkerMessage(kindLabel(string(decoded.Kind)), "completed")
	case workerproc.Permanent(err):
		fields["error"] = err.Error()
		meta := workerproc.ComputeMeta(body)
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		w.log.Error("worker.message.dropped", fields)
		w.deleteMessage(ctx, msg, fields)
		metrics.IncWorkerMessage(kindLabel(string(decoded.Kind)), "dropped")
	default:
		fields["error"] = err.Error()
		w.log.Error("worker.message.failed", fields)
		metrics.IncWorkerMessage(kindLabel(string(decoded.Kind)), "failed")
	}
}

func (w *worker) deleteMessage(ctx context.Context, msg sqstypes.Message, fields map[string]any) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		w.log.Error("worker.message.delete_failed", withError(fields, "missing receipt handle"))
		return false
	}
	if _, err := w.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		w.log.Error("worker.message.delete_failed", withError(fields, err.Error()))
		return false
	}
	return true
}

func withError(fields map[string]any, msg string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = msg
	return out
}

func baseFields(msg sqstypes.Message, kind, recordID, requestID string) map[string]any {
	fields := map[string]any{
		"kind":           kindLabel(kind),
		"record_id":      recordID,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if strings.TrimSpace(requestID) != "" {
		fields["request_id"] = requestID
	}
	return fields
}

func kindLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}

func receiveCount(msg sqstypes.Message) int {
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
