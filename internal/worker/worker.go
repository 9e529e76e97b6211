// Package worker wires asynq task handling for the scan pipeline.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"arbscan/internal/arbitrage"
	"arbscan/internal/service"
)

// NewScanHandler adapts the scan service to asynq's handler contract.
// Undecodable payloads and unknown modes are logged and dropped with a nil
// return, since a retry cannot repair them. Processing failures are returned
// so asynq schedules a retry.
func NewScanHandler(svc service.ScanServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		payload, modes, err := decodeScanTask(t)
		if err != nil {
			logger.Errorw("Dropping scan task", "type", t.Type(), "error", err)
			return nil
		}

		if err := svc.ProcessScan(ctx, payload.ScanID, payload.Assets, modes); err != nil {
			logger.Errorw("Scan task failed", "scan_id", payload.ScanID, "error", err)
			return err
		}

		logger.Infow("Task completed", "scan_id", payload.ScanID)
		return nil
	}
}

func decodeScanTask(t *asynq.Task) (service.RunScanPayload, []arbitrage.Mode, error) {
	var payload service.RunScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, nil, fmt.Errorf("decode payload: %w", err)
	}
	modes, err := parseModes(payload.Modes)
	if err != nil {
		return payload, nil, err
	}
	return payload, modes, nil
}

func parseModes(in []string) ([]arbitrage.Mode, error) {
	modes := make([]arbitrage.Mode, 0, len(in))
	for _, s := range in {
		m, err := arbitrage.ParseMode(s)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// AsynqEnqueuer submits scan tasks to the asynq queue, stamping each task
// with the configured retry limit and execution timeout.
type AsynqEnqueuer struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewAsynqEnqueuer wraps client with per-task retry and timeout options.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client, maxRetry: maxRetry, timeout: timeout}
}

// EnqueueScanTask serializes payload and places a scan task on the queue.
func (e *AsynqEnqueuer) EnqueueScanTask(ctx context.Context, payload service.RunScanPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal scan payload: %w", err)
	}

	task := asynq.NewTask(service.TaskTypeRunScan, data,
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(e.timeout),
	)
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue scan: %w", err)
	}
	return nil
}
