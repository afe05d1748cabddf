package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sewasangat/import-service/internal/core/services/importer"
	"github.com/sewasangat/import-service/internal/pkg/config"
)

// TaskTypeImportProcess runs one import job end to end on a worker
const TaskTypeImportProcess = "import:process"

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

// Dispatcher enqueues import tasks through Asynq, implementing
// importer.TaskDispatcher so jobs can run on a worker fleet.
type Dispatcher struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewDispatcher creates an Asynq-backed task dispatcher
func NewDispatcher(cfg *config.QueueConfig, logger *slog.Logger) *Dispatcher {
	client := asynq.NewClient(redisOpt(cfg))

	logger.Info("asynq client created",
		slog.String("redis_host", cfg.RedisHost),
		slog.Int("redis_port", cfg.RedisPort),
	)

	return &Dispatcher{
		client: client,
		logger: logger,
	}
}

// Close closes the Asynq client
func (d *Dispatcher) Close() error {
	d.logger.Info("closing asynq client")
	return d.client.Close()
}

// Dispatch schedules one import task. The job never retries on failure: the
// pipeline records a failed terminal state instead, so MaxRetry is zero.
func (d *Dispatcher) Dispatch(ctx context.Context, task importer.ImportTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal import task: %w", err)
	}

	info, err := d.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeImportProcess, payload),
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
	)
	if err != nil {
		d.logger.Error("failed to enqueue import task",
			slog.String("job_id", task.JobID),
			"error", err)
		return fmt.Errorf("enqueue import task: %w", err)
	}

	d.logger.Debug("import task enqueued",
		slog.String("task_id", info.ID),
		slog.String("job_id", task.JobID),
		slog.String("queue", info.Queue),
	)

	return nil
}

// Worker processes import tasks from the queue
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	service *importer.Service
	logger  *slog.Logger
}

// NewWorker creates an Asynq server wired to the import pipeline
func NewWorker(cfg *config.QueueConfig, service *importer.Service, logger *slog.Logger) *Worker {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency:    cfg.Concurrency,
			StrictPriority: cfg.StrictPriority,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task processing failed",
					slog.String("task_type", task.Type()),
					"error", err)
			}),
			HealthCheckInterval: 20 * time.Second,
			ShutdownTimeout:     25 * time.Second,
		},
	)

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		service: service,
		logger:  logger,
	}
	w.mux.HandleFunc(TaskTypeImportProcess, w.handleImportProcess)

	logger.Info("asynq worker created",
		slog.String("redis_host", cfg.RedisHost),
		slog.Int("concurrency", cfg.Concurrency),
	)

	return w
}

func (w *Worker) handleImportProcess(ctx context.Context, task *asynq.Task) error {
	var importTask importer.ImportTask
	if err := json.Unmarshal(task.Payload(), &importTask); err != nil {
		return fmt.Errorf("unmarshal import task: %w", err)
	}

	w.logger.Info("import task picked up",
		slog.String("job_id", importTask.JobID),
		slog.Int("total_rows", len(importTask.Records)))

	// Execute reports failures through the job store; returning the error
	// here only surfaces it to the error handler, never retries.
	return w.service.Execute(ctx, importTask)
}

// Start runs the worker loop until Shutdown
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker")
	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("failed to run asynq worker: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the worker
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}
