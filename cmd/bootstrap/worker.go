package bootstrap

import (
	"fmt"

	"theralink/internal/delivery/worker"
	"theralink/internal/infrastructure/queue"

	"github.com/hibiken/asynq"
)

// Worker runs the background task server.
type Worker struct {
	*Container
	server  *asynq.Server
	handler *worker.TaskHandler
}

func NewWorker() (*Worker, error) {
	container, err := NewContainer()
	if err != nil {
		return nil, err
	}

	cfg := container.Config
	server := asynq.NewServer(queue.RedisOpt(cfg.Redis, cfg.Queue), asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
		Queues: map[string]int{
			"default": 1,
		},
		Logger:   container.Log,
		LogLevel: asynq.InfoLevel,
	})

	return &Worker{
		Container: container,
		server:    server,
		handler:   worker.NewTaskHandler(container.Notification, container.Appointment, container.Log),
	}, nil
}

// Run blocks until SIGINT or SIGTERM, then drains in-flight tasks.
func (w *Worker) Run() error {
	defer w.Close()

	w.Log.Infof("Worker starting with concurrency %d", w.Config.Queue.Concurrency)
	if err := w.server.Run(w.handler.Mux()); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}

	w.Log.Info("Worker shutdown complete")
	return nil
}
