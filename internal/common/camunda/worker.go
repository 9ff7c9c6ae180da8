package camunda

import (
	"time"

	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes, fails or throws on every job it is given.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Instrument wraps h with the active-job gauge and duration histogram.
func Instrument(taskType string, h JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		start := time.Now()
		h.Handle(client, job)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}
}

// StartWorker opens a job worker for taskType unless it is disabled. The
// returned worker is nil when nothing was started.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, h JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("Worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	maxActive := wcfg.MaxJobsActive
	if maxActive <= 0 {
		maxActive = 5
	}
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = time.Minute
	}

	w := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, h)).
		MaxJobsActive(maxActive).
		Timeout(timeout).
		Open()

	log.Info("Worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxActive,
		"timeout":       timeout.String(),
	})
	return w
}
