// Package generatequotation is the job worker that prices an ERP product and
// returns the quotation document to the process.
package generatequotation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/metrics"
	"solar-advisor/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-quotation"

type Quoter interface {
	Generate(ctx context.Context, req models.QuotationRequest) (*models.QuotationResult, error)
}

type Config struct {
	Timeout time.Duration
}

type Handler struct {
	config *Config
	quoter Quoter
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, quoter Quoter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		quoter: quoter,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, job.Variables)
	if err != nil {
		stdErr := apperrors.AsStandardError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, variables string) (*Output, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewRequestInvalidError(fmt.Sprintf("parse input: %v", err))
	}

	result, err := h.quoter.Generate(ctx, models.QuotationRequest{
		ProductNumber: input.ProductNumber,
		PhoneNumber:   input.PhoneNumber,
		Name:          input.CustomerName,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		Quotation:       result.QuotationText,
		Price:           result.Price,
		ReferenceNumber: result.QuotationText.Metadata.ReferenceNumber,
		GrandTotal:      result.Price.GrandTotal,
		CustomerFound:   result.Customer != nil,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":    job.Key,
		"reference": output.ReferenceNumber,
	})
}
