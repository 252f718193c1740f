package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"validation-proxy-service/internal/entity"
	"validation-proxy-service/internal/telemetry"
	"validation-proxy-service/internal/validator"
)

type JobRepo interface {
	CompleteAs(ctx context.Context, id string, out entity.Outcome) (entity.Job, error)
}

type Validator interface {
	Validate(ctx context.Context, email, target string) (*validator.Response, error)
}

// Task is one validation handed to the pool.
type Task struct {
	JobID string
	Email string
	URL   string
}

type Processor struct {
	repo      JobRepo
	validator Validator
	log       logrus.FieldLogger
}

func NewProcessor(repo JobRepo, v Validator, log logrus.FieldLogger) *Processor {
	return &Processor{repo: repo, validator: v, log: log}
}

// Process performs the validator call for t and writes the job's only
// terminal state.
func (p *Processor) Process(ctx context.Context, t Task) error {
	start := time.Now()
	log := p.log.WithField("job_id", t.JobID)
	log.WithField("url", t.URL).Debug("validation started")

	telemetry.InFlightGauge.Inc()
	resp, err := p.validator.Validate(ctx, t.Email, t.URL)
	telemetry.InFlightGauge.Dec()
	telemetry.ValidatorDuration.Observe(time.Since(start).Seconds())

	return p.complete(ctx, t, outcomeOf(resp, err), start)
}

// Abort finalizes a task that will never run.
func (p *Processor) Abort(ctx context.Context, t Task, reason string) error {
	return p.complete(ctx, t, entity.ErrorOutcome(reason), time.Now())
}

func (p *Processor) complete(ctx context.Context, t Task, out entity.Outcome, start time.Time) error {
	log := p.log.WithField("job_id", t.JobID)

	// the registry write must land even when ctx was canceled by shutdown
	job, err := p.repo.CompleteAs(context.WithoutCancel(ctx), t.JobID, out)
	if err != nil {
		log.WithError(err).Error("complete job")
		return err
	}
	telemetry.JobsCompleted.WithLabelValues(string(job.Status)).Inc()

	fields := logrus.Fields{
		"status":      job.Status,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if job.Result != nil {
		fields["upstream_status"] = job.Result.StatusCode
		log.WithFields(fields).Info("validation finished")
	} else {
		fields["error"] = *job.Error
		log.WithFields(fields).Warn("validation finished")
	}
	return nil
}

func outcomeOf(resp *validator.Response, err error) entity.Outcome {
	if err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) {
			return entity.ErrorOutcome(verr.Error())
		}
		return entity.ErrorOutcome("validator request failed: " + err.Error())
	}
	res := entity.Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Body:        string(resp.Body),
	}
	// JSON strings cannot carry arbitrary bytes
	if !utf8.Valid(resp.Body) {
		res.Body = base64.StdEncoding.EncodeToString(resp.Body)
		res.BodyEncoding = entity.BodyBase64
	}
	return entity.DoneOutcome(res)
}
