package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"validation-proxy-service/internal/entity"
	"validation-proxy-service/internal/ratelimit"
	"validation-proxy-service/internal/worker"
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidScheme = errors.New("url scheme must be http or https")
	ErrRateLimited   = errors.New("rate limited")
)

// Registry port (implementation: memory.JobRegistry)
type JobRegistry interface {
	Insert(ctx context.Context, id, email, url string) (entity.Job, error)
	Get(ctx context.Context, id string) (entity.Job, error)
	Remove(ctx context.Context, id string) error
}

type JobQueue interface {
	Submit(t worker.Task) error
}

type JobService struct {
	registry JobRegistry
	queue    JobQueue
	limiter  ratelimit.Limiter
	newID    func() string
}

func NewJobService(registry JobRegistry, queue JobQueue, limiter ratelimit.Limiter) *JobService {
	return &JobService{
		registry: registry,
		queue:    queue,
		limiter:  limiter,
		newID:    func() string { return uuid.NewString() },
	}
}

type StartValidationRequest struct {
	Email  string
	URL    string
	Caller string
}

// StartValidation registers a running job and hands it to a worker. It
// never waits for the validator.
func (s *JobService) StartValidation(ctx context.Context, req StartValidationRequest) (string, error) {
	email := strings.TrimSpace(req.Email)
	target := strings.TrimSpace(req.URL)
	if email == "" {
		return "", fmt.Errorf("%w: email", ErrMissingField)
	}
	if target == "" {
		return "", fmt.Errorf("%w: url", ErrMissingField)
	}
	if err := checkScheme(target); err != nil {
		return "", err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "rl:"+req.Caller)
		if err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
		if !allowed {
			return "", ErrRateLimited
		}
	}

	id := s.newID()
	if _, err := s.registry.Insert(ctx, id, email, target); err != nil {
		return "", fmt.Errorf("register job: %w", err)
	}

	if err := s.queue.Submit(worker.Task{JobID: id, Email: email, URL: target}); err != nil {
		// the id was never handed out, so the placeholder can go
		_ = s.registry.Remove(ctx, id)
		return "", err
	}
	return id, nil
}

func (s *JobService) GetResult(ctx context.Context, id string) (entity.Job, error) {
	return s.registry.Get(ctx, id)
}

func checkScheme(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScheme, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ErrInvalidScheme
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidScheme)
	}
	return nil
}
