package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchload/internal/adapters/mq/queue"
	"github.com/okian/matchload/internal/adapters/repository"
	"github.com/okian/matchload/internal/domain/analysis"
	"github.com/okian/matchload/internal/domain/capability"
	"github.com/okian/matchload/internal/domain/recovery"
	"github.com/okian/matchload/pkg/logger"
	"github.com/okian/matchload/pkg/metrics"
)

// AnalysisInput selects the data sent for analysis. Since is YYYY-MM-DD.
type AnalysisInput struct {
	Mode     string `json:"mode"`
	Season   string `json:"season,omitempty"`
	Category string `json:"category,omitempty"`
	Since    string `json:"since,omitempty"`
	Player   string `json:"player,omitempty"`
}

// SubmitAnalysis builds the sample for in and queues it. The returned job
// is polled with Job.
func (s *Service) SubmitAnalysis(ctx context.Context, in AnalysisInput) (repository.Job, error) {
	if err := s.ready(); err != nil {
		return repository.Job{}, err
	}
	mode, err := analysis.ParseMode(in.Mode)
	if err != nil {
		return repository.Job{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if s.pool == nil {
		return repository.Job{}, fmt.Errorf("analysis: %w", ErrUnavailable)
	}
	req, err := s.sample(ctx, mode, in)
	if err != nil {
		return repository.Job{}, err
	}

	job, err := s.jobs.Create(ctx, repository.Job{ID: uuid.NewString(), Mode: string(mode), Category: req.Category})
	if err != nil {
		return repository.Job{}, err
	}
	if !s.queue.Enqueue(ctx, queue.Task{JobID: job.ID, Request: req}) {
		s.jobs.Delete(ctx, job.ID)
		metrics.RecordAnalysisJob(string(mode), "rejected")
		return repository.Job{}, ErrQueueFull
	}
	metrics.RecordAnalysisJob(string(mode), string(repository.JobQueued))
	s.logger.Info(ctx, "analysis queued", logger.String("job_id", job.ID), logger.String("mode", string(mode)))
	return job, nil
}

// Job returns an analysis job.
func (s *Service) Job(ctx context.Context, id string) (repository.Job, error) {
	if err := s.ready(); err != nil {
		return repository.Job{}, err
	}
	return s.jobs.Get(ctx, id)
}

func (s *Service) sample(ctx context.Context, mode analysis.Mode, in AnalysisInput) (analysis.Request, error) {
	req := analysis.Request{Mode: mode}
	var (
		rows any
		n    int
	)
	switch mode {
	case analysis.ModeGPS:
		matches, err := s.Matches(ctx, in.Season, false)
		if err != nil {
			return req, err
		}
		rows, n = matches, len(matches)
	case analysis.ModeCapability:
		tests, err := s.capabilityTests(ctx)
		if err != nil {
			return req, err
		}
		weekly := capability.WeeklySample(tests)
		rows, n = weekly, len(weekly)
	case analysis.ModeRecovery:
		since := s.recoverySince
		if in.Since != "" {
			t, err := time.Parse(time.DateOnly, in.Since)
			if err != nil {
				return req, fmt.Errorf("%w: since %q: want YYYY-MM-DD", ErrInvalidArgument, in.Since)
			}
			since = t
		}
		category := in.Category
		if category == "" {
			category = recovery.Total
		}
		if !recovery.ValidCategory(category) {
			return req, fmt.Errorf("%w: %w: %s", ErrInvalidArgument, recovery.ErrUnknownCategory, category)
		}
		entries, err := s.datasets.Recovery(ctx)
		if err != nil {
			return req, err
		}
		sel := recovery.Since(entries, category, since)
		rows, n = sel, len(sel)
		req.Category, req.Since = category, since.Format(time.DateOnly)
	case analysis.ModeInjury:
		report, err := s.PlayerInjuries(ctx, in.Player)
		if err != nil {
			return req, err
		}
		rows, n = report.Records, len(report.Records)
	}
	if n == 0 {
		return req, fmt.Errorf("%w: %w", ErrInvalidArgument, analysis.ErrEmptySample)
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return req, fmt.Errorf("encode %s sample: %w", mode, err)
	}
	req.Sample = string(payload)
	return req, nil
}
