package services

import (
	"context"

	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

// PipelineResult reports both stages of a full pipeline run. Refresh is nil
// when training failed and the refresh stage never ran.
type PipelineResult struct {
	Status   string          `json:"status"`
	Training *TrainingResult `json:"training"`
	Refresh  *RefreshResult  `json:"refresh,omitempty"`
}

// PipelineService runs the two-stage train-then-refresh pipeline. The
// refresh stage only runs when training succeeds, so a broken training run
// never wipes a healthy cache.
type PipelineService interface {
	Run(ctx context.Context) (*PipelineResult, error)
}

type pipelineService struct {
	training TrainingService
	precalc  PrecalcService
	log      *logger.Logger
}

func NewPipelineService(training TrainingService, precalc PrecalcService, baseLog *logger.Logger) PipelineService {
	return &pipelineService{
		training: training,
		precalc:  precalc,
		log:      baseLog.With("service", "PipelineService"),
	}
}

func (s *pipelineService) Run(ctx context.Context) (*PipelineResult, error) {
	result := &PipelineResult{Status: "completed"}

	trainRes, err := s.training.TrainAndSaveModels(ctx)
	if err != nil {
		result.Status = "failed"
		s.log.Error("training stage failed, refresh skipped", "error", err)
		return result, err
	}
	result.Training = trainRes
	if trainRes.Status == "failed" {
		result.Status = "failed"
		s.log.Error("training produced no models, refresh skipped")
		return result, nil
	}

	refreshRes, err := s.precalc.Refresh(ctx)
	result.Refresh = refreshRes
	if err != nil {
		result.Status = "failed"
		return result, err
	}
	if trainRes.Status != "completed" || refreshRes.Status != "completed" {
		result.Status = "completed_with_errors"
	}
	return result, nil
}
