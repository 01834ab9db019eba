package service

import (
	"context"
	"fmt"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/config"
	"golang-market-intel/internal/intel/dto"
	"golang-market-intel/internal/intel/repository"
	"golang-market-intel/pkg/common"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/redis"
	"golang-market-intel/pkg/telegram"
	"golang-market-intel/pkg/utils"
)

const reportSentTTL = 48 * time.Hour

// ReportService delivers run briefs to the configured Telegram chat.
type ReportService interface {
	SendRunReport(ctx context.Context, runID string) error
	SendRunFailure(ctx context.Context, run *entity.PipelineRun)
}

// NewReportService creates a new ReportService. A nil notifier disables
// delivery without disabling the pipeline.
func NewReportService(
	cfg *config.Config,
	log *logger.Logger,
	runRepo repository.PipelineRunRepository,
	recRepo repository.RecommendationRepository,
	notifier telegram.Notifier,
	redisClient *redis.Client,
) ReportService {
	return &reportService{
		cfg:         cfg,
		logger:      log,
		runRepo:     runRepo,
		recRepo:     recRepo,
		notifier:    notifier,
		redisClient: redisClient,
	}
}

type reportService struct {
	cfg         *config.Config
	logger      *logger.Logger
	runRepo     repository.PipelineRunRepository
	recRepo     repository.RecommendationRepository
	notifier    telegram.Notifier
	redisClient *redis.Client
}

// SendRunReport formats and sends the brief for one completed run. Each run
// is reported at most once; the guard key is released on delivery failure
// so a retry can resend.
func (s *reportService) SendRunReport(ctx context.Context, runID string) error {
	if s.notifier == nil {
		s.logger.InfoContext(ctx, "Telegram delivery disabled, skipping run report")
		return nil
	}

	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if run.Status != entity.RunStatusCompleted {
		return fmt.Errorf("run %s is %s, only completed runs are reported", runID, run.Status)
	}

	sentKey := fmt.Sprintf(common.RedisKeyReportSent, runID)
	acquired, err := s.redisClient.SetNX(ctx, sentKey, 1, reportSentTTL).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "Report dedupe check failed, sending anyway", logger.ErrorField(err))
	} else if !acquired {
		s.logger.InfoContext(ctx, "Run report already sent", logger.StringField("run_id", runID))
		return nil
	}

	recs, err := s.recRepo.FindByRunID(ctx, runID, "", 0)
	if err != nil {
		s.releaseSentKey(ctx, sentKey)
		return fmt.Errorf("failed to load recommendations for run %s: %w", runID, err)
	}

	sectors, err := s.recRepo.SectorMomentum(ctx, runID)
	if err != nil {
		s.logger.WarnContext(ctx, "Sector momentum unavailable", logger.ErrorField(err))
		sectors = nil
	}

	brief := &dto.RunBrief{
		Run:             run,
		Recommendations: recs,
		Sectors:         sectors,
		GeneratedAt:     utils.TimeNowIST(),
		TopN:            s.cfg.Pipeline.TopNReport,
	}

	for i, message := range telegram.FormatRunBriefForTelegram(brief) {
		if err := s.notifier.SendMessage(message); err != nil {
			s.releaseSentKey(ctx, sentKey)
			return fmt.Errorf("failed to send report part %d: %w", i+1, err)
		}
	}

	s.logger.InfoContext(ctx, "Run report sent",
		logger.StringField("run_id", runID),
		logger.IntField("recommendations", len(recs)),
	)
	return nil
}

// SendRunFailure sends a failure alert. Alert delivery problems are logged,
// never propagated: the run already failed for its own reason.
func (s *reportService) SendRunFailure(ctx context.Context, run *entity.PipelineRun) {
	if s.notifier == nil || run == nil {
		return
	}
	message := telegram.FormatRunFailureForTelegram(run, utils.TimeNowIST())
	if err := s.notifier.SendMessage(message); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send run failure alert", logger.ErrorField(err))
	}
}

func (s *reportService) releaseSentKey(ctx context.Context, key string) {
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		s.logger.WarnContext(ctx, "Failed to release report guard key", logger.ErrorField(err))
	}
}
