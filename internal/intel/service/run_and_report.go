package service

import (
	"context"
	"errors"

	"golang-market-intel/pkg/logger"
)

// RunAndReport executes one pipeline run and delivers the brief when it
// completes. Failed runs raise a failure alert instead. An already-running
// pipeline is logged and left alone.
func RunAndReport(ctx context.Context, log *logger.Logger, intel IntelService, report ReportService, trigger string) {
	run, err := intel.Run(ctx, trigger)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			log.Warn("Pipeline run skipped, previous run still in progress",
				logger.StringField("trigger", trigger))
			return
		}
		report.SendRunFailure(ctx, run)
		return
	}
	if err := report.SendRunReport(ctx, run.ID); err != nil {
		log.Error("Failed to deliver run report",
			logger.ErrorField(err), logger.StringField("run_id", run.ID))
	}
}
