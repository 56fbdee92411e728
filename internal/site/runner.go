package site

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// isWarning reports whether a stage error is recorded without stopping the build.
func isWarning(err error) bool {
	return errors.HasSeverity(err, errors.SeverityWarning) || errors.HasSeverity(err, errors.SeverityInfo)
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error or on cancellation.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			bs.recordStage(st.Name, 0, StageResultCanceled)
			return &StageError{Stage: st.Name, Result: StageResultCanceled, Err: err}
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		switch {
		case err == nil:
			bs.recordStage(st.Name, dur, StageResultSuccess)
		case ctx.Err() != nil:
			bs.recordStage(st.Name, dur, StageResultCanceled)
			return &StageError{Stage: st.Name, Result: StageResultCanceled, Err: err}
		case isWarning(err):
			bs.recordStage(st.Name, dur, StageResultWarning)
			bs.report.addWarning(err)
			bs.logger.Warn("Stage completed with warning", logfields.Stage(string(st.Name)), logfields.Error(err))
		default:
			bs.recordStage(st.Name, dur, StageResultFatal)
			return &StageError{Stage: st.Name, Result: StageResultFatal, Err: err}
		}
	}
	return nil
}

func (bs *buildState) recordStage(name StageName, d time.Duration, res StageResult) {
	bs.report.setStage(name, d, res)
	bs.recorder.ObserveStageDuration(string(name), d)
	bs.recorder.IncStageResult(string(name), resultLabel(res))
	bs.logger.Debug("Stage finished", logfields.Stage(string(name)), logfields.Duration(d), logfields.State(string(res)))
}

func resultLabel(res StageResult) metrics.ResultLabel {
	switch res {
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultFatal:
		return metrics.ResultFatal
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultSuccess
	}
}
