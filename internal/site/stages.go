package site

import (
	"context"
	"fmt"
)

// StageName identifies a build stage.
type StageName string

// Build stages in execution order.
const (
	StageAbout     StageName = "about"
	StageParse     StageName = "parse"
	StageConflicts StageName = "conflicts"
	StageRender    StageName = "render"
	StageSort      StageName = "sort"
	StagePaginate  StageName = "paginate"
	StageFeed      StageName = "feed"
	StageResources StageName = "resources"
)

// StageResult is the classified outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// Stage is one unit of work in a build.
type Stage func(ctx context.Context, bs *buildState) error

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageError wraps the error that ended a build.
type StageError struct {
	Stage  StageName
	Result StageResult
	Err    error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Result, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func defaultStages() []StageDef {
	return []StageDef{
		{StageAbout, stageAbout},
		{StageParse, stageParse},
		{StageConflicts, stageConflicts},
		{StageRender, stageRender},
		{StageSort, stageSort},
		{StagePaginate, stagePaginate},
		{StageFeed, stageFeed},
		{StageResources, stageResources},
	}
}
