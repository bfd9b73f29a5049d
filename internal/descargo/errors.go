package descargo

import (
	"errors"
	"fmt"
)

// Stage names a step of the descargo pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageExtracting Stage = "extracting"
	StageComposing  Stage = "composing"
	StageGenerating Stage = "generating"
	StageRendering  Stage = "rendering"
	StageResponding Stage = "responding"
	StageCleaned    Stage = "cleaned"
	StageFailed     Stage = "failed"
)

// ErrInvalidLetter is returned when the generated letter is empty or too long.
var ErrInvalidLetter = errors.New("generated letter out of bounds")

// StageError ties a failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// FailedStage returns the stage recorded on err, or StageReceived when the
// failure happened before any work started.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return StageReceived
}
