package rag

import "fmt"

// Stage identifies which external call of the pipeline failed.
type Stage string

const (
	StageEmbed      Stage = "embed"
	StageRetrieve   Stage = "retrieve"
	StageSynthesize Stage = "synthesize"
)

// StageError tags an upstream-service failure with the pipeline stage it
// occurred in. The pipeline never recovers from one; dispatchers decide how
// the failure is presented to the caller.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("rag %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
