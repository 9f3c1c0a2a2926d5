// Package engine sequences the reset and restore flows. Steps run in a
// fixed order; a failed step aborts the run with the step name attached
// and nothing already completed is rolled back — recovery is always
// through the backup manager, never through automatic undo.
package engine

import "fmt"

// Step identifies one stage of an orchestrated run.
type Step string

const (
	StepValidate  Step = "validate-paths"
	StepGuard     Step = "app-guard"
	StepGenerate  Step = "generate-identity"
	StepMarker    Step = "machine-id-file"
	StepStorage   Step = "commit-storage"
	StepSystemIDs Step = "system-ids"
	StepWorkbench Step = "patch-workbench"
	StepGate      Step = "version-gate"
	StepMainJS    Step = "patch-main-js"
	StepExtract   Step = "extract-identity"
)

// StepError tags a failure with the step it happened in.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func fail(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}
