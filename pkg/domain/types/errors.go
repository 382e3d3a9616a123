package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify run-terminal failures so the CLI can map them to exit
// codes without parsing messages.
var (
	// ErrTagInput marks invalid usage or arguments. Nothing has been mutated.
	ErrTagInput = goerr.NewTag("input")

	// ErrTagConflict marks a cherry-pick that could not apply. The staging
	// branch has been reset to the remote and a tracking issue filed.
	ErrTagConflict = goerr.NewTag("conflict")

	// ErrTagValidation marks a CI failure or polling timeout. The picked
	// commit has been reverted on staging and a tracking issue filed.
	ErrTagValidation = goerr.NewTag("validation")

	// ErrTagTrigger marks a failed release workflow dispatch. Non-fatal: the
	// validated staging branch is intact and the dispatch can be redone by hand.
	ErrTagTrigger = goerr.NewTag("trigger")
)

// Exit codes, one per failure class.
const (
	ExitOK         = 0
	ExitInput      = 1
	ExitConflict   = 2
	ExitValidation = 3
)
