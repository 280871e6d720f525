package domain

// StatusCategory classifies a status event emitted during an optimization pass.
type StatusCategory string

const (
	// StatusProcessed reports a file that was replaced by a smaller version.
	StatusProcessed StatusCategory = "processed"
	// StatusSkipped reports a file the engine declined to replace.
	StatusSkipped StatusCategory = "skipped"
	// StatusPermission reports that a file's mode was restored after replacement.
	StatusPermission StatusCategory = "permission"
	// StatusWarning reports a recoverable per-file problem.
	StatusWarning StatusCategory = "warning"
	// StatusManifest reports that the manifest was written.
	StatusManifest StatusCategory = "manifest"
	// StatusSummary reports the total savings of the pass. It is always emitted last.
	StatusSummary StatusCategory = "summary"
)

// StatusEvent is a single user-facing progress message.
type StatusEvent struct {
	Category StatusCategory
	Target   string
	Message  string
}
