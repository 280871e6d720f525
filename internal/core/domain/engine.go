package domain

// EngineResult is the outcome of optimizing a single file.
type EngineResult struct {
	// Source is the path that was handed to the engine.
	Source string
	// Replacement is the path of a smaller version of Source. Empty when the engine declined.
	Replacement string
	// Err is set when the engine failed on this file. The file is then treated as declined.
	Err error
}

// Replaced reports whether the engine produced a replacement file.
func (r EngineResult) Replaced() bool {
	return r.Replacement != "" && r.Err == nil
}
