package engine

// ExpandArgs exposes expandArgs for testing.
var ExpandArgs = expandArgs
