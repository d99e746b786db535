package android

import "errors"

// Sentinel errors for dump resolution. Callers distinguish these with
// errors.Is; everything else arrives wrapped with file/section context.
var (
	// ErrUnknownApp means the requested appId has no package entry in
	// the parsed dump
	ErrUnknownApp = errors.New("app not present in dump")

	// ErrNoPackageSection means the dump has no usable "package" section,
	// so no app queries can be answered
	ErrNoPackageSection = errors.New("dump has no package section")

	// ErrUnparseableTime means a relative-time string contained no
	// recognizable unit. This is a hard failure: it indicates the app-ops
	// format drifted in a way the parser cannot guess around.
	ErrUnparseableTime = errors.New("no time components found")
)
