package markedit

import "errors"

// Sentinel errors for build operations.
var (
	ErrBuildInProgress = errors.New("another build is already running")
	ErrUnknownFormat   = errors.New("unknown build format")

	// Pipeline stage errors, wrapped with converter diagnostics.
	ErrStaging         = errors.New("staging book sources failed")
	ErrCompile         = errors.New("pandoc compile failed")
	ErrRender          = errors.New("pdf render failed")
	ErrArtifactInvalid = errors.New("artifact failed validation")

	// Chrome engine errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
)
