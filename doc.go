// Package markedit builds a Markdown book into EPUB, PDF, and HTML artifacts.
//
// # Quick Start
//
// Load a project configuration, create a service, and build:
//
//	conf, err := config.Load("markedit.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := markedit.New(conf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	res, err := svc.Build(ctx, markedit.FormatEPUB)
//	if err != nil {
//	    log.Fatal(err) // did not run: bad format or build in progress
//	}
//	if !res.Success {
//	    log.Fatal(res.Stderr) // converter failure
//	}
//
// # Build Pipeline
//
// Every build runs in an ephemeral staging tree under the output directory,
// removed on all exit paths. The stages:
//
//  1. Stage illustrations into the tree (sources are never mutated)
//  2. Sanitize staged SVGs for EPUB reader compatibility (EPUB only)
//  3. Resequence chapters against the editor's ordering config
//  4. Rewrite asset references for the target's resolution rules
//  5. Compile with pandoc; for PDF, render the intermediate HTML with
//     wkhtmltopdf or headless Chrome and validate the artifact
//
// Builds are single-flight: a second Build while one is running returns
// ErrBuildInProgress without touching the filesystem.
//
// # PDF Engines
//
// The default engine shells out to wkhtmltopdf (override the binary with
// WKHTMLTOPDF_PATH). Setting engine to "chrome" in the configuration renders
// with headless Chrome via go-rod instead; use ROD_BROWSER_BIN to point at a
// pre-installed browser in containers.
package markedit
