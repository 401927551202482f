package markedit

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// validatePDF checks that the rendered artifact is structurally sound PDF.
// wkhtmltopdf can exit zero and still emit a truncated document when it runs
// out of memory mid-write; validation catches that before the artifact is
// published.
func validatePDF(path string) error {
	if err := api.ValidateFile(path, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactInvalid, path, err)
	}
	return nil
}
