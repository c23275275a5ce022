package assemble

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"magnify/internal/services"
)

// Writer turns an ordered list of image paths into a single PDF. The
// production writer delegates to pdfcpu; tests substitute fakes.
type Writer func(imagePaths []string, pdfPath string) error

// WritePDF imports the images as one page each, sized to the image, in the
// given order.
func WritePDF(imagePaths []string, pdfPath string) error {
	if err := api.ImportImagesFile(imagePaths, pdfPath, nil, nil); err != nil {
		return services.Wrap(services.ErrExternalTool, "assemble", "import_images",
			fmt.Sprintf("pdf assembly failed for %s", pdfPath), err)
	}
	return nil
}

// PageCount reports the number of pages in an assembled PDF.
func PageCount(pdfPath string) (int, error) {
	return api.PageCountFile(pdfPath)
}
