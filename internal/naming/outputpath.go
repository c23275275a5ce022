package naming

import (
	"path/filepath"
	"strings"
)

// OutputPath computes the canonical output location for one image:
// <outputBase>/<groupName>/<stem>.<ext>. Collisions between distinct inputs
// mapping to the same path are resolved separately by Resolver.
func OutputPath(outputBase, groupName, inputName, ext string) string {
	stem := strings.TrimSuffix(inputName, filepath.Ext(inputName))
	return filepath.Join(outputBase, groupName, stem+"."+ext)
}

// PDFPath computes the per-directory PDF location: <outputBase>/<groupName>.pdf.
func PDFPath(outputBase, groupName string) string {
	return filepath.Join(outputBase, groupName+".pdf")
}
