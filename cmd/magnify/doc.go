// Command magnify batch-upscales images with an external super-resolution
// engine and optionally assembles each directory's results into a PDF.
package main
