package engine

import (
	"strconv"

	"magnify/internal/config"
)

// Request describes one engine invocation.
type Request struct {
	InputPath  string
	OutputPath string
	Model      string
	Scale      int
	Format     Format
}

// buildArgs assembles the engine argument list for one image. The contract:
//
//	-i <input> -o <output> -s <scale> -n <model> -f <format>
//	[-m <models dir>] [-z <model scale>] [-c <compression>] [-t <tile>]
//	[-g <gpu>] [-j l:p:s] [-x]
func buildArgs(cfg config.Engine, modelsDir string, req Request) []string {
	args := []string{
		"-i", req.InputPath,
		"-o", req.OutputPath,
		"-s", strconv.Itoa(req.Scale),
		"-n", req.Model,
		"-f", string(req.Format),
	}
	if modelsDir != "" {
		args = append(args, "-m", modelsDir)
	}
	if cfg.ModelScale > 0 {
		args = append(args, "-z", strconv.Itoa(cfg.ModelScale))
	}
	if cfg.CompressionLevel > 0 {
		args = append(args, "-c", strconv.Itoa(cfg.CompressionLevel))
	}
	if cfg.TileSize > 0 {
		args = append(args, "-t", strconv.Itoa(cfg.TileSize))
	}
	if cfg.GPUID != "" && cfg.GPUID != "auto" {
		args = append(args, "-g", cfg.GPUID)
	}
	if cfg.Threads != "" {
		args = append(args, "-j", cfg.Threads)
	}
	if cfg.TTAMode {
		args = append(args, "-x")
	}
	return args
}
