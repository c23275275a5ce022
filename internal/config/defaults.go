package config

import "runtime"

const (
	defaultOutputDir        = "~/magnify/output"
	defaultLogDir           = "~/.local/share/magnify/logs"
	defaultEngineBinary     = "upscayl-bin"
	defaultItemTimeout      = 600
	defaultScanOrder        = OrderLexicographic
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultAssemblyParallel = 2
)

// Scan order values accepted by scan.order.
const (
	OrderLexicographic = "lexicographic"
	OrderNatural       = "natural"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Engine: Engine{
			Binary:      defaultEngineBinary,
			ItemTimeout: defaultItemTimeout,
			GPUID:       "auto",
		},
		Workflow: Workflow{
			Workers: defaultWorkers(),
		},
		Scan: Scan{
			Order: defaultScanOrder,
		},
		PDF: PDF{
			Enabled:          true,
			AssemblyParallel: defaultAssemblyParallel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultWorkers is deliberately conservative: the engine saturates the GPU,
// so extra workers mostly add contention.
func defaultWorkers() int {
	if runtime.NumCPU() < 2 {
		return 1
	}
	return 2
}
