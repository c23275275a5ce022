package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validatePDF(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.Binary == "" {
		return errors.New("engine.binary must be set")
	}
	if c.Engine.ItemTimeout <= 0 {
		return errors.New("engine.item_timeout must be positive (seconds)")
	}
	if c.Engine.ModelScale < 0 {
		return errors.New("engine.model_scale must not be negative")
	}
	if c.Engine.TileSize < 0 {
		return errors.New("engine.tile_size must not be negative")
	}
	if c.Engine.CompressionLevel < 0 || c.Engine.CompressionLevel > 100 {
		return errors.New("engine.compression_level must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers <= 0 {
		return errors.New("workflow.workers must be positive")
	}
	return nil
}

func (c *Config) validateScan() error {
	switch c.Scan.Order {
	case OrderLexicographic, OrderNatural:
		return nil
	default:
		return fmt.Errorf("scan.order must be %q or %q", OrderLexicographic, OrderNatural)
	}
}

func (c *Config) validatePDF() error {
	if c.PDF.AssemblyParallel <= 0 {
		return errors.New("pdf.assembly_parallel must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q", "console", "json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}
