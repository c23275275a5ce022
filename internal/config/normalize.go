package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngine()
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ModelsDir) != "" {
		if c.Paths.ModelsDir, err = expandPath(c.Paths.ModelsDir); err != nil {
			return fmt.Errorf("paths.models_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeEngine() {
	c.Engine.Binary = strings.TrimSpace(c.Engine.Binary)
	if value, ok := os.LookupEnv("MAGNIFY_ENGINE"); ok && strings.TrimSpace(value) != "" {
		c.Engine.Binary = strings.TrimSpace(value)
	}
	if c.Engine.Binary == "" {
		c.Engine.Binary = defaultEngineBinary
	}
	c.Engine.GPUID = strings.TrimSpace(c.Engine.GPUID)
	c.Engine.Threads = strings.TrimSpace(c.Engine.Threads)
}

func (c *Config) normalizeScan() {
	c.Scan.Order = strings.ToLower(strings.TrimSpace(c.Scan.Order))
	if c.Scan.Order == "" {
		c.Scan.Order = defaultScanOrder
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
