package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.TimelineFile, err = ExpandPath(c.Paths.TimelineFile); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.DatabasePath, err = ExpandPath(c.Paths.DatabasePath); err != nil {
		return err
	}
	for i, root := range c.Paths.PhotoRoots {
		expanded, err := ExpandPath(root)
		if err != nil {
			return err
		}
		c.Paths.PhotoRoots[i] = expanded
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Batch.Size <= 0 {
		c.Batch.Size = defaultBatchSize
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
	if c.Batch.PauseMs < 0 {
		c.Batch.PauseMs = 0
	}
	return nil
}
