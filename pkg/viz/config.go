package viz

import (
	"fmt"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/pkg/config"
)

// Default chart parameters.
const (
	DefaultLengthBinWidth    = 10
	DefaultRewardBinWidth    = 0.1
	DefaultMagnitudeBinWidth = 0.05
	DefaultDeltaBinWidth     = 0.01
	DefaultStepSampleSize    = config.MaxRowsLength
	DefaultTableSampleSize   = config.DefaultRowsLength
	DefaultTopTasks          = 10
)

// Config configures a Pipeline.
type Config struct {
	LengthBinWidth    int
	RewardBinWidth    float64
	MagnitudeBinWidth float64
	DeltaBinWidth     float64

	// StepSampleSize is the number of rows sampled for per-step metrics.
	StepSampleSize int
	// TableSampleSize is the number of rows shown in the preview table.
	TableSampleSize int
	// TopTasks bounds the task frequency chart.
	TopTasks int

	Logger  robodash.StructuredLogger
	Metrics robodash.Metrics
}

func (c *Config) applyDefaults() {
	if c.LengthBinWidth == 0 {
		c.LengthBinWidth = DefaultLengthBinWidth
	}
	if c.RewardBinWidth == 0 {
		c.RewardBinWidth = DefaultRewardBinWidth
	}
	if c.MagnitudeBinWidth == 0 {
		c.MagnitudeBinWidth = DefaultMagnitudeBinWidth
	}
	if c.DeltaBinWidth == 0 {
		c.DeltaBinWidth = DefaultDeltaBinWidth
	}
	if c.StepSampleSize == 0 {
		c.StepSampleSize = DefaultStepSampleSize
	}
	if c.TableSampleSize == 0 {
		c.TableSampleSize = DefaultTableSampleSize
	}
	if c.TopTasks == 0 {
		c.TopTasks = DefaultTopTasks
	}
	if c.Logger == nil {
		c.Logger = robodash.NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = robodash.NopMetrics{}
	}
}

func (c *Config) validate() error {
	switch {
	case c.LengthBinWidth < 0:
		return robodash.NewValidationError("LengthBinWidth", "must be positive")
	case c.RewardBinWidth < 0, c.MagnitudeBinWidth < 0, c.DeltaBinWidth < 0:
		return robodash.NewValidationError("BinWidth", "must be positive")
	case c.StepSampleSize < 1 || c.StepSampleSize > config.MaxRowsLength:
		return robodash.NewValidationError("StepSampleSize",
			fmt.Sprintf("must be between 1 and %d", config.MaxRowsLength))
	case c.TableSampleSize < 1 || c.TableSampleSize > config.MaxRowsLength:
		return robodash.NewValidationError("TableSampleSize",
			fmt.Sprintf("must be between 1 and %d", config.MaxRowsLength))
	case c.TopTasks < 0:
		return robodash.NewValidationError("TopTasks", "must not be negative")
	}
	return nil
}
