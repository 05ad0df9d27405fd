package logger

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker records the stages of a multi-step run, such as
// reconciliation or anomaly detection, and logs each one with timing.
type ProgressTracker struct {
	logger    Logger
	operation string
	total     int64
	current   int64
	startTime time.Time
	lastStage time.Time
	stages    []StageTiming
	mutex     sync.RWMutex
}

// StageTiming is the duration of one completed stage
type StageTiming struct {
	Name      string        `json:"name"`
	Processed int64         `json:"processed"`
	Duration  time.Duration `json:"duration"`
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(operation string, total int64, logger Logger) *ProgressTracker {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	now := time.Now()
	tracker := &ProgressTracker{
		logger:    logger.WithComponent("progress"),
		operation: operation,
		total:     total,
		startTime: now,
		lastStage: now,
	}

	tracker.logger.WithFields(Fields{
		"operation": operation,
		"total":     total,
	}).Info("Starting operation")

	return tracker
}

// Stage marks the end of a named stage that handled processed records
func (p *ProgressTracker) Stage(name string, processed int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	now := time.Now()
	timing := StageTiming{Name: name, Processed: processed, Duration: now.Sub(p.lastStage)}
	p.stages = append(p.stages, timing)
	p.lastStage = now
	p.current += processed

	p.logger.WithFields(Fields{
		"operation": p.operation,
		"stage":     name,
		"processed": processed,
		"duration":  timing.Duration.String(),
	}).Debug("Stage completed")
}

// Add increments the progress counter by the given amount
func (p *ProgressTracker) Add(delta int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.current += delta
}

// Complete marks the operation as complete and logs final statistics
func (p *ProgressTracker) Complete() ProgressStats {
	stats := p.GetStats()

	p.logger.WithFields(Fields{
		"operation": stats.Operation,
		"total":     stats.Total,
		"processed": stats.Current,
		"stages":    len(stats.Stages),
		"duration":  stats.Duration.String(),
	}).Info("Operation completed")

	return stats
}

// CompleteWithError marks the operation as complete with error
func (p *ProgressTracker) CompleteWithError(err error) ProgressStats {
	stats := p.GetStats()

	p.logger.WithError(err).WithFields(Fields{
		"operation": stats.Operation,
		"processed": stats.Current,
		"duration":  stats.Duration.String(),
	}).Error("Operation completed with error")

	return stats
}

// GetStats returns current progress statistics
func (p *ProgressTracker) GetStats() ProgressStats {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	var percentage float64
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100
	}

	stages := make([]StageTiming, len(p.stages))
	copy(stages, p.stages)

	return ProgressStats{
		Operation:  p.operation,
		Total:      p.total,
		Current:    p.current,
		Percentage: percentage,
		Duration:   time.Since(p.startTime),
		Stages:     stages,
	}
}

// ProgressStats contains progress statistics
type ProgressStats struct {
	Operation  string        `json:"operation"`
	Total      int64         `json:"total"`
	Current    int64         `json:"current"`
	Percentage float64       `json:"percentage"`
	Duration   time.Duration `json:"duration"`
	Stages     []StageTiming `json:"stages,omitempty"`
}

// String returns a human-readable representation of the progress
func (ps ProgressStats) String() string {
	if ps.Total > 0 {
		return fmt.Sprintf("%s: %d/%d (%.1f%%) in %v over %d stages",
			ps.Operation, ps.Current, ps.Total, ps.Percentage, ps.Duration, len(ps.Stages))
	}
	return fmt.Sprintf("%s: %d processed in %v over %d stages",
		ps.Operation, ps.Current, ps.Duration, len(ps.Stages))
}

// TimedOperation executes a function and logs timing information
func TimedOperation(operation string, logger Logger, fn func() error) error {
	if logger == nil {
		logger = GetGlobalLogger()
	}
	start := time.Now()

	err := fn()

	fields := Fields{
		"operation": operation,
		"duration":  time.Since(start).String(),
	}
	if err != nil {
		fields["status"] = "error"
		logger.WithError(err).WithFields(fields).Error("Operation failed")
	} else {
		fields["status"] = "success"
		logger.WithFields(fields).Debug("Operation completed")
	}

	return err
}
