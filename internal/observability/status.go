package observability

import (
	"sync"
	"time"
)

// Stage names the pipeline phase currently holding the turn.
type Stage string

const (
	StageIdle       Stage = "IDLE"
	StagePlanning   Stage = "PLANNING"
	StageConfirming Stage = "CONFIRMING"
	StageExecuting  Stage = "EXECUTING"
)

type SystemStatus struct {
	mu            sync.RWMutex
	CurrentStage  Stage
	ActiveTask    string
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	CurrentStage:  StageIdle,
	LastHeartbeat: time.Now(),
}

// SetStatus updates the global system status.
func SetStatus(stage Stage, task string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.CurrentStage = stage
	globalStatus.ActiveTask = task
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() (Stage, string, time.Time) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.CurrentStage, globalStatus.ActiveTask, globalStatus.LastHeartbeat
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
