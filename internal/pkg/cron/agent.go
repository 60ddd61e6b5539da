package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/sse"
)

// AgentJobs contains the agent's background jobs: the periodic sync cycle
// and the punch state tick. The tick exists because the punch state depends
// on the wall clock, not only on data changes: stale and missed-checkout
// transitions must surface even when nobody punches.
type AgentJobs struct {
	syncService       syncdomain.Service
	attendanceService attendance.Service
	hub               *sse.Hub
	email             string
	userID            string
}

func NewAgentJobs(
	syncService syncdomain.Service,
	attendanceService attendance.Service,
	hub *sse.Hub,
	email string,
	userID string,
) *AgentJobs {
	return &AgentJobs{
		syncService:       syncService,
		attendanceService: attendanceService,
		hub:               hub,
		email:             email,
		userID:            userID,
	}
}

// RegisterJobs registers the agent jobs
func (j *AgentJobs) RegisterJobs(scheduler *Scheduler, syncInterval time.Duration) {
	scheduler.AddJob(Job{
		Name:       "auto_sync",
		Interval:   syncInterval,
		RunAtStart: true,
		Fn:         j.AutoSync,
	})
	scheduler.AddJob(Job{
		Name:     "punch_state_tick",
		Interval: time.Minute,
		Fn:       j.PunchStateTick,
	})
}

// AutoSync triggers a sync cycle. The coordinator's single-flight guard
// makes an overlapping trigger a no-op, so a slow cycle is never doubled.
func (j *AgentJobs) AutoSync(ctx context.Context) error {
	j.syncService.TriggerSync(j.email, j.userID)
	return nil
}

// PunchStateTick re-evaluates the punch state against the current time and
// publishes it, so the UI picks up time-driven transitions.
func (j *AgentJobs) PunchStateTick(ctx context.Context) error {
	status, err := j.attendanceService.Status(ctx)
	if err != nil {
		return err
	}

	j.hub.Publish(sse.Event{Event: "punch_state", Data: status})
	return nil
}
