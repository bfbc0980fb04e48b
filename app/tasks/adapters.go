package tasks

import (
	"time"

	"github.com/avelichko/syncpress/app/imports"
)

// ImportTickScheduler adapts the task scheduler to the coordinator's tick
// interface.
type ImportTickScheduler struct {
	scheduler   TaskSchedulerInterface
	coordinator *imports.Coordinator
}

var _ imports.TickScheduler = (*ImportTickScheduler)(nil)

func NewImportTickScheduler(scheduler TaskSchedulerInterface, coordinator *imports.Coordinator) *ImportTickScheduler {
	return &ImportTickScheduler{
		scheduler:   scheduler,
		coordinator: coordinator,
	}
}

func (a *ImportTickScheduler) ScheduleTick(delay time.Duration) {
	// Ticks chain from within their own execution; the run lock, not the
	// pending mark, keeps concurrent bulk runs out.
	a.scheduler.ScheduleAfter(NewImportTickTask(a.coordinator), delay)
}

// DocumentScheduler adapts the task scheduler to the trigger's deferred
// per-document interface.
type DocumentScheduler struct {
	scheduler TaskSchedulerInterface
	trigger   *imports.Trigger
}

var _ imports.DocScheduler = (*DocumentScheduler)(nil)

func NewDocumentScheduler(scheduler TaskSchedulerInterface, trigger *imports.Trigger) *DocumentScheduler {
	return &DocumentScheduler{
		scheduler: scheduler,
		trigger:   trigger,
	}
}

func (a *DocumentScheduler) ScheduleDocument(documentID string) {
	a.scheduler.ScheduleOnce(NewProcessDocumentTask(a.trigger, documentID), 0)
}
