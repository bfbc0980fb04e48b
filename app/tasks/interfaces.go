package tasks

import (
	"time"
)

// TaskSchedulerInterface defines the interface for background task
// scheduling. Tasks enqueue immediately; ScheduleOnce delays the enqueue and
// collapses duplicate (type, key) pairs that are still pending, while
// ScheduleAfter only delays.
// Example usage:
//
//	scheduler := NewScheduler(coordinator, trigger)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.ScheduleOnce(NewProcessDocumentTask(trigger, id), 10*time.Second)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	ScheduleOnce(task TaskInterface, delay time.Duration)
	ScheduleAfter(task TaskInterface, delay time.Duration)
	IsScheduled(taskType TaskType, key string) bool
}
