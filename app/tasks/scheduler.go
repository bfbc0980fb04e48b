package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avelichko/syncpress/app/cfg"
	"github.com/avelichko/syncpress/app/imports"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type pendingKey struct {
	taskType TaskType
	key      string
}

type Scheduler struct {
	coordinator *imports.Coordinator
	trigger     *imports.Trigger
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu      sync.Mutex
	pending map[pendingKey]bool
}

func NewScheduler(coordinator *imports.Coordinator, trigger *imports.Trigger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		coordinator: coordinator,
		trigger:     trigger,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		pending:     make(map[pendingKey]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// ScheduleOnce enqueues the task after the delay. A second call with the
// same (type, key) while the first is still pending is dropped, so rapid
// repeated saves of one document produce a single import. The pending mark
// covers the task's whole lifetime: delay, queue wait and execution.
func (s *Scheduler) ScheduleOnce(task TaskInterface, delay time.Duration) {
	key := pendingKey{taskType: task.GetType(), key: task.GetKey()}

	s.mu.Lock()
	if s.pending[key] {
		s.mu.Unlock()
		slog.Debug("Task already pending, skipping", "type", string(task.GetType()), "key", task.GetKey())
		return
	}
	s.pending[key] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if delay > 0 {
			select {
			case <-s.ctx.Done():
				s.clearPending(key)
				return
			case <-time.After(delay):
			}
		}

		if err := s.EnqueueTask(task); err != nil {
			s.clearPending(key)
			slog.Warn("Failed to enqueue scheduled task", "type", string(task.GetType()), "key", task.GetKey(), "error", err)
		}
	}()
}

// ScheduleAfter enqueues the task after the delay with no pending
// bookkeeping. For tasks that chain themselves and carry their own mutual
// exclusion, such as bulk import ticks guarded by the run lock.
func (s *Scheduler) ScheduleAfter(task TaskInterface, delay time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if delay > 0 {
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue scheduled task", "type", string(task.GetType()), "key", task.GetKey(), "error", err)
		}
	}()
}

func (s *Scheduler) IsScheduled(taskType TaskType, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[pendingKey{taskType: taskType, key: key}]
}

func (s *Scheduler) clearPending(key pendingKey) {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err == nil || !task.CanRetry() {
		s.clearPending(pendingKey{taskType: task.GetType(), key: task.GetKey()})
	}

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "key", task.GetKey(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
