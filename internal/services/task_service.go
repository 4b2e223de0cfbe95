package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"asset-report/internal/config"
	"asset-report/internal/models"
	"asset-report/internal/workflow"
)

var (
	ErrDuplicateReport = errors.New("report is already being generated")
	ErrQueueFull       = errors.New("report queue is full")
	ErrPoolClosed      = errors.New("task service is shut down")
)

// Runner executes one report workflow. *workflow.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, task models.TaskContext) (*workflow.State, error)
}

// Job is one queued report run. OnDone, when set, is called from the worker
// goroutine after the run reached a terminal state.
type Job struct {
	Task   models.TaskContext
	OnDone func(state *workflow.State, err error)
}

// TaskService runs report workflows on a bounded pool of workers
type TaskService struct {
	runner      Runner
	concurrency int
	queue       chan Job

	mutex    sync.RWMutex
	inFlight map[string]struct{}
	closed   bool

	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewTaskService creates a new task service. Call Start to launch the workers.
func NewTaskService(runner Runner, cfg config.WorkerConfig) *TaskService {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	queueSize := cfg.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}
	return &TaskService{
		runner:      runner,
		concurrency: concurrency,
		queue:       make(chan Job, queueSize),
		inFlight:    make(map[string]struct{}),
	}
}

// Start launches the worker goroutines. Calling it twice is a no-op.
func (s *TaskService) Start() {
	s.startOnce.Do(func() {
		for i := 0; i < s.concurrency; i++ {
			s.wg.Add(1)
			go s.worker()
		}
		log.Printf("Report worker pool started (%d workers, queue %d)", s.concurrency, cap(s.queue))
	})
}

// Submit queues a job without blocking
func (s *TaskService) Submit(job Job) error {
	id := job.Task.ReportID
	if id == "" {
		return fmt.Errorf("job has no report id")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return ErrPoolClosed
	}
	if _, exists := s.inFlight[id]; exists {
		return ErrDuplicateReport
	}

	select {
	case s.queue <- job:
		s.inFlight[id] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// InFlight reports whether the report is queued or running
func (s *TaskService) InFlight(reportID string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, exists := s.inFlight[reportID]
	return exists
}

// Pending returns the number of queued and running jobs
func (s *TaskService) Pending() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.inFlight)
}

// Shutdown stops accepting jobs and waits for queued ones to drain, or for
// ctx to expire.
func (s *TaskService) Shutdown(ctx context.Context) error {
	s.mutex.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mutex.Unlock()

	// Workers must exist for the queue to drain
	s.Start()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("task service shutdown: %w", ctx.Err())
	}
}

func (s *TaskService) worker() {
	defer s.wg.Done()
	for job := range s.queue {
		s.runJob(job)
	}
}

func (s *TaskService) runJob(job Job) {
	state, err := s.safeRun(job.Task)

	s.mutex.Lock()
	delete(s.inFlight, job.Task.ReportID)
	s.mutex.Unlock()

	if job.OnDone != nil {
		job.OnDone(state, err)
	}
}

// safeRun runs on a detached context: a run is never cancelled midway
func (s *TaskService) safeRun(task models.TaskContext) (state *workflow.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Report %s workflow panicked: %v", task.ReportID, r)
			state = nil
			err = fmt.Errorf("report workflow panicked: %v", r)
		}
	}()

	state, err = s.runner.Run(context.Background(), task)
	if err != nil {
		log.Printf("ERROR: Report %s workflow ended with error: %v", task.ReportID, err)
	}
	return state, err
}
