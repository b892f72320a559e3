package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/foliosite/folio/src/lib/slog"
	"github.com/go-co-op/gocron/v2"
)

type TaskFunc func(context.Context) error

type TaskDefinition struct {
	Name    string
	Handler TaskFunc
	Def     gocron.JobDefinition
	Opt     []gocron.JobOption
}

const EVERY_MINUTE = time.Minute

// Scheduler runs the periodic maintenance tasks of the api.
type Scheduler struct {
	scheduler gocron.Scheduler
	tasks     []gocron.Job
	mux       sync.Mutex
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()

	if err != nil {
		slog.Errorf("error while starting scheduler: %s", err)
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
	}, nil
}

// Start starts the scheduler with the registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop stops the scheduler and waits for the running jobs to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// Register registers the given tasks. Tasks that fail to register are
// logged and skipped.
func (s *Scheduler) Register(ctx context.Context, tasks ...TaskDefinition) []gocron.Job {
	s.mux.Lock()
	defer s.mux.Unlock()

	registered := []gocron.Job{}

	for _, task := range tasks {
		opts := append([]gocron.JobOption{gocron.WithName(task.Name)}, task.Opt...)
		job, err := s.scheduler.NewJob(task.Def, gocron.NewTask(run, ctx, task), opts...)

		if err != nil {
			slog.Errorf("error while registering job %s: %s", task.Name, err.Error())
		} else {
			registered = append(registered, job)
		}
	}

	s.tasks = append(s.tasks, registered...)
	return registered
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []gocron.Job {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.tasks
}

func run(ctx context.Context, task TaskDefinition) {
	if err := task.Handler(ctx); err != nil {
		slog.Errorf("[%s] job failed: %v", task.Name, err)
	}
}

// Every returns a duration based job definition.
func Every(d time.Duration) gocron.JobDefinition {
	return gocron.DurationJob(d)
}
