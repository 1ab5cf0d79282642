package usecase

import (
	"time"

	"asana-ticket-numbering/internal/ticket"
	"asana-ticket-numbering/internal/ticket/repository"
	pkgLog "asana-ticket-numbering/pkg/log"
)

const (
	defaultCallTimeout = 10 * time.Second
	defaultWorkers     = 1
)

// Config tunes event processing.
type Config struct {
	Workers     int           // events of one batch processed concurrently; 1 keeps delivery order
	CallTimeout time.Duration // deadline of each external call
}

type implUseCase struct {
	l           pkgLog.Logger
	subRepo     repository.SubscriptionRepository
	taskRepo    repository.TaskRepository
	workers     int
	callTimeout time.Duration
}

// New creates a new ticket UseCase instance.
func New(
	l pkgLog.Logger,
	subRepo repository.SubscriptionRepository,
	taskRepo repository.TaskRepository,
	cfg Config,
) ticket.UseCase {
	uc := &implUseCase{
		l:           l,
		subRepo:     subRepo,
		taskRepo:    taskRepo,
		workers:     cfg.Workers,
		callTimeout: cfg.CallTimeout,
	}
	if uc.workers < 1 {
		uc.workers = defaultWorkers
	}
	if uc.callTimeout <= 0 {
		uc.callTimeout = defaultCallTimeout
	}
	return uc
}
