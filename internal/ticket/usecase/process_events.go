package usecase

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket"
	"asana-ticket-numbering/internal/ticket/repository"
)

type eventOutcome int

const (
	outcomeIgnored eventOutcome = iota
	outcomeSkipped
	outcomeFailed
	outcomeRenamed
)

// ProcessEvents handles each task once per batch. With more than one worker
// events run concurrently; the counter's atomic increment keeps numbers
// unique but no longer ordered by position in the batch.
func (uc *implUseCase) ProcessEvents(ctx context.Context, input ticket.ProcessEventsInput) ticket.ProcessEventsOutput {
	out := ticket.ProcessEventsOutput{Received: len(input.Events)}
	var mu sync.Mutex

	record := func(outcome eventOutcome, renamed ticket.RenamedTask) {
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case outcomeIgnored:
			out.Ignored++
		case outcomeSkipped:
			out.Skipped++
		case outcomeFailed:
			out.Failed++
		case outcomeRenamed:
			out.Renamed = append(out.Renamed, renamed)
		}
	}

	events, duplicates := uniqueTaskRenames(input.Events)
	out.Skipped += duplicates

	if uc.workers == 1 {
		for _, ev := range events {
			record(uc.processEvent(ctx, input.Subscription, ev))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(uc.workers)
		for _, ev := range events {
			g.Go(func() error {
				record(uc.processEvent(ctx, input.Subscription, ev))
				return nil
			})
		}
		_ = g.Wait()
	}

	uc.l.Infof(ctx, "ticket.usecase.ProcessEvents: prefix=%s received=%d renamed=%d skipped=%d ignored=%d failed=%d",
		input.Subscription.Prefix, out.Received, len(out.Renamed), out.Skipped, out.Ignored, out.Failed)
	return out
}

// uniqueTaskRenames drops repeated name changes of the same task, keeping
// the first one in delivery order. One pass numbers a task at most once,
// even when its events run on different workers.
func uniqueTaskRenames(events []model.Event) ([]model.Event, int) {
	seen := make(map[string]struct{}, len(events))
	out := make([]model.Event, 0, len(events))
	duplicates := 0
	for _, ev := range events {
		if ev.IsTaskRename() {
			if _, ok := seen[ev.ResourceID]; ok {
				duplicates++
				continue
			}
			seen[ev.ResourceID] = struct{}{}
		}
		out = append(out, ev)
	}
	return out, duplicates
}

// processEvent runs the filter → fetch → marker check → increment → rename
// chain for one event.
func (uc *implUseCase) processEvent(ctx context.Context, sub model.Subscription, ev model.Event) (eventOutcome, ticket.RenamedTask) {
	if !ev.IsTaskRename() {
		return outcomeIgnored, ticket.RenamedTask{}
	}

	task, err := uc.getTask(ctx, ev.ResourceID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			uc.l.Warnf(ctx, "ticket.usecase.ProcessEvents: task %s not found", ev.ResourceID)
		} else {
			uc.l.Errorf(ctx, "ticket.usecase.ProcessEvents: failed to retrieve task %s: %v", ev.ResourceID, err)
		}
		return outcomeFailed, ticket.RenamedTask{}
	}

	if isNumbered(sub, task.Name) {
		uc.l.Debugf(ctx, "ticket.usecase.ProcessEvents: task %s name already updated", task.ID)
		return outcomeSkipped, ticket.RenamedTask{}
	}

	n, err := uc.nextSequence(ctx, sub)
	if err != nil {
		uc.l.Errorf(ctx, "ticket.usecase.ProcessEvents: failed to get next number for %s (task %s): %v", sub.CounterKey, task.ID, err)
		return outcomeFailed, ticket.RenamedTask{}
	}

	newName := numberedName(sub, n, task.Name)
	uc.l.Infof(ctx, "ticket.usecase.ProcessEvents: updating task %s name to: %s", task.ID, newName)

	if err := uc.renameTask(ctx, task.ID, newName); err != nil {
		// Number n is burnt; Asana's redelivery will issue a fresh one.
		uc.l.Errorf(ctx, "ticket.usecase.ProcessEvents: failed to update task %s: %v", task.ID, err)
		return outcomeFailed, ticket.RenamedTask{}
	}

	uc.l.Infof(ctx, "ticket.usecase.ProcessEvents: task %s updated successfully", task.ID)
	return outcomeRenamed, ticket.RenamedTask{TaskID: task.ID, Number: n, NewName: newName}
}

func (uc *implUseCase) getTask(ctx context.Context, id string) (model.Task, error) {
	callCtx, cancel := uc.callContext(ctx)
	defer cancel()
	return uc.taskRepo.GetTask(callCtx, id)
}

func (uc *implUseCase) nextSequence(ctx context.Context, sub model.Subscription) (int64, error) {
	callCtx, cancel := uc.callContext(ctx)
	defer cancel()
	return uc.subRepo.NextSequence(callCtx, sub)
}

func (uc *implUseCase) renameTask(ctx context.Context, id, name string) error {
	callCtx, cancel := uc.callContext(ctx)
	defer cancel()
	return uc.taskRepo.RenameTask(callCtx, id, name)
}
