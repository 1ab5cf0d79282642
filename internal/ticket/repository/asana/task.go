package asana

import (
	"context"
	"errors"
	"fmt"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket/repository"
	pkgAsana "asana-ticket-numbering/pkg/asana"
	pkgLog "asana-ticket-numbering/pkg/log"
)

type implRepository struct {
	client *pkgAsana.Client
	l      pkgLog.Logger
}

// New creates a task repository backed by the Asana REST API.
func New(client *pkgAsana.Client, l pkgLog.Logger) repository.TaskRepository {
	return &implRepository{
		client: client,
		l:      l,
	}
}

func (r *implRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	t, err := r.client.GetTask(ctx, id)
	if errors.Is(err, pkgAsana.ErrNotFound) {
		return model.Task{}, repository.ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	if t.GID == "" {
		return model.Task{}, repository.ErrTaskNotFound
	}
	return taskToModel(t), nil
}

func (r *implRepository) RenameTask(ctx context.Context, id, name string) error {
	t, err := r.client.UpdateTask(ctx, id, pkgAsana.UpdateTaskRequest{Name: name})
	if err != nil {
		return fmt.Errorf("rename task %s: %w", id, err)
	}
	if t.GID == "" {
		return fmt.Errorf("rename task %s: empty response", id)
	}
	if t.Name != "" && t.Name != name {
		r.l.Warnf(ctx, "asana repository: task %s renamed to %q but API returned %q", id, name, t.Name)
	}
	return nil
}

// taskToModel converts an Asana API task to the internal model.Task.
func taskToModel(t *pkgAsana.Task) model.Task {
	return model.Task{
		ID:   t.GID,
		Name: t.Name,
	}
}
