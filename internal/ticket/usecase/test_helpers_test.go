package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket/repository"
)

// Mock logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) DPanicf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Panic(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Panicf(ctx context.Context, template string, arg ...any)  {}

// mockSubRepo is an in-memory SubscriptionRepository.
type mockSubRepo struct {
	mu         sync.Mutex
	secrets    map[string]string
	counters   map[string]int64
	increments int
	getErr     error
	saveErr    error
	incrFailAt map[int]bool // 1-based increment call numbers that fail
}

func newMockSubRepo() *mockSubRepo {
	return &mockSubRepo{
		secrets:    map[string]string{},
		counters:   map[string]int64{},
		incrFailAt: map[int]bool{},
	}
}

func (m *mockSubRepo) GetSecret(ctx context.Context, sub model.Subscription) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	s, ok := m.secrets[repository.SecretKey(sub)]
	if !ok {
		return "", repository.ErrSecretNotFound
	}
	return s, nil
}

func (m *mockSubRepo) SaveSecret(ctx context.Context, sub model.Subscription, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.secrets[repository.SecretKey(sub)] = secret
	return nil
}

func (m *mockSubRepo) NextSequence(ctx context.Context, sub model.Subscription) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments++
	if m.incrFailAt[m.increments] {
		return 0, errors.New("counter service unavailable")
	}
	m.counters[sub.CounterKey]++
	return m.counters[sub.CounterKey], nil
}

func (m *mockSubRepo) counter(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

func (m *mockSubRepo) incrementCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.increments
}

// mockTaskRepo is an in-memory TaskRepository; renames update the stored name.
type mockTaskRepo struct {
	mu        sync.Mutex
	tasks     map[string]string
	getErr    map[string]error
	renameErr map[string]error
	block     map[string]bool // GetTask waits for ctx cancellation
	delay     time.Duration   // GetTask latency
	gets      []string
	renames   []string
}

func newMockTaskRepo(tasks map[string]string) *mockTaskRepo {
	return &mockTaskRepo{
		tasks:     tasks,
		getErr:    map[string]error{},
		renameErr: map[string]error{},
		block:     map[string]bool{},
	}
}

func (m *mockTaskRepo) GetTask(ctx context.Context, id string) (model.Task, error) {
	m.mu.Lock()
	m.gets = append(m.gets, id)
	block := m.block[id]
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if block {
		<-ctx.Done()
		return model.Task{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.getErr[id]; err != nil {
		return model.Task{}, err
	}
	name, ok := m.tasks[id]
	if !ok {
		return model.Task{}, repository.ErrTaskNotFound
	}
	return model.Task{ID: id, Name: name}, nil
}

func (m *mockTaskRepo) RenameTask(ctx context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.renameErr[id]; err != nil {
		return err
	}
	m.renames = append(m.renames, id)
	m.tasks[id] = name
	return nil
}

func (m *mockTaskRepo) name(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[id]
}

func (m *mockTaskRepo) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.gets)
}

func (m *mockTaskRepo) renameCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.renames)
}

func taskRename(id string) model.Event {
	return model.Event{ResourceType: model.ResourceTypeTask, ResourceID: id, ChangedField: model.FieldName, Action: "changed"}
}
