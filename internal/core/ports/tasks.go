package ports

import "context"

// Task is a unit of fire-and-forget work. Key groups tasks that must run in
// submission order; failures are logged and never retried.
type Task struct {
	Name string
	Key  string
	Run  func(ctx context.Context) error
}

type TaskQueue interface {
	// Enqueue reports false when the task was dropped because the queue is full.
	Enqueue(task Task) bool
}
