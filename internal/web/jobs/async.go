package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// AsyncExecutor enqueues background jobs on a Queue on behalf of a caller,
// such as the playground's async compile endpoint
type AsyncExecutor struct {
	queue *Queue
}

// NewAsyncExecutor creates a new async executor
func NewAsyncExecutor(queue *Queue) *AsyncExecutor {
	return &AsyncExecutor{
		queue: queue,
	}
}

// Execute enqueues a job to be executed asynchronously, without returning
// its ID
func (e *AsyncExecutor) Execute(ctx context.Context, queueName, jobType string, payload map[string]interface{}) error {
	job := NewJob(queueName, jobType, payload)

	if err := e.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue async job: %w", err)
	}

	log.Printf("Enqueued async job %s (type: %s) to queue: %s", job.ID, job.Type, queueName)
	return nil
}

// ExecuteJob enqueues a job and returns its ID, for a caller that needs to
// hand the ID back to the requester to poll for the result later.
func (e *AsyncExecutor) ExecuteJob(ctx context.Context, queueName, jobType string, payload map[string]interface{}) (uuid.UUID, error) {
	job := NewJob(queueName, jobType, payload)

	if err := e.queue.Enqueue(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue async job: %w", err)
	}

	log.Printf("Enqueued async job %s (type: %s) to queue: %s", job.ID, job.Type, queueName)
	return job.ID, nil
}

// ExecuteWithPriority enqueues a job with a specific priority
func (e *AsyncExecutor) ExecuteWithPriority(ctx context.Context, queueName, jobType string, payload map[string]interface{}, priority JobPriority) error {
	job := NewJob(queueName, jobType, payload)
	job.Priority = priority

	if err := e.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue async job: %w", err)
	}

	log.Printf("Enqueued async job %s (type: %s, priority: %d) to queue: %s",
		job.ID, job.Type, priority, queueName)
	return nil
}

// AsyncContext provides context for async job execution
// This is passed to job handlers to provide access to the job metadata
type AsyncContext struct {
	JobID    string
	JobType  string
	Queue    string
	Attempts int
}

// Example usage from a caller that enqueues a follow-up job:
//
// func (r *UserResource) AfterCreate(ctx context.Context, user *User) error {
//     // ... transaction logic ...
//
//     // Enqueue async job
//     asyncExec := jobs.NewAsyncExecutor(jobQueue)
//     payload := map[string]interface{}{
//         "template": "welcome",
//         "user_id": user.ID,
//         "user_email": user.Email,
//     }
//
//     return asyncExec.Execute(ctx, "default", "email.send", payload)
// }
