// Package sync turns Azure DevOps work items into locally-owned task
// records under an idempotent, partial-failure-tolerant import policy.
package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tracklight/tracklight/internal/azuredevops"
	"github.com/tracklight/tracklight/internal/logging"
	"github.com/tracklight/tracklight/internal/model"
)

// staleAfter is how old a task's last sync must be before a refresh
// from the source is warranted. The comparison is strict: a task synced
// exactly staleAfter ago is still fresh.
const staleAfter = 24 * time.Hour

// TaskStore is the narrow persistence surface the engine depends on.
type TaskStore interface {
	// FindTaskByExternalID looks a task up by its import dedup key.
	// It returns (nil, nil) when no such task exists.
	FindTaskByExternalID(ctx context.Context, projectID string, externalID int) (*model.Task, error)

	// CreateTask persists a new task and returns the stored record.
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
}

// ImportResult aggregates one ImportWorkItems run. Tasks holds only the
// records created during this run, in input order; pre-existing tasks
// are counted as skipped and never listed.
type ImportResult struct {
	Imported int          `json:"imported"`
	Skipped  int          `json:"skipped"`
	Tasks    []model.Task `json:"tasks"`
}

// Engine imports work items into the task store.
type Engine struct {
	store TaskStore
	now   func() time.Time
}

// NewEngine creates an engine backed by the given store.
func NewEngine(store TaskStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// TransformWorkItemToTask maps a work item to a new task owned by the
// given project and user. The mapping is pure aside from reading the
// clock for LastSyncedAt.
func (e *Engine) TransformWorkItemToTask(wi azuredevops.WorkItem, projectID, userID string) model.Task {
	now := e.now()

	var assignee *string
	if wi.AssignedTo != nil {
		name := *wi.AssignedTo
		assignee = &name
	}

	return model.Task{
		ID:          uuid.New().String(),
		Name:        wi.Title,
		Description: wi.Description,
		URL:         wi.URL,
		ProjectID:   projectID,
		UserID:      userID,
		AzureDevOps: &model.AzureDevOpsMeta{
			ExternalID:    wi.ID,
			WorkItemType:  wi.Type,
			IterationPath: wi.IterationPath,
			Assignee:      assignee,
			LastSyncedAt:  now,
			SourceURL:     wi.URL,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ImportWorkItems imports the given work items sequentially, in input
// order. A work item whose (projectID, external id) pair already has a
// task is skipped; existing tasks are never refreshed here. Any lookup
// or persistence failure for one item is logged and counted as a skip,
// and processing continues with the next item. The result is always
// non-nil and its counts always sum to len(workItems).
func (e *Engine) ImportWorkItems(ctx context.Context, workItems []azuredevops.WorkItem, projectID, userID string) *ImportResult {
	result := &ImportResult{Tasks: []model.Task{}}

	for _, wi := range workItems {
		existing, err := e.store.FindTaskByExternalID(ctx, projectID, wi.ID)
		if err != nil {
			logging.Warn("skipping work item: lookup failed",
				"external_id", wi.ID, "project_id", projectID, "error", err)
			result.Skipped++
			continue
		}

		if existing != nil {
			result.Skipped++
			continue
		}

		task := e.TransformWorkItemToTask(wi, projectID, userID)
		created, err := e.store.CreateTask(ctx, task)
		if err != nil {
			logging.Warn("skipping work item: create failed",
				"external_id", wi.ID, "project_id", projectID, "error", err)
			result.Skipped++
			continue
		}

		result.Imported++
		result.Tasks = append(result.Tasks, *created)
	}

	return result
}

// ShouldUpdateExistingTask reports whether a previously-imported task is
// stale enough for a refresh from its work item. Tasks without sync
// metadata or without a recorded sync time are never refreshed.
func (e *Engine) ShouldUpdateExistingTask(task *model.Task, _ azuredevops.WorkItem) bool {
	if task == nil || task.AzureDevOps == nil || task.AzureDevOps.LastSyncedAt.IsZero() {
		return false
	}
	return e.now().Sub(task.AzureDevOps.LastSyncedAt) > staleAfter
}

// UpdateTaskFromWorkItem refreshes a task in place from its work item
// and returns the same reference. The name is always overwritten; the
// description only when the incoming one is non-empty. Sync metadata is
// updated only when the task already carries it; it is never fabricated
// for tasks that lack it. The assignee may be cleared when the work
// item no longer has one.
func (e *Engine) UpdateTaskFromWorkItem(task *model.Task, wi azuredevops.WorkItem) *model.Task {
	task.Name = wi.Title
	if wi.Description != "" {
		task.Description = wi.Description
	}

	if task.AzureDevOps != nil {
		task.AzureDevOps.IterationPath = wi.IterationPath
		if wi.AssignedTo != nil {
			name := *wi.AssignedTo
			task.AzureDevOps.Assignee = &name
		} else {
			task.AzureDevOps.Assignee = nil
		}
		task.AzureDevOps.LastSyncedAt = e.now()
	}

	task.UpdatedAt = e.now()
	return task
}
