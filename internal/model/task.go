package model

import "time"

// Task is a locally-owned unit of work. Tasks created by the Azure DevOps
// import carry an AzureDevOps metadata record tying them back to the work
// item they were created from; manually created tasks do not.
type Task struct {
	// ID is the internal unique identifier for this task.
	ID string `json:"id" db:"id"`

	// Name is the human-readable summary of the task.
	Name string `json:"name" db:"name"`

	// Description is the full body/description text.
	Description string `json:"description" db:"description"`

	// URL is a direct link back to the item this task was created from,
	// empty for manually created tasks.
	URL string `json:"url" db:"url"`

	// ProjectID references the local project this task belongs to.
	ProjectID string `json:"project_id" db:"project_id"`

	// UserID references the local user who owns this task.
	UserID string `json:"user_id" db:"user_id"`

	// AzureDevOps holds the Azure DevOps sync metadata, nil for tasks
	// that were not imported.
	AzureDevOps *AzureDevOpsMeta `json:"azure_devops,omitempty"`

	// CreatedAt is when the task record was created locally.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is when the task record was last modified locally.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AzureDevOpsMeta ties a task to the Azure DevOps work item it was
// imported from. The pair (ProjectID, ExternalID) is unique among the
// tasks of a project and serves as the import deduplication key.
type AzureDevOpsMeta struct {
	// ExternalID is the work item id in Azure DevOps.
	ExternalID int `json:"external_id"`

	// WorkItemType is the Azure DevOps work item type
	// (Bug, Task, or User Story).
	WorkItemType string `json:"work_item_type"`

	// IterationPath is the backslash-delimited sprint path the work
	// item was assigned to at import time.
	IterationPath string `json:"iteration_path"`

	// Assignee is the display name of the assigned person. Nil means
	// the work item was unassigned; absence is meaningful and is not
	// collapsed to an empty string.
	Assignee *string `json:"assignee,omitempty"`

	// LastSyncedAt is when the task was last written from the work item.
	LastSyncedAt time.Time `json:"last_synced_at"`

	// SourceURL is the canonical link to the work item.
	SourceURL string `json:"source_url"`
}

// Project is a local project tasks are grouped under.
type Project struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// User is a local user account, the owner of imported tasks.
type User struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
