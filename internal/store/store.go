package store

import (
	"context"

	"github.com/tracklight/tracklight/internal/model"
)

// Store defines the persistence interface for tasks, projects, and users.
type Store interface {
	// === Tasks ===

	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	FindTaskByExternalID(ctx context.Context, projectID string, externalID int) (*model.Task, error)
	GetTasksByProject(ctx context.Context, projectID string) ([]model.Task, error)

	// === Projects ===

	CreateProject(ctx context.Context, project model.Project) (*model.Project, error)
	FindProjectByName(ctx context.Context, name string) (*model.Project, error)
	EnsureProject(ctx context.Context, name string) (*model.Project, error)

	// === Users ===

	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	FindUserByName(ctx context.Context, displayName string) (*model.User, error)
	EnsureUser(ctx context.Context, displayName string) (*model.User, error)
}
