package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tracklight/tracklight/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// taskRow is the database shape of a task. The ado_* columns are NULL
// for tasks that were not imported from Azure DevOps.
type taskRow struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	Description     string         `db:"description"`
	URL             string         `db:"url"`
	ProjectID       string         `db:"project_id"`
	UserID          string         `db:"user_id"`
	AdoExternalID   sql.NullInt64  `db:"ado_external_id"`
	AdoWorkItemType sql.NullString `db:"ado_work_item_type"`
	AdoIteration    sql.NullString `db:"ado_iteration_path"`
	AdoAssignee     sql.NullString `db:"ado_assignee"`
	AdoLastSyncedAt sql.NullTime   `db:"ado_last_synced_at"`
	AdoSourceURL    sql.NullString `db:"ado_source_url"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// toTask converts a database row to the model shape.
func (r taskRow) toTask() model.Task {
	task := model.Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		URL:         r.URL,
		ProjectID:   r.ProjectID,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.AdoExternalID.Valid {
		meta := &model.AzureDevOpsMeta{
			ExternalID:    int(r.AdoExternalID.Int64),
			WorkItemType:  r.AdoWorkItemType.String,
			IterationPath: r.AdoIteration.String,
			SourceURL:     r.AdoSourceURL.String,
		}
		if r.AdoAssignee.Valid {
			assignee := r.AdoAssignee.String
			meta.Assignee = &assignee
		}
		if r.AdoLastSyncedAt.Valid {
			meta.LastSyncedAt = r.AdoLastSyncedAt.Time
		}
		task.AzureDevOps = meta
	}

	return task
}

// metaColumns extracts the nullable ado_* column values from a task.
func metaColumns(task model.Task) (externalID sql.NullInt64, workItemType, iteration, assignee sql.NullString, lastSyncedAt sql.NullTime, sourceURL sql.NullString) {
	meta := task.AzureDevOps
	if meta == nil {
		return
	}

	externalID = sql.NullInt64{Int64: int64(meta.ExternalID), Valid: true}
	workItemType = sql.NullString{String: meta.WorkItemType, Valid: true}
	iteration = sql.NullString{String: meta.IterationPath, Valid: true}
	sourceURL = sql.NullString{String: meta.SourceURL, Valid: true}
	if meta.Assignee != nil {
		assignee = sql.NullString{String: *meta.Assignee, Valid: true}
	}
	if !meta.LastSyncedAt.IsZero() {
		lastSyncedAt = sql.NullTime{Time: meta.LastSyncedAt.UTC(), Valid: true}
	}
	return
}

// CreateTask inserts a new task and returns the stored record.
// If the task has no ID, a new UUID is generated.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}

	externalID, workItemType, iteration, assignee, lastSyncedAt, sourceURL := metaColumns(task)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, name, description, url, project_id, user_id,
			ado_external_id, ado_work_item_type, ado_iteration_path,
			ado_assignee, ado_last_synced_at, ado_source_url,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Description, task.URL,
		task.ProjectID, task.UserID,
		externalID, workItemType, iteration,
		assignee, lastSyncedAt, sourceURL,
		task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task %s: %w", task.ID, err)
	}

	return &task, nil
}

// UpdateTask overwrites an existing task record.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	externalID, workItemType, iteration, assignee, lastSyncedAt, sourceURL := metaColumns(task)

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			name = ?, description = ?, url = ?,
			ado_external_id = ?, ado_work_item_type = ?, ado_iteration_path = ?,
			ado_assignee = ?, ado_last_synced_at = ?, ado_source_url = ?,
			updated_at = ?
		WHERE id = ?`,
		task.Name, task.Description, task.URL,
		externalID, workItemType, iteration,
		assignee, lastSyncedAt, sourceURL,
		time.Now().UTC(), task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("updating task %s: no such task", task.ID)
	}

	return nil
}

// FindTaskByExternalID looks a task up by its import dedup key.
// It returns (nil, nil) when no matching task exists.
func (s *SQLiteStore) FindTaskByExternalID(ctx context.Context, projectID string, externalID int) (*model.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM tasks WHERE project_id = ? AND ado_external_id = ?",
		projectID, externalID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding task by external id %d: %w", externalID, err)
	}

	task := row.toTask()
	return &task, nil
}

// GetTasksByProject retrieves all tasks of a project, oldest first.
func (s *SQLiteStore) GetTasksByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM tasks WHERE project_id = ? ORDER BY created_at, id",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for project %s: %w", projectID, err)
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

// CreateProject inserts a new project. If it has no ID, one is generated.
func (s *SQLiteStore) CreateProject(ctx context.Context, project model.Project) (*model.Project, error) {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)",
		project.ID, project.Name, project.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating project %q: %w", project.Name, err)
	}

	return &project, nil
}

// FindProjectByName returns the project with the given name, or (nil, nil).
func (s *SQLiteStore) FindProjectByName(ctx context.Context, name string) (*model.Project, error) {
	var project model.Project
	err := s.db.GetContext(ctx, &project,
		"SELECT * FROM projects WHERE name = ?", name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding project %q: %w", name, err)
	}
	return &project, nil
}

// EnsureProject returns the project with the given name, creating it
// first if it does not exist.
func (s *SQLiteStore) EnsureProject(ctx context.Context, name string) (*model.Project, error) {
	project, err := s.FindProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if project != nil {
		return project, nil
	}
	return s.CreateProject(ctx, model.Project{Name: name})
}

// CreateUser inserts a new user. If it has no ID, one is generated.
func (s *SQLiteStore) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, display_name, created_at) VALUES (?, ?, ?)",
		user.ID, user.DisplayName, user.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user %q: %w", user.DisplayName, err)
	}

	return &user, nil
}

// FindUserByName returns the user with the given display name, or (nil, nil).
func (s *SQLiteStore) FindUserByName(ctx context.Context, displayName string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE display_name = ?", displayName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user %q: %w", displayName, err)
	}
	return &user, nil
}

// EnsureUser returns the user with the given display name, creating it
// first if it does not exist.
func (s *SQLiteStore) EnsureUser(ctx context.Context, displayName string) (*model.User, error) {
	user, err := s.FindUserByName(ctx, displayName)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.CreateUser(ctx, model.User{DisplayName: displayName})
}
