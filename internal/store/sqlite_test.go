package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklight/tracklight/internal/model"
	"github.com/tracklight/tracklight/internal/store"
	"github.com/tracklight/tracklight/tests/testutil"
)

func seedScope(t *testing.T, s *store.SQLiteStore) (projectID, userID string) {
	t.Helper()
	ctx := context.Background()

	project, err := s.EnsureProject(ctx, "Fabrikam")
	require.NoError(t, err)
	user, err := s.EnsureUser(ctx, "Dana Walker")
	require.NoError(t, err)

	return project.ID, user.ID
}

func importedTask(projectID, userID string, externalID int) model.Task {
	assignee := "Dana Walker"
	return model.Task{
		Name:        "Fix login crash",
		Description: "Crashes on empty password",
		URL:         "https://dev.azure.com/acme/_apis/wit/workItems/42",
		ProjectID:   projectID,
		UserID:      userID,
		AzureDevOps: &model.AzureDevOpsMeta{
			ExternalID:    externalID,
			WorkItemType:  "Bug",
			IterationPath: `Fabrikam\Sprint 1`,
			Assignee:      &assignee,
			LastSyncedAt:  time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
			SourceURL:     "https://dev.azure.com/acme/_apis/wit/workItems/42",
		},
	}
}

func TestCreateAndFindTaskByExternalID(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, importedTask(projectID, userID, 42))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	found, err := s.FindTaskByExternalID(ctx, projectID, 42)
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Fix login crash", found.Name)
	require.NotNil(t, found.AzureDevOps)
	assert.Equal(t, 42, found.AzureDevOps.ExternalID)
	assert.Equal(t, "Bug", found.AzureDevOps.WorkItemType)
	require.NotNil(t, found.AzureDevOps.Assignee)
	assert.Equal(t, "Dana Walker", *found.AzureDevOps.Assignee)
	assert.True(t, found.AzureDevOps.LastSyncedAt.Equal(
		time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)))
}

func TestFindTaskByExternalIDMissing(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, _ := seedScope(t, s)

	found, err := s.FindTaskByExternalID(context.Background(), projectID, 999)
	require.NoError(t, err)
	assert.Nil(t, found, "a missing task is (nil, nil), not an error")
}

func TestNullAssigneeRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)
	ctx := context.Background()

	task := importedTask(projectID, userID, 7)
	task.AzureDevOps.Assignee = nil

	_, err := s.CreateTask(ctx, task)
	require.NoError(t, err)

	found, err := s.FindTaskByExternalID(ctx, projectID, 7)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.AzureDevOps.Assignee)
}

func TestDedupIndexRejectsDuplicateExternalID(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)
	ctx := context.Background()

	_, err := s.CreateTask(ctx, importedTask(projectID, userID, 42))
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, importedTask(projectID, userID, 42))
	assert.Error(t, err, "the unique index backs the dedup key against races")
}

func TestDedupIndexAllowsSameExternalIDAcrossProjects(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)
	ctx := context.Background()

	other, err := s.EnsureProject(ctx, "Contoso")
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, importedTask(projectID, userID, 42))
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, importedTask(other.ID, userID, 42))
	assert.NoError(t, err)
}

func TestManualTasksUnconstrained(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)
	ctx := context.Background()

	manual := model.Task{Name: "Manual one", ProjectID: projectID, UserID: userID}

	_, err := s.CreateTask(ctx, manual)
	require.NoError(t, err)

	manual.Name = "Manual two"
	_, err = s.CreateTask(ctx, manual)
	assert.NoError(t, err, "tasks without sync metadata are not constrained by the dedup index")
}

func TestUpdateTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, importedTask(projectID, userID, 42))
	require.NoError(t, err)

	created.Name = "Renamed"
	created.AzureDevOps.Assignee = nil
	require.NoError(t, s.UpdateTask(ctx, *created))

	found, err := s.FindTaskByExternalID(ctx, projectID, 42)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	assert.Nil(t, found.AzureDevOps.Assignee)
}

func TestUpdateMissingTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)

	ghost := importedTask(projectID, userID, 1)
	ghost.ID = "nope"

	assert.Error(t, s.UpdateTask(context.Background(), ghost))
}

func TestGetTasksByProject(t *testing.T) {
	s := testutil.NewTestStore(t)
	projectID, userID := seedScope(t, s)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		task := importedTask(projectID, userID, i)
		task.CreatedAt = time.Date(2026, 8, i, 0, 0, 0, 0, time.UTC)
		_, err := s.CreateTask(ctx, task)
		require.NoError(t, err)
	}

	tasks, err := s.GetTasksByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, 1, tasks[0].AzureDevOps.ExternalID)
	assert.Equal(t, 3, tasks[2].AzureDevOps.ExternalID)
}

func TestEnsureProjectIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureProject(ctx, "Fabrikam")
	require.NoError(t, err)
	second, err := s.EnsureProject(ctx, "Fabrikam")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureUser(ctx, "Dana Walker")
	require.NoError(t, err)
	second, err := s.EnsureUser(ctx, "Dana Walker")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}
