package azuredevops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return &parsed
}

func datedNode(t *testing.T, id, name string) classificationNode {
	return classificationNode{
		Identifier: id,
		Name:       name,
		Attributes: &nodeAttributes{
			StartDate:  timePtr(t, "2026-08-03T00:00:00Z"),
			FinishDate: timePtr(t, "2026-08-14T00:00:00Z"),
		},
	}
}

func TestFlattenIterationsCompleteness(t *testing.T) {
	// Three dated leaves spread over two folder levels must produce
	// exactly three entries with full ancestor paths and distinct ids.
	root := classificationNode{
		Identifier: "root",
		Name:       "ProjectX",
		Children: []classificationNode{
			{
				Identifier: "y2026",
				Name:       "2026",
				Children: []classificationNode{
					datedNode(t, "s1", "Sprint 1"),
					datedNode(t, "s2", "Sprint 2"),
					{
						Identifier: "q3",
						Name:       "Q3",
						Children: []classificationNode{
							datedNode(t, "s3", "Sprint 3"),
						},
					},
				},
			},
		},
	}

	iterations := flattenIterations(root, "ProjectX")
	require.Len(t, iterations, 3)

	paths := make(map[string]string, len(iterations))
	for _, it := range iterations {
		paths[it.ID] = it.Path
	}
	assert.Equal(t, `ProjectX\2026\Sprint 1`, paths["s1"])
	assert.Equal(t, `ProjectX\2026\Sprint 2`, paths["s2"])
	assert.Equal(t, `ProjectX\2026\Q3\Sprint 3`, paths["s3"])

	seen := make(map[string]bool)
	for _, it := range iterations {
		assert.False(t, seen[it.ID], "identifier %s reused", it.ID)
		seen[it.ID] = true
	}
}

func TestFlattenInclusionRule(t *testing.T) {
	root := classificationNode{
		Identifier: "root",
		Name:       "ProjectX",
		Children: []classificationNode{
			// Dateless folder with children: excluded.
			{
				Identifier: "folder",
				Name:       "Backlog folders",
				Children: []classificationNode{
					// Dateless leaf: included.
					{Identifier: "bare-leaf", Name: "Unscheduled"},
				},
			},
			// Dated non-leaf: included.
			{
				Identifier: "dated-folder",
				Name:       "Release 2",
				Attributes: &nodeAttributes{
					StartDate: timePtr(t, "2026-09-01T00:00:00Z"),
				},
				Children: []classificationNode{
					datedNode(t, "s4", "Sprint 4"),
				},
			},
		},
	}

	iterations := flattenIterations(root, "ProjectX")

	ids := make([]string, 0, len(iterations))
	for _, it := range iterations {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"bare-leaf", "dated-folder", "s4"}, ids)
}

func TestFlattenExcludesChildlessRoot(t *testing.T) {
	root := classificationNode{Identifier: "root", Name: "Empty"}

	assert.Empty(t, flattenIterations(root, "Empty"))
}

func TestIterationDisplayName(t *testing.T) {
	testCases := []struct {
		name        string
		path        string
		projectName string
		want        string
	}{
		{
			name:        "project prefix stripped and slash-joined",
			path:        `ProjectX\TeamA\Sprint 1`,
			projectName: "ProjectX",
			want:        "TeamA / Sprint 1",
		},
		{
			name:        "single child below project stays bare",
			path:        `ProjectX\Sprint 1`,
			projectName: "ProjectX",
			want:        "Sprint 1",
		},
		{
			name:        "foreign prefix kept",
			path:        `OtherProject\Sprint 1`,
			projectName: "ProjectX",
			want:        "OtherProject / Sprint 1",
		},
		{
			name:        "single segment equal to project name kept",
			path:        "ProjectX",
			projectName: "ProjectX",
			want:        "ProjectX",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, iterationDisplayName(tc.path, tc.projectName))
		})
	}
}
