package azuredevops

import "time"

// Project is the metadata of an Azure DevOps project.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// WorkItem is an immutable snapshot of an Azure DevOps work item,
// fetched fresh on every call and never cached locally.
type WorkItem struct {
	// ID is the work item id, a positive integer unique within the
	// organization.
	ID int `json:"id"`

	// Title is the work item summary.
	Title string `json:"title"`

	// Type is the work item type: Bug, Task, or User Story. The WIQL
	// query filters out all other types before the detail fetch.
	Type string `json:"type"`

	// State is the workflow state (New, Active, Closed, ...).
	State string `json:"state"`

	// AssignedTo is the display name of the assignee, nil when the
	// work item is unassigned.
	AssignedTo *string `json:"assigned_to,omitempty"`

	// IterationPath is the backslash-delimited sprint path.
	IterationPath string `json:"iteration_path"`

	// Description is the long-form description, empty when absent.
	Description string `json:"description"`

	// URL is the canonical REST URL of the work item.
	URL string `json:"url"`
}

// Iteration is one node of the project iteration tree flattened into a
// list entry. A node appears here only if it carries a date range or is
// a childless non-root node.
type Iteration struct {
	// ID is the opaque node identifier assigned by Azure DevOps.
	ID string `json:"id"`

	// Name is the node's own segment name.
	Name string `json:"name"`

	// Path is the full backslash-delimited path including the project
	// name, as used in System.IterationPath.
	Path string `json:"path"`

	// DisplayName is the path without the leading project segment,
	// joined with " / " for human-readable listing.
	DisplayName string `json:"display_name"`

	// StartDate and FinishDate bound the sprint when set.
	StartDate  *time.Time `json:"start_date,omitempty"`
	FinishDate *time.Time `json:"finish_date,omitempty"`
}

// projectResponse is the payload of GET /_apis/projects/{nameOrId}.
type projectResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// projectListResponse is the payload of GET /_apis/projects.
type projectListResponse struct {
	Count int               `json:"count"`
	Value []projectResponse `json:"value"`
}

// classificationNode is one node of the iteration tree returned by the
// classification-nodes endpoint. Children recurse up to the requested
// $depth.
type classificationNode struct {
	ID          int                  `json:"id"`
	Identifier  string               `json:"identifier"`
	Name        string               `json:"name"`
	Attributes  *nodeAttributes      `json:"attributes,omitempty"`
	HasChildren bool                 `json:"hasChildren"`
	Children    []classificationNode `json:"children,omitempty"`
}

// nodeAttributes holds the optional sprint date range of an iteration node.
type nodeAttributes struct {
	StartDate  *time.Time `json:"startDate,omitempty"`
	FinishDate *time.Time `json:"finishDate,omitempty"`
}

// wiqlRequest is the body of POST /_apis/wit/wiql.
type wiqlRequest struct {
	Query string `json:"query"`
}

// workItemReference is an id/URL pair returned by a WIQL flat query.
type workItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// wiqlResponse is the payload of POST /_apis/wit/wiql for a flat query.
type wiqlResponse struct {
	QueryType       string              `json:"queryType"`
	QueryResultType string              `json:"queryResultType"`
	WorkItems       []workItemReference `json:"workItems"`
}

// identityRef is the assigned-to identity shape inside work item fields.
type identityRef struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

// workItemFields is the field projection requested from the batch
// detail endpoint. Azure DevOps keys fields by reference name.
type workItemFields struct {
	Title         string       `json:"System.Title"`
	WorkItemType  string       `json:"System.WorkItemType"`
	State         string       `json:"System.State"`
	AssignedTo    *identityRef `json:"System.AssignedTo,omitempty"`
	IterationPath string       `json:"System.IterationPath"`
	Description   string       `json:"System.Description,omitempty"`
}

// rawWorkItem is one entry of the batch detail response.
type rawWorkItem struct {
	ID     int            `json:"id"`
	Fields workItemFields `json:"fields"`
	URL    string         `json:"url"`
}

// workItemBatchResponse is the payload of GET /_apis/wit/workitems.
type workItemBatchResponse struct {
	Count int           `json:"count"`
	Value []rawWorkItem `json:"value"`
}
