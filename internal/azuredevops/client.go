// Package azuredevops is a thin HTTP client for the Azure DevOps work
// item tracking REST API. It handles PAT authentication, the api-version
// negotiation the two hosting domains require, WIQL queries, and the
// flattening of project iteration trees.
package azuredevops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tracklight/tracklight/internal/logging"
)

const (
	// apiVersionCurrent is used for dev.azure.com organizations.
	apiVersionCurrent = "7.1"

	// apiVersionLegacy is used for organizations still hosted under
	// the older visualstudio.com domain, which rejects newer versions.
	apiVersionLegacy = "6.0"

	legacyDomain = "visualstudio.com"

	// iterationTreeDepth bounds how many nested iteration folder
	// levels are requested from the classification-nodes endpoint.
	iterationTreeDepth = 10

	// workItemReadScopeHint is appended to auth failures on iteration
	// and work item calls, where a token valid for project reads may
	// still lack the work item scope.
	workItemReadScopeHint = "the token needs the Work Items (Read) scope"
)

// workItemFieldNames is the field projection used by both the WIQL query
// and the batch detail fetch.
var workItemFieldNames = []string{
	"System.Id",
	"System.Title",
	"System.WorkItemType",
	"System.State",
	"System.AssignedTo",
	"System.IterationPath",
	"System.Description",
}

// Client holds one authenticated session against one Azure DevOps
// organization. It is stateless apart from its fixed auth and version
// configuration; reuse it across sequential calls, but do not share one
// instance between concurrent callers.
type Client struct {
	orgURL     string
	apiBase    string
	authHeader string
	apiVersion string
	httpClient *http.Client
}

// NewClient creates a client for the given organization base URL
// (e.g. https://dev.azure.com/acme) authenticated with a personal
// access token. The api-version is fixed here: legacy visualstudio.com
// organizations get the older dialect, everything else the current one.
func NewClient(orgURL, pat string) *Client {
	orgURL = strings.TrimRight(orgURL, "/")

	version := apiVersionCurrent
	if strings.Contains(orgURL, legacyDomain) {
		version = apiVersionLegacy
	}

	// PAT auth is Basic with an empty username.
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+pat))

	logging.Debug("azure devops client created",
		"org_url", orgURL,
		"api_version", version,
		"token", logging.MaskSecret(pat),
	)

	return &Client{
		orgURL:     orgURL,
		apiBase:    orgURL + "/_apis",
		authHeader: auth,
		apiVersion: version,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateConnection probes the organization with a minimal project list
// query. It never returns an error: rejected credentials and any other
// failure both yield false, the latter with a logged diagnostic.
func (c *Client) ValidateConnection(ctx context.Context) bool {
	var list projectListResponse
	err := c.get(ctx, c.apiBase+"/projects?$top=1", &list)
	if err == nil {
		return true
	}

	var se *statusError
	if errors.As(err, &se) && (se.status == http.StatusUnauthorized || se.status == http.StatusForbidden) {
		return false
	}

	logging.Warn("connection probe failed", "org_url", c.orgURL, "error", err)
	return false
}

// GetProject fetches project metadata by name.
func (c *Client) GetProject(ctx context.Context, name string) (*Project, error) {
	var proj projectResponse
	err := c.get(ctx, c.apiBase+"/projects/"+url.PathEscape(name), &proj)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			switch se.status {
			case http.StatusNotFound:
				return nil, notFoundError("project", name)
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, authError("")
			}
		}
		return nil, unknownError("fetching project "+name, err)
	}

	return &Project{ID: proj.ID, Name: proj.Name, URL: proj.URL}, nil
}

// GetIterations returns the project's iteration tree flattened into a
// list. The classification-nodes endpoint is keyed by project name, not
// id, so the name is resolved first; the tree request is then issued
// against the organization root rather than the /_apis base, because
// the project-level endpoint reports iterations across every team while
// the default-team endpoint under-reports sprints owned by other teams.
func (c *Client) GetIterations(ctx context.Context, projectID string) ([]Iteration, error) {
	var proj projectResponse
	err := c.get(ctx, c.apiBase+"/projects/"+url.PathEscape(projectID), &proj)
	if err != nil {
		return nil, c.mapIterationsError(err, projectID)
	}

	treeURL := fmt.Sprintf("%s/%s/_apis/wit/classificationnodes/iterations?$depth=%d",
		c.orgURL, url.PathEscape(proj.Name), iterationTreeDepth)

	var root classificationNode
	if err := c.get(ctx, treeURL, &root); err != nil {
		return nil, c.mapIterationsError(err, proj.Name)
	}

	return flattenIterations(root, proj.Name), nil
}

func (c *Client) mapIterationsError(err error, project string) error {
	var se *statusError
	if errors.As(err, &se) {
		switch se.status {
		case http.StatusNotFound:
			return notFoundError("project", project)
		case http.StatusUnauthorized, http.StatusForbidden:
			return authError(workItemReadScopeHint)
		}
	}
	return unknownError("fetching iterations for "+project, err)
}

// GetWorkItemsByIteration returns the Bug, Task, and User Story work
// items assigned to the given iteration path. The lookup is two-phase:
// a WIQL query resolves the matching ids, then one batch request
// fetches the full field set. An empty WIQL result short-circuits the
// batch fetch, which would reject an empty id list.
func (c *Client) GetWorkItemsByIteration(ctx context.Context, projectID, iterationPath string) ([]WorkItem, error) {
	// Single quotes inside a WIQL string literal are escaped by doubling.
	escaped := strings.ReplaceAll(iterationPath, "'", "''")
	query := fmt.Sprintf(
		"SELECT [System.Id], [System.Title], [System.WorkItemType], "+
			"[System.State], [System.AssignedTo], [System.IterationPath] "+
			"FROM WorkItems "+
			"WHERE [System.IterationPath] = '%s' "+
			"AND [System.WorkItemType] IN ('Bug', 'Task', 'User Story') "+
			"ORDER BY [System.Id]",
		escaped,
	)

	// The project scopes the query as a routing parameter; it is not
	// embedded in the query text.
	wiqlURL := c.apiBase + "/wit/wiql?project=" + url.QueryEscape(projectID)

	var refs wiqlResponse
	if err := c.post(ctx, wiqlURL, wiqlRequest{Query: query}, &refs); err != nil {
		return nil, c.mapWorkItemsError(err, iterationPath)
	}

	if len(refs.WorkItems) == 0 {
		return []WorkItem{}, nil
	}

	ids := make([]string, len(refs.WorkItems))
	for i, ref := range refs.WorkItems {
		ids[i] = strconv.Itoa(ref.ID)
	}

	batchURL := fmt.Sprintf("%s/wit/workitems?ids=%s&fields=%s",
		c.apiBase,
		strings.Join(ids, ","),
		url.QueryEscape(strings.Join(workItemFieldNames, ",")),
	)

	var batch workItemBatchResponse
	if err := c.get(ctx, batchURL, &batch); err != nil {
		return nil, c.mapWorkItemsError(err, iterationPath)
	}

	items := make([]WorkItem, 0, len(batch.Value))
	for _, raw := range batch.Value {
		items = append(items, toWorkItem(raw))
	}
	return items, nil
}

func (c *Client) mapWorkItemsError(err error, iterationPath string) error {
	var se *statusError
	if errors.As(err, &se) {
		switch se.status {
		case http.StatusNotFound:
			return notFoundError("iteration", iterationPath)
		case http.StatusUnauthorized, http.StatusForbidden:
			return authError(workItemReadScopeHint)
		case http.StatusTooManyRequests:
			return rateLimitedError()
		}
	}
	return unknownError("fetching work items for "+iterationPath, err)
}

// toWorkItem converts a raw batch entry to the public WorkItem shape.
func toWorkItem(raw rawWorkItem) WorkItem {
	wi := WorkItem{
		ID:            raw.ID,
		Title:         raw.Fields.Title,
		Type:          raw.Fields.WorkItemType,
		State:         raw.Fields.State,
		IterationPath: raw.Fields.IterationPath,
		Description:   raw.Fields.Description,
		URL:           raw.URL,
	}
	if raw.Fields.AssignedTo != nil {
		name := raw.Fields.AssignedTo.DisplayName
		wi.AssignedTo = &name
	}
	return wi
}

// statusError is a non-2xx response before per-operation classification.
type statusError struct {
	status int
	method string
	url    string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s %s: %s",
		e.status, e.method, e.url, e.body)
}

// get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, rawURL string, result interface{}) error {
	return c.do(ctx, http.MethodGet, rawURL, nil, result)
}

// post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) post(ctx context.Context, rawURL string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, rawURL, body, result)
}

// do is the core HTTP method: it appends the negotiated api-version,
// sets the auth header, and handles JSON (de)serialization. Non-2xx
// responses surface as *statusError for the caller to classify. There
// are no retries and no pagination beyond a single request.
func (c *Client) do(ctx context.Context, method, rawURL string, body, result interface{}) error {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	rawURL += sep + "api-version=" + c.apiVersion

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, rawURL, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{
			status: resp.StatusCode,
			method: method,
			url:    rawURL,
			body:   strings.TrimSpace(string(respBody)),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, rawURL, err)
	}

	return nil
}
