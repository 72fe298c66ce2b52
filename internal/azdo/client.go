// Package azdo talks to the Azure DevOps REST surface the pipeline publishes
// to: pull-request comment threads, the PR description, and labels. The
// client consumes the API; it owns none of the entities behind it.
package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const apiVersion = "7.0"

// Client provides access to the Azure DevOps git REST API for one repository.
type Client struct {
	orgURL  string
	project string
	repo    string
	token   string
	httpCli *http.Client
}

// NewClient creates a client for the given organization/project/repository.
// The token comes from AZDO_TOKEN or, inside a pipeline, SYSTEM_ACCESSTOKEN.
func NewClient(orgURL, project, repo string) (*Client, error) {
	token := os.Getenv("AZDO_TOKEN")
	if token == "" {
		token = os.Getenv("SYSTEM_ACCESSTOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("AZDO_TOKEN (or SYSTEM_ACCESSTOKEN) environment variable is not set")
	}
	if orgURL == "" || project == "" || repo == "" {
		return nil, fmt.Errorf("organization URL, project and repository are all required")
	}
	return &Client{
		orgURL:  strings.TrimRight(orgURL, "/"),
		project: project,
		repo:    repo,
		token:   token,
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *Client) prURL(prNumber int, suffix string) string {
	u := fmt.Sprintf("%s/%s/_apis/git/repositories/%s/pullRequests/%d%s",
		c.orgURL, url.PathEscape(c.project), url.PathEscape(c.repo), prNumber, suffix)
	sep := "?"
	if strings.Contains(suffix, "?") {
		sep = "&"
	}
	return u + sep + "api-version=" + apiVersion
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(":" + c.token))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return fmt.Errorf("authentication failed (status %d): %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Azure DevOps API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

// Comment is one comment in a PR thread.
type Comment struct {
	ID              int    `json:"id,omitempty"`
	ParentCommentID int    `json:"parentCommentId,omitempty"`
	Content         string `json:"content"`
	CommentType     string `json:"commentType,omitempty"`
}

// ThreadContext anchors a thread to a file position on the post-change side.
type ThreadContext struct {
	FilePath       string    `json:"filePath"`
	RightFileStart *Position `json:"rightFileStart,omitempty"`
	RightFileEnd   *Position `json:"rightFileEnd,omitempty"`
}

// Position is a 1-based line/offset pair.
type Position struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// Thread is one PR comment thread.
type Thread struct {
	ID            int            `json:"id,omitempty"`
	Comments      []Comment      `json:"comments"`
	Status        string         `json:"status,omitempty"`
	IsDeleted     bool           `json:"isDeleted,omitempty"`
	ThreadContext *ThreadContext `json:"threadContext,omitempty"`
}

type threadList struct {
	Value []Thread `json:"value"`
}

// ListThreads fetches all comment threads on a pull request.
func (c *Client) ListThreads(ctx context.Context, prNumber int) ([]Thread, error) {
	var list threadList
	if err := c.do(ctx, "GET", c.prURL(prNumber, "/threads"), nil, &list); err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	return list.Value, nil
}

// CreateThread creates a new comment thread. tc may be nil for a non-inline
// thread.
func (c *Client) CreateThread(ctx context.Context, prNumber int, content string, tc *ThreadContext) error {
	thread := Thread{
		Comments:      []Comment{{ParentCommentID: 0, Content: content, CommentType: "text"}},
		Status:        "active",
		ThreadContext: tc,
	}
	if err := c.do(ctx, "POST", c.prURL(prNumber, "/threads"), thread, nil); err != nil {
		return fmt.Errorf("creating thread: %w", err)
	}
	return nil
}

// UpdateComment replaces the content of one comment in a thread.
func (c *Client) UpdateComment(ctx context.Context, prNumber, threadID, commentID int, content string) error {
	suffix := fmt.Sprintf("/threads/%d/comments/%d", threadID, commentID)
	payload := Comment{Content: content}
	if err := c.do(ctx, "PATCH", c.prURL(prNumber, suffix), payload, nil); err != nil {
		return fmt.Errorf("updating comment: %w", err)
	}
	return nil
}

// UpdateDescription replaces the pull request description.
func (c *Client) UpdateDescription(ctx context.Context, prNumber int, description string) error {
	payload := map[string]string{"description": description}
	if err := c.do(ctx, "PATCH", c.prURL(prNumber, ""), payload, nil); err != nil {
		return fmt.Errorf("updating description: %w", err)
	}
	return nil
}

// AddLabels attaches labels to the pull request, one POST per label.
// Individual failures are returned joined so one bad label does not hide the
// rest.
func (c *Client) AddLabels(ctx context.Context, prNumber int, labels []string) error {
	var failed []string
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		payload := map[string]string{"name": label}
		if err := c.do(ctx, "POST", c.prURL(prNumber, "/labels"), payload, nil); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", label, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("adding labels: %s", strings.Join(failed, "; "))
	}
	return nil
}

// ChangedFile is one entry from the PR's latest iteration changes.
type ChangedFile struct {
	Path       string `json:"path"`
	ChangeType string `json:"changeType"`
}

type iterationList struct {
	Value []struct {
		ID int `json:"id"`
	} `json:"value"`
}

type changeList struct {
	ChangeEntries []struct {
		ChangeType string `json:"changeType"`
		Item       struct {
			Path string `json:"path"`
		} `json:"item"`
	} `json:"changeEntries"`
}

// ChangedFiles lists the files changed in the PR's most recent iteration.
func (c *Client) ChangedFiles(ctx context.Context, prNumber int) ([]ChangedFile, error) {
	var iterations iterationList
	if err := c.do(ctx, "GET", c.prURL(prNumber, "/iterations"), nil, &iterations); err != nil {
		return nil, fmt.Errorf("listing iterations: %w", err)
	}
	if len(iterations.Value) == 0 {
		return nil, nil
	}
	latest := iterations.Value[len(iterations.Value)-1].ID

	var changes changeList
	suffix := fmt.Sprintf("/iterations/%d/changes", latest)
	if err := c.do(ctx, "GET", c.prURL(prNumber, suffix), nil, &changes); err != nil {
		return nil, fmt.Errorf("listing changes: %w", err)
	}

	files := make([]ChangedFile, 0, len(changes.ChangeEntries))
	for _, entry := range changes.ChangeEntries {
		files = append(files, ChangedFile{
			Path:       strings.TrimPrefix(entry.Item.Path, "/"),
			ChangeType: entry.ChangeType,
		})
	}
	return files, nil
}

type workItemRefList struct {
	Value []struct {
		ID string `json:"id"`
	} `json:"value"`
}

// WorkItemIDs lists the work items linked to a pull request.
func (c *Client) WorkItemIDs(ctx context.Context, prNumber int) ([]string, error) {
	var refs workItemRefList
	if err := c.do(ctx, "GET", c.prURL(prNumber, "/workitems"), nil, &refs); err != nil {
		return nil, fmt.Errorf("listing work items: %w", err)
	}
	ids := make([]string, 0, len(refs.Value))
	for _, ref := range refs.Value {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids, nil
}

// CommentOnWorkItem adds a discussion comment to one work item. The comments
// API is still in preview, hence the distinct version tag.
func (c *Client) CommentOnWorkItem(ctx context.Context, workItemID, text string) error {
	u := fmt.Sprintf("%s/%s/_apis/wit/workItems/%s/comments?api-version=7.0-preview.3",
		c.orgURL, url.PathEscape(c.project), workItemID)
	payload := map[string]string{"text": text}
	if err := c.do(ctx, "POST", u, payload, nil); err != nil {
		return fmt.Errorf("commenting on work item %s: %w", workItemID, err)
	}
	return nil
}
