package todoist

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
)

// TaskFilter narrows GetTasks results. Zero-valued fields are omitted.
type TaskFilter struct {
	ProjectID string
	SectionID string
	ParentID  string
	Label     string
	Filter    string
}

// CreateTaskArgs carries the fields accepted when creating a task. Due fields
// are mutually exclusive on the API side; DueString is the most forgiving.
type CreateTaskArgs struct {
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	SectionID   string   `json:"section_id,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	DueDatetime string   `json:"due_datetime,omitempty"`
}

// UpdateTaskArgs carries the fields accepted when updating a task. Nil
// pointers mean "leave unchanged".
type UpdateTaskArgs struct {
	Content     *string   `json:"content,omitempty"`
	Description *string   `json:"description,omitempty"`
	Labels      *[]string `json:"labels,omitempty"`
	Priority    *int      `json:"priority,omitempty"`
	DueString   *string   `json:"due_string,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	DueDatetime *string   `json:"due_datetime,omitempty"`
}

// GetTasks returns active tasks matching the filter.
func (c *Client) GetTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	query := url.Values{}
	if filter.ProjectID != "" {
		query.Set("project_id", filter.ProjectID)
	}
	if filter.SectionID != "" {
		query.Set("section_id", filter.SectionID)
	}
	if filter.ParentID != "" {
		query.Set("parent_id", filter.ParentID)
	}
	if filter.Label != "" {
		query.Set("label", filter.Label)
	}
	if filter.Filter != "" {
		query.Set("filter", filter.Filter)
	}

	body, err := c.do(ctx, "GET", "/tasks", query, nil)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	if err := decodeList(body, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single active task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	if id == "" {
		return nil, errors.New("task id must not be empty")
	}
	var task Task
	if err := c.get(ctx, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a new task and returns it.
func (c *Client) CreateTask(ctx context.Context, args CreateTaskArgs) (*Task, error) {
	if args.Content == "" {
		return nil, errors.New("task content must not be empty")
	}
	var task Task
	if err := c.post(ctx, "/tasks", args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask modifies an existing task and returns the updated version.
func (c *Client) UpdateTask(ctx context.Context, id string, args UpdateTaskArgs) (*Task, error) {
	if id == "" {
		return nil, errors.New("task id must not be empty")
	}
	var task Task
	if err := c.post(ctx, "/tasks/"+url.PathEscape(id), args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CloseTask marks a task complete.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("task id must not be empty")
	}
	return c.post(ctx, "/tasks/"+url.PathEscape(id)+"/close", nil, nil)
}

// ReopenTask restores a completed task to active.
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("task id must not be empty")
	}
	return c.post(ctx, "/tasks/"+url.PathEscape(id)+"/reopen", nil, nil)
}

// DeleteTask permanently removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("task id must not be empty")
	}
	return c.delete(ctx, "/tasks/"+url.PathEscape(id))
}

// GetCompletedTasks returns tasks completed since the given RFC 3339
// timestamp. Todoist serves completed items from the sync API, whose response
// wraps the list in an "items" property; normalization flattens that.
func (c *Client) GetCompletedTasks(ctx context.Context, since string) ([]Task, error) {
	query := url.Values{}
	if since != "" {
		query.Set("since", since)
	}
	body, err := c.do(ctx, "GET", "/tasks/completed", query, nil)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	if err := decodeList(body, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
