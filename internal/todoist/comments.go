package todoist

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
)

// CreateCommentArgs carries the fields accepted when creating a comment.
// Exactly one of TaskID and ProjectID must be set.
type CreateCommentArgs struct {
	TaskID    string `json:"task_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Content   string `json:"content"`
}

// GetComments returns comments for a task or a project. Exactly one of
// taskID and projectID must be set.
func (c *Client) GetComments(ctx context.Context, taskID, projectID string) ([]Comment, error) {
	if (taskID == "") == (projectID == "") {
		return nil, errors.New("exactly one of task id and project id must be set")
	}
	query := url.Values{}
	if taskID != "" {
		query.Set("task_id", taskID)
	} else {
		query.Set("project_id", projectID)
	}
	body, err := c.do(ctx, "GET", "/comments", query, nil)
	if err != nil {
		return nil, err
	}
	var comments []Comment
	if err := decodeList(body, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment creates a comment on a task or project and returns it.
func (c *Client) CreateComment(ctx context.Context, args CreateCommentArgs) (*Comment, error) {
	if args.Content == "" {
		return nil, errors.New("comment content must not be empty")
	}
	if (args.TaskID == "") == (args.ProjectID == "") {
		return nil, errors.New("exactly one of task_id and project_id must be set")
	}
	var comment Comment
	if err := c.post(ctx, "/comments", args, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}
