package todoist

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
)

// CreateProjectArgs carries the fields accepted when creating a project.
type CreateProjectArgs struct {
	Name       string `json:"name"`
	ParentID   string `json:"parent_id,omitempty"`
	Color      string `json:"color,omitempty"`
	IsFavorite bool   `json:"is_favorite,omitempty"`
	ViewStyle  string `json:"view_style,omitempty"`
}

// GetProjects returns all projects.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	body, err := c.do(ctx, "GET", "/projects", nil, nil)
	if err != nil {
		return nil, err
	}
	var projects []Project
	if err := decodeList(body, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project by ID.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	if id == "" {
		return nil, errors.New("project id must not be empty")
	}
	var project Project
	if err := c.get(ctx, "/projects/"+url.PathEscape(id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a new project and returns it.
func (c *Client) CreateProject(ctx context.Context, args CreateProjectArgs) (*Project, error) {
	if args.Name == "" {
		return nil, errors.New("project name must not be empty")
	}
	var project Project
	if err := c.post(ctx, "/projects", args, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
