package todoist

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
)

// CreateSectionArgs carries the fields accepted when creating a section.
type CreateSectionArgs struct {
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	Order     int    `json:"order,omitempty"`
}

// GetSections returns sections, optionally restricted to one project.
func (c *Client) GetSections(ctx context.Context, projectID string) ([]Section, error) {
	query := url.Values{}
	if projectID != "" {
		query.Set("project_id", projectID)
	}
	body, err := c.do(ctx, "GET", "/sections", query, nil)
	if err != nil {
		return nil, err
	}
	var sections []Section
	if err := decodeList(body, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// CreateSection creates a new section within a project and returns it.
func (c *Client) CreateSection(ctx context.Context, args CreateSectionArgs) (*Section, error) {
	if args.Name == "" {
		return nil, errors.New("section name must not be empty")
	}
	if args.ProjectID == "" {
		return nil, errors.New("section project_id must not be empty")
	}
	var section Section
	if err := c.post(ctx, "/sections", args, &section); err != nil {
		return nil, err
	}
	return &section, nil
}
