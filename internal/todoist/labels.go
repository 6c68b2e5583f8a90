package todoist

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"
)

// CreateLabelArgs carries the fields accepted when creating a label.
type CreateLabelArgs struct {
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Order      int    `json:"order,omitempty"`
	IsFavorite bool   `json:"is_favorite,omitempty"`
}

// UpdateLabelArgs carries the fields accepted when updating a label. Nil
// pointers mean "leave unchanged".
type UpdateLabelArgs struct {
	Name       *string `json:"name,omitempty"`
	Color      *string `json:"color,omitempty"`
	Order      *int    `json:"order,omitempty"`
	IsFavorite *bool   `json:"is_favorite,omitempty"`
}

// GetLabels returns all personal labels.
func (c *Client) GetLabels(ctx context.Context) ([]Label, error) {
	body, err := c.do(ctx, "GET", "/labels", nil, nil)
	if err != nil {
		return nil, err
	}
	var labels []Label
	if err := decodeList(body, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// CreateLabel creates a new personal label and returns it.
func (c *Client) CreateLabel(ctx context.Context, args CreateLabelArgs) (*Label, error) {
	if args.Name == "" {
		return nil, errors.New("label name must not be empty")
	}
	var label Label
	if err := c.post(ctx, "/labels", args, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// UpdateLabel modifies an existing label and returns the updated version.
func (c *Client) UpdateLabel(ctx context.Context, id string, args UpdateLabelArgs) (*Label, error) {
	if id == "" {
		return nil, errors.New("label id must not be empty")
	}
	var label Label
	if err := c.post(ctx, "/labels/"+url.PathEscape(id), args, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// DeleteLabel permanently removes a personal label.
func (c *Client) DeleteLabel(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("label id must not be empty")
	}
	return c.delete(ctx, "/labels/"+url.PathEscape(id))
}
