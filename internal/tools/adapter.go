// Package tools implements the Todoist tool surface: the registry of tool
// definitions, the handlers behind them, the dry-run adapter, and the daily
// overview aggregator.
package tools

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/logging"
	"github.com/aldante1/mcp-todoist/internal/todoist"
)

// TaskAPI is the operation surface the tool handlers need from the Todoist
// client. *todoist.Client satisfies it; DryRunAdapter wraps it.
type TaskAPI interface {
	GetTasks(ctx context.Context, filter todoist.TaskFilter) ([]todoist.Task, error)
	GetTask(ctx context.Context, id string) (*todoist.Task, error)
	CreateTask(ctx context.Context, args todoist.CreateTaskArgs) (*todoist.Task, error)
	UpdateTask(ctx context.Context, id string, args todoist.UpdateTaskArgs) (*todoist.Task, error)
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error
	GetCompletedTasks(ctx context.Context, since string) ([]todoist.Task, error)

	GetProjects(ctx context.Context) ([]todoist.Project, error)
	GetProject(ctx context.Context, id string) (*todoist.Project, error)
	CreateProject(ctx context.Context, args todoist.CreateProjectArgs) (*todoist.Project, error)

	GetSections(ctx context.Context, projectID string) ([]todoist.Section, error)
	CreateSection(ctx context.Context, args todoist.CreateSectionArgs) (*todoist.Section, error)

	GetLabels(ctx context.Context) ([]todoist.Label, error)
	CreateLabel(ctx context.Context, args todoist.CreateLabelArgs) (*todoist.Label, error)
	UpdateLabel(ctx context.Context, id string, args todoist.UpdateLabelArgs) (*todoist.Label, error)
	DeleteLabel(ctx context.Context, id string) error

	GetComments(ctx context.Context, taskID, projectID string) ([]todoist.Comment, error)
	CreateComment(ctx context.Context, args todoist.CreateCommentArgs) (*todoist.Comment, error)
}

var _ TaskAPI = (*todoist.Client)(nil)

// DryRunAdapter wraps a TaskAPI so mutating operations synthesize plausible
// results instead of calling the remote service. Read-only operations always
// pass through, and their errors propagate unmodified. This is the seam demo
// and test flows use to avoid mutating a real account.
type DryRunAdapter struct {
	real    TaskAPI
	logger  logging.Logger
	counter atomic.Int64
}

var _ TaskAPI = (*DryRunAdapter)(nil)

// NewDryRunAdapter creates an adapter over the real client.
func NewDryRunAdapter(real TaskAPI, logger logging.Logger) *DryRunAdapter {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &DryRunAdapter{
		real:   real,
		logger: logger.WithField("component", "dry_run_adapter"),
	}
}

// nextID returns a synthesized identifier unique within the process.
func (a *DryRunAdapter) nextID() string {
	return fmt.Sprintf("dryrun-%d", a.counter.Add(1))
}

// GetTasks passes through to the real client.
func (a *DryRunAdapter) GetTasks(ctx context.Context, filter todoist.TaskFilter) ([]todoist.Task, error) {
	return a.real.GetTasks(ctx, filter)
}

// GetTask passes through to the real client.
func (a *DryRunAdapter) GetTask(ctx context.Context, id string) (*todoist.Task, error) {
	return a.real.GetTask(ctx, id)
}

// CreateTask echoes the input with a synthesized identifier.
func (a *DryRunAdapter) CreateTask(_ context.Context, args todoist.CreateTaskArgs) (*todoist.Task, error) {
	if args.Content == "" {
		return nil, errors.New("task content must not be empty")
	}
	a.logger.Info("Dry run: simulating task creation.", "content", args.Content)
	task := &todoist.Task{
		ID:          a.nextID(),
		Content:     args.Content,
		Description: args.Description,
		ProjectID:   args.ProjectID,
		SectionID:   args.SectionID,
		ParentID:    args.ParentID,
		Labels:      args.Labels,
		Priority:    args.Priority,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if args.DueDate != "" {
		task.Due = &todoist.Due{Date: args.DueDate}
	} else if args.DueDatetime != "" {
		task.Due = &todoist.Due{Datetime: args.DueDatetime}
	} else if args.DueString != "" {
		task.Due = &todoist.Due{String: args.DueString}
	}
	return task, nil
}

// UpdateTask echoes the requested changes on a synthesized task.
func (a *DryRunAdapter) UpdateTask(_ context.Context, id string, args todoist.UpdateTaskArgs) (*todoist.Task, error) {
	if id == "" {
		return nil, errors.New("task id must not be empty")
	}
	a.logger.Info("Dry run: simulating task update.", "taskId", id)
	task := &todoist.Task{ID: id}
	if args.Content != nil {
		task.Content = *args.Content
	}
	if args.Description != nil {
		task.Description = *args.Description
	}
	if args.Labels != nil {
		task.Labels = *args.Labels
	}
	if args.Priority != nil {
		task.Priority = *args.Priority
	}
	if args.DueDate != nil {
		task.Due = &todoist.Due{Date: *args.DueDate}
	} else if args.DueDatetime != nil {
		task.Due = &todoist.Due{Datetime: *args.DueDatetime}
	} else if args.DueString != nil {
		task.Due = &todoist.Due{String: *args.DueString}
	}
	return task, nil
}

// CloseTask is simulated.
func (a *DryRunAdapter) CloseTask(_ context.Context, id string) error {
	if id == "" {
		return errors.New("task id must not be empty")
	}
	a.logger.Info("Dry run: simulating task completion.", "taskId", id)
	return nil
}

// ReopenTask is simulated.
func (a *DryRunAdapter) ReopenTask(_ context.Context, id string) error {
	if id == "" {
		return errors.New("task id must not be empty")
	}
	a.logger.Info("Dry run: simulating task reopen.", "taskId", id)
	return nil
}

// DeleteTask is simulated.
func (a *DryRunAdapter) DeleteTask(_ context.Context, id string) error {
	if id == "" {
		return errors.New("task id must not be empty")
	}
	a.logger.Info("Dry run: simulating task deletion.", "taskId", id)
	return nil
}

// GetCompletedTasks passes through to the real client.
func (a *DryRunAdapter) GetCompletedTasks(ctx context.Context, since string) ([]todoist.Task, error) {
	return a.real.GetCompletedTasks(ctx, since)
}

// GetProject passes through to the real client.
func (a *DryRunAdapter) GetProject(ctx context.Context, id string) (*todoist.Project, error) {
	return a.real.GetProject(ctx, id)
}

// GetProjects passes through to the real client.
func (a *DryRunAdapter) GetProjects(ctx context.Context) ([]todoist.Project, error) {
	return a.real.GetProjects(ctx)
}

// CreateProject echoes the input with a synthesized identifier.
func (a *DryRunAdapter) CreateProject(_ context.Context, args todoist.CreateProjectArgs) (*todoist.Project, error) {
	if args.Name == "" {
		return nil, errors.New("project name must not be empty")
	}
	a.logger.Info("Dry run: simulating project creation.", "name", args.Name)
	return &todoist.Project{
		ID:         a.nextID(),
		Name:       args.Name,
		Color:      args.Color,
		ParentID:   args.ParentID,
		IsFavorite: args.IsFavorite,
		ViewStyle:  args.ViewStyle,
	}, nil
}

// GetSections passes through to the real client.
func (a *DryRunAdapter) GetSections(ctx context.Context, projectID string) ([]todoist.Section, error) {
	return a.real.GetSections(ctx, projectID)
}

// CreateSection echoes the input with a synthesized identifier.
func (a *DryRunAdapter) CreateSection(_ context.Context, args todoist.CreateSectionArgs) (*todoist.Section, error) {
	if args.Name == "" || args.ProjectID == "" {
		return nil, errors.New("section name and project_id must not be empty")
	}
	a.logger.Info("Dry run: simulating section creation.", "name", args.Name)
	return &todoist.Section{
		ID:        a.nextID(),
		ProjectID: args.ProjectID,
		Name:      args.Name,
		Order:     args.Order,
	}, nil
}

// GetLabels passes through to the real client.
func (a *DryRunAdapter) GetLabels(ctx context.Context) ([]todoist.Label, error) {
	return a.real.GetLabels(ctx)
}

// CreateLabel echoes the input with a synthesized identifier.
func (a *DryRunAdapter) CreateLabel(_ context.Context, args todoist.CreateLabelArgs) (*todoist.Label, error) {
	if args.Name == "" {
		return nil, errors.New("label name must not be empty")
	}
	a.logger.Info("Dry run: simulating label creation.", "name", args.Name)
	return &todoist.Label{
		ID:         a.nextID(),
		Name:       args.Name,
		Color:      args.Color,
		Order:      args.Order,
		IsFavorite: args.IsFavorite,
	}, nil
}

// UpdateLabel echoes the requested changes on a synthesized label.
func (a *DryRunAdapter) UpdateLabel(_ context.Context, id string, args todoist.UpdateLabelArgs) (*todoist.Label, error) {
	if id == "" {
		return nil, errors.New("label id must not be empty")
	}
	a.logger.Info("Dry run: simulating label update.", "labelId", id)
	label := &todoist.Label{ID: id}
	if args.Name != nil {
		label.Name = *args.Name
	}
	if args.Color != nil {
		label.Color = *args.Color
	}
	if args.Order != nil {
		label.Order = *args.Order
	}
	if args.IsFavorite != nil {
		label.IsFavorite = *args.IsFavorite
	}
	return label, nil
}

// DeleteLabel is simulated.
func (a *DryRunAdapter) DeleteLabel(_ context.Context, id string) error {
	if id == "" {
		return errors.New("label id must not be empty")
	}
	a.logger.Info("Dry run: simulating label deletion.", "labelId", id)
	return nil
}

// GetComments passes through to the real client.
func (a *DryRunAdapter) GetComments(ctx context.Context, taskID, projectID string) ([]todoist.Comment, error) {
	return a.real.GetComments(ctx, taskID, projectID)
}

// CreateComment echoes the input with a synthesized identifier.
func (a *DryRunAdapter) CreateComment(_ context.Context, args todoist.CreateCommentArgs) (*todoist.Comment, error) {
	if args.Content == "" {
		return nil, errors.New("comment content must not be empty")
	}
	a.logger.Info("Dry run: simulating comment creation.")
	return &todoist.Comment{
		ID:        a.nextID(),
		TaskID:    args.TaskID,
		ProjectID: args.ProjectID,
		Content:   args.Content,
		PostedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}
