package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/logging"
	"github.com/aldante1/mcp-todoist/internal/mcp"
	"github.com/aldante1/mcp-todoist/internal/mcp/mcperrors"
	"github.com/aldante1/mcp-todoist/internal/todoist"
)

// Service implements the tool surface over a TaskAPI. It satisfies
// mcp.ToolService.
type Service struct {
	api           TaskAPI
	logger        logging.Logger
	overviewLimit int
	nowFn         func() time.Time

	defs     []toolDefinition
	handlers map[string]toolHandler
}

var _ mcp.ToolService = (*Service)(nil)

// NewService creates the tool service. overviewLimit <= 0 falls back to the
// default per-bucket limit.
func NewService(api TaskAPI, overviewLimit int, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	if overviewLimit <= 0 {
		overviewLimit = DefaultOverviewLimit
	}
	s := &Service{
		api:           api,
		logger:        logger.WithField("component", "tool_service"),
		overviewLimit: overviewLimit,
		nowFn:         time.Now,
	}
	s.defs = s.definitions()
	s.handlers = make(map[string]toolHandler, len(s.defs))
	for _, def := range s.defs {
		s.handlers[def.tool.Name] = def.handler
	}
	return s
}

// ListTools returns every tool definition in stable registration order.
func (s *Service) ListTools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(s.defs))
	for _, def := range s.defs {
		tools = append(tools, def.tool)
	}
	return tools
}

// CallTool runs the named tool. Remote-API failures are wrapped so the
// dispatcher surfaces them as internal errors carrying the original message.
func (s *Service) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, mcperrors.NewMethodNotFoundError(name)
	}

	s.logger.Debug("Executing tool.", "toolName", name)
	result, err := handler(ctx, args)
	if err != nil {
		var base *mcperrors.BaseError
		if errors.As(err, &base) {
			return nil, err
		}
		return nil, mcperrors.NewTodoistError(err.Error(), err)
	}
	return result, nil
}

// decodeArgs unmarshals validated arguments into a handler's typed struct.
// The schema ran first, so a failure here is a programming error.
func decodeArgs(args json.RawMessage, out interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(args, out), "failed to decode tool arguments")
}

type taskFilterArgs struct {
	ProjectID string `json:"project_id"`
	SectionID string `json:"section_id"`
	Label     string `json:"label"`
	Filter    string `json:"filter"`
}

func (s *Service) handleGetTasks(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params taskFilterArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	tasks, err := s.api.GetTasks(ctx, todoist.TaskFilter{
		ProjectID: params.ProjectID,
		SectionID: params.SectionID,
		Label:     params.Label,
		Filter:    params.Filter,
	})
	if err != nil {
		return nil, err
	}
	heading := fmt.Sprintf("Found %d tasks:", len(tasks))
	return mcp.NewTextResult(formatTaskList(heading, tasks)), nil
}

type idArgs struct {
	ID string `json:"id"`
}

func (s *Service) handleGetTask(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params idArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	task, err := s.api.GetTask(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(formatTaskDetail(task)), nil
}

type createTaskArgs struct {
	Content     string   `json:"content"`
	Description string   `json:"description"`
	ProjectID   string   `json:"project_id"`
	SectionID   string   `json:"section_id"`
	ParentID    string   `json:"parent_id"`
	Labels      []string `json:"labels"`
	Priority    int      `json:"priority"`
	DueString   string   `json:"due_string"`
	DueDate     string   `json:"due_date"`
	DueDatetime string   `json:"due_datetime"`
}

func (a createTaskArgs) toClientArgs() todoist.CreateTaskArgs {
	return todoist.CreateTaskArgs{
		Content:     a.Content,
		Description: a.Description,
		ProjectID:   a.ProjectID,
		SectionID:   a.SectionID,
		ParentID:    a.ParentID,
		Labels:      a.Labels,
		Priority:    a.Priority,
		DueString:   a.DueString,
		DueDate:     a.DueDate,
		DueDatetime: a.DueDatetime,
	}
}

func (s *Service) handleCreateTask(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params createTaskArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	task, err := s.api.CreateTask(ctx, params.toClientArgs())
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Created task:\n%s", formatTaskLine(*task))), nil
}

type updateTaskArgs struct {
	ID          string    `json:"id"`
	Content     *string   `json:"content"`
	Description *string   `json:"description"`
	Labels      *[]string `json:"labels"`
	Priority    *int      `json:"priority"`
	DueString   *string   `json:"due_string"`
	DueDate     *string   `json:"due_date"`
	DueDatetime *string   `json:"due_datetime"`
}

func (s *Service) handleUpdateTask(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params updateTaskArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	task, err := s.api.UpdateTask(ctx, params.ID, todoist.UpdateTaskArgs{
		Content:     params.Content,
		Description: params.Description,
		Labels:      params.Labels,
		Priority:    params.Priority,
		DueString:   params.DueString,
		DueDate:     params.DueDate,
		DueDatetime: params.DueDatetime,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Updated task:\n%s", formatTaskLine(*task))), nil
}

func (s *Service) handleCompleteTask(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params idArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if err := s.api.CloseTask(ctx, params.ID); err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Completed task %s.", params.ID)), nil
}

func (s *Service) handleReopenTask(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params idArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if err := s.api.ReopenTask(ctx, params.ID); err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Reopened task %s.", params.ID)), nil
}

func (s *Service) handleDeleteTask(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params idArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if err := s.api.DeleteTask(ctx, params.ID); err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Deleted task %s.", params.ID)), nil
}

type completedTasksArgs struct {
	Since string `json:"since"`
}

func (s *Service) handleGetCompletedTasks(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params completedTasksArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	tasks, err := s.api.GetCompletedTasks(ctx, params.Since)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return mcp.NewTextResult("No completed tasks found."), nil
	}
	return mcp.NewTextResult(formatTaskList("", tasks)), nil
}

type bulkCreateTasksArgs struct {
	Tasks []createTaskArgs `json:"tasks"`
}

func (s *Service) handleBulkCreateTasks(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params bulkCreateTasksArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	// Strictly sequential: a failure stops the loop and earlier creations
	// remain applied. The first error surfaces with progress context.
	created := make([]todoist.Task, 0, len(params.Tasks))
	for i, item := range params.Tasks {
		task, err := s.api.CreateTask(ctx, item.toClientArgs())
		if err != nil {
			return nil, errors.Wrapf(err, "bulk create failed at item %d of %d (%d already created)",
				i+1, len(params.Tasks), len(created))
		}
		created = append(created, *task)
	}
	heading := fmt.Sprintf("Created %d tasks:", len(created))
	return mcp.NewTextResult(formatTaskList(heading, created)), nil
}

type createSubtaskArgs struct {
	ParentID    string   `json:"parent_id"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Priority    int      `json:"priority"`
	DueString   string   `json:"due_string"`
	DueDate     string   `json:"due_date"`
}

func (s *Service) handleCreateSubtask(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params createSubtaskArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	task, err := s.api.CreateTask(ctx, todoist.CreateTaskArgs{
		Content:     params.Content,
		Description: params.Description,
		ParentID:    params.ParentID,
		Labels:      params.Labels,
		Priority:    params.Priority,
		DueString:   params.DueString,
		DueDate:     params.DueDate,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Created subtask under %s:\n%s", params.ParentID, formatTaskLine(*task))), nil
}

type bulkCreateSubtasksArgs struct {
	ParentID string `json:"parent_id"`
	Tasks    []struct {
		Content   string `json:"content"`
		Priority  int    `json:"priority"`
		DueString string `json:"due_string"`
		DueDate   string `json:"due_date"`
	} `json:"tasks"`
}

func (s *Service) handleBulkCreateSubtasks(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params bulkCreateSubtasksArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	created := make([]todoist.Task, 0, len(params.Tasks))
	for i, item := range params.Tasks {
		task, err := s.api.CreateTask(ctx, todoist.CreateTaskArgs{
			Content:   item.Content,
			ParentID:  params.ParentID,
			Priority:  item.Priority,
			DueString: item.DueString,
			DueDate:   item.DueDate,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "bulk subtask create failed at item %d of %d (%d already created)",
				i+1, len(params.Tasks), len(created))
		}
		created = append(created, *task)
	}
	heading := fmt.Sprintf("Created %d subtasks under %s:", len(created), params.ParentID)
	return mcp.NewTextResult(formatTaskList(heading, created)), nil
}

type parentIDArgs struct {
	ParentID string `json:"parent_id"`
}

func (s *Service) handleGetSubtasks(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params parentIDArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	tasks, err := s.api.GetTasks(ctx, todoist.TaskFilter{ParentID: params.ParentID})
	if err != nil {
		return nil, err
	}
	heading := fmt.Sprintf("Found %d subtasks of %s:", len(tasks), params.ParentID)
	return mcp.NewTextResult(formatTaskList(heading, tasks)), nil
}

func (s *Service) handleConvertToSubtask(_ context.Context, _ json.RawMessage) (*mcp.CallToolResult, error) {
	return nil, mcperrors.NewUnsupportedOperationError(
		"converting an existing task to a subtask is not supported: the Todoist REST API cannot change a task's parent. Create a new subtask with create_subtask and delete the original instead.")
}

func (s *Service) handlePromoteSubtask(_ context.Context, _ json.RawMessage) (*mcp.CallToolResult, error) {
	return nil, mcperrors.NewUnsupportedOperationError(
		"promoting a subtask to a top-level task is not supported: the Todoist REST API cannot change a task's parent. Create a new top-level task with create_task and delete the subtask instead.")
}

func (s *Service) handleGetProjects(ctx context.Context, _ json.RawMessage) (*mcp.CallToolResult, error) {
	projects, err := s.api.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(formatProjectList(projects)), nil
}

func (s *Service) handleGetProject(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params idArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	project, err := s.api.GetProject(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(formatProjectDetail(project)), nil
}

type createProjectArgs struct {
	Name       string `json:"name"`
	ParentID   string `json:"parent_id"`
	Color      string `json:"color"`
	IsFavorite bool   `json:"is_favorite"`
	ViewStyle  string `json:"view_style"`
}

func (s *Service) handleCreateProject(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params createProjectArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	project, err := s.api.CreateProject(ctx, todoist.CreateProjectArgs{
		Name:       params.Name,
		ParentID:   params.ParentID,
		Color:      params.Color,
		IsFavorite: params.IsFavorite,
		ViewStyle:  params.ViewStyle,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Created project %q (id: %s).", project.Name, project.ID)), nil
}

type projectIDArgs struct {
	ProjectID string `json:"project_id"`
}

func (s *Service) handleGetSections(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params projectIDArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	sections, err := s.api.GetSections(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(formatSectionList(sections)), nil
}

type createSectionArgs struct {
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	Order     int    `json:"order"`
}

func (s *Service) handleCreateSection(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params createSectionArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	section, err := s.api.CreateSection(ctx, todoist.CreateSectionArgs{
		Name:      params.Name,
		ProjectID: params.ProjectID,
		Order:     params.Order,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Created section %q (id: %s) in project %s.", section.Name, section.ID, section.ProjectID)), nil
}

func (s *Service) handleGetLabels(ctx context.Context, _ json.RawMessage) (*mcp.CallToolResult, error) {
	labels, err := s.api.GetLabels(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(formatLabelList(labels)), nil
}

type createLabelArgs struct {
	Name       string `json:"name"`
	Color      string `json:"color"`
	Order      int    `json:"order"`
	IsFavorite bool   `json:"is_favorite"`
}

func (s *Service) handleCreateLabel(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params createLabelArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	label, err := s.api.CreateLabel(ctx, todoist.CreateLabelArgs{
		Name:       params.Name,
		Color:      params.Color,
		Order:      params.Order,
		IsFavorite: params.IsFavorite,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Created label %q (id: %s).", label.Name, label.ID)), nil
}

// findLabelByName resolves a label's identifier from its name, the natural
// key the label tools address labels by.
func (s *Service) findLabelByName(ctx context.Context, name string) (*todoist.Label, error) {
	labels, err := s.api.GetLabels(ctx)
	if err != nil {
		return nil, err
	}
	for i := range labels {
		if strings.EqualFold(labels[i].Name, name) {
			return &labels[i], nil
		}
	}
	return nil, mcperrors.NewInvalidParamsError(fmt.Sprintf("no label named %q exists", name), "name", nil)
}

type updateLabelArgs struct {
	Name       string  `json:"name"`
	NewName    *string `json:"new_name"`
	Color      *string `json:"color"`
	Order      *int    `json:"order"`
	IsFavorite *bool   `json:"is_favorite"`
}

func (s *Service) handleUpdateLabel(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params updateLabelArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	existing, err := s.findLabelByName(ctx, params.Name)
	if err != nil {
		return nil, err
	}
	label, err := s.api.UpdateLabel(ctx, existing.ID, todoist.UpdateLabelArgs{
		Name:       params.NewName,
		Color:      params.Color,
		Order:      params.Order,
		IsFavorite: params.IsFavorite,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Updated label %q (id: %s).", label.Name, label.ID)), nil
}

type labelNameArgs struct {
	Name string `json:"name"`
}

func (s *Service) handleDeleteLabel(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params labelNameArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	existing, err := s.findLabelByName(ctx, params.Name)
	if err != nil {
		return nil, err
	}
	if err := s.api.DeleteLabel(ctx, existing.ID); err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Deleted label %q.", params.Name)), nil
}

type commentFilterArgs struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
}

func (s *Service) handleGetComments(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params commentFilterArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if (params.TaskID == "") == (params.ProjectID == "") {
		return nil, mcperrors.NewInvalidParamsError("provide exactly one of task_id and project_id", "task_id", nil)
	}
	comments, err := s.api.GetComments(ctx, params.TaskID, params.ProjectID)
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(formatCommentList(comments)), nil
}

type createCommentArgs struct {
	Content   string `json:"content"`
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
}

func (s *Service) handleCreateComment(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params createCommentArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if (params.TaskID == "") == (params.ProjectID == "") {
		return nil, mcperrors.NewInvalidParamsError("provide exactly one of task_id and project_id", "task_id", nil)
	}
	comment, err := s.api.CreateComment(ctx, todoist.CreateCommentArgs{
		Content:   params.Content,
		TaskID:    params.TaskID,
		ProjectID: params.ProjectID,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("Added comment (id: %s).", comment.ID)), nil
}

type overviewArgs struct {
	Date  string `json:"date"`
	Limit int    `json:"limit"`
}

func (s *Service) handleDailyOverview(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var params overviewArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = s.overviewLimit
	}
	asOf := s.nowFn()
	if params.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", params.Date, asOf.Location())
		if err != nil {
			return nil, mcperrors.NewInvalidParamsError("date must be an ISO day (YYYY-MM-DD)", "date", err)
		}
		asOf = day
	}
	// One fetch; classification happens locally since the API offers no
	// server-side date bucketing.
	tasks, err := s.api.GetTasks(ctx, todoist.TaskFilter{})
	if err != nil {
		return nil, err
	}
	overview := BuildOverview(tasks, asOf, limit)
	return mcp.NewTextResult(overview.Render()), nil
}
