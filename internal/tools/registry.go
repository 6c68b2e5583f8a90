package tools

import (
	"context"
	"encoding/json"

	"github.com/aldante1/mcp-todoist/internal/mcp"
)

// toolHandler executes one tool invocation with already-validated arguments.
type toolHandler func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error)

// toolDefinition pairs a tool's public definition with its handler.
type toolDefinition struct {
	tool    mcp.Tool
	handler toolHandler
}

// Bulk operation bounds, enforced by the parameter schemas before dispatch.
const (
	maxBulkTasks    = 50
	maxBulkSubtasks = 20
)

// definitions returns every tool in its stable listing order. This slice is
// the single source of truth for both tools/list and argument validation.
func (s *Service) definitions() []toolDefinition {
	return []toolDefinition{
		{
			tool: mcp.Tool{
				Name:        "get_tasks",
				Description: "List active tasks, optionally filtered by project, section, label, or a Todoist filter query.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"project_id": {"type": "string", "description": "Only tasks in this project."},
						"section_id": {"type": "string", "description": "Only tasks in this section."},
						"label":      {"type": "string", "description": "Only tasks carrying this label."},
						"filter":     {"type": "string", "description": "Todoist filter query, e.g. \"today | overdue\"."}
					}
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "List tasks", ReadOnlyHint: true},
			},
			handler: s.handleGetTasks,
		},
		{
			tool: mcp.Tool{
				Name:        "get_task",
				Description: "Fetch a single task by its identifier.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id": {"type": "string", "minLength": 1, "description": "Task identifier."}
					},
					"required": ["id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Get task", ReadOnlyHint: true},
			},
			handler: s.handleGetTask,
		},
		{
			tool: mcp.Tool{
				Name:        "create_task",
				Description: "Create a new task. Priority runs 1 (highest) to 4 (lowest). Use due_string for natural-language dates like \"tomorrow at 9am\".",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"content":      {"type": "string", "minLength": 1, "description": "Task text."},
						"description":  {"type": "string", "description": "Longer free-form description."},
						"project_id":   {"type": "string", "description": "Project to create the task in. Defaults to the inbox."},
						"section_id":   {"type": "string", "description": "Section within the project."},
						"parent_id":    {"type": "string", "description": "Parent task; makes this a subtask."},
						"labels":       {"type": "array", "items": {"type": "string"}, "description": "Label names to attach."},
						"priority":     {"type": "integer", "minimum": 1, "maximum": 4, "description": "1 is highest priority, 4 is lowest."},
						"due_string":   {"type": "string", "description": "Natural-language due date."},
						"due_date":     {"type": "string", "description": "Due date in YYYY-MM-DD format."},
						"due_datetime": {"type": "string", "description": "Due timestamp in RFC 3339 format."}
					},
					"required": ["content"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Create task"},
			},
			handler: s.handleCreateTask,
		},
		{
			tool: mcp.Tool{
				Name:        "update_task",
				Description: "Update fields of an existing task. Omitted fields are left unchanged.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id":           {"type": "string", "minLength": 1, "description": "Task identifier."},
						"content":      {"type": "string", "minLength": 1},
						"description":  {"type": "string"},
						"labels":       {"type": "array", "items": {"type": "string"}},
						"priority":     {"type": "integer", "minimum": 1, "maximum": 4},
						"due_string":   {"type": "string"},
						"due_date":     {"type": "string"},
						"due_datetime": {"type": "string"}
					},
					"required": ["id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Update task", IdempotentHint: true},
			},
			handler: s.handleUpdateTask,
		},
		{
			tool: mcp.Tool{
				Name:        "complete_task",
				Description: "Mark a task as completed.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id": {"type": "string", "minLength": 1, "description": "Task identifier."}
					},
					"required": ["id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Complete task", IdempotentHint: true},
			},
			handler: s.handleCompleteTask,
		},
		{
			tool: mcp.Tool{
				Name:        "reopen_task",
				Description: "Reopen a completed task, restoring it to active.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id": {"type": "string", "minLength": 1, "description": "Task identifier."}
					},
					"required": ["id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Reopen task", IdempotentHint: true},
			},
			handler: s.handleReopenTask,
		},
		{
			tool: mcp.Tool{
				Name:        "delete_task",
				Description: "Permanently delete a task. This cannot be undone.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id": {"type": "string", "minLength": 1, "description": "Task identifier."}
					},
					"required": ["id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Delete task", DestructiveHint: true},
			},
			handler: s.handleDeleteTask,
		},
		{
			tool: mcp.Tool{
				Name:        "get_completed_tasks",
				Description: "List completed tasks, optionally restricted to those completed since a given time.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"since": {"type": "string", "description": "Only tasks completed after this RFC 3339 timestamp."}
					}
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "List completed tasks", ReadOnlyHint: true},
			},
			handler: s.handleGetCompletedTasks,
		},
		{
			tool: mcp.Tool{
				Name:        "bulk_create_tasks",
				Description: "Create up to 50 tasks in one call. Tasks are created strictly in order; a failure stops the sequence and earlier creations remain.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"tasks": {
							"type": "array",
							"minItems": 1,
							"maxItems": 50,
							"items": {
								"type": "object",
								"properties": {
									"content":    {"type": "string", "minLength": 1},
									"description": {"type": "string"},
									"project_id": {"type": "string"},
									"section_id": {"type": "string"},
									"labels":     {"type": "array", "items": {"type": "string"}},
									"priority":   {"type": "integer", "minimum": 1, "maximum": 4},
									"due_string": {"type": "string"},
									"due_date":   {"type": "string"}
								},
								"required": ["content"]
							}
						}
					},
					"required": ["tasks"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Bulk create tasks"},
			},
			handler: s.handleBulkCreateTasks,
		},
		{
			tool: mcp.Tool{
				Name:        "create_subtask",
				Description: "Create a task as a subtask of an existing parent task.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"parent_id":  {"type": "string", "minLength": 1, "description": "Parent task identifier."},
						"content":    {"type": "string", "minLength": 1},
						"description": {"type": "string"},
						"labels":     {"type": "array", "items": {"type": "string"}},
						"priority":   {"type": "integer", "minimum": 1, "maximum": 4},
						"due_string": {"type": "string"},
						"due_date":   {"type": "string"}
					},
					"required": ["parent_id", "content"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Create subtask"},
			},
			handler: s.handleCreateSubtask,
		},
		{
			tool: mcp.Tool{
				Name:        "bulk_create_subtasks",
				Description: "Create up to 20 subtasks under one parent task, strictly in order.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"parent_id": {"type": "string", "minLength": 1, "description": "Parent task identifier."},
						"tasks": {
							"type": "array",
							"minItems": 1,
							"maxItems": 20,
							"items": {
								"type": "object",
								"properties": {
									"content":    {"type": "string", "minLength": 1},
									"priority":   {"type": "integer", "minimum": 1, "maximum": 4},
									"due_string": {"type": "string"},
									"due_date":   {"type": "string"}
								},
								"required": ["content"]
							}
						}
					},
					"required": ["parent_id", "tasks"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Bulk create subtasks"},
			},
			handler: s.handleBulkCreateSubtasks,
		},
		{
			tool: mcp.Tool{
				Name:        "get_subtasks",
				Description: "List the active subtasks of a parent task.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"parent_id": {"type": "string", "minLength": 1, "description": "Parent task identifier."}
					},
					"required": ["parent_id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "List subtasks", ReadOnlyHint: true},
			},
			handler: s.handleGetSubtasks,
		},
		{
			tool: mcp.Tool{
				Name:        "convert_to_subtask",
				Description: "Convert an existing task into a subtask of another task. Not supported by the Todoist REST API.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id":        {"type": "string", "minLength": 1, "description": "Task to convert."},
						"parent_id": {"type": "string", "minLength": 1, "description": "New parent task."}
					},
					"required": ["id", "parent_id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Convert to subtask"},
			},
			handler: s.handleConvertToSubtask,
		},
		{
			tool: mcp.Tool{
				Name:        "promote_subtask",
				Description: "Promote a subtask to a top-level task. Not supported by the Todoist REST API.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id": {"type": "string", "minLength": 1, "description": "Subtask to promote."}
					},
					"required": ["id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Promote subtask"},
			},
			handler: s.handlePromoteSubtask,
		},
		{
			tool: mcp.Tool{
				Name:        "get_projects",
				Description: "List all projects.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {}
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "List projects", ReadOnlyHint: true},
			},
			handler: s.handleGetProjects,
		},
		{
			tool: mcp.Tool{
				Name:        "get_project",
				Description: "Fetch one project by identifier.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"id": {"type": "string", "minLength": 1, "description": "Project identifier."}
					},
					"required": ["id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Get project", ReadOnlyHint: true},
			},
			handler: s.handleGetProject,
		},
		{
			tool: mcp.Tool{
				Name:        "create_project",
				Description: "Create a new project.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"name":        {"type": "string", "minLength": 1, "description": "Project name."},
						"parent_id":   {"type": "string", "description": "Parent project for nesting."},
						"color":       {"type": "string", "description": "Todoist color name, e.g. \"berry_red\"."},
						"is_favorite": {"type": "boolean"},
						"view_style":  {"type": "string", "enum": ["list", "board"]}
					},
					"required": ["name"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Create project"},
			},
			handler: s.handleCreateProject,
		},
		{
			tool: mcp.Tool{
				Name:        "get_sections",
				Description: "List sections, optionally restricted to one project.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"project_id": {"type": "string", "description": "Only sections in this project."}
					}
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "List sections", ReadOnlyHint: true},
			},
			handler: s.handleGetSections,
		},
		{
			tool: mcp.Tool{
				Name:        "create_section",
				Description: "Create a section within a project.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"name":       {"type": "string", "minLength": 1, "description": "Section name."},
						"project_id": {"type": "string", "minLength": 1, "description": "Owning project."},
						"order":      {"type": "integer", "description": "Position among the project's sections."}
					},
					"required": ["name", "project_id"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Create section"},
			},
			handler: s.handleCreateSection,
		},
		{
			tool: mcp.Tool{
				Name:        "get_labels",
				Description: "List all personal labels.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {}
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "List labels", ReadOnlyHint: true},
			},
			handler: s.handleGetLabels,
		},
		{
			tool: mcp.Tool{
				Name:        "create_label",
				Description: "Create a new personal label.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"name":        {"type": "string", "minLength": 1, "description": "Label name."},
						"color":       {"type": "string", "description": "Todoist color name."},
						"order":       {"type": "integer"},
						"is_favorite": {"type": "boolean"}
					},
					"required": ["name"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Create label"},
			},
			handler: s.handleCreateLabel,
		},
		{
			tool: mcp.Tool{
				Name:        "update_label",
				Description: "Update a personal label, addressed by its current name.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"name":        {"type": "string", "minLength": 1, "description": "Current label name (the lookup key)."},
						"new_name":    {"type": "string", "minLength": 1, "description": "Replacement name."},
						"color":       {"type": "string"},
						"order":       {"type": "integer"},
						"is_favorite": {"type": "boolean"}
					},
					"required": ["name"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Update label", IdempotentHint: true},
			},
			handler: s.handleUpdateLabel,
		},
		{
			tool: mcp.Tool{
				Name:        "delete_label",
				Description: "Permanently delete a personal label, addressed by name.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"name": {"type": "string", "minLength": 1, "description": "Label name (the lookup key)."}
					},
					"required": ["name"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Delete label", DestructiveHint: true},
			},
			handler: s.handleDeleteLabel,
		},
		{
			tool: mcp.Tool{
				Name:        "get_comments",
				Description: "List comments on a task or a project. Provide exactly one of task_id and project_id.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"task_id":    {"type": "string", "description": "Task whose comments to list."},
						"project_id": {"type": "string", "description": "Project whose comments to list."}
					}
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "List comments", ReadOnlyHint: true},
			},
			handler: s.handleGetComments,
		},
		{
			tool: mcp.Tool{
				Name:        "create_comment",
				Description: "Add a comment to a task or a project. Provide exactly one of task_id and project_id.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"content":    {"type": "string", "minLength": 1, "description": "Comment text."},
						"task_id":    {"type": "string"},
						"project_id": {"type": "string"}
					},
					"required": ["content"]
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Create comment"},
			},
			handler: s.handleCreateComment,
		},
		{
			tool: mcp.Tool{
				Name:        "get_daily_overview",
				Description: "Summarize today's work: overdue, due today, upcoming within a week, and completed today, sorted by priority.",
				InputSchema: json.RawMessage(`{
					"type": "object",
					"properties": {
						"date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$", "description": "Day to report on (YYYY-MM-DD). Defaults to today."},
						"limit": {"type": "integer", "minimum": 1, "maximum": 50, "description": "Maximum items shown per bucket. Defaults to 10."}
					}
				}`),
				Annotations: &mcp.ToolAnnotations{Title: "Daily overview", ReadOnlyHint: true},
			},
			handler: s.handleDailyOverview,
		},
	}
}
