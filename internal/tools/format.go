package tools

import (
	"fmt"
	"strings"

	"github.com/aldante1/mcp-todoist/internal/todoist"
)

// priorityTag renders a task priority as P1 (highest) through P4 (lowest).
// Absent or out-of-range priorities render as P4.
func priorityTag(priority int) string {
	if priority < 1 || priority > 4 {
		return "P4"
	}
	return fmt.Sprintf("P%d", priority)
}

// dueLabel renders the most informative due description available.
func dueLabel(due *todoist.Due) string {
	if due == nil {
		return ""
	}
	if due.String != "" {
		return due.String
	}
	if due.Datetime != "" {
		return due.Datetime
	}
	return due.Date
}

// formatTaskLine renders a single task as one list line.
func formatTaskLine(task todoist.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- [%s] %s", priorityTag(task.Priority), task.Content)
	if due := dueLabel(task.Due); due != "" {
		fmt.Fprintf(&b, " (due: %s)", due)
	}
	if task.ProjectID != "" {
		fmt.Fprintf(&b, " [project: %s]", task.ProjectID)
	}
	fmt.Fprintf(&b, " (id: %s)", task.ID)
	return b.String()
}

// formatTaskList renders tasks as a bulleted list under a heading, or an
// explicit empty message.
func formatTaskList(heading string, tasks []todoist.Task) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}
	lines := make([]string, 0, len(tasks)+1)
	if heading != "" {
		lines = append(lines, heading)
	}
	for _, task := range tasks {
		lines = append(lines, formatTaskLine(task))
	}
	return strings.Join(lines, "\n")
}

// formatTaskDetail renders one task with all populated fields, for get_task.
func formatTaskDetail(task *todoist.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", task.Content)
	fmt.Fprintf(&b, "ID: %s\n", task.ID)
	fmt.Fprintf(&b, "Priority: %s\n", priorityTag(task.Priority))
	if task.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", task.Description)
	}
	if due := dueLabel(task.Due); due != "" {
		fmt.Fprintf(&b, "Due: %s\n", due)
	}
	if task.ProjectID != "" {
		fmt.Fprintf(&b, "Project: %s\n", task.ProjectID)
	}
	if task.SectionID != "" {
		fmt.Fprintf(&b, "Section: %s\n", task.SectionID)
	}
	if task.ParentID != "" {
		fmt.Fprintf(&b, "Parent task: %s\n", task.ParentID)
	}
	if len(task.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(task.Labels, ", "))
	}
	if task.IsCompleted {
		b.WriteString("Status: completed\n")
	} else {
		b.WriteString("Status: active\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatProjectDetail(project *todoist.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", project.Name)
	fmt.Fprintf(&b, "ID: %s\n", project.ID)
	if project.ParentID != "" {
		fmt.Fprintf(&b, "Parent project: %s\n", project.ParentID)
	}
	if project.Color != "" {
		fmt.Fprintf(&b, "Color: %s\n", project.Color)
	}
	if project.ViewStyle != "" {
		fmt.Fprintf(&b, "View: %s\n", project.ViewStyle)
	}
	if project.IsInboxProject {
		b.WriteString("Inbox project: yes\n")
	}
	if project.IsFavorite {
		b.WriteString("Favorite: yes\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatProjectList(projects []todoist.Project) string {
	if len(projects) == 0 {
		return "No projects found."
	}
	lines := make([]string, 0, len(projects))
	for _, p := range projects {
		line := fmt.Sprintf("- %s (id: %s)", p.Name, p.ID)
		if p.IsInboxProject {
			line += " [inbox]"
		}
		if p.IsFavorite {
			line += " [favorite]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatSectionList(sections []todoist.Section) string {
	if len(sections) == 0 {
		return "No sections found."
	}
	lines := make([]string, 0, len(sections))
	for _, s := range sections {
		lines = append(lines, fmt.Sprintf("- %s (id: %s, project: %s)", s.Name, s.ID, s.ProjectID))
	}
	return strings.Join(lines, "\n")
}

func formatLabelList(labels []todoist.Label) string {
	if len(labels) == 0 {
		return "No labels found."
	}
	lines := make([]string, 0, len(labels))
	for _, l := range labels {
		line := fmt.Sprintf("- %s (id: %s)", l.Name, l.ID)
		if l.Color != "" {
			line += fmt.Sprintf(" [color: %s]", l.Color)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatCommentList(comments []todoist.Comment) string {
	if len(comments) == 0 {
		return "No comments found."
	}
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		line := fmt.Sprintf("- %s (id: %s", c.Content, c.ID)
		if c.PostedAt != "" {
			line += ", posted: " + c.PostedAt
		}
		line += ")"
		if c.Attachment != nil && c.Attachment.FileName != "" {
			line += fmt.Sprintf(" [attachment: %s]", c.Attachment.FileName)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
