package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/todoist"
)

// fakeAPI is an in-memory TaskAPI recording every call, used as both the
// handler collaborator and the "real client" behind the dry-run adapter.
type fakeAPI struct {
	mu sync.Mutex

	tasks    []todoist.Task
	projects []todoist.Project
	sections []todoist.Section
	labels   []todoist.Label
	comments []todoist.Comment

	createTaskCalls int
	closeTaskCalls  int
	deleteCalls     int
	getTasksCalls   int

	// failCreateAt makes the Nth CreateTask call fail (1-based, 0 = never).
	failCreateAt int
	nextID       int
}

var _ TaskAPI = (*fakeAPI)(nil)

func (f *fakeAPI) genID() string {
	f.nextID++
	return fmt.Sprintf("fake-%d", f.nextID)
}

func (f *fakeAPI) GetTasks(_ context.Context, filter todoist.TaskFilter) ([]todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getTasksCalls++
	if filter.ParentID == "" {
		return append([]todoist.Task(nil), f.tasks...), nil
	}
	var out []todoist.Task
	for _, t := range f.tasks {
		if t.ParentID == filter.ParentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetTask(_ context.Context, id string) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i], nil
		}
	}
	return nil, errors.Newf("task %s not found", id)
}

func (f *fakeAPI) CreateTask(_ context.Context, args todoist.CreateTaskArgs) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createTaskCalls++
	if f.failCreateAt > 0 && f.createTaskCalls == f.failCreateAt {
		return nil, errors.New("simulated create failure")
	}
	task := todoist.Task{
		ID:       f.genID(),
		Content:  args.Content,
		ParentID: args.ParentID,
		Priority: args.Priority,
		Labels:   args.Labels,
	}
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, args todoist.UpdateTaskArgs) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if args.Content != nil {
				f.tasks[i].Content = *args.Content
			}
			if args.Priority != nil {
				f.tasks[i].Priority = *args.Priority
			}
			return &f.tasks[i], nil
		}
	}
	return nil, errors.Newf("task %s not found", id)
}

func (f *fakeAPI) CloseTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeTaskCalls++
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].IsCompleted = true
			return nil
		}
	}
	return errors.Newf("task %s not found", id)
}

func (f *fakeAPI) ReopenTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].IsCompleted = false
			return nil
		}
	}
	return errors.Newf("task %s not found", id)
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return errors.Newf("task %s not found", id)
}

func (f *fakeAPI) GetCompletedTasks(_ context.Context, _ string) ([]todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []todoist.Task
	for _, t := range f.tasks {
		if t.IsCompleted {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetProject(_ context.Context, id string) (*todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, errors.Newf("project %s not found", id)
}

func (f *fakeAPI) GetProjects(context.Context) ([]todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]todoist.Project(nil), f.projects...), nil
}

func (f *fakeAPI) CreateProject(_ context.Context, args todoist.CreateProjectArgs) (*todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	project := todoist.Project{ID: f.genID(), Name: args.Name, Color: args.Color}
	f.projects = append(f.projects, project)
	return &project, nil
}

func (f *fakeAPI) GetSections(_ context.Context, projectID string) ([]todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if projectID == "" {
		return append([]todoist.Section(nil), f.sections...), nil
	}
	var out []todoist.Section
	for _, s := range f.sections {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateSection(_ context.Context, args todoist.CreateSectionArgs) (*todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	section := todoist.Section{ID: f.genID(), Name: args.Name, ProjectID: args.ProjectID}
	f.sections = append(f.sections, section)
	return &section, nil
}

func (f *fakeAPI) GetLabels(context.Context) ([]todoist.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]todoist.Label(nil), f.labels...), nil
}

func (f *fakeAPI) CreateLabel(_ context.Context, args todoist.CreateLabelArgs) (*todoist.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	label := todoist.Label{ID: f.genID(), Name: args.Name, Color: args.Color}
	f.labels = append(f.labels, label)
	return &label, nil
}

func (f *fakeAPI) UpdateLabel(_ context.Context, id string, args todoist.UpdateLabelArgs) (*todoist.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.labels {
		if f.labels[i].ID == id {
			if args.Name != nil {
				f.labels[i].Name = *args.Name
			}
			if args.Color != nil {
				f.labels[i].Color = *args.Color
			}
			return &f.labels[i], nil
		}
	}
	return nil, errors.Newf("label %s not found", id)
}

func (f *fakeAPI) DeleteLabel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.labels {
		if f.labels[i].ID == id {
			f.labels = append(f.labels[:i], f.labels[i+1:]...)
			return nil
		}
	}
	return errors.Newf("label %s not found", id)
}

func (f *fakeAPI) GetComments(_ context.Context, taskID, projectID string) ([]todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []todoist.Comment
	for _, c := range f.comments {
		if (taskID != "" && c.TaskID == taskID) || (projectID != "" && c.ProjectID == projectID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateComment(_ context.Context, args todoist.CreateCommentArgs) (*todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment := todoist.Comment{ID: f.genID(), TaskID: args.TaskID, ProjectID: args.ProjectID, Content: args.Content}
	f.comments = append(f.comments, comment)
	return &comment, nil
}
