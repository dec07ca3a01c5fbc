package jobform

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
	"github.com/goliatone/go-staffdesk/pkg/visibility"
)

// Form actions, relative to the page URL.
const (
	SaveAction   = "form"
	DeleteAction = "delete"
)

// FromScheduleField marks submissions that started on the schedule page.
const FromScheduleField = "from_schedule"

// DeleteConfirmation is the prompt shown before a job is deleted.
const DeleteConfirmation = "Are you sure you want to delete this job? Any shifts already assigned to it will be removed."

// Input is everything the job form page is rendered from.
type Input struct {
	Job model.Job
	// Defaults pre-fills a new job with the values remembered for its
	// department (see DefaultsFromJob). Ignored for existing jobs.
	Defaults map[string]string
	// DeptRoles maps every department id to its selectable roles.
	DeptRoles model.DeptRoles
	// Departments orders the department selector. When empty the ids in
	// DeptRoles are used as both value and label.
	Departments  []model.Department
	FromSchedule bool
	CSRF         render.CSRFProvider
}

// View is the template data for the job form.
type View struct {
	Title         string               `json:"title"`
	Icon          string               `json:"icon"`
	DeleteIcon    string               `json:"delete_icon"`
	IsNew         bool                 `json:"is_new"`
	Job           JobView              `json:"job"`
	FromSchedule  bool                 `json:"from_schedule"`
	Types         []SelectOption       `json:"types"`
	StartTimes    []SelectOption       `json:"start_times"`
	StartTimeSet  string               `json:"start_time_set"`
	Durations     []SelectOption       `json:"durations"`
	DurationLabel string               `json:"duration_label"`
	Weights       []SelectOption       `json:"weights"`
	Departments   []SelectOption       `json:"departments"`
	RoleGroups    []RoleGroup          `json:"role_groups"`
	ResetDefaults string               `json:"reset_defaults"`
	SaveAction    string               `json:"save_action"`
	Hidden        []render.HiddenField `json:"hidden"`
	Delete        *DeleteForm          `json:"delete"`
	Errors        map[string][]string  `json:"errors"`
	FormErrors    []string             `json:"form_errors"`
	Message       string               `json:"message"`
	Theme         render.ThemeContext  `json:"theme"`
	Assets        Assets               `json:"assets"`
}

// JobView holds the job's fields already formatted as form values.
type JobView struct {
	ID              string   `json:"db_id"`
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	StartTime       string   `json:"start_time"`
	Duration        string   `json:"duration"`
	Extra15         bool     `json:"extra15"`
	Slots           string   `json:"slots"`
	FilledSlots     int      `json:"filled_slots"`
	MinSlots        int      `json:"min_slots"`
	Weight          string   `json:"weight"`
	DepartmentID    string   `json:"department_id"`
	RequiredRoleIDs []string `json:"required_roles_ids"`
}

// SelectOption is one <option> of a select field.
type SelectOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// RoleGroup is the set of role checkboxes belonging to one department.
// Enabled groups are shown and submitted; the rest are hidden and their
// inputs disabled.
type RoleGroup struct {
	DepartmentID   string         `json:"department_id"`
	DepartmentName string         `json:"department_name"`
	Enabled        bool           `json:"enabled"`
	Roles          []RoleCheckbox `json:"roles"`
}

// RoleCheckbox is a single role within a RoleGroup.
type RoleCheckbox struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// DeleteForm describes the confirmation-gated delete form.
type DeleteForm struct {
	Action  string               `json:"action"`
	Confirm string               `json:"confirm"`
	Hidden  []render.HiddenField `json:"hidden"`
}

// Assets are the URLs of the page's script and stylesheet.
type Assets struct {
	Script     string `json:"script"`
	Stylesheet string `json:"stylesheet"`
}

type buildConfig struct {
	event        *config.Event
	evaluator    visibility.Evaluator
	icons        map[string]string
	assetsPrefix string
}

// BuildView resolves input into template data using the package defaults.
func BuildView(ctx context.Context, event *config.Event, input Input, opts render.RenderOptions) (View, error) {
	return buildView(ctx, buildConfig{
		event:        event,
		evaluator:    defaultEvaluator,
		icons:        buildIcons(nil),
		assetsPrefix: DefaultAssetsPrefix,
	}, input, opts)
}

func buildView(ctx context.Context, cfg buildConfig, input Input, opts render.RenderOptions) (View, error) {
	if cfg.event == nil {
		return View{}, fmt.Errorf("jobform: event config is required")
	}

	job := input.Job
	if job.IsNew {
		job = ApplyDefaults(job, input.Defaults)
	}
	departments := departmentList(input)
	if job.DepartmentID == "" && len(departments) > 0 {
		job.DepartmentID = departments[0].ID
	}

	jv := newJobView(job, cfg.event)
	applyValues(&jv, opts.Values)
	jobType := model.JobType(jv.Type)

	view := View{
		IsNew:         job.IsNew,
		Job:           jv,
		FromSchedule:  input.FromSchedule,
		DurationLabel: DurationLabel(jobType),
		SaveAction:    SaveAction,
		Errors:        opts.Errors,
		FormErrors:    opts.FormErrors(),
		Message:       opts.Message,
		Theme:         render.BuildThemeContext(opts.Theme),
		Assets: Assets{
			Script:     cfg.assetsPrefix + ScriptName,
			Stylesheet: cfg.assetsPrefix + StylesheetName,
		},
		DeleteIcon: cfg.icons[IconDelete],
	}

	if job.IsNew {
		view.Title = "Add a New Job"
		view.Icon = cfg.icons[IconNewJob]
	} else {
		view.Title = "Edit Job: " + job.Name
		view.Icon = cfg.icons[IconEditJob]
	}

	for _, t := range model.JobTypes() {
		view.Types = append(view.Types, SelectOption{
			Value:    string(t),
			Label:    t.Label(),
			Selected: string(t) == jv.Type,
		})
	}

	startTimes, set, err := startTimeOptions(cfg.evaluator, cfg.event, jobType)
	if err != nil {
		return View{}, err
	}
	view.StartTimes = selectOptions(startTimes, jv.StartTime)
	view.StartTimeSet = set
	view.Durations = selectOptions(cfg.event.DurationOpts(), jv.Duration)
	view.Weights = selectOptions(cfg.event.WeightOpts(), jv.Weight)

	for _, dept := range departments {
		view.Departments = append(view.Departments, SelectOption{
			Value:    dept.ID,
			Label:    dept.Name,
			Selected: dept.ID == jv.DepartmentID,
		})
	}

	groups, err := roleGroups(cfg.evaluator, departments, input.DeptRoles, jv)
	if err != nil {
		return View{}, err
	}
	view.RoleGroups = groups

	reset, err := json.Marshal(ResetDefaults())
	if err != nil {
		return View{}, fmt.Errorf("jobform: encode reset defaults: %w", err)
	}
	view.ResetDefaults = string(reset)

	var csrf string
	if input.CSRF != nil {
		csrf = input.CSRF.CSRFToken(ctx)
	}
	hidden := []render.HiddenField{render.CSRFToken(csrf), render.IDField(job.ID)}
	if input.FromSchedule {
		hidden = append(hidden, render.Hidden(FromScheduleField, "1"))
	}
	view.Hidden = render.SortedHiddenFields(render.MergeHiddenFields(opts.Hidden, hidden...))

	if !job.IsNew {
		view.Delete = &DeleteForm{
			Action:  DeleteAction,
			Confirm: DeleteConfirmation,
			Hidden: render.SortedHiddenFields(render.MergeHiddenFields(nil,
				render.CSRFToken(csrf),
				render.IDField(job.ID),
			)),
		}
	}

	return view, nil
}

func newJobView(job model.Job, event *config.Event) JobView {
	jv := JobView{
		ID:              job.ID,
		Type:            string(job.Type),
		Name:            job.Name,
		Description:     job.Description,
		Duration:        strconv.Itoa(job.Duration),
		Extra15:         job.Extra15,
		Slots:           strconv.Itoa(job.Slots),
		FilledSlots:     job.FilledSlots(),
		MinSlots:        max(1, job.FilledSlots()),
		Weight:          FormatWeight(job.Weight),
		DepartmentID:    job.DepartmentID,
		RequiredRoleIDs: append([]string{}, job.RequiredRoleIDs...),
	}
	if jv.Type == "" {
		jv.Type = string(model.JobTypeRegular)
	}
	if !job.StartTime.IsZero() {
		jv.StartTime = job.StartTime.In(event.Location()).Format(config.TimestampFormat)
	}
	return jv
}

// applyValues overlays echoed form values (a rejected submission) onto jv.
func applyValues(jv *JobView, values map[string]any) {
	if len(values) == 0 {
		return
	}
	str := func(key string, dst *string) {
		if v, ok := values[key]; ok && v != nil {
			*dst = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	str("type", &jv.Type)
	str("name", &jv.Name)
	str("description", &jv.Description)
	str("start_time", &jv.StartTime)
	str("duration", &jv.Duration)
	str("slots", &jv.Slots)
	str("weight", &jv.Weight)
	str("department_id", &jv.DepartmentID)

	if v, ok := values["extra15"]; ok {
		jv.Extra15 = checkboxValue(fmt.Sprint(v))
	}
	if v, ok := values["required_roles_ids"]; ok {
		switch ids := v.(type) {
		case []string:
			jv.RequiredRoleIDs = append([]string{}, ids...)
		case string:
			jv.RequiredRoleIDs = splitList(ids)
		}
	}
}

func departmentList(input Input) []model.Department {
	if len(input.Departments) > 0 {
		return input.Departments
	}
	ids := input.DeptRoles.Departments()
	out := make([]model.Department, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Department{ID: id, Name: id})
	}
	return out
}

func roleGroups(eval visibility.Evaluator, departments []model.Department, deptRoles model.DeptRoles, jv JobView) ([]RoleGroup, error) {
	ctx := visibility.Context{Values: map[string]any{"department_id": jv.DepartmentID}}
	checked := make(map[string]bool, len(jv.RequiredRoleIDs))
	for _, id := range jv.RequiredRoleIDs {
		checked[id] = true
	}

	groups := make([]RoleGroup, 0, len(departments))
	for _, dept := range departments {
		enabled, err := eval.Eval(RoleGroupRule(dept.ID), ctx)
		if err != nil {
			return nil, fmt.Errorf("jobform: role group %s: %w", dept.ID, err)
		}
		group := RoleGroup{
			DepartmentID:   dept.ID,
			DepartmentName: dept.Name,
			Enabled:        enabled,
			Roles:          []RoleCheckbox{},
		}
		for _, role := range deptRoles[dept.ID] {
			group.Roles = append(group.Roles, RoleCheckbox{
				Value: role.Value,
				Label: role.Label,
				// Only the active department's selections are carried over.
				Checked: enabled && checked[role.Value],
			})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// RoleGroupRule is the visibility rule that enables a department's role
// group.
func RoleGroupRule(departmentID string) string {
	return "department_id == " + strconv.Quote(departmentID)
}

func selectOptions(opts []config.Option, selected string) []SelectOption {
	out := make([]SelectOption, 0, len(opts))
	for _, opt := range opts {
		out = append(out, SelectOption{
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: opt.Value == selected,
		})
	}
	return out
}
