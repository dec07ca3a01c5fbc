package jobform_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
	"github.com/goliatone/go-staffdesk/pkg/testsupport"
	"github.com/goliatone/go-staffdesk/pkg/visibility"
)

func TestStartTimeOptions_SelectsSetByType(t *testing.T) {
	event := testsupport.Event(t)

	cases := []struct {
		jobType model.JobType
		wantSet string
		want    []config.Option
	}{
		{model.JobTypeSetup, jobform.StartTimesSetup, event.SetupTimeOpts()},
		{model.JobTypeTeardown, jobform.StartTimesTeardown, event.TeardownTimeOpts()},
		{model.JobTypeRegular, jobform.StartTimesRegular, event.StartTimeOpts()},
		{model.JobTypeOther, jobform.StartTimesAll, event.AllTimeOpts()},
		{model.JobType("unknown"), jobform.StartTimesAll, event.AllTimeOpts()},
	}

	for _, tc := range cases {
		got, set, err := jobform.StartTimeOptions(event, tc.jobType)
		if err != nil {
			t.Fatalf("%s: %v", tc.jobType, err)
		}
		if set != tc.wantSet {
			t.Fatalf("%s: set = %q, want %q", tc.jobType, set, tc.wantSet)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: options mismatch (-want +got):\n%s", tc.jobType, diff)
		}
	}
}

func TestDurationLabel(t *testing.T) {
	if got := jobform.DurationLabel(model.JobTypeRegular); strings.Contains(got, "Expected Approximate") {
		t.Fatalf("regular jobs should not show an approximate duration, got %q", got)
	}
	for _, jobType := range []model.JobType{model.JobTypeSetup, model.JobTypeTeardown, model.JobTypeOther} {
		if got := jobform.DurationLabel(jobType); !strings.Contains(got, "Expected Approximate") {
			t.Fatalf("%s: expected approximate duration label, got %q", jobType, got)
		}
	}
}

func TestRender_SetupJobOffersSetupStartTimes(t *testing.T) {
	event := testsupport.Event(t)
	job := testsupport.ExistingJob(t)

	doc := parseHTML(t, renderPage(t, jobform.Input{Job: job}))

	values, selected := selectOptionValues(t, doc, "start_time")
	if diff := cmp.Diff(config.OptionValues(event.SetupTimeOpts()), values); diff != "" {
		t.Fatalf("start time options mismatch (-want +got):\n%s", diff)
	}
	if selected != "2026-04-30 10:00:00" {
		t.Fatalf("expected job start time selected, got %q", selected)
	}
}

func TestRender_DurationLabelByType(t *testing.T) {
	job := testsupport.ExistingJob(t)

	job.Type = model.JobTypeRegular
	regular := durationLabel(t, parseHTML(t, renderPage(t, jobform.Input{Job: job})))
	if strings.Contains(regular, "Expected Approximate") {
		t.Fatalf("regular job label should omit Expected Approximate, got %q", regular)
	}

	job.Type = model.JobTypeSetup
	setup := durationLabel(t, parseHTML(t, renderPage(t, jobform.Input{Job: job})))
	if !strings.Contains(setup, "Expected Approximate") {
		t.Fatalf("setup job label should say Expected Approximate, got %q", setup)
	}
}

func TestRender_DeleteFormOnlyForExistingJobs(t *testing.T) {
	existing := testsupport.ExistingJob(t)
	doc := parseHTML(t, renderPage(t, jobform.Input{Job: existing, CSRF: render.StaticCSRF("tok-1")}))

	deletes := findAll(doc, byTagAttr("form", "action", jobform.DeleteAction))
	if len(deletes) != 1 {
		t.Fatalf("expected one delete form for an existing job, got %d", len(deletes))
	}
	if confirm, _ := attr(deletes[0], "data-confirm"); confirm != jobform.DeleteConfirmation {
		t.Fatalf("delete form must be gated by a confirmation, got %q", confirm)
	}
	if diff := cmp.Diff(map[string]string{"csrf_token": "tok-1", "id": "job-1"}, hiddenInputs(deletes[0])); diff != "" {
		t.Fatalf("delete hidden fields mismatch (-want +got):\n%s", diff)
	}

	fresh := model.NewJob(testsupport.DeptArcade)
	doc = parseHTML(t, renderPage(t, jobform.Input{Job: fresh}))
	if got := findAll(doc, byTagAttr("form", "action", jobform.DeleteAction)); len(got) != 0 {
		t.Fatalf("new jobs must not render a delete form")
	}
}

func TestRender_ExactlyOneRoleGroupEnabled(t *testing.T) {
	for _, dept := range testsupport.Departments() {
		t.Run(dept.Name, func(t *testing.T) {
			job := testsupport.ExistingJob(t)
			job.DepartmentID = dept.ID

			doc := parseHTML(t, renderPage(t, jobform.Input{Job: job}))
			groups := findAll(doc, func(n *html.Node) bool { return n.Data == "fieldset" && hasAttr(n, "data-role-group") })
			if len(groups) != len(testsupport.Departments()) {
				t.Fatalf("expected a role group per department, got %d", len(groups))
			}

			var enabled []string
			for _, group := range groups {
				id, _ := attr(group, "data-role-group")
				visible := !hasAttr(group, "hidden")
				for _, input := range findAll(group, func(n *html.Node) bool { return n.Data == "input" }) {
					if hasAttr(input, "disabled") == visible {
						t.Fatalf("group %s: input disabled state must be the inverse of visibility", id)
					}
				}
				if visible {
					enabled = append(enabled, id)
				}
			}
			if diff := cmp.Diff([]string{dept.ID}, enabled); diff != "" {
				t.Fatalf("enabled groups mismatch (-want +got):\n%s", diff)
			}

			_, selected := selectOptionValues(t, doc, "department_id")
			if selected != dept.ID {
				t.Fatalf("department selector shows %q, want %q", selected, dept.ID)
			}
		})
	}
}

func TestRender_SaveFormFieldsAndHidden(t *testing.T) {
	job := testsupport.ExistingJob(t)
	doc := parseHTML(t, renderPage(t, jobform.Input{
		Job:          job,
		FromSchedule: true,
		CSRF:         render.StaticCSRF("tok-2"),
	}))

	forms := findAll(doc, byTagAttr("form", "action", jobform.SaveAction))
	if len(forms) != 1 {
		t.Fatalf("expected one save form, got %d", len(forms))
	}
	want := map[string]string{"csrf_token": "tok-2", "id": "job-1", "from_schedule": "1"}
	if diff := cmp.Diff(want, hiddenInputs(forms[0])); diff != "" {
		t.Fatalf("save hidden fields mismatch (-want +got):\n%s", diff)
	}

	filled := findAll(doc, func(n *html.Node) bool { return hasAttr(n, "data-filled-slots") })
	if len(filled) != 1 || textContent(filled[0]) != "2 filled" {
		t.Fatalf("expected a read-only filled count for existing jobs")
	}

	checked := findAll(doc, func(n *html.Node) bool {
		kind, _ := attr(n, "type")
		return n.Data == "input" && kind == "checkbox" && hasAttr(n, "checked")
	})
	if len(checked) != 1 {
		t.Fatalf("expected the job's required role to be checked, got %d", len(checked))
	}
	if value, _ := attr(checked[0], "value"); value != "role-tech" {
		t.Fatalf("unexpected checked role %q", value)
	}

	titles := findAll(doc, func(n *html.Node) bool { return n.Data == "h1" })
	if len(titles) != 1 || textContent(titles[0]) != "Edit Job: Cabinet Unload" {
		t.Fatalf("unexpected title")
	}
}

func TestBuildView_NewJob(t *testing.T) {
	event := testsupport.Event(t)
	job := model.NewJob("")

	view, err := jobform.BuildView(context.Background(), event, jobform.Input{
		Job:         job,
		DeptRoles:   testsupport.DeptRoles(),
		Departments: testsupport.Departments(),
		Defaults: map[string]string{
			"name":               "Arcade Shift",
			"duration":           "2",
			"weight":             "2.0",
			"required_roles_ids": "role-lead",
		},
	}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("build view: %v", err)
	}

	if !view.IsNew || view.Delete != nil {
		t.Fatalf("new job view must not carry a delete form")
	}
	if view.Title != "Add a New Job" || view.Icon == "" {
		t.Fatalf("unexpected new job title/icon: %q", view.Title)
	}
	if view.Job.DepartmentID != testsupport.DeptArcade {
		t.Fatalf("expected first department to be preselected, got %q", view.Job.DepartmentID)
	}
	if view.Job.Name != "Arcade Shift" || view.Job.Duration != "2" || view.Job.Weight != "2.0" {
		t.Fatalf("defaults not applied: %+v", view.Job)
	}
	if view.StartTimeSet != jobform.StartTimesRegular {
		t.Fatalf("new jobs are regular, got set %q", view.StartTimeSet)
	}
	if diff := cmp.Diff(`{"description":"","duration":"1","name":"","slots":"1","weight":"1.0"}`, view.ResetDefaults); diff != "" {
		t.Fatalf("reset defaults mismatch (-want +got):\n%s", diff)
	}

	var checked []string
	for _, group := range view.RoleGroups {
		for _, role := range group.Roles {
			if role.Checked {
				checked = append(checked, role.Value)
			}
		}
	}
	if diff := cmp.Diff([]string{"role-lead"}, checked); diff != "" {
		t.Fatalf("checked roles mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildView_EchoesRejectedValues(t *testing.T) {
	event := testsupport.Event(t)
	job := testsupport.ExistingJob(t)

	view, err := jobform.BuildView(context.Background(), event, jobform.Input{
		Job:         job,
		DeptRoles:   testsupport.DeptRoles(),
		Departments: testsupport.Departments(),
	}, render.RenderOptions{
		Values: map[string]any{
			"name":               "",
			"type":               "teardown",
			"department_id":      testsupport.DeptTechOps,
			"required_roles_ids": []string{"role-radio"},
		},
		Errors:  map[string][]string{"name": {"Name is required"}, render.FormErrorsKey: {"Fix the errors below"}},
		Message: "Please review",
	})
	if err != nil {
		t.Fatalf("build view: %v", err)
	}

	if view.Job.Name != "" || view.Job.Type != "teardown" || view.StartTimeSet != jobform.StartTimesTeardown {
		t.Fatalf("submitted values not echoed: %+v", view.Job)
	}
	if view.DurationLabel != jobform.DurationLabel(model.JobTypeTeardown) {
		t.Fatalf("duration label should follow the submitted type")
	}
	if diff := cmp.Diff([]string{"Fix the errors below"}, view.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	for _, group := range view.RoleGroups {
		if group.Enabled != (group.DepartmentID == testsupport.DeptTechOps) {
			t.Fatalf("group %s enabled=%v", group.DepartmentID, group.Enabled)
		}
	}
}

func TestRender_UnsupportedView(t *testing.T) {
	renderer := newRenderer(t)
	_, err := renderer.Render(context.Background(), "not an input", render.RenderOptions{})
	if !errors.Is(err, render.ErrUnsupportedView) {
		t.Fatalf("expected ErrUnsupportedView, got %v", err)
	}
}

func TestRender_LinksAssets(t *testing.T) {
	page := renderPage(t, jobform.Input{Job: model.NewJob(testsupport.DeptStops)})
	if !strings.Contains(string(page), `href="/static/staffdesk.css"`) || !strings.Contains(string(page), `src="/static/jobform.js"`) {
		t.Fatalf("expected asset links in page")
	}
}

func TestSanitizeIcon(t *testing.T) {
	got := jobform.SanitizeIcon(`<svg viewBox="0 0 10 10" onload="alert(1)"><script>alert(1)</script><path d="M0 0h10"/></svg>`)
	if strings.Contains(got, "script") || strings.Contains(got, "onload") {
		t.Fatalf("expected scripts stripped, got %q", got)
	}
	if !strings.Contains(got, "<svg") || !strings.Contains(got, "<path") {
		t.Fatalf("expected svg markup kept, got %q", got)
	}
	if jobform.SanitizeIcon("   ") != "" {
		t.Fatalf("expected empty markup for blank input")
	}
}

func TestRenderer_WithIconsOverride(t *testing.T) {
	renderer, err := jobform.New(testsupport.Event(t), jobform.WithIcons(map[string]string{
		jobform.IconNewJob: `<svg class="custom"><circle r="1"/></svg><img src=x onerror=alert(1)>`,
	}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	view, err := renderer.BuildView(context.Background(), jobform.Input{Job: model.NewJob("")}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("build view: %v", err)
	}
	if !strings.Contains(view.Icon, "custom") || strings.Contains(view.Icon, "onerror") {
		t.Fatalf("unexpected icon markup %q", view.Icon)
	}
}

func newRenderer(t *testing.T) *jobform.Renderer {
	t.Helper()
	renderer, err := jobform.New(testsupport.Event(t))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderPage(t *testing.T, input jobform.Input) []byte {
	t.Helper()
	if input.DeptRoles == nil {
		input.DeptRoles = testsupport.DeptRoles()
	}
	if input.Departments == nil {
		input.Departments = testsupport.Departments()
	}
	page, err := newRenderer(t).Render(context.Background(), input, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return page
}

func durationLabel(t *testing.T, doc *html.Node) string {
	t.Helper()
	labels := findAll(doc, byTagAttr("label", "for", "duration"))
	if len(labels) != 1 {
		t.Fatalf("expected one duration label, got %d", len(labels))
	}
	return textContent(labels[0])
}

func TestRender_EvaluatorErrorIsReturned(t *testing.T) {
	event := testsupport.Event(t)
	broken := errors.New("unexpected token")
	eval := visibility.EvaluatorFunc(func(rule string, _ visibility.Context) (bool, error) {
		if strings.HasPrefix(rule, "type ==") {
			return false, broken
		}
		return true, nil
	})

	renderer, err := jobform.New(event, jobform.WithEvaluator(eval))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	input := jobform.Input{
		Job:         testsupport.ExistingJob(t),
		DeptRoles:   testsupport.DeptRoles(),
		Departments: testsupport.Departments(),
	}
	if _, err := renderer.Render(context.Background(), input, render.RenderOptions{}); !errors.Is(err, broken) {
		t.Fatalf("expected evaluator error, got %v", err)
	}
}
