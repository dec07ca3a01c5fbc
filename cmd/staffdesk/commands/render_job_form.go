package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
)

// RenderJobFormCmd creates the render-job-form command
func RenderJobFormCmd(app *AppContext) *cobra.Command {
	var (
		jobID        string
		departmentID string
		jobType      string
		output       string
		fromSchedule bool
	)

	cmd := &cobra.Command{
		Use:   "render-job-form",
		Short: "Render the job form for an existing job or a new one",
		Long: `Renders the job admin form as HTML. Pass --id for an existing job, or
--department (and optionally --type) for a new job pre-filled with the
department's remembered defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID = strings.TrimSpace(jobID)
			departmentID = strings.TrimSpace(departmentID)
			if jobID == "" && departmentID == "" {
				return fmt.Errorf("either --id or --department is required")
			}
			if jobID != "" && departmentID != "" {
				return fmt.Errorf("--id and --department are mutually exclusive")
			}

			form, _, err := app.Renderers()
			if err != nil {
				return err
			}
			backend, err := app.Backend()
			if err != nil {
				return err
			}
			defer backend.Close()

			ctx := app.Ctx
			var job model.Job
			if jobID != "" {
				job, err = backend.Jobs.GetJob(ctx, jobID)
				if err != nil {
					return fmt.Errorf("load job %s: %w", jobID, err)
				}
			} else {
				job = model.NewJob(departmentID)
				if jobType != "" {
					t := model.JobType(jobType)
					if !t.Valid() {
						return fmt.Errorf("unknown job type %q", jobType)
					}
					job.Type = t
				}
			}

			departments, err := backend.Departments.ListDepartments(ctx)
			if err != nil {
				return err
			}
			deptRoles, err := backend.Departments.DeptRoles(ctx)
			if err != nil {
				return err
			}
			if _, ok := deptRoles[job.DepartmentID]; job.IsNew && !ok {
				return fmt.Errorf("department %s: %w", job.DepartmentID, model.ErrDepartmentNotFound)
			}

			input := jobform.Input{
				Job:          job,
				DeptRoles:    deptRoles,
				Departments:  departments,
				FromSchedule: fromSchedule,
			}
			if job.IsNew && backend.Defaults != nil {
				defaults, err := backend.Defaults.GetDefaults(ctx, job.DepartmentID)
				if err != nil {
					return err
				}
				input.Defaults = defaults
			}

			html, err := form.Render(ctx, input, render.RenderOptions{Theme: app.Theme()})
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(html)
				return err
			}
			if err := os.WriteFile(output, html, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "id", "", "Existing job id")
	cmd.Flags().StringVar(&departmentID, "department", "", "Department id for a new job")
	cmd.Flags().StringVar(&jobType, "type", "", "Job type for a new job (regular, setup, teardown, other)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().BoolVar(&fromSchedule, "from-schedule", false, "Render as if opened from the schedule page")
	return cmd
}
