package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/aequiflow/internal/filter"
	"github.com/hyperengineering/aequiflow/internal/store"
	"github.com/hyperengineering/aequiflow/internal/types"
	"github.com/hyperengineering/aequiflow/internal/validation"
	"github.com/hyperengineering/aequiflow/internal/wizard"
)

var (
	datasetOverride string
	jsonOutput      bool

	projectsQuery  string
	projectsStatus string
	projectsRegion string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse infrastructure projects",
	Long:  "List and inspect projects from the civic dataset without running the server.",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects matching the filters",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show one project with its timeline and reports",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard snapshot",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions that have projects",
	Args:  cobra.NoArgs,
	RunE:  runRegions,
}

var referenceCmd = &cobra.Command{
	Use:   "reference <code>",
	Short: "Check a report reference code and show when it was issued",
	Args:  cobra.ExactArgs(1),
	RunE:  runReference,
}

func init() {
	for _, c := range []*cobra.Command{projectsCmd, dashboardCmd, regionsCmd, referenceCmd} {
		c.PersistentFlags().StringVar(&datasetOverride, "db", "",
			"Dataset path (overrides AEQUIFLOW_DATASET_PATH)")
		c.PersistentFlags().BoolVar(&jsonOutput, "json", false,
			"Output in JSON format")
	}

	projectsListCmd.Flags().StringVarP(&projectsQuery, "query", "q", "", "Free-text search")
	projectsListCmd.Flags().StringVar(&projectsStatus, "status", "", "Status: all, ongoing, delayed, completed")
	projectsListCmd.Flags().StringVar(&projectsRegion, "region", "", "Exact region name")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
}

// loadDataset opens the dataset named by --db, the environment, or the built-in demo data.
func loadDataset(ctx context.Context) (*store.Dataset, error) {
	path := datasetOverride
	if path == "" {
		path = os.Getenv("AEQUIFLOW_DATASET_PATH")
	}
	if path == "" {
		path = store.MemoryPath
	}
	return store.LoadSQLite(ctx, path)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	q := filter.ProjectQuery{Query: projectsQuery, Status: projectsStatus, Region: projectsRegion}
	if errs := validation.ValidateProjectQuery(q); len(errs) > 0 {
		return fmt.Errorf("invalid filter: %s: %s", errs[0].Field, errs[0].Message)
	}

	data, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	result := filter.FilterProjects(data.Projects(), q)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, result)
	}

	if result.Empty() {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	w := newTabWriter(out)
	fmt.Fprintln(w, "ID\tNAME\tREGION\tSTATUS\tPROGRESS\tBUDGET\tSCORE")
	for _, p := range result.Projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\t%d\n",
			p.ID,
			p.Name,
			p.Region,
			p.Status,
			p.Progress,
			store.FormatCurrency(p.Budget),
			p.ValidationScore,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nShowing %d of %d projects\n", result.Shown, result.Total)
	return nil
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	data, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}

	p, err := data.ProjectByID(args[0])
	if err != nil {
		return err
	}
	reports := data.ReportsByProject(p.ID)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"project": p,
			"reports": reports,
		})
	}

	fmt.Fprintf(out, "Project:     %s\n", p.Name)
	fmt.Fprintf(out, "ID:          %s\n", p.ID)
	fmt.Fprintf(out, "Location:    %s (%s)\n", p.Location, p.Region)
	fmt.Fprintf(out, "Status:      %s, %d%% complete\n", p.Status, p.Progress)
	fmt.Fprintf(out, "Budget:      %s (%s disbursed, %d%%)\n",
		store.FormatCurrency(p.Budget),
		store.FormatCurrency(p.Disbursed),
		store.DisbursementPercent(p.Disbursed, p.Budget))
	fmt.Fprintf(out, "Validation:  %d (%s confidence, %d validations)\n",
		p.ValidationScore, filter.BucketFor(p.ValidationScore), p.ValidationCount)
	fmt.Fprintf(out, "Contractor:  %s\n", p.Contractor)
	fmt.Fprintf(out, "Agency:      %s\n", p.Agency)
	fmt.Fprintf(out, "Schedule:    %s to %s\n",
		p.StartDate.Format("2006-01-02"), p.TargetDate.Format("2006-01-02"))

	if len(p.Timeline) > 0 {
		fmt.Fprintln(out, "\nTimeline:")
		w := newTabWriter(out)
		for _, e := range p.Timeline {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", e.Date.Format("2006-01-02"), e.Status, e.Title)
		}
		w.Flush()
	}

	if len(reports) > 0 {
		fmt.Fprintln(out, "\nReports:")
		printReports(out, reports)
	}
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	data, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}

	projects := data.Projects()
	reports := data.Reports()
	stats := data.Stats()
	attention := filter.AttentionNeeded(projects)
	active := filter.ActiveReports(reports)
	buckets := filter.ConfidenceBuckets(projects)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"stats":            stats,
			"attention_needed": attention,
			"active_reports":   active,
			"confidence":       buckets,
			"live":             filter.Summarize(projects, reports),
		})
	}

	fmt.Fprintf(out, "Projects:    %d (%d ongoing, %d completed, %d delayed)\n",
		stats.TotalProjects, stats.OngoingProjects, stats.CompletedProjects, stats.DelayedProjects)
	fmt.Fprintf(out, "Budget:      %s\n", store.FormatCurrency(stats.TotalBudget))
	fmt.Fprintf(out, "Disbursed:   %s (%d%%)\n",
		store.FormatCurrency(stats.TotalDisbursed),
		store.DisbursementPercent(stats.TotalDisbursed, stats.TotalBudget))
	fmt.Fprintf(out, "Reports:     %d (%d pending)\n", stats.TotalReports, stats.PendingReports)
	fmt.Fprintf(out, "Validation:  %d average\n", stats.AverageValidation)
	fmt.Fprintf(out, "Confidence:  %d high, %d medium, %d low\n", buckets.High, buckets.Medium, buckets.Low)

	fmt.Fprintf(out, "\nNeeds attention (%d):\n", len(attention))
	w := newTabWriter(out)
	for _, p := range attention {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\n", p.ID, p.Name, p.Status, p.ValidationScore)
	}
	w.Flush()

	fmt.Fprintf(out, "\nActive reports (%d):\n", len(active))
	printReports(out, active)
	return nil
}

func runRegions(cmd *cobra.Command, args []string) error {
	data, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	regions := filter.Regions(data.Projects())

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"regions": regions})
	}
	for _, r := range regions {
		fmt.Fprintln(out, r)
	}
	return nil
}

func runReference(cmd *cobra.Command, args []string) error {
	code := strings.TrimSpace(args[0])
	if verr := validation.ValidateReferenceCode("reference_code", code); verr != nil {
		return fmt.Errorf("invalid reference code %q: %s", code, verr.Message)
	}
	id := ulid.MustParseStrict(strings.TrimPrefix(code, wizard.ReferencePrefix))
	issued := ulid.Time(id.Time()).UTC()

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"reference_code": code,
			"issued_at":      issued,
		})
	}
	fmt.Fprintf(out, "Reference: %s\n", code)
	fmt.Fprintf(out, "Issued:    %s\n", issued.Format("2006-01-02 15:04:05 MST"))
	return nil
}

func printReports(out io.Writer, reports []types.Report) {
	w := newTabWriter(out)
	for _, r := range reports {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02"), r.Type, r.Status, r.Description)
	}
	w.Flush()
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
