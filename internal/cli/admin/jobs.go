package admin

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/cli"
	"github.com/cloo-solutions/lexcorpus/internal/config"
	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/repository"
	"github.com/spf13/cobra"
)

// JobsCmd returns the jobs command
func JobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect index jobs",
	}
	cmd.PersistentFlags().String("output", "text", "Output format (text or json)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent index jobs",
		Args:  cobra.NoArgs,
		RunE:  runJobsList,
	}
	list.Flags().String("status", "", "Only show jobs with this status (pending, processing, completed, failed)")
	list.Flags().IntP("limit", "n", 20, "Maximum number of jobs")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one index job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsShow,
	})

	return cmd
}

func openJobRepository(cmd *cobra.Command) (*repository.IndexJobRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	pool, err := cli.OpenDatabase(cmd.Context(), cfg, "", true)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewIndexJobRepository(pool), pool.Close, nil
}

func runJobsList(cmd *cobra.Command, args []string) error {
	rawStatus, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("output")

	status, err := domain.ParseIndexJobStatus(rawStatus)
	if err != nil {
		return err
	}

	repo, closeFn, err := openJobRepository(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	jobs, err := repo.ListRecent(cmd.Context(), status, limit)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if format == "json" {
		return writeJobsJSON(cmd.OutOrStdout(), toJobViews(jobs))
	}
	printJobs(cmd.OutOrStdout(), jobs)
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")

	repo, closeFn, err := openJobRepository(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	job, err := repo.GetByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJobsJSON(cmd.OutOrStdout(), newJobView(job))
	}
	printJobs(cmd.OutOrStdout(), []*domain.IndexJob{job})
	if job.Error != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nerror: %s\n", job.Error)
	}
	return nil
}

type jobView struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	ArtifactKey string  `json:"artifact_key"`
	Status      string  `json:"status"`
	Retries     int32   `json:"retries"`
	Error       string  `json:"error,omitempty"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

func newJobView(job *domain.IndexJob) jobView {
	v := jobView{
		ID:          job.ID,
		Source:      job.Source,
		ArtifactKey: job.ArtifactKey,
		Status:      string(job.Status),
		Retries:     job.Retries,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.ProcessedAt != nil {
		ts := job.ProcessedAt.UTC().Format(time.RFC3339)
		v.ProcessedAt = &ts
	}
	return v
}

func toJobViews(jobs []*domain.IndexJob) []jobView {
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, newJobView(job))
	}
	return views
}

func writeJobsJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printJobs(out io.Writer, jobs []*domain.IndexJob) {
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No index jobs.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tRETRIES\tSOURCE\tCREATED")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			job.ID, job.Status, job.Retries, job.Source, job.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}
