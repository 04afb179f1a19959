package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/kitchencheck/internal/pdf"
	"github.com/dshills/kitchencheck/internal/render"
	"github.com/dshills/kitchencheck/internal/report"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/store"
)

func newReportCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and review compliance reports",
	}
	cmd.AddCommand(
		newDailyCmd(open),
		newHMSCmd(open),
		newListCmd(open),
		newSignCmd(open),
		newAnnotateCmd(open),
		newApproveCmd(open),
		newDeleteCmd(open),
	)
	return cmd
}

// generateFlags are shared by daily and hms.
type generateFlags struct {
	automatic   bool
	overwrite   bool
	generatedBy string
	format      string
	out         string
	failOn      string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.automatic, "automatic", false, "mark as scheduled generation (report starts final)")
	fl.BoolVar(&f.overwrite, "overwrite", false, "replace an existing report for the same day")
	fl.StringVar(&f.generatedBy, "generated-by", "", "generator name recorded on the report")
	fl.StringVar(&f.format, "format", "markdown", "output format: markdown, json or pdf")
	fl.StringVar(&f.out, "out", "", "output file for pdf (default <outputdir>/<name>.pdf)")
	fl.StringVar(&f.failOn, "fail-on", "", "exit 2 when the overall result is at least: warning or fail")
}

func (f generateFlags) options() report.Options {
	return report.Options{Automatic: f.automatic, Overwrite: f.overwrite, GeneratedBy: f.generatedBy}
}

func parseDay(v string, now time.Time) (time.Time, error) {
	if v == "" {
		return now, nil
	}
	t, err := time.Parse(schema.DateLayout, v)
	if err != nil {
		return t, badInput(fmt.Errorf("invalid date %q: want YYYY-MM-DD", v))
	}
	return t, nil
}

// failOnMatches reports whether overall meets the --fail-on threshold.
func failOnMatches(threshold string, overall schema.OverallStatus) (bool, error) {
	rank := map[schema.OverallStatus]int{schema.OverallPass: 0, schema.OverallWarning: 1, schema.OverallFail: 2}
	switch threshold {
	case "":
		return false, nil
	case string(schema.OverallWarning), string(schema.OverallFail):
		return rank[overall] >= rank[schema.OverallStatus(threshold)], nil
	default:
		return false, badInput(fmt.Errorf("invalid --fail-on %q: want warning or fail", threshold))
	}
}

// emit prints or writes a generated report and applies --fail-on.
func (a *app) emit(ctx context.Context, r *schema.Report, f generateFlags) error {
	if err := a.output(ctx, r, f.format, f.out); err != nil {
		return err
	}
	hit, err := failOnMatches(f.failOn, r.OverallStatus)
	if err != nil {
		return err
	}
	if hit {
		return &exitError{code: exitCodeFailOn, err: fmt.Errorf("report %s result is %s", r.ReportNumber, r.OverallStatus)}
	}
	return nil
}

// output renders r in format. PDFs go to out, or to the configured output
// directory under the download name.
func (a *app) output(ctx context.Context, r *schema.Report, format, out string) error {
	switch format {
	case "markdown", "md":
		_, err := fmt.Fprint(a.out, render.RenderMarkdown(r))
		return err
	case "json":
		return printJSON(a, r)
	case "pdf":
		if out == "" {
			out = filepath.Join(a.settings.Report.OutputDir, pdf.ReportFilename(r))
		}
		meta := a.meta()
		meta.Generated = time.Now()
		if err := a.writeDocument(a.svc.Document(ctx, r, meta), out); err != nil {
			return err
		}
		_, err := fmt.Fprintln(a.out, out)
		return err
	default:
		return badInput(fmt.Errorf("unknown format %q: want markdown, json or pdf", format))
	}
}

// declined prints the existing report number when generation hit a
// duplicate, then passes the error on.
func (a *app) declined(r *schema.Report, err error) error {
	switch {
	case r == nil:
	case errors.Is(err, report.ErrDuplicateReport):
		fmt.Fprintf(a.out, "report %s (%s) already exists; use --overwrite to replace it\n", r.ReportNumber, r.ID)
	case errors.Is(err, report.ErrAlreadySigned):
		fmt.Fprintf(a.out, "report %s (%s) is signed by %s and cannot be replaced\n", r.ReportNumber, r.ID, r.Signature.SignedBy)
	}
	return err
}

type dailyFlags struct {
	generateFlags
	date string
}

func newDailyCmd(open opener) *cobra.Command {
	var f dailyFlags
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Generate the HACCP daily report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				return runDaily(ctx, a, f)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.date, "date", "", "report date YYYY-MM-DD (default today)")
	return cmd
}

func runDaily(ctx context.Context, a *app, f dailyFlags) error {
	day, err := parseDay(f.date, time.Now())
	if err != nil {
		return err
	}
	r, err := a.svc.GenerateDaily(ctx, a.tenant, day, f.options())
	if err != nil {
		return a.declined(r, err)
	}
	return a.emit(ctx, r, f.generateFlags)
}

type hmsFlags struct {
	generateFlags
	start, end string
	typ        string
	title      string
	summary    string
}

func newHMSCmd(open opener) *cobra.Command {
	var f hmsFlags
	cmd := &cobra.Command{
		Use:   "hms",
		Short: "Generate an HMS incident report for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				return runHMS(ctx, a, f)
			})
		},
	}
	f.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&f.start, "start", "", "first day YYYY-MM-DD (default first of this month)")
	fl.StringVar(&f.end, "end", "", "last day YYYY-MM-DD (default today)")
	fl.StringVar(&f.typ, "type", string(schema.TypeMonthly), "report type: daily, weekly, monthly, quarterly, annual or custom")
	fl.StringVar(&f.title, "title", "", "report title")
	fl.StringVar(&f.summary, "summary", "", "summary text (default describes the period)")
	return cmd
}

func runHMS(ctx context.Context, a *app, f hmsFlags) error {
	now := time.Now()
	end, err := parseDay(f.end, now)
	if err != nil {
		return err
	}
	start, err := parseDay(f.start, time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return err
	}
	p := schema.Period{Start: schema.Day(start).Start, End: schema.Day(end).Start}
	r, _, err := a.svc.GenerateHMS(ctx, a.tenant, p, report.HMSOptions{
		Options: f.options(),
		Type:    schema.ReportType(f.typ),
		Title:   f.title,
		Summary: f.summary,
	})
	if err != nil {
		return a.declined(r, err)
	}
	return a.emit(ctx, r, f.generateFlags)
}

func newListCmd(open opener) *cobra.Command {
	var (
		status, kind, format string
		limit                int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				rs, err := a.svc.Builder.List(ctx, a.tenant, store.ListFilter{
					Kind:   schema.ReportKind(kind),
					Status: schema.ReportStatus(status),
					Limit:  limit,
				})
				if err != nil {
					return err
				}
				if format == "json" {
					if rs == nil {
						rs = []*schema.Report{}
					}
					return printJSON(a, rs)
				}
				_, err = fmt.Fprint(a.out, render.RenderList(rs))
				return err
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&status, "status", "", "only reports with this status: draft, pending, final or approved")
	fl.StringVar(&kind, "kind", "", "only reports of this kind: haccp_daily or hms")
	fl.IntVar(&limit, "limit", 0, "maximum number of reports (0 for all)")
	fl.StringVar(&format, "format", "markdown", "output format: markdown or json")
	return cmd
}

func newSignCmd(open opener) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "sign <id>",
		Short: "Sign a report as its reviewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				r, err := a.svc.Builder.Sign(ctx, a.tenant, args[0], by, time.Now())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "report %s signed by %s\n", r.ReportNumber, r.Signature.SignedBy)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "name of the signer (required)")
	return cmd
}

func newAnnotateCmd(open opener) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "annotate <id>",
		Short: "Replace the notes of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				r, err := a.svc.Builder.Annotate(ctx, a.tenant, args[0], notes)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "report %s annotated\n", r.ReportNumber)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "note text")
	return cmd
}

func newApproveCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Mark a report approved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				r, err := a.svc.Builder.Approve(ctx, a.tenant, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "report %s approved\n", r.ReportNumber)
				return err
			})
		},
	}
}

func newDeleteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				if err := a.svc.Builder.Delete(ctx, a.tenant, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(a.out, "report %s deleted\n", args[0])
				return err
			})
		},
	}
}
