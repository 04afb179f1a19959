package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/kitchencheck/internal/pdf"
	"github.com/dshills/kitchencheck/internal/render"
	"github.com/dshills/kitchencheck/internal/schema"
	"github.com/dshills/kitchencheck/internal/section"
)

func sectionHelp() string {
	return "sections: " + strings.Join(section.Names(), ", ")
}

func newAnalyzeCmd(open opener) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "analyze <section>",
		Short: "Analyze one HMS section and record the result",
		Long:  "Analyze one HMS section and record the result.\n\n" + sectionHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				return runAnalyze(ctx, a, args[0], format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or json")
	return cmd
}

func runAnalyze(ctx context.Context, a *app, name, format string) error {
	if _, err := section.Load(name); err != nil {
		return badInput(err)
	}
	an, err := a.svc.AnalyzeSection(ctx, a.tenant, name)
	if err != nil {
		return err
	}
	if format == "json" {
		return printJSON(a, an)
	}
	_, err = fmt.Fprint(a.out, render.RenderAnalysis(an))
	return err
}

func newAssistCmd(open opener) *cobra.Command {
	var input, format string
	cmd := &cobra.Command{
		Use:   "assist <topic>",
		Short: "Suggest what is missing or needs action in one HMS area",
		Long: "Suggest what is missing or needs action in one HMS area. Facts not given in\n" +
			"--input are read from the stored records.\n\n" +
			"topics: fire_safety, first_aid, risk_assessment, working_environment, incident,\n" +
			"deviation, training, documents, report, environment (anything else gets general advice)",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				return runAssist(ctx, a, args[0], input, format)
			})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "JSON file with the facts entered so far")
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or json")
	return cmd
}

func runAssist(ctx context.Context, a *app, topic, input, format string) error {
	var form schema.AssistForm
	if input != "" {
		b, err := os.ReadFile(input)
		if err != nil {
			return badInput(fmt.Errorf("read input: %w", err))
		}
		if err := json.Unmarshal(b, &form); err != nil {
			return badInput(fmt.Errorf("parse input %s: %w", input, err))
		}
	}
	got := a.svc.Assist(ctx, a.tenant, topic, form)
	if format == "json" {
		return printJSON(a, got)
	}
	_, err := fmt.Fprint(a.out, render.RenderAssistance(got))
	return err
}

func newSectionReportCmd(open opener) *cobra.Command {
	var start, end, format string
	cmd := &cobra.Command{
		Use:   "section-report <section>",
		Short: "Write the narrative report of one HMS section",
		Long:  "Write the narrative report of one HMS section from its data and recent analyses.\n\n" + sectionHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				if _, err := section.Load(args[0]); err != nil {
					return badInput(err)
				}
				now := time.Now()
				e, err := parseDay(end, now)
				if err != nil {
					return err
				}
				s, err := parseDay(start, e)
				if err != nil {
					return err
				}
				p := schema.Period{Start: schema.Day(s).Start, End: schema.Day(e).Start}
				if !p.Valid() {
					return badInput(fmt.Errorf("end %s before start %s", end, start))
				}
				r, err := a.svc.SectionReport(ctx, a.tenant, args[0], p)
				if err != nil {
					return err
				}
				if format == "json" {
					return printJSON(a, r)
				}
				_, err = fmt.Fprint(a.out, render.RenderSectionReport(r))
				return err
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&start, "start", "", "first day YYYY-MM-DD (default the end day)")
	fl.StringVar(&end, "end", "", "last day YYYY-MM-DD (default today)")
	fl.StringVar(&format, "format", "markdown", "output format: markdown or json")
	return cmd
}

func newSectionPDFCmd(open opener) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "section-pdf <risk_assessment|first_aid|fire_safety>",
		Short: "Write the PDF of an HMS section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				return runSectionPDF(ctx, a, args[0], out)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default <outputdir>/<name>.pdf)")
	return cmd
}

func runSectionPDF(ctx context.Context, a *app, name, out string) error {
	meta := a.meta()
	meta.Generated = time.Now()
	doc, slug, err := a.svc.SectionDocument(ctx, a.tenant, name, meta)
	if err != nil {
		return err
	}
	if out == "" {
		out = filepath.Join(a.settings.Report.OutputDir, pdf.Filename(slug, meta.Generated))
	}
	if err := a.writeDocument(doc, out); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, out)
	return err
}

func printJSON(a *app, v any) error {
	b, err := render.RenderJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}
