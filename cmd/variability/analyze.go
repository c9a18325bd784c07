package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stemsi/exstem-variability/internal/config"
	"github.com/stemsi/exstem-variability/internal/database"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/repository"
	"github.com/stemsi/exstem-variability/internal/service"
	"github.com/stemsi/exstem-variability/internal/variability"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute variability metrics per environment",
		Long: `Compute variability metrics for Staging and Production.

Generations are read from wire-format JSON files (--staging, --production),
or fetched from MongoDB when --exam-id is given. A missing environment
reports placeholder metrics.`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}
	f := cmd.Flags()
	f.String("staging", "", "Wire-format JSON array of Staging generations")
	f.String("production", "", "Wire-format JSON array of Production generations")
	f.String("exam-id", "", "Fetch generations of this exam from MongoDB (uses MONGODB_* settings)")
	f.StringP("output", "o", "table", "Output format (table, json)")
	f.Duration("timeout", 30*time.Second, "Timeout for database access")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	log := setupLogging(cmd, v)

	output := v.GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unknown output format %q", output)
	}

	var (
		metrics map[model.Environment]variability.Metrics
		err     error
	)
	if examID := v.GetString("exam-id"); examID != "" {
		ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
		defer cancel()
		metrics, err = analyzeDatabase(ctx, examID, log)
	} else {
		metrics, err = analyzeFiles(map[model.Environment]string{
			model.EnvironmentStaging:    v.GetString("staging"),
			model.EnvironmentProduction: v.GetString("production"),
		}, log)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), metrics)
	}
	return writeTable(cmd.OutOrStdout(), metrics)
}

// analyzeFiles reads one wire-format file per environment. An empty path
// yields placeholder metrics.
func analyzeFiles(paths map[model.Environment]string, log zerolog.Logger) (map[model.Environment]variability.Metrics, error) {
	svc := service.NewVariabilityService(nil, nil, 0, log)

	out := make(map[model.Environment]variability.Metrics, len(model.Environments))
	for _, env := range model.Environments {
		var docs []any
		if path := paths[env]; path != "" {
			var err error
			if docs, err = readGenerations(path); err != nil {
				return nil, fmt.Errorf("%s: %w", env, err)
			}
		}

		m, err := svc.Analyze(docs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", env, err)
		}
		out[env] = m
	}
	return out, nil
}

func analyzeDatabase(ctx context.Context, examID string, log zerolog.Logger) (map[model.Environment]variability.Metrics, error) {
	cfg := config.Load()

	clients, err := database.NewMongoClients(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer clients.Disconnect(context.Background(), log)

	repo := repository.NewGenerationRepository(clients.Databases())
	report, err := service.NewVariabilityService(repo, nil, 0, log).Report(ctx, examID)
	if err != nil {
		return nil, err
	}
	return report.Environments, nil
}

func readGenerations(path string) ([]any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open generations: %w", err)
		}
		defer f.Close()
		r = f
	}

	var docs []any
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("parse %s: expected a JSON array of generations: %w", path, err)
	}
	return docs, nil
}

func writeJSON(w io.Writer, metrics map[model.Environment]variability.Metrics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(metrics)
}

func writeTable(w io.Writer, metrics map[model.Environment]variability.Metrics) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprint(tw, "METRIC")
	for _, env := range model.Environments {
		fmt.Fprintf(tw, "\t%s", env)
	}
	fmt.Fprintln(tw)

	rows := []struct {
		name  string
		value func(variability.Metrics) string
	}{
		{"Total Generations", func(m variability.Metrics) string { return fmt.Sprint(m.TotalGenerations) }},
		{"Deprecated Generations", func(m variability.Metrics) string { return fmt.Sprint(m.DeprecatedGenerations) }},
		{"Question Variability", func(m variability.Metrics) string { return m.QuestionVariability }},
		{"Question Variability Max", func(m variability.Metrics) string { return m.QuestionVariabilityMax }},
		{"Question Variability Min", func(m variability.Metrics) string { return m.QuestionVariabilityMin }},
		{"Answer Variability", func(m variability.Metrics) string { return m.AnswerVariability }},
		{"Answer Variability Max", func(m variability.Metrics) string { return m.AnswerVariabilityMax }},
		{"Answer Variability Min", func(m variability.Metrics) string { return m.AnswerVariabilityMin }},
	}
	for _, row := range rows {
		fmt.Fprint(tw, row.name)
		for _, env := range model.Environments {
			fmt.Fprintf(tw, "\t%s", row.value(metrics[env]))
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
