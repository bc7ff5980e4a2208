package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolobosdimitrios/GANDALF/internal/artifact"
	"github.com/kolobosdimitrios/GANDALF/internal/llm"
	"github.com/kolobosdimitrios/GANDALF/internal/llm/providers"
	"github.com/kolobosdimitrios/GANDALF/internal/pipeline"
	"github.com/kolobosdimitrios/GANDALF/internal/router"
	"github.com/kolobosdimitrios/GANDALF/internal/runner"
	"github.com/kolobosdimitrios/GANDALF/internal/schema"
	"github.com/kolobosdimitrios/GANDALF/internal/stage"
	"github.com/kolobosdimitrios/GANDALF/internal/store"
)

type runOptions struct {
	complexity     string
	templatePath   string
	date           string
	generateFor    string
	nonInteractive bool
	showInternal   bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <task text>",
		Short: "Run the pipeline on a task request and print the contract",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), root, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&opts.complexity, "complexity", "normal", "complexity hint: low, normal, high")
	cmd.Flags().StringVar(&opts.templatePath, "template", "", "path to a contract output-shape schema (JSON); builtin if omitted")
	cmd.Flags().StringVar(&opts.date, "date", "", "request date copied verbatim into contract telemetry")
	cmd.Flags().StringVar(&opts.generateFor, "generate-for", "", "downstream executor the contract is generated for")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "never prompt; print blocking questions and exit")
	cmd.Flags().BoolVar(&opts.showInternal, "show-internal", false, "include slot and rationale on printed questions")

	return cmd
}

func runPipeline(ctx context.Context, root *rootOptions, opts *runOptions, text string) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}

	registry := llm.NewRegistry()
	for name, pc := range cfg.Providers {
		p, err := providers.New(pc)
		if err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
		if err := registry.Register(p); err != nil {
			return err
		}
	}

	template := stage.DefaultContractTemplate()
	if opts.templatePath != "" {
		raw, err := os.ReadFile(opts.templatePath)
		if err != nil {
			return fmt.Errorf("reading contract template: %w", err)
		}
		if template, err = schema.Parse(raw); err != nil {
			return fmt.Errorf("parsing contract template: %w", err)
		}
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	tracker := llm.NewUsageTracker()
	exec := &stage.Executor{
		Router:           router.New(cfg.Router),
		Providers:        registry,
		Tracker:          tracker,
		Complexity:       router.Complexity(opts.complexity),
		Logger:           logger,
		ContractTemplate: template,
		ExecutorName:     appName,
		ExecutorVersion:  appVersion,
	}

	run := &runner.Runner{
		Exec:     exec,
		Store:    db,
		Tracker:  tracker,
		Logger:   logger,
		Packager: pipeline.Packager{IncludeInternal: opts.showInternal},
	}
	if !opts.nonInteractive {
		run.Ask = promptAnswers
	}

	req := artifact.NewRequest(text).WithMetadata(opts.date, opts.generateFor)
	result, err := run.Run(ctx, req)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		logger.Warn(w)
	}

	if result.Contract != nil {
		return printJSON(result.Contract)
	}
	// Blocked without a way to ask; hand the questions to the caller.
	return printJSON(map[string]any{
		"request_id": result.Request.ID,
		"questions":  result.Questions,
	})
}

// promptAnswers asks each blocking question on the terminal. A blank
// reply accepts the question's default when it has one.
func promptAnswers(_ context.Context, questions []pipeline.PackagedQuestion) (map[string]string, error) {
	reader := bufio.NewReader(os.Stdin)
	answers := make(map[string]string, len(questions))

	fmt.Printf("\n%d question(s) need answers before the contract can be generated:\n\n", len(questions))
	for _, q := range questions {
		fmt.Printf("[%s] %s\n", q.QuestionID, q.Question)
		if q.AnswerFormat != "" {
			fmt.Printf("  expected: %s\n", q.AnswerFormat)
		}
		if q.DefaultIfBlank != "" {
			fmt.Printf("  default if blank: %s\n", q.DefaultIfBlank)
		}
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		answers[q.QuestionID] = strings.TrimSpace(line)
	}
	return answers, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
