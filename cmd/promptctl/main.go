// Command promptctl renders prompt templates and runs them against configured
// providers without a database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/llm"
	"github.com/lueurxax/tolgee-ai/internal/core/prompt"
	"github.com/lueurxax/tolgee-ai/internal/platform/config"
	db "github.com/lueurxax/tolgee-ai/internal/storage"
)

const defaultRunTimeout = 2 * time.Minute

var verbose bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "promptctl",
		Short:        "Render and run translation prompts",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(renderCmd(), providersCmd(), runCmd(), usageCmd())

	return root
}

func newLogger() *zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(level).With().Timestamp().Logger()

	return &logger
}

func renderCmd() *cobra.Command {
	var templatePath, varsPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template against variables from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := renderTemplate(templatePath, varsPath, newLogger())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

			return err
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (default prompt when empty)")
	cmd.Flags().StringVar(&varsPath, "vars", "", "YAML variables file")

	return cmd
}

func providersCmd() *cobra.Command {
	var providersPath string

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Validate a server provider file and list its entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			providers, err := config.LoadServerProviders(providersPath)
			if err != nil {
				return err
			}

			return printProviders(cmd.OutOrStdout(), providers)
		},
	}

	cmd.Flags().StringVarP(&providersPath, "providers", "p", "", "Server provider YAML file")
	_ = cmd.MarkFlagRequired("providers")

	return cmd
}

func runCmd() *cobra.Command {
	var (
		templatePath, varsPath, providersPath string
		provider, priority                    string
		timeout                               time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render a template and send it to a provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			parsedPriority, err := domain.ParsePriority(priority)
			if err != nil {
				return err
			}

			server, err := config.LoadServerProviders(providersPath)
			if err != nil {
				return err
			}

			rendered, err := renderTemplate(templatePath, varsPath, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			messages, err := prompt.NewSegmenter(nil, nil, logger).Segment(ctx, rendered, nil)
			if err != nil {
				return err
			}

			suspensions := llm.NewMemorySuspensionStore()
			selector := llm.NewSelector(noCustomProviders{}, server, suspensions, llm.NewRotationState(), logger)
			dispatcher := llm.NewDispatcher(llm.DispatcherOptions{Timeout: timeout}, logger)
			service := llm.NewService(selector, dispatcher, suspensions, nil, llm.ServiceOptions{}, logger)

			result, err := service.Invoke(ctx, 0, provider, messages, parsedPriority)
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (default prompt when empty)")
	cmd.Flags().StringVar(&varsPath, "vars", "", "YAML variables file")
	cmd.Flags().StringVarP(&providersPath, "providers", "p", "", "Server provider YAML file")
	cmd.Flags().StringVar(&provider, "provider", "default", "Logical provider name")
	cmd.Flags().StringVar(&priority, "priority", "", "Routing priority (LOW, HIGH)")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultRunTimeout, "Overall request timeout")
	_ = cmd.MarkFlagRequired("providers")

	return cmd
}

func usageCmd() *cobra.Command {
	var (
		organizationID int64
		since          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show an organization's recorded LLM usage (reads POSTGRES_DSN)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.Connect(cmd.Context(), cfg.Database.PostgresDSN, db.DefaultPoolOptions(), newLogger())
			if err != nil {
				return err
			}
			defer database.Close()

			rows, err := database.LLMUsageSince(cmd.Context(), organizationID, time.Now().Add(-since))
			if err != nil {
				return err
			}

			return printUsage(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().Int64Var(&organizationID, "org", 0, "Organization ID")
	cmd.Flags().DurationVar(&since, "since", 7*24*time.Hour, "How far back to report")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

func renderTemplate(templatePath, varsPath string, logger *zerolog.Logger) (string, error) {
	src := prompt.DefaultTemplate

	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return "", fmt.Errorf("read template: %w", err)
		}

		src = string(data)
	}

	root, err := loadVariables(varsPath)
	if err != nil {
		return "", err
	}

	return prompt.NewRenderer(logger).Render(src, root)
}

func printProviders(w io.Writer, providers []domain.ProviderConfig) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPRIORITY\tMODEL\tURL")

	for _, p := range providers {
		priority := "-"
		if p.Priority != nil {
			priority = string(*p.Priority)
		}

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID.Int64(), p.Name, p.Type, priority, p.Model, p.APIURL)
	}

	return tw.Flush()
}

func printResult(w io.Writer, result domain.PromptResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		Provider string         `json:"provider"`
		Model    string         `json:"model,omitempty"`
		Response string         `json:"response"`
		Usage    *domain.Usage  `json:"usage,omitempty"`
		Price    *int64         `json:"price,omitempty"`
	}{
		Provider: string(result.ProviderType),
		Model:    result.Model,
		Response: result.Response,
		Usage:    result.Usage,
		Price:    result.Price,
	})
}

func printUsage(w io.Writer, rows []db.LLMUsage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tPROVIDER\tTYPE\tMODEL\tREQUESTS\tINPUT\tOUTPUT\tCACHED\tPRICE")

	for _, u := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			u.Date.Format(time.DateOnly), u.Provider, u.ProviderType, u.Model,
			u.RequestCount, u.InputTokens, u.OutputTokens, u.CachedTokens, u.Price)
	}

	return tw.Flush()
}

// noCustomProviders stands in for the organization store; only server
// providers are routable from the command line.
type noCustomProviders struct{}

func (noCustomProviders) ListProviders(context.Context, int64) ([]domain.ProviderConfig, error) {
	return nil, nil
}

func (noCustomProviders) FindProvider(context.Context, int64) (*domain.ProviderConfig, error) {
	return nil, nil
}

func (noCustomProviders) CreateProvider(_ context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error) {
	return cfg, nil
}

func (noCustomProviders) UpdateProvider(_ context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error) {
	return cfg, nil
}

func (noCustomProviders) DeleteProvider(context.Context, int64) error {
	return nil
}
