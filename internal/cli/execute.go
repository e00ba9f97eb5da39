package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"appcheckgen/internal/appstore"
	"appcheckgen/internal/catalog"
	"appcheckgen/internal/config"
	"appcheckgen/internal/generator"
	"appcheckgen/internal/locator"
	"appcheckgen/internal/logging"
	"appcheckgen/internal/manifest"
	"appcheckgen/internal/naming"
	"appcheckgen/internal/report"
	"appcheckgen/internal/templates"
	"appcheckgen/internal/version"
)

// Execute runs the CLI with the provided args.
func Execute(args []string, opts Options, out, errOut io.Writer) int {
	return ExecuteContext(context.Background(), args, opts, out, errOut)
}

// ExecuteContext runs the CLI; canceling ctx stops generation between steps.
func ExecuteContext(ctx context.Context, args []string, opts Options, out, errOut io.Writer) int {
	cmd := NewRootCommand(opts, out, errOut)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(errOut, "Error: %v\nRun 'appcheck-gen --help' for usage.\n", err)
			return ExitInvalidUsage
		}
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitRuntimeError
	}
	return ExitSuccess
}

// NewRootCommand builds the root CLI command tree. Without a subcommand the
// root runs generate.
func NewRootCommand(opts Options, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "appcheck-gen",
		Short:         "generate update checks for installed macOS apps",
		Args:          maxArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				logging.SetDebug(true)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.PersistentFlags().String("config", "", "config file (default ./"+config.DefaultConfigFile+")")
	root.PersistentFlags().Bool("json", false, "output JSONL")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	addGenerateFlags(root)

	root.AddCommand(newGenerateCommand(opts))
	root.AddCommand(newIDsCommand(opts))
	root.AddCommand(newRedirectsCommand(opts))
	root.AddCommand(newTemplateCommand(opts))
	root.AddCommand(newVersionCommand())

	return root
}

type usageError struct {
	err error
}

func (u *usageError) Error() string {
	if u.err == nil {
		return "invalid usage"
	}
	return u.err.Error()
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			if n == 0 {
				return &usageError{err: fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())}
			}
			return &usageError{err: fmt.Errorf("accepts at most %d argument(s), received %d", n, len(args))}
		}
		return nil
	}
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "output directory for generated checks")
	cmd.Flags().String("catalog", "", "YAML catalog of applications")
	cmd.Flags().String("template", "", "check template file")
	cmd.Flags().String("ext", "", "extension of generated files")
	cmd.Flags().Bool("no-lookup", false, "skip apps without a feed instead of asking the App Store")
	cmd.Flags().Bool("no-user", false, "only search the system applications folder")
	cmd.Flags().Bool("strict", false, "fail the run when an App Store lookup fails")
	cmd.Flags().Bool("dry-run", false, "report what would be generated without writing files")
}

func newGenerateCommand(opts Options) *cobra.Command {
	generate := &cobra.Command{
		Use:   "generate",
		Short: "generate checks for every installed catalog app",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	addGenerateFlags(generate)
	return generate
}

func runGenerate(cmd *cobra.Command, opts Options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return writeError(cmd, err)
	}
	logging.Debug("Configuration: %s", cfg)

	entries, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return writeError(cmd, err)
	}

	renderer, err := templates.Load(cfg.TemplatePath)
	if err != nil {
		return writeError(cmd, err)
	}

	reader := opts.Manifests
	if reader == nil {
		reader, err = manifest.New(cfg.Manifest.Reader, cfg.Manifest.PlistBuddyPath)
		if err != nil {
			return writeError(cmd, err)
		}
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	reporter := report.New(cmd.OutOrStdout(), jsonOutput, cfg.RedirectBase)
	reporter.Verbose = verbose

	g := &generator.Generator{
		Catalog:      entries,
		Locator:      locator.New(cfg.Roots()...),
		Manifests:    reader,
		Renderer:     renderer,
		Reporter:     reporter,
		OutputDir:    cfg.OutputDir,
		Extension:    cfg.Extension,
		DryRun:       dryRun,
		StrictLookup: cfg.Lookup.Strict,
	}
	if cfg.Lookup.Enabled {
		g.Resolver = resolverFor(cfg, opts)
	}

	summary, err := g.Run(cmd.Context())
	logging.Info("Checked %d apps: %d generated, %d already present, %d unsupported, %d lookup failures, %d failed",
		len(summary.Results),
		summary.Count(generator.Generated)+summary.Count(generator.Planned),
		summary.Count(generator.AlreadyGenerated),
		summary.Count(generator.Unsupported),
		summary.Count(generator.LookupFailed),
		summary.Count(generator.Failed))
	if err != nil {
		return &runtimeError{err: err}
	}
	return nil
}

func resolverFor(cfg *config.Config, opts Options) generator.Resolver {
	if opts.Resolver != nil {
		return opts.Resolver
	}
	client := appstore.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.Timeout.Duration)
	client.Country = cfg.Lookup.Country
	client.Entity = cfg.Lookup.Entity
	client.DesktopMarker = cfg.Lookup.DesktopMarker
	client.UserAgent = "appcheck-gen/" + version.Get().Version
	return client
}

// loadConfig resolves configuration, then applies generate flag overrides
// when the command has them.
func loadConfig(cmd *cobra.Command, opts Options) (*config.Config, error) {
	var cfg *config.Config
	if opts.Config != nil {
		copied := *opts.Config
		cfg = &copied
	} else {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if out, _ := flags.GetString("out"); out != "" {
		abs, err := filepath.Abs(out)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for --out: %w", err)
		}
		cfg.OutputDir = abs
	}
	if catalogPath, _ := flags.GetString("catalog"); catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	if templatePath, _ := flags.GetString("template"); templatePath != "" {
		cfg.TemplatePath = templatePath
	}
	if ext, _ := flags.GetString("ext"); ext != "" {
		cfg.Extension = ext
	}
	if noLookup, _ := flags.GetBool("no-lookup"); noLookup {
		cfg.Lookup.Enabled = false
	}
	if noUser, _ := flags.GetBool("no-user"); noUser {
		cfg.Search.UserEnabled = false
	}
	if strict, _ := flags.GetBool("strict"); strict {
		cfg.Lookup.Strict = true
	}
	return cfg, nil
}

func newIDsCommand(opts Options) *cobra.Command {
	ids := &cobra.Command{
		Use:   "ids [name...]",
		Short: "print the check id of each name, or of the whole catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []catalog.Entry
			var err error
			if len(args) > 0 {
				entries, err = catalog.Names(args...)
				if err != nil {
					return &usageError{err: err}
				}
			} else {
				cfg, cfgErr := loadConfig(cmd, opts)
				if cfgErr != nil {
					return writeError(cmd, cfgErr)
				}
				entries, err = catalog.Load(cfg.CatalogPath)
				if err != nil {
					return writeError(cmd, err)
				}
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			for _, entry := range entries {
				derived := naming.Derive(entry.Name)
				if jsonOutput {
					if err := json.NewEncoder(cmd.OutOrStdout()).Encode(IDEvent{
						Type:      "id",
						App:       derived.App,
						SafeName:  derived.SafeName,
						ClassName: derived.ClassName,
						UUID:      derived.ID.String(),
					}); err != nil {
						return err
					}
					continue
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", derived.SafeName, derived.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}
	ids.Flags().String("catalog", "", "YAML catalog of applications")
	return ids
}

func newRedirectsCommand(opts Options) *cobra.Command {
	redirects := &cobra.Command{
		Use:   "redirects",
		Short: "print redirect directives for installed catalog apps",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return writeError(cmd, err)
			}
			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return writeError(cmd, err)
			}

			loc := locator.New(cfg.Roots()...)
			jsonOutput, _ := cmd.Flags().GetBool("json")
			reporter := report.New(cmd.OutOrStdout(), jsonOutput, cfg.RedirectBase)

			for _, entry := range entries {
				if _, ok := loc.Locate(entry.Name); !ok {
					logging.Debug("%s is not installed", entry.Name)
					continue
				}
				id := naming.Derive(entry.Name).ID
				if jsonOutput {
					if err := reporter.Redirects([]uuid.UUID{id}); err != nil {
						return err
					}
					continue
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), report.RedirectLine(cfg.RedirectBase, id)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	redirects.Flags().String("catalog", "", "YAML catalog of applications")
	redirects.Flags().Bool("no-user", false, "only search the system applications folder")
	return redirects
}

func newTemplateCommand(opts Options) *cobra.Command {
	tmpl := &cobra.Command{
		Use:   "template",
		Short: "work with check templates",
	}

	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "validate a check template against sample values",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return writeError(cmd, err)
				}
				path = cfg.TemplatePath
			}

			if err := templates.Check(path); err != nil {
				return writeError(cmd, err)
			}

			name := path
			if name == "" {
				name = "embedded template"
			}
			return writeEvent(cmd, report.Event{Type: "result", Message: fmt.Sprintf("%s is valid", name)})
		},
	}

	tmpl.AddCommand(checkCmd)
	return tmpl
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print build information",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return err
		},
	}
}

type runtimeError struct {
	err error
}

func (r *runtimeError) Error() string {
	if r.err == nil {
		return "runtime error"
	}
	return r.err.Error()
}

func (r *runtimeError) Unwrap() error {
	return r.err
}

func writeError(cmd *cobra.Command, err error) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		_ = writeEventWithContext(cmd.Context(), cmd, report.Event{
			Type:    report.TypeError,
			Message: err.Error(),
		}, true)
	}
	return &runtimeError{err: err}
}

func writeEvent(cmd *cobra.Command, event report.Event) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeEventWithContext(cmd.Context(), cmd, event, jsonOutput)
}

func writeEventWithContext(ctx context.Context, cmd *cobra.Command, event report.Event, jsonOutput bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		return encoder.Encode(event)
	}
	if event.Message != "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), event.Message)
		return err
	}
	return nil
}
