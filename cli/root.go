package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"imageratio/config"
	"imageratio/ratio"
	"imageratio/validations"
	"imageratio/validations/validators"
)

// ErrInvalid is returned when at least one file fails its rules.
var ErrInvalid = errors.New("one or more files failed validation")

// usageError marks configuration problems, which exit with status 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// Execute runs the ratiocheck command and exits with 1 when a file fails its
// rules or 2 when the flags or config are unusable.
func Execute() {
	if code := exitCode(newRootCmd().Execute()); code != 0 {
		os.Exit(code)
	}
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		return 2
	default:
		return 1
	}
}

type options struct {
	ratios      string
	ratiosFile  string
	rules       string
	attribute   string
	configPath  string
	autoOrient  bool
	debug       bool
	concurrency int
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "ratiocheck [flags] FILE...",
		Short:        "Check the aspect ratio of image files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ratios, "ratios", "", `ratios to accept, e.g. "16:9|4:3|1.2~1.5"`)
	f.StringVar(&opts.ratiosFile, "ratios-file", "", "YAML or JSON file with the ratios to accept")
	f.StringVar(&opts.rules, "rules", "", `full rule set, e.g. "png+max-size=5mb+16:9"`)
	f.StringVar(&opts.attribute, "attribute", "file", "attribute name used in messages")
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.imageratio.json)")
	f.BoolVar(&opts.autoOrient, "auto-orient", false, "apply EXIF orientation before measuring")
	f.BoolVar(&opts.debug, "debug", false, "log every check to stderr")
	f.IntVar(&opts.concurrency, "concurrency", 4, "files checked at once")

	return cmd
}

func buildPipeline(opts options) (*validations.Pipeline, error) {
	rules := opts.rules
	if opts.ratios != "" {
		if rules != "" {
			rules += "+"
		}
		rules += "ratio=" + opts.ratios
	}

	var p *validations.Pipeline
	if rules != "" {
		var err error
		p, err = validations.Compile(rules)
		if err != nil {
			return nil, err
		}
	}

	if opts.ratiosFile != "" {
		b, err := os.ReadFile(opts.ratiosFile)
		if err != nil {
			return nil, err
		}
		var spec ratio.Spec
		if err := yaml.Unmarshal(b, &spec); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.ratiosFile, err)
		}
		r, err := validators.NewRatioRule(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.ratiosFile, err)
		}
		if p == nil {
			p = validations.New(r)
		} else {
			p = p.With(r)
		}
	}

	if p == nil {
		return nil, errors.New("one of --ratios, --ratios-file or --rules is required")
	}
	return p, nil
}

type result struct {
	path string
	err  error
}

func run(cmd *cobra.Command, opts options, paths []string) error {
	logger := zap.NewNop()
	if opts.debug {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}
	defer func() { _ = logger.Sync() }()

	conf, err := config.Load(opts.configPath)
	if err != nil {
		return &usageError{err: err}
	}
	p, err := buildPipeline(opts)
	if err != nil {
		return &usageError{err: err}
	}

	results := make([]result, len(paths))
	g := new(errgroup.Group)
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			b, err := os.ReadFile(path)
			if err == nil {
				err = p.Run(&validators.File{
					Name:       path,
					Attribute:  opts.attribute,
					Data:       b,
					Messages:   conf.Messages,
					AutoOrient: opts.autoOrient || conf.AutoOrient,
				})
			}
			logger.Debug("checked", zap.String("path", path), zap.Error(err))
			if validations.IsConfigError(err) {
				return err
			}
			results[i] = result{path: path, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &usageError{err: err}
	}

	out := cmd.OutOrStdout()
	failed := false
	for _, r := range results {
		if r.err == nil {
			fmt.Fprintf(out, "ok    %s\n", r.path)
			continue
		}
		failed = true
		fmt.Fprintf(out, "FAIL  %s: %v\n", r.path, r.err)
	}
	if failed {
		return ErrInvalid
	}
	return nil
}
