package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagBinder lets loadConfig pick up command-line overrides.
type flagBinder interface {
	bind(v *viper.Viper) error
}

type bindFunc func(v *viper.Viper) error

func (f bindFunc) bind(v *viper.Viper) error { return f(v) }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "narrator",
		Short: "narrator: term counts over time for social media corpora",
		Long: "Counts hashtags, mentions, URLs and keywords in a post corpus, " +
			"ranks them and groups them by day or by named period.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.config/narrator/config.yml)")
	pf.String("corpus", "", "CSV corpus to load")
	pf.String("db-path", "", "DuckDB file to use instead of an in-memory database")
	pf.String("periods-file", "", "YAML file of period definitions")
	pf.String("filter", "", "SQL predicate restricting corpus rows, e.g. \"lang = 'en'\"")
	pf.String("color", "", "color output: auto, always or never")
	pf.BoolP("verbose", "v", false, "log to stderr instead of the log file")
	pf.BoolP("quiet", "q", false, "suppress non-error output")

	root.AddCommand(newSummarizeCmd())
	root.AddCommand(newPeriodsCmd())
	root.AddCommand(newBrowseCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// configFor loads configuration with cmd's flags taking precedence.
func configFor(cmd *cobra.Command) (appConfig, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return loadConfig(configPath, bindFunc(func(v *viper.Viper) error {
		return v.BindPFlags(cmd.Flags())
	}))
}

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [aggregation...]",
		Short: "Run the configured aggregations and print the results",
		Long: "Runs every configured aggregation, or only the named ones, prints ranked " +
			"tables and charts, and writes CSV and chart files when output-dir is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFor(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runSummarize(cmd.Context(), cfg, args)
		},
	}
	cmd.Flags().String("output-dir", "", "directory for CSV and chart files")
	cmd.Flags().Int("top-n", 0, "rows to print per aggregation")
	return cmd
}

func newPeriodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the configured periods and their day ranges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFor(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runPeriods(cfg, cmd.OutOrStdout())
		},
	}
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [aggregation...]",
		Short: "Explore aggregation results period by period in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFor(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runBrowse(cmd.Context(), cfg, args)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "narrator - corpus term summarizer\n")
	fmt.Fprintf(w, "  Version:    %s\n", version)
	fmt.Fprintf(w, "  Commit:     %s\n", commit)
	fmt.Fprintf(w, "  Built:      %s\n", buildTime)
	fmt.Fprintf(w, "  Go version: %s\n", goVersion)
}
