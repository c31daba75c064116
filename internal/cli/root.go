package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	version := resolvedVersion(deps.Version)

	root := &cobra.Command{
		Use:           "airq",
		Short:         "Explore 72-hour air quality and allergen forecasts for any point on the map.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return errVersionShown
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			attachVerboseHTTPTrace(cmd, deps.Forecast)
			return nil
		},
	}
	root.Flags().BoolP("version", "v", false, "Show CLI version and exit.")
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	defaultHelpFunc := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == root {
			renderRootHelp(cmd.OutOrStdout(), root)
			return
		}
		defaultHelpFunc(cmd, args)
	})

	root.AddCommand(newForecastCommand(deps))
	root.AddCommand(newDashboardCommand(deps))
	root.AddCommand(newServeCommand(deps))
	root.AddCommand(newConfigureCommand(deps))

	return root
}

type verboseHTTPTraceSetter interface {
	SetVerboseOutput(out io.Writer)
}

func attachVerboseHTTPTrace(cmd *cobra.Command, upstream any) {
	if cmd == nil || upstream == nil {
		return
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return
	}
	setter, ok := upstream.(verboseHTTPTraceSetter)
	if !ok {
		return
	}
	setter.SetVerboseOutput(cmd.ErrOrStderr())
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "[verbose] http trace enabled")
}

func renderRootHelp(out io.Writer, root *cobra.Command) {
	_, _ = fmt.Fprintf(out, "%s: %s\n\n", root.Name(), root.Short)
	_, _ = fmt.Fprintf(out, "usage: %s <command> [options]\n", root.Name())

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "commands:")
	for _, cmd := range visibleCommands(root) {
		_, _ = fmt.Fprintf(out, "  %s\n", cmd.Name())
		_, _ = fmt.Fprintf(out, "    %s\n", cmd.Short)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "notes:")
	_, _ = fmt.Fprintln(out, "  - without --lat/--lon or --address the configured default location is used.")
	_, _ = fmt.Fprintln(out, "  - forecasts come from the backend at api_base; run `configure` to change it.")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "full reference:")
	for _, cmd := range visibleCommands(root) {
		_, _ = fmt.Fprintf(out, "- %s %s\n", root.Name(), cmd.Use)
		_, _ = fmt.Fprintf(out, "  %s\n", cmd.Short)
		options := collectOptionDocs(cmd.NonInheritedFlags())
		if len(options) > 0 {
			_, _ = fmt.Fprintln(out, "  options:")
			for _, option := range options {
				_, _ = fmt.Fprintf(out, "    %s: %s\n", option.token, option.usage)
			}
		}
		_, _ = fmt.Fprintln(out)
	}
	_, _ = fmt.Fprintln(out, "global options:")
	for _, option := range collectOptionDocs(root.Flags()) {
		_, _ = fmt.Fprintf(out, "  %s: %s\n", option.token, option.usage)
	}
}

func visibleCommands(parent *cobra.Command) []*cobra.Command {
	commands := make([]*cobra.Command, 0)
	for _, cmd := range parent.Commands() {
		if cmd.Hidden {
			continue
		}
		commands = append(commands, cmd)
	}
	return commands
}

type optionDoc struct {
	name  string
	token string
	usage string
}

func collectOptionDocs(flags *pflag.FlagSet) []optionDoc {
	options := make([]optionDoc, 0)
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden || flag.Name == "help" {
			return
		}
		token := "--" + flag.Name
		if flag.Shorthand != "" {
			token += "/-" + flag.Shorthand
		}
		options = append(options, optionDoc{
			name:  flag.Name,
			token: token,
			usage: strings.TrimSpace(flag.Usage),
		})
	})
	sort.Slice(options, func(i, j int) bool {
		return options[i].name < options[j].name
	})
	return options
}
