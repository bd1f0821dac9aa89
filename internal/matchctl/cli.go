package matchctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/volmatch/pkg/errs"
	"github.com/okian/volmatch/pkg/logger"
)

type rootFlags struct {
	cfg     Config
	jsonOut bool
	verbose bool
}

// NewRootCommand builds the matchctl command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "matchctl",
		Short: "Operate the volunteer matching API",
		Long: `matchctl lists ranked volunteers for an event, commits matches,
reads match history and verifies that listings are stable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return err
			}
			if flags.verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.cfg.BaseURL, "url", DefaultBaseURL, "Base URL of the service")
	pf.StringVar(&flags.cfg.Prefix, "prefix", DefaultPrefix, "Path prefix of the matching routes")
	pf.DurationVar(&flags.cfg.Timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	pf.BoolVar(&flags.jsonOut, "json", false, "Output in JSON format")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newListCommand(flags),
		newCommitCommand(flags),
		newHistoryCommand(flags),
		newVerifyCommand(flags),
	)
	return root
}

func newListCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list EVENT_ID",
		Short: "List eligible volunteers ordered by priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vols, err := NewClient(flags.cfg).List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return writeJSON(out, vols)
			}
			for i, v := range vols {
				fmt.Fprintf(out, "%d. %s %s %s [%s]\n", i+1, v.ID, v.FirstName, v.LastName, strings.Join(v.Skills, ", "))
			}
			return nil
		},
	}
}

func newCommitCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "commit EVENT_ID VOLUNTEER_ID...",
		Short: "Commit volunteers to an event",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := NewClient(flags.cfg).Commit(cmd.Context(), args[0], args[1:])
			if err != nil && !errors.Is(err, errs.ErrPartialFailure) {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonOut {
				if werr := writeJSON(out, res); werr != nil {
					return werr
				}
				return err
			}
			fmt.Fprintln(out, res.Message)
			for _, m := range res.Matches {
				fmt.Fprintf(out, "saved %s -> %s\n", m.VolunteerID, m.EventID)
			}
			for _, f := range res.Failures {
				fmt.Fprintf(out, "failed %s: %s (%s)\n", f.VolunteerID, f.Message, f.Code)
			}
			return err
		},
	}
}

func newHistoryCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history EVENT_ID",
		Short: "Show committed matches for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := NewClient(flags.cfg).History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return writeJSON(out, entries)
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s priority=%d at=%s\n", e.ID, e.VolunteerID, e.Priority, e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
}

func newVerifyCommand(flags *rootFlags) *cobra.Command {
	var skills []string
	cmd := &cobra.Command{
		Use:   "verify EVENT_ID",
		Short: "Check that listings are stable and skill-matched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := Verify(cmd.Context(), NewClient(flags.cfg), args[0], skills)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d volunteers for %s\n", len(report.Volunteers), report.EventID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "Required skill of the event (repeatable)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
