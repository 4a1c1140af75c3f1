package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"phrasecounter/internal/hotkey"
	"phrasecounter/internal/phrase"
)

func newAddCmd(root *rootOptions) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a phrase (hotkey defaults to its first letter)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(a *app) error {
				var opts []phrase.CreateOption
				if key != "" {
					opts = append(opts, phrase.WithHotkey(key))
				}
				p, err := a.ctrl.Create(cmd.Context(), strings.Join(args, " "), opts...)
				if errors.Is(err, phrase.ErrEmptyText) {
					return errors.New("phrase text is empty")
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %q [%s]\n", p.Text, p.Hotkey)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&key, "hotkey", "k", "", "Hotkey character")
	return cmd
}

func newListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List phrases with their hotkeys and counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, root, func(a *app) error {
				return printPhrases(cmd.OutOrStdout(), a.ctrl.Phrases().All())
			})
		},
	}
}

func newPressCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "press <keys>",
		Short: "Press hotkeys, one increment per matching phrase and character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(a *app) error {
				matched := 0
				for _, r := range args[0] {
					updated, err := a.ctrl.Press(cmd.Context(), hotkey.KeyPress{Rune: r})
					if err != nil {
						return err
					}
					matched += len(updated)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d increments\n", matched)
				return nil
			})
		},
	}
}

func newIncCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inc <phrase>",
		Short: "Increment a phrase by id or text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPhrase(cmd, root, args, func(a *app, p phrase.Phrase) error {
				p, err := a.ctrl.Increment(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", p.Text, p.Count)
				return nil
			})
		},
	}
}

func newDecCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dec <phrase>",
		Short: "Decrement a phrase by id or text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPhrase(cmd, root, args, func(a *app, p phrase.Phrase) error {
				p, err := a.ctrl.Decrement(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", p.Text, p.Count)
				return nil
			})
		},
	}
}

func newHotkeyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hotkey <phrase> <key>",
		Short: "Change the hotkey of a phrase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPhrase(cmd, root, args[:1], func(a *app, p phrase.Phrase) error {
				p, err := a.ctrl.SetHotkey(cmd.Context(), p.ID, args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: [%s]\n", p.Text, p.Hotkey)
				return nil
			})
		},
	}
}

func newRmCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <phrase>",
		Short: "Delete a phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPhrase(cmd, root, args, func(a *app, p phrase.Phrase) error {
				if err := a.ctrl.Remove(cmd.Context(), p.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", p.Text)
				return nil
			})
		},
	}
}

func newResetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Set every count to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, root, func(a *app) error {
				return a.ctrl.Reset(cmd.Context())
			})
		},
	}
}

func newSaveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Archive the current counts to history and reset them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, root, func(a *app) error {
				summary, err := a.ctrl.SaveHistory(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), summary.String())
				return nil
			})
		},
	}
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var byDay bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, root, func(a *app) error {
				out := cmd.OutOrStdout()
				if byDay {
					for _, d := range a.ctrl.History().ByDay() {
						_, _ = fmt.Fprintf(out, "%s\t%d\n", d.Label, d.Total())
						for _, name := range sortedKeys(d.Counts) {
							_, _ = fmt.Fprintf(out, "\t%s: %d\n", name, d.Counts[name])
						}
					}
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "TIME\tCOUNT\tPHRASE")
				for _, e := range a.ctrl.History().All() {
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n",
						e.Timestamp.Local().Format("2006-01-02 15:04"), e.Snapshot.Count, e.Snapshot.Text)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&byDay, "by-day", false, "Sum counts per calendar day")
	return cmd
}

// withPhrase resolves args (an id or the phrase text) before calling fn
func withPhrase(cmd *cobra.Command, root *rootOptions, args []string, fn func(*app, phrase.Phrase) error) error {
	return withApp(cmd, root, func(a *app) error {
		ref := strings.Join(args, " ")
		p, ok := a.ctrl.Phrases().Find(ref)
		if !ok {
			return fmt.Errorf("no phrase %q", ref)
		}
		return fn(a, p)
	})
}

func printPhrases(w io.Writer, phrases []phrase.Phrase) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tCOUNT\tPHRASE\tID")
	for _, p := range phrases {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", p.Hotkey, p.Count, p.Text, p.ID)
	}
	return tw.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
