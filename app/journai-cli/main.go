// Command journai-cli runs maintenance tasks against the configured store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/journai/config"
	"github.com/yoockh/journai/internal/logger"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:           "journai-cli",
	Short:         "Maintenance commands for the journai store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List every user document",
	Args:  cobra.NoArgs,
	RunE:  runListUsers,
}

var populateDemoCmd = &cobra.Command{
	Use:   "populate-demo <uid>",
	Short: "Seed one week of demo vent sessions, journal entries and a mentor entry",
	Long: `Writes six vent sessions (enough to unlock mentor mode), one journal entry
per day and the week's mentor conversation for the given user.

Sessions go through the regular store path, so re-running the command does
not inflate the week's vent counter.`,
	Args: cobra.ExactArgs(1),
	RunE: runPopulateDemo,
}

var weekRangeCmd = &cobra.Command{
	Use:   "week-range <weekId>",
	Short: "Print the Monday..Sunday dates of an ISO week",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeekRange,
}

var demoWeek string

func init() {
	populateDemoCmd.Flags().StringVar(&demoWeek, "week", "", "ISO week id (YYYY-Www), defaults to the current week")
	rootCmd.AddCommand(listUsersCmd, populateDemoCmd, weekRangeCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore loads config and opens the selected backend.
func openStore(ctx context.Context) (repositories.Store, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.Log)
	if cfg.StoreBackend == config.BackendMemory {
		log.Warn("STORE_BACKEND is memory, nothing will be persisted")
	}
	store, err := config.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, log, nil
}

func runListUsers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no users found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UID\tEMAIL\tNAME\tADMIN\tLAST LOGIN")
	for _, u := range users {
		last := "-"
		if !u.LastLoginAt.IsZero() {
			last = u.LastLoginAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", u.UID, u.Email, u.DisplayName, u.IsPrivileged(), last)
	}
	fmt.Fprintf(w, "\n%d user(s)\n", len(users))
	return w.Flush()
}

func runWeekRange(cmd *cobra.Command, args []string) error {
	start, _, err := utils.WeekRange(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		fmt.Fprintf(out, "%s  %s\n", utils.DateString(d), d.Weekday())
	}
	return nil
}

func runPopulateDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	uid := args[0]

	weekID := demoWeek
	if weekID == "" {
		weekID = utils.WeekID(time.Now())
	}
	start, _, err := utils.WeekRange(weekID)
	if err != nil {
		return err
	}

	store, log, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	res, err := populateDemo(ctx, store, uid, weekID, start)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"uid":          uid,
		"week_id":      weekID,
		"new_sessions": res.newSessions,
		"vent_count":   res.ventCount,
	}).Info("demo week populated")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "week %s for %s\n", weekID, uid)
	fmt.Fprintf(out, "  vent sessions written: %d (new: %d)\n", res.sessions, res.newSessions)
	fmt.Fprintf(out, "  journal entries:       %d\n", res.journal)
	fmt.Fprintf(out, "  vent entry count:      %d\n", res.ventCount)
	fmt.Fprintln(out, "  mentor entry:          saved")
	return nil
}

type populateResult struct {
	sessions    int
	newSessions int
	journal     int
	ventCount   int
}

// populateDemo writes the demo week starting at monday (UTC midnight).
func populateDemo(ctx context.Context, store repositories.Store, uid, weekID string, monday time.Time) (populateResult, error) {
	var res populateResult

	if _, err := store.GetUser(ctx, uid); errors.Is(err, utils.ErrNotFound) {
		if _, err := store.TouchUser(ctx, demoProfile(uid), time.Now().UTC()); err != nil {
			return res, fmt.Errorf("create user: %w", err)
		}
	} else if err != nil {
		return res, fmt.Errorf("read user: %w", err)
	}

	for i, day := range demoVentDays {
		at := monday.AddDate(0, 0, i).Add(day.at)
		vs := day.session(at)
		created, err := store.SaveVentSession(ctx, uid, weekID, &vs, at)
		if err != nil {
			return res, fmt.Errorf("vent session %s: %w", vs.ID, err)
		}
		res.sessions++
		if created {
			res.newSessions++
		}
	}

	for i, content := range demoJournal {
		date := utils.DateString(monday.AddDate(0, 0, i))
		at := monday.AddDate(0, 0, i).Add(21 * time.Hour)
		if err := store.SaveJournalEntry(ctx, uid, date, content, at); err != nil {
			return res, fmt.Errorf("journal %s: %w", date, err)
		}
		res.journal++
	}

	mentorAt := monday.AddDate(0, 0, 6).Add(10 * time.Hour)
	entry := demoMentorEntry(uid, weekID, mentorAt)
	if err := store.SaveMentorEntry(ctx, uid, weekID, &entry, mentorAt); err != nil {
		return res, fmt.Errorf("mentor entry: %w", err)
	}

	week, err := store.GetWeek(ctx, uid, weekID)
	if err != nil {
		return res, fmt.Errorf("read week: %w", err)
	}
	res.ventCount = week.VentEntryCount
	return res, nil
}
