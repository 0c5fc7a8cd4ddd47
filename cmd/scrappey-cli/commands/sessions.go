package commands

import (
	"fmt"
	"log/slog"
	"scrappey-go/cmd/scrappey-cli/globals"
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/util/serviceutil"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manages persistent browser sessions.",
}

var (
	createSessionId string
	generateId      bool
	createFlags     *requestFlags
	destroyTracked  bool
	listUserId      int64
	listJson        bool
)

func init() {
	createSessionCmd.Flags().StringVar(&createSessionId, "id", "", "Choose the id of the new session.")
	createSessionCmd.Flags().BoolVar(&generateId, "generate-id", false, "Generate a random id for the new session.")
	createFlags = addRequestFlags(createSessionCmd, false)

	destroySessionCmd.Flags().BoolVar(&destroyTracked, "tracked", false, "Destroy every session tracked in the history database.")

	listSessionsCmd.Flags().Int64Var(&listUserId, "user", 0, "The user id the sessions belong to.")
	listSessionsCmd.Flags().BoolVar(&listJson, "json", false, "Print the raw response body.")

	sessionsCmd.AddCommand(createSessionCmd, destroySessionCmd, listSessionsCmd, activeSessionCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func newSessionId() (string, error) {
	id, err := random.String(16)
	if err != nil {
		return "", err
	}
	return "cli-" + id, nil
}

var createSessionCmd = &cobra.Command{
	Use:   "create [--id <id> | --generate-id]",
	Short: "Creates a session and prints its id.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := createFlags.options()
		if err != nil {
			serviceutil.Fatal("invalid options", err)
		}
		command := scrappey.CreateSession(opts)
		command.Session = createSessionId
		if command.Session == "" {
			command.Session = createFlags.session
		}
		if generateId && command.Session == "" {
			command.Session, err = newSessionId()
			if err != nil {
				serviceutil.Fatal("failed to generate a session id", err)
			}
		}

		res, err := send(cmd.Context(), command)
		if err != nil {
			serviceutil.Fatal("failed to create session", err)
		}
		if !res.Succeeded() {
			printFragments(cmd.OutOrStdout(), res)
			serviceutil.Fatal("the api did not create a session", fmt.Errorf("%s", res.Error))
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Session)
	},
}

var destroySessionCmd = &cobra.Command{
	Use:   "destroy <id>... | --tracked",
	Short: "Destroys sessions.",
	Run: func(cmd *cobra.Command, args []string) {
		ids := args
		if destroyTracked {
			store := globals.Get(cmd.Context()).Store
			if store == nil {
				serviceutil.Fatal("--tracked needs a history database, pass --db", nil)
			}
			tracked, err := store.TrackedSessions(cmd.Context())
			if err != nil {
				serviceutil.Fatal("failed to read tracked sessions", err)
			}
			for _, session := range tracked {
				ids = append(ids, session.Id)
			}
		}
		if len(ids) == 0 {
			serviceutil.Fatal("no session to destroy", nil)
		}

		failed := 0
		for _, id := range ids {
			res, err := send(cmd.Context(), scrappey.DestroySession(id))
			switch {
			case err != nil:
				failed++
				slog.Error("failed to destroy session", "session", id, "err", err)
			case !res.Succeeded():
				failed++
				slog.Error("the api did not destroy session", "session", id, "error", res.Error)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "destroyed %s\n", id)
			}
		}
		if failed > 0 {
			serviceutil.Fatal(fmt.Sprintf("%d of %d sessions were not destroyed", failed, len(ids)), nil)
		}
	},
}

var listSessionsCmd = &cobra.Command{
	Use:   "list [--user <id>]",
	Short: "Lists the open sessions.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		res, err := send(cmd.Context(), scrappey.ListSessions(listUserId))
		if err != nil {
			serviceutil.Fatal("failed to list sessions", err)
		}
		if listJson {
			err = printJson(cmd.OutOrStdout(), res.Raw)
			if err != nil {
				serviceutil.Fatal("failed to print response", err)
			}
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Session", "Last accessed"})
		for _, session := range res.Sessions {
			lastAccessed := ""
			if session.LastAccessed > 0 {
				lastAccessed = time.UnixMilli(session.LastAccessed).Format(time.DateTime)
			}
			t.AppendRow(table.Row{session.Session, lastAccessed})
		}
		t.AppendFooter(table.Row{"Open", fmt.Sprintf("%d / %d", res.Open, res.Limit)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var activeSessionCmd = &cobra.Command{
	Use:   "active <id>",
	Short: "Checks whether a session is still open.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := send(cmd.Context(), scrappey.SessionActive(args[0]))
		if err != nil {
			serviceutil.Fatal("failed to check session", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s active: %t\n", args[0], res.Active)
	},
}
