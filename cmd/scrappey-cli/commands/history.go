package commands

import (
	"scrappey-go/cmd/scrappey-cli/globals"
	"scrappey-go/lib/textutil"
	"scrappey-go/lib/util/serviceutil"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "How many exchanges to print, 0 prints all of them.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:         "history [--limit <n>]",
	Short:       "Prints the most recent exchanges recorded in the history database.",
	Args:        cobra.NoArgs,
	Annotations: storeOnly,
	Run: func(cmd *cobra.Command, args []string) {
		store := globals.Get(cmd.Context()).Store
		if store == nil {
			serviceutil.Fatal("history needs a database, pass --db or set db in scrappey.json5", nil)
		}
		exchanges, err := store.ListExchanges(cmd.Context(), historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to read history", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"#", "Time", "Command", "Url", "Session", "Result"})
		for _, exchange := range exchanges {
			result := exchange.Data
			if exchange.Error != "" {
				result = textutil.Truncate(textutil.OneLine(exchange.Error), 60)
			}
			t.AppendRow(table.Row{
				exchange.Id,
				exchange.Time.Format(time.DateTime),
				exchange.Cmd,
				textutil.Truncate(exchange.Url, 50),
				exchange.Session,
				result,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
