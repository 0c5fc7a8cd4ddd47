package commands

import (
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var websocketCmd = &cobra.Command{
	Use:   "websocket",
	Short: "Manages remote browsers driven over a websocket.",
}

var (
	websocketUserId int64
	websocketTtl    int
	websocketFlags  *requestFlags
	websocketOut    *outputFlags
)

func init() {
	websocketCreateCmd.Flags().Int64Var(&websocketUserId, "user", 0, "The user id the browser belongs to.")
	websocketCreateCmd.Flags().IntVar(&websocketTtl, "ttl", 0, "How long the browser stays open, in seconds.")
	websocketCreateCmd.MarkFlagRequired("user")
	websocketFlags = addRequestFlags(websocketCreateCmd, false)
	websocketOut = addOutputFlags(websocketCreateCmd)

	websocketCmd.AddCommand(websocketCreateCmd)
	rootCmd.AddCommand(websocketCmd)
}

var websocketCreateCmd = &cobra.Command{
	Use:   "create --user <id>",
	Short: "Starts a remote browser and prints its websocket endpoint.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := websocketFlags.options()
		if err != nil {
			serviceutil.Fatal("invalid options", err)
		}
		opts.SessionTtl = websocketTtl

		res, err := send(cmd.Context(), scrappey.CreateWebsocket(websocketUserId, opts))
		if err != nil {
			serviceutil.Fatal("failed to create websocket browser", err)
		}
		err = printResponse(cmd.Context(), cmd.OutOrStdout(), res, *websocketOut)
		if err != nil {
			serviceutil.Fatal("failed to print response", err)
		}
	},
}
