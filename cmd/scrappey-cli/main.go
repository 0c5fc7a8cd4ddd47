package main

import (
	"context"
	"scrappey-go/cmd/scrappey-cli/commands"
	"scrappey-go/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
