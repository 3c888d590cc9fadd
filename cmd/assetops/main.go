// Command assetops builds, purges and checks asset bundles outside of page
// rendering: warm bundles before traffic arrives, purge stale ones from
// cron, and check the directories from a readiness probe.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	os.Exit(realMain(context.Background(), os.Args))
}

func realMain(ctx context.Context, args []string) int {
	app := newApp()
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
