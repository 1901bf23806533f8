// Command xcodesync keeps Xcode color themes, key bindings, and template
// macros synchronized with a GitHub Gist.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/makeeyaf/xcodesync/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		// The logger is built inside the app; fall back to stderr here.
		os.Stderr.WriteString("xcodesync: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "xcodesync",
		Short:         "Sync Xcode customizations through a GitHub Gist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newUploadCmd(a),
		newDownloadCmd(a),
		newWatchCmd(a),
		newRemoteCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		a.Log.Error(err)
		os.Exit(1)
	}
}
