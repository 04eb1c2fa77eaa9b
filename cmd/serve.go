package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/dinoprep/internal/nfsexport"
)

var serveCmd = &cobra.Command{
	Use:   "serve [data-root]",
	Short: "Export a materialized tree read-only over NFS",
	Long: `Serves data-root over NFS on an ephemeral port so a pipeline host on
another machine can mount the dataset without copying it. The export is
read-only regardless of client mount options. Ctrl-C stops the server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataRoot := args[0]
		if err := requireDir("data root", dataRoot); err != nil {
			return err
		}
		dataRoot, err := filepath.Abs(dataRoot)
		if err != nil {
			return err
		}

		srv, err := nfsexport.NewServer(osfs.New(dataRoot))
		if err != nil {
			return err
		}
		defer srv.Close()

		fmt.Printf("Serving %s over NFS on port %d\n", dataRoot, srv.Port())
		fmt.Printf("Mount it with:\n  %s\n", srv.MountCommand("/mnt/dataset"))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		<-ctx.Done()

		fmt.Println("\nShutting down.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
