package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-research/dinoprep/internal/manifest"
)

var verifyManifestFlag string

var verifyCmd = &cobra.Command{
	Use:   "verify [output-root]",
	Short: "Check every manifest entry still resolves",
	Long: `Reads the manifest database recorded during materialize and re-checks
each link: the link itself must still exist in the tree, and its source
file must still be present (a deleted source leaves a dangling symlink).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputRoot := args[0]
		if err := requireDir("output root", outputRoot); err != nil {
			return err
		}

		dbPath := verifyManifestFlag
		if dbPath == "" {
			dbPath = filepath.Join(outputRoot, manifest.DefaultName)
		}

		res, err := manifest.Verify(dbPath)
		if err != nil {
			return err
		}

		fmt.Printf("Checked %d links\n", res.Checked)
		for _, e := range res.BrokenLinks {
			fmt.Printf("  missing link:   %s\n", e.Path)
		}
		for _, e := range res.MissingSources {
			fmt.Printf("  missing source: %s (-> %s)\n", e.Source, e.Path)
		}
		if !res.OK() {
			return fmt.Errorf("%d broken links, %d missing sources",
				len(res.BrokenLinks), len(res.MissingSources))
		}
		fmt.Println("Manifest is consistent with the tree.")
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyManifestFlag, "manifest", "", "Manifest database path (default <output-root>/"+manifest.DefaultName+")")
	rootCmd.AddCommand(verifyCmd)
}
