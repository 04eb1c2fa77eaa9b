package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/dinoprep/internal/manifest"
	"github.com/agentic-research/dinoprep/internal/materialize"
	"github.com/agentic-research/dinoprep/internal/meta"
)

var (
	mergeFlag    bool
	linkModeFlag string
	manifestFlag string
)

var materializeCmd = &cobra.Command{
	Use:   "materialize [json-dir] [image-root] [output-root]",
	Short: "Build the linked dataset layout from JSON metadata",
	Long: `Reads every <category>.json under json-dir, resolves image and mask
paths against image-root, and links them into output-root as
<category>/{train,test,ground_truth}/... Existing links are left
untouched, so re-running resumes an interrupted materialization.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonDir, imageRoot, outputRoot := args[0], args[1], args[2]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		merge := cfg.Merge
		if cmd.Flags().Changed("merge") {
			merge = mergeFlag
		}
		modeStr := cfg.LinkMode
		if cmd.Flags().Changed("link-mode") {
			modeStr = linkModeFlag
		}
		mode, err := materialize.ParseLinkMode(modeStr)
		if err != nil {
			return err
		}

		if err := requireDir("JSON directory", jsonDir); err != nil {
			return err
		}
		if err := requireDir("image directory", imageRoot); err != nil {
			return err
		}

		// Symlink targets must survive a cwd change after the run.
		imageRoot, err = filepath.Abs(imageRoot)
		if err != nil {
			return err
		}
		outputRoot, err = filepath.Abs(outputRoot)
		if err != nil {
			return err
		}

		rootfs := osfs.New("/")
		if err := materialize.Prepare(rootfs, outputRoot, merge); err != nil {
			return err
		}

		ds, err := meta.Load(jsonDir, imageRoot)
		if err != nil {
			return err
		}

		opts := materialize.Options{Mode: mode}

		manifestPath := manifestFlag
		if !cmd.Flags().Changed("manifest") {
			manifestPath = filepath.Join(outputRoot, manifest.DefaultName)
		}
		if manifestPath != "" {
			w, err := manifest.NewWriter(manifestPath)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := w.Close(); cerr != nil {
					fmt.Fprintf(os.Stderr, "close manifest: %v\n", cerr)
				}
			}()
			opts.Recorder = w
		}

		stats, err := materialize.New(rootfs, opts).Run(ds, outputRoot)
		if err != nil {
			return err
		}

		fmt.Println()
		materialize.RenderSummary(os.Stdout, stats, outputRoot)
		if manifestPath != "" {
			fmt.Printf("Manifest:             %s\n", manifestPath)
		}
		return nil
	},
}

func init() {
	materializeCmd.Flags().BoolVar(&mergeFlag, "merge", false, "Populate an already existing output root")
	materializeCmd.Flags().StringVar(&linkModeFlag, "link-mode", "symlink", "Link mechanism: symlink or copy")
	materializeCmd.Flags().StringVar(&manifestFlag, "manifest", "", "Manifest database path (empty disables; default <output-root>/"+manifest.DefaultName+")")
	rootCmd.AddCommand(materializeCmd)
}
