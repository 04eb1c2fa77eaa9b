package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/dinoprep/internal/confgen"
	"github.com/agentic-research/dinoprep/internal/scan"
)

var (
	preprocessFlag string
	outDirFlag     string
)

var registerCmd = &cobra.Command{
	Use:   "register [data-root] [dataset-name]",
	Short: "Scan a materialized tree and emit the registration snippet",
	Long: `Walks an already materialized dataset tree, derives the object list and
per-object anomaly types, and renders the configuration snippet to be
pasted into the downstream pipeline's get_dataset_info() function. The
snippet is printed and saved to dataset_config_<dataset-name>.txt.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataRoot, datasetName := args[0], args[1]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		preprocess := cfg.Generator.Preprocess
		if cmd.Flags().Changed("preprocess") {
			preprocess = preprocessFlag
		}
		outDir := cfg.Generator.OutDir
		if cmd.Flags().Changed("out") {
			outDir = outDirFlag
		}

		if err := requireDir("data root", dataRoot); err != nil {
			return err
		}
		dataRoot, err = filepath.Abs(dataRoot)
		if err != nil {
			return err
		}

		fmt.Printf("Scanning dataset structure in: %s\n", dataRoot)
		res, err := scan.Scan(osfs.New("/"), dataRoot)
		if err != nil {
			return err
		}
		for _, obj := range res.Objects {
			fmt.Printf("  - %s: %d train, %d test samples, %d anomaly types\n",
				obj, res.TrainCounts[obj], res.TestCounts[obj], len(res.Anomalies[obj]))
		}
		fmt.Printf("Found %d object categories\n", len(res.Objects))

		path, code, err := confgen.WriteFile(outDir, confgen.Params{
			Dataset:    datasetName,
			Preprocess: preprocess,
			Objects:    res.Objects,
			Anomalies:  res.Anomalies,
		})
		if err != nil {
			return err
		}

		fmt.Println("\nAdd the following code to src/utils.py in get_dataset_info():")
		fmt.Println(code)
		fmt.Printf("Configuration also saved to: %s\n", path)
		fmt.Printf("\nNext steps:\n")
		fmt.Printf("  1. Copy the above code to src/utils.py\n")
		fmt.Printf("  2. Run: python run_anomalydino.py --dataset %s --data_root %s\n", datasetName, dataRoot)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&preprocessFlag, "preprocess", "agnostic", "Preprocess mode for masking/rotation defaults")
	registerCmd.Flags().StringVar(&outDirFlag, "out", ".", "Directory for the generated snippet file")
	rootCmd.AddCommand(registerCmd)
}
