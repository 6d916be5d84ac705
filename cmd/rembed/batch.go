package rembed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/soundprediction/rembed/pkg/dispatch"
	"github.com/soundprediction/rembed/pkg/server/dto"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch CLIENT [FILE]",
	Short: "Embed many texts or images concurrently",
	Long: `Embed every non-empty line of FILE (or stdin when FILE is "-" or
omitted) with a text client. With --images, every argument after CLIENT is an
image file embedded with a multimodal client.

Results are printed as JSON in input order together with batch statistics.
Failed items carry their error and do not stop the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Bool("images", false, "treat arguments as image files")
	batchCmd.Flags().String("prompt", "", "prompt for the image description stage")
	batchCmd.Flags().Bool("stats-only", false, "print only the batch statistics")
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	images, _ := cmd.Flags().GetBool("images")

	var res *dispatch.BatchResult
	if images {
		files := make([][]byte, 0, len(args)-1)
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			files = append(files, data)
		}
		prompt, _ := cmd.Flags().GetString("prompt")
		res, err = a.client.EmbedImagesBatchWithPrompt(cmd.Context(), name, files, prompt)
	} else {
		path := "-"
		if len(args) > 1 {
			path = args[1]
		}
		texts, readErr := readLines(path)
		if readErr != nil {
			return fmt.Errorf("failed to read input: %w", readErr)
		}
		res, err = a.client.EmbedBatch(cmd.Context(), name, texts)
	}
	if err != nil {
		return err
	}

	resp := dto.NewBatchResponse(res)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if statsOnly, _ := cmd.Flags().GetBool("stats-only"); statsOnly {
		return enc.Encode(resp.Stats)
	}
	return enc.Encode(resp)
}
