package rembed

import (
	"encoding/json"
	"fmt"

	"github.com/soundprediction/rembed/pkg/utils"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank CLIENT QUERY [FILE]",
	Short: "Rank the lines of a file by similarity to a query",
	Long: `Embed QUERY and every non-empty line of FILE (or stdin) with a text client
and print the most similar lines by cosine similarity. Lines that fail to
embed are skipped.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntP("top", "k", 5, "number of results")
}

type rankedLine struct {
	Line  int     `json:"line"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

func runRank(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name, query := args[0], args[1]
	path := "-"
	if len(args) > 2 {
		path = args[2]
	}
	lines, err := readLines(path)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	queryVec, err := a.client.EmbedText(cmd.Context(), name, query)
	if err != nil {
		return err
	}
	res, err := a.client.EmbedBatch(cmd.Context(), name, lines)
	if err != nil {
		return err
	}

	target := queryVec.Floats()
	scored := make([]utils.ScoredItem[rankedLine], 0, len(lines))
	for _, r := range res.Results {
		if !r.OK() {
			a.logger.Warn("skipping line", "line", r.Index+1, "error", r.Err)
			continue
		}
		score := utils.CosineSimilarity(target, r.Embedding.Floats())
		scored = append(scored, utils.ScoredItem[rankedLine]{
			Item:  rankedLine{Line: r.Index + 1, Text: lines[r.Index], Score: score},
			Score: score,
		})
	}

	k, _ := cmd.Flags().GetInt("top")
	top := utils.TopKByScore(scored, k)
	out := make([]rankedLine, len(top))
	for i, item := range top {
		out[i] = item.Item
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
