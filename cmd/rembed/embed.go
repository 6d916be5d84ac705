package rembed

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/soundprediction/rembed/pkg/types"
	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed CLIENT [TEXT]",
	Short: "Embed one text or image with a registered client",
	Long: `Embed one text with a text client, or one image (--image) with a
multimodal client. The vector is printed as base64 encoded little-endian
float32 values, or as a JSON array of floats with --format json.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().String("image", "", "image file to describe and embed")
	embedCmd.Flags().String("prompt", "", "prompt for the image description stage")
	embedCmd.Flags().StringP("format", "f", "base64", "output format (base64, json)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	imagePath, _ := cmd.Flags().GetString("image")
	format, _ := cmd.Flags().GetString("format")

	var vec types.Vector
	if imagePath != "" {
		image, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		prompt, _ := cmd.Flags().GetString("prompt")
		vec, err = a.client.EmbedImage(cmd.Context(), name, image, prompt)
		if err != nil {
			return err
		}
	} else {
		if len(args) < 2 {
			return fmt.Errorf("TEXT argument or --image is required")
		}
		vec, err = a.client.EmbedText(cmd.Context(), name, args[1])
		if err != nil {
			return err
		}
	}

	return printVector(cmd, vec, format)
}

func printVector(cmd *cobra.Command, vec types.Vector, format string) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		return json.NewEncoder(out).Encode(vec.Floats())
	case "base64", "":
		_, err := fmt.Fprintln(out, base64.StdEncoding.EncodeToString(vec))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
