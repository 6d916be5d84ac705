package rembed

import (
	"fmt"

	"github.com/soundprediction/rembed"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		if !debug {
			fmt.Fprintln(cmd.OutOrStdout(), rembed.Version())
			return nil
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprint(cmd.OutOrStdout(), a.client.Debug())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("debug", false, "print build and backend details")
}
