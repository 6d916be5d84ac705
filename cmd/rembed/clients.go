package rembed

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/soundprediction/rembed/pkg/provider"
	"github.com/soundprediction/rembed/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List the clients registered from configuration",
	RunE:  runClients,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the supported providers",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(providersCmd)

	clientsCmd.Flags().StringP("output", "o", "table", "output format (table, json, yaml)")
}

func runClients(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	clients := a.client.Clients()
	output, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	switch strings.ToLower(output) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(clients)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(clients)
	case "table", "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tPROVIDER\tMODEL\tEMBEDDING MODEL\tCONCURRENCY\tKEY")
		for _, c := range clients {
			kind := "text"
			if c.IsMultimodal() {
				kind = "multimodal"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n", c.Name, kind, c.Format, c.Model, c.EmbeddingModel, c.MaxConcurrentRequests, credentialSource(c))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// credentialSource tells whether a client carries its own key or relies on
// the provider environment variable.
func credentialSource(c types.ClientDescriptor) string {
	if c.HasCredential() {
		return "configured"
	}
	return "env"
}

func runProviders(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORMAT\tNAME\tEMBEDDING\tVISION\tKEY ENV")
	for _, f := range provider.Formats() {
		info, _ := provider.Lookup(f)
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n", info.Format, info.Name, info.SupportsEmbedding, info.SupportsVision, strings.Join(info.APIKeyEnv, ","))
	}
	return w.Flush()
}
