package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storeplane/pkg/api"
)

var getCmd = &cobra.Command{
	Use:   "get [store_id]",
	Short: "Get details of a store",
	Long:  `Retrieve detailed status information for a store, including its URLs and any recorded error.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewStoreClient(viper.GetString("url"))
		result, err := client.GetStore(args[0])
		if err != nil {
			printAPIError(cmd, err)
			return
		}

		printStore(cmd, result.Store)
	},
}

func printStore(cmd *cobra.Command, s api.StoreResponse) {
	cmd.Printf("%s %sStore Details%s\n", statusIcon(s.Status), colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, s.ID)
	cmd.Printf("%sName:%s        %s\n", colorDim, colorReset, s.Name)
	cmd.Printf("%sEngine:%s      %s\n", colorDim, colorReset, s.Engine)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(s.Status))
	cmd.Printf("%sNamespace:%s   %s\n", colorDim, colorReset, s.Namespace)

	if s.StoreURL != nil {
		cmd.Printf("%sStore URL:%s   %s\n", colorDim, colorReset, *s.StoreURL)
	}
	if s.AdminURL != nil {
		cmd.Printf("%sAdmin URL:%s   %s\n", colorDim, colorReset, *s.AdminURL)
	}
	if s.ErrorMessage != nil {
		cmd.Printf("%sError:%s       %s%s%s\n", colorDim, colorReset, colorRed, *s.ErrorMessage, colorReset)
	}

	cmd.Printf("%sCreated:%s     %s\n", colorDim, colorReset, s.CreatedAt.Format("Mon, 02 Jan 2006 15:04:05 MST"))
	cmd.Printf("%sUpdated:%s     %s\n", colorDim, colorReset, s.UpdatedAt.Format("Mon, 02 Jan 2006 15:04:05 MST"))
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "ready":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "provisioning", "deleting":
		return icon + " " + colorYellow + status + colorReset
	case "queued":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func statusIcon(status string) string {
	switch status {
	case "ready":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "provisioning", "deleting":
		return colorYellow + "⏳" + colorReset
	case "queued":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func printAPIError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d %s): %s\n", apiErr.StatusCode, apiErr.Code, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

func init() {
	rootCmd.AddCommand(getCmd)
}
