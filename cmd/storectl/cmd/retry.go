package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var retryCmd = &cobra.Command{
	Use:   "retry [store_id]",
	Short: "Retry a failed store",
	Long:  `Re-attempt provisioning for a store currently in failed status.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewStoreClient(viper.GetString("url"))
		result, err := client.RetryStore(args[0])
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		cmd.Printf("%s %s\n", colorYellow+"⏳"+colorReset, result.Message)
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
