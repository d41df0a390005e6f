package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [store_id]",
	Short: "Tear down a store",
	Long:  `Request teardown of a store. Deletion runs asynchronously on the controller; use "storectl get" to watch it reach deleted.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewStoreClient(viper.GetString("url"))
		result, err := client.DeleteStore(args[0])
		if err != nil {
			printAPIError(cmd, err)
			return
		}
		cmd.Printf("%s %s\n", colorYellow+"⏳"+colorReset, result.Message)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
