package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stores",
	Long:  `List every store known to the control plane, newest first.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewStoreClient(viper.GetString("url"))
		result, err := client.ListStores()
		if err != nil {
			printAPIError(cmd, err)
			return
		}

		if len(result.Stores) == 0 {
			cmd.Println("No stores found.")
			return
		}

		cmd.Printf("%-14s %-24s %-12s %-13s\n", "ID", "NAME", "ENGINE", "STATUS")
		for _, s := range result.Stores {
			cmd.Printf("%-14s %-24s %-12s %s\n", s.ID, s.Name, s.Engine, colorizeStatus(s.Status))
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
