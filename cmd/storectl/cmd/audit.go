package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Tail the audit log",
	Long:  `Show the most recent lifecycle events recorded across all stores.`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		client := NewStoreClient(viper.GetString("url"))
		result, err := client.ListAudit(limit)
		if err != nil {
			printAPIError(cmd, err)
			return
		}

		if len(result.Audit) == 0 {
			cmd.Println("No audit entries found.")
			return
		}

		for _, e := range result.Audit {
			storeID := "-"
			if e.StoreID != nil {
				storeID = *e.StoreID
			}
			cmd.Printf("%s  %-14s %-14s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), storeID, e.Action, e.Details)
		}
	},
}

func init() {
	auditCmd.Flags().Int("limit", 100, "Maximum number of entries to show")
	rootCmd.AddCommand(auditCmd)
}
