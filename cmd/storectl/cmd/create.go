package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storeplane/pkg/api"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new store",
	Long: `Provision a new e-commerce store. The store is created immediately in
queued status; provisioning happens asynchronously on the controller.

Example:
  storectl create --name "My Store"
  storectl create --name "My Store" --engine woocommerce`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		engine, _ := flags.GetString("engine")

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}

		client := NewStoreClient(viper.GetString("url"))
		result, err := client.CreateStore(api.CreateStoreRequest{Name: name, Engine: engine})
		if err != nil {
			printAPIError(cmd, err)
			return
		}

		cmd.Printf("%s Store queued!\nID: %s\nName: %s\nStatus: %s\n", colorGreen+"✓"+colorReset, result.Store.ID, result.Store.Name, result.Store.Status)
	},
}

func init() {
	flags := createCmd.Flags()
	flags.StringP("name", "n", "", "Name of the store (required)")
	flags.StringP("engine", "e", "", "Engine tag (default: woocommerce)")

	rootCmd.AddCommand(createCmd)
}
