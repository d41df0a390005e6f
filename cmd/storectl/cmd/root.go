package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "storectl is a command line tool for interacting with the storeplane control plane",
	Long: `storectl is the command-line interface for storeplane, a multi-tenant
Kubernetes control plane that provisions, tracks, and tears down isolated
e-commerce store stacks (WordPress + WooCommerce + MySQL, fronted by ingress).

Common workflows:

  Provision a new store:
    storectl create --name "My Store"

  List all stores:
    storectl list

  Inspect a store:
    storectl get <store-id>

  Retry a failed store:
    storectl retry <store-id>

  Tear down a store:
    storectl delete <store-id>

  Tail the audit log:
    storectl audit

Configuration:
  Set the controller endpoint via an environment variable or a config file:
    STOREPLANE_URL    Controller endpoint (default: http://localhost:8080)`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".storectl".
		viper.AddConfigPath(home)
		viper.SetConfigName(".storectl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "STOREPLANE_VARNAME".
	viper.SetEnvPrefix("STOREPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.storectl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "storeplane controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
