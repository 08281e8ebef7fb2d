/*
Package cmd supports the command-line interface for the flshots utility.
*/
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Version is set by main at build time
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flshots",
	Short: "flshots submits immunization records to the FL SHOTS registry",
	Long: `
flshots converts immunization records from a tabular upload into HL7 v2
VXU messages and submits them to the Florida SHOTS state immunization
registry over its SOAP web service, archiving each generated message
before delivery is attempted.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func configureLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if viper.GetBool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if logfile := viper.GetString("log"); logfile != "" {
		f, err := os.OpenFile(logfile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal error: couldn't open log file ('%s'): %s\n", logfile, err)
			os.Exit(1)
		}
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flshots.yaml)")

	rootCmd.PersistentFlags().String("log", "", "Log file to use")
	viper.BindPFlag("log", rootCmd.PersistentFlags().Lookup("log"))
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// registry configuration
	rootCmd.PersistentFlags().String("registry-endpoint", "P", "FL SHOTS endpoint - (P)roduction or (T)esting")
	viper.BindPFlag("registry-endpoint", rootCmd.PersistentFlags().Lookup("registry-endpoint"))
	rootCmd.PersistentFlags().String("registry-endpoint-url", "", "URL for FL SHOTS endpoint (if different to default for P/T)")
	viper.BindPFlag("registry-endpoint-url", rootCmd.PersistentFlags().Lookup("registry-endpoint-url"))
	rootCmd.PersistentFlags().String("registry-username", "", "Username for the FL SHOTS SOAP service")
	viper.BindPFlag("registry-username", rootCmd.PersistentFlags().Lookup("registry-username"))
	rootCmd.PersistentFlags().String("registry-password", "", "Password for the FL SHOTS SOAP service")
	viper.BindPFlag("registry-password", rootCmd.PersistentFlags().Lookup("registry-password"))
	rootCmd.PersistentFlags().Int("registry-timeout-seconds", 30, "Timeout for calls to the FL SHOTS endpoint")
	viper.BindPFlag("registry-timeout-seconds", rootCmd.PersistentFlags().Lookup("registry-timeout-seconds"))
	rootCmd.PersistentFlags().Int("credentials-cache-minutes", 5, "Credential cache expiration in minutes, 0=no cache")
	viper.BindPFlag("credentials-cache-minutes", rootCmd.PersistentFlags().Lookup("credentials-cache-minutes"))

	// object store configuration
	rootCmd.PersistentFlags().String("store-endpoint", "", "Object store endpoint (empty = local filesystem)")
	viper.BindPFlag("store-endpoint", rootCmd.PersistentFlags().Lookup("store-endpoint"))
	rootCmd.PersistentFlags().String("store-access-key", "", "Object store access key")
	viper.BindPFlag("store-access-key", rootCmd.PersistentFlags().Lookup("store-access-key"))
	rootCmd.PersistentFlags().String("store-secret-key", "", "Object store secret key")
	viper.BindPFlag("store-secret-key", rootCmd.PersistentFlags().Lookup("store-secret-key"))
	rootCmd.PersistentFlags().Bool("store-use-ssl", true, "Use TLS for the object store")
	viper.BindPFlag("store-use-ssl", rootCmd.PersistentFlags().Lookup("store-use-ssl"))
	rootCmd.PersistentFlags().String("store-bucket", "", "Bucket holding uploads and archived messages")
	viper.BindPFlag("store-bucket", rootCmd.PersistentFlags().Lookup("store-bucket"))
	rootCmd.PersistentFlags().String("archive-prefix", "flshots-hl7-messages/", "Key prefix for archived messages within the bucket")
	viper.BindPFlag("archive-prefix", rootCmd.PersistentFlags().Lookup("archive-prefix"))
	rootCmd.PersistentFlags().String("archive-dir", "hl7-out", "Local directory for archived messages when no object store is configured")
	viper.BindPFlag("archive-dir", rootCmd.PersistentFlags().Lookup("archive-dir"))
	rootCmd.PersistentFlags().String("file-prefix", "NomiHealth", "Prefix for archived message names")
	viper.BindPFlag("file-prefix", rootCmd.PersistentFlags().Lookup("file-prefix"))

	// message templates
	rootCmd.PersistentFlags().String("template-dir", "", "Directory of segment template overrides (msh.txt, pid.txt, ...)")
	viper.BindPFlag("template-dir", rootCmd.PersistentFlags().Lookup("template-dir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".flshots" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".flshots")
	}

	viper.SetEnvPrefix("FLSHOTS")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
