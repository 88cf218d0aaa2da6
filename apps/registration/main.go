package main

import (
	"fmt"
	"log"
	"os"

	"github.com/G-Node/nestform/nestform"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "registration",
		Short:         "Lab account registration form service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd(), checkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registration service until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := nestform.LoadConfig(configPath)
			if err != nil {
				return err
			}
			srv, err := nestform.NewService("Registration", newAccountForm, welcome, *config)
			if err != nil {
				return err
			}
			if err := srv.Start(); err != nil {
				srv.Close()
				return err
			}
			defer srv.Stop()
			srv.WaitForInterrupt()
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")
	return cmd
}

// checkCmd constructs the form once to report nested form configuration
// errors without starting the service.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the form configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newAccountForm(nil, "")
			if err != nil {
				return err
			}
			log.Printf("Form is valid: %d fields", len(f.FieldNames()))
			return nil
		},
	}
}
