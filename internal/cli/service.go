package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twintray/twintray/internal/app"
	"github.com/twintray/twintray/internal/config"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Twingate service (elevated)",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		a := app.New(settings)

		if _, err := a.Client.Start(context.Background()); err != nil {
			return err
		}
		fmt.Println(styleSuccess.Render("Service started.") +
			styleHint.Render(" It may take a few seconds to connect."))
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the Twingate service (elevated)",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		a := app.New(settings)

		if _, err := a.Client.Stop(context.Background()); err != nil {
			return err
		}
		fmt.Println(styleSuccess.Render("Service stopped."))
		return nil
	},
}
