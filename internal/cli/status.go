package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twintray/twintray/internal/app"
	"github.com/twintray/twintray/internal/auth"
	"github.com/twintray/twintray/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the Twingate service state",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		a := app.New(settings)

		state, statusText, err := a.Client.ServiceState(context.Background())
		if err != nil {
			fmt.Println(styleLabel.Render("Service: ") + styleError.Render("unreachable"))
			fmt.Println(styleHint.Render("  " + err.Error()))
			return nil
		}

		fmt.Println(styleLabel.Render("Service: ") + stateStyle(state.String()).Render(state.String()))

		if url, ok := auth.ExtractAuthURL(statusText); ok {
			fmt.Println(styleLabel.Render("Sign in: ") + styleValue.Render(url))
		}
		return nil
	},
}
