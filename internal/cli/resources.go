package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twintray/twintray/internal/app"
	"github.com/twintray/twintray/internal/config"
	"github.com/twintray/twintray/internal/twingate"
)

// quickFetchRetries keeps the terminal command snappy; the tray uses the
// full budget from settings.
const quickFetchRetries = 2

var resourcesCmd = &cobra.Command{
	Use:     "resources",
	Aliases: []string{"ls"},
	Short:   "List resources on the current network",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		a := app.New(settings)

		network, err := a.Client.FetchNetwork(context.Background(), quickFetchRetries)
		if err != nil {
			if errors.Is(err, twingate.ErrAuthRequired) {
				fmt.Println(styleWarning.Render("Authentication required.") +
					styleHint.Render(" Run 'twintray auth' to sign in."))
				return nil
			}
			return err
		}
		if network == nil {
			fmt.Println(styleError.Render("The Twingate service is not running.") +
				styleHint.Render(" Run 'twintray start'."))
			return nil
		}

		fmt.Println(styleBrand.Render("Twingate") + styleLabel.Render(" — signed in as ") +
			styleValue.Render(network.User.Email))
		if network.InternetSecurity.Mode > 0 {
			fmt.Println(styleSuccess.Render("Internet security enabled"))
		}
		fmt.Println()

		visible := network.VisibleResources()
		if len(visible) == 0 {
			fmt.Println(styleHint.Render("No visible resources."))
			return nil
		}
		for _, r := range visible {
			line := "  " + styleValue.Render(r.Name) + styleLabel.Render("  "+r.DisplayAddress())
			if r.NeedsAuth() {
				line += "  " + styleWarning.Render("auth required")
			}
			fmt.Println(line)
		}
		fmt.Println()
		fmt.Println(styleLabel.Render(fmt.Sprintf("%d resources", len(visible))))
		return nil
	},
}
