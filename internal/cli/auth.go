package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twintray/twintray/internal/app"
	"github.com/twintray/twintray/internal/config"
)

var authCmd = &cobra.Command{
	Use:   "auth [resource]",
	Short: "Authenticate the service, or a single resource by name or id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		a := app.New(settings)
		ctx := context.Background()

		if len(args) == 0 {
			fmt.Println(styleHint.Render("Checking whether the service needs authentication..."))
			if err := a.Flow.EnsureServiceAuth(ctx); err != nil {
				return err
			}
			fmt.Println(styleSuccess.Render("Done."))
			return nil
		}

		resourceID, err := resolveResource(ctx, a, args[0])
		if err != nil {
			return err
		}
		fmt.Println(styleHint.Render("Authenticating resource..."))
		if err := a.Flow.AuthenticateResource(ctx, resourceID); err != nil {
			return err
		}
		fmt.Println(styleSuccess.Render("Resource authenticated."))
		return nil
	},
}

// resolveResource accepts either a resource id or a (case-sensitive)
// resource name and returns the id.
func resolveResource(ctx context.Context, a *app.App, nameOrID string) (string, error) {
	network, err := a.NetworkOrError(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := network.FindResource(nameOrID); ok {
		return nameOrID, nil
	}
	for _, r := range network.Resources {
		if r.Name == nameOrID {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("no resource named %q", nameOrID)
}
