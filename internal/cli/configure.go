package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twintray/twintray/internal/config"
)

var configureCmd = &cobra.Command{
	Use:     "configure",
	Aliases: []string{"config"},
	Short:   "Configure twintray settings",
	Long: `Configure twintray settings interactively.

This allows you to modify:
  - Daemon, notifier, and privilege-escalation binaries
  - Daemon run directory
  - Refresh interval, fetch retries, and authentication timeout
  - Desktop notifications

Press Enter to keep the current value for any setting. Settings are
stored in ~/.config/twintray/settings.yaml.`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	promptString(reader, "Daemon binary", &settings.DaemonBinary, &changed)
	promptString(reader, "Notifier binary", &settings.NotifierBinary, &changed)
	promptString(reader, "Privilege escalation binary", &settings.ElevateBinary, &changed)
	promptString(reader, "Daemon run directory", &settings.RunDir, &changed)

	if err := promptInt(reader, "Refresh interval (seconds)", &settings.RefreshSeconds, &changed); err != nil {
		return err
	}
	if err := promptInt(reader, "Fetch retries", &settings.FetchMaxRetries, &changed); err != nil {
		return err
	}
	if err := promptInt(reader, "Authentication timeout (seconds)", &settings.AuthTimeoutSeconds, &changed); err != nil {
		return err
	}

	newNotifications := promptYesNo(reader, "Desktop notifications?", settings.Notifications)
	if newNotifications != settings.Notifications {
		settings.Notifications = newNotifications
		changed = true
	}

	if !changed {
		fmt.Println("\nNo changes made.")
		return nil
	}

	if err := config.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println("\n" + styleSuccess.Render("Settings saved.") +
		styleHint.Render(" Restart the tray to apply them."))
	return nil
}

// promptString prompts for a string value, keeping the current one on an
// empty response.
func promptString(reader *bufio.Reader, prompt string, value *string, changed *bool) {
	fmt.Printf("%s [%s]: ", prompt, *value)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response != "" && response != *value {
		*value = response
		*changed = true
	}
}

// promptInt prompts for a positive integer, keeping the current one on an
// empty response.
func promptInt(reader *bufio.Reader, prompt string, value *int, changed *bool) error {
	fmt.Printf("%s [%d]: ", prompt, *value)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(response)
	if response == "" {
		return nil
	}
	n, err := strconv.Atoi(response)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid value %q (expected a non-negative integer)", response)
	}
	if n != *value {
		*value = n
		*changed = true
	}
	return nil
}

// promptYesNo prompts for a yes/no value showing the current value.
func promptYesNo(reader *bufio.Reader, prompt string, current bool) bool {
	currentStr := "no"
	if current {
		currentStr = "yes"
	}

	fmt.Printf("%s [%s]: ", prompt, currentStr)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return current
	}
	return response == "y" || response == "yes"
}
