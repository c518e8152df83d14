package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberdate/spark/internal/core"
)

func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the local profile",
	}
	cmd.AddCommand(newProfileInitCmd(), newProfileShowCmd())
	return cmd
}

func newProfileInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the local profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			name, _ := cmd.Flags().GetString("name")
			server, _ := cmd.Flags().GetString("server")
			upload, _ := cmd.Flags().GetString("upload")
			token, _ := cmd.Flags().GetString("token")
			debounce, _ := cmd.Flags().GetInt("typing-debounce-ms")

			profile := core.Profile{
				UserID:           userID,
				DisplayName:      name,
				ServerURL:        server,
				UploadURL:        upload,
				AuthToken:        token,
				TypingDebounceMS: debounce,
			}
			if err := profile.Validate(); err != nil {
				return err
			}
			if err := core.WriteProfile(profile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "profile written")
			return nil
		},
	}
	cmd.Flags().String("user", "", "local user id")
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("server", "", "websocket server url (wss://…)")
	cmd.Flags().String("upload", "", "voice upload endpoint (https://…)")
	cmd.Flags().String("token", "", "bearer token for uploads")
	cmd.Flags().Int("typing-debounce-ms", 0, "paused-typing quiet period override")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the local profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := core.ReadProfile()
			if err != nil {
				return err
			}
			if profile == nil {
				return fmt.Errorf("no profile configured; run `spark profile init`")
			}
			shown := *profile
			if shown.AuthToken != "" {
				shown.AuthToken = "…redacted…"
			}
			data, err := json.MarshalIndent(shown, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
