package cmd

import (
	"fmt"
	"time"

	"github.com/fiffu/vitalwatch/app"
	"github.com/fiffu/vitalwatch/lib"
	"github.com/fiffu/vitalwatch/lib/models"
	"github.com/spf13/cobra"
)

var (
	accountName  string
	accountPhone string
	accountRole  string
	tokenTTL     time.Duration

	accountCmd = &cobra.Command{
		Use:   "account",
		Short: "Manage elder and caregiver accounts.",
	}

	accountCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an account and print an access token for it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role := models.Role(accountRole)
			if !role.Valid() {
				return fmt.Errorf("--role must be %q or %q", models.RoleElder, models.RoleCaregiver)
			}

			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := models.Migrate(db); err != nil {
				return err
			}

			svc := lib.NewService(nil, cfg, log, db, nil)
			account, err := svc.CreateAccount(cmd.Context(), accountName, accountPhone, role)
			if err != nil {
				return err
			}

			token, err := app.SignToken(cfg.SecretAccessToken, models.Identity{AccountID: account.ID, Role: role}, tokenTTL)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "id: %d\nrole: %s\ntoken: %s\n", account.ID, role, token)
			return nil
		},
	}
)

func init() {
	accountCreateCmd.Flags().StringVarP(&accountName, "name", "n", "", "display name used in alerts")
	accountCreateCmd.Flags().StringVarP(&accountPhone, "phone", "p", "", "contact phone number")
	accountCreateCmd.Flags().StringVarP(&accountRole, "role", "r", "", "elder or caregiver")
	accountCreateCmd.Flags().DurationVar(&tokenTTL, "token-ttl", 30*24*time.Hour, "lifetime of the printed access token")
	accountCreateCmd.MarkFlagRequired("name")
	accountCreateCmd.MarkFlagRequired("role")

	accountCmd.AddCommand(accountCreateCmd)
}
