package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
	"github.com/vibast-solutions/ms-go-sessionauth/app/service"
	"github.com/vibast-solutions/ms-go-sessionauth/config"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email> <password>",
	Short: "Register a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return createUser(cmd.Context(), cmd, newUserAuthServiceForCommands(db, cfg), args[0], args[1])
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

func newUserAuthServiceForCommands(db *sql.DB, cfg *config.Config) service.UserAuthService {
	return service.NewUserAuthService(repository.NewUserRepository(db), password.NewBcryptHasher(cfg.Auth.BcryptCost))
}

func createUser(ctx context.Context, cmd *cobra.Command, svc service.UserAuthService, email, pwd string) error {
	if email == "" || pwd == "" {
		return errors.New("email and password are required")
	}

	user, err := svc.RegisterUser(ctx, email, pwd)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return fmt.Errorf("email %q already registered", email)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user_id: %d\n", user.ID)
	fmt.Fprintf(out, "email: %s\n", user.Email)
	return nil
}
