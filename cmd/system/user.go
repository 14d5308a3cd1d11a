package system

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/service/user"
	"github.com/willsigmon/boppa/internal/storage"
	"github.com/willsigmon/boppa/pkg/database"
	"github.com/willsigmon/boppa/pkg/util/password"
)

const generatedPasswordLength = 20

func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin users for the contact inbox",
	}

	cmd.AddCommand(newUserCreateCommand())
	cmd.AddCommand(newUserGetCommand())

	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var (
		username string
		pass     string
		generate bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if generate == (pass != "") {
				return errors.New("exactly one of --password or --generate is required")
			}
			if generate {
				pass = password.Generate(generatedPasswordLength)
			}

			return withUserService(cmd, func(svc user.Service, cfg *config.Config) error {
				ctx, cancel := commandContext(cfg)
				defer cancel()

				u, err := svc.Create(ctx, schema.InsertUser{Username: username, Password: pass})
				if err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Created user %q (id %d).\n", u.Username, u.ID)
				if generate {
					fmt.Fprintf(cmd.OutOrStdout(), "Generated password: %s\n", pass)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (3-64 characters)")
	cmd.Flags().StringVar(&pass, "password", "", "Password (8-128 characters)")
	cmd.Flags().BoolVar(&generate, "generate", false, "Generate a random password and print it")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newUserGetCommand() *cobra.Command {
	var (
		username string
		id       int
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up an admin user by username or id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (username == "") == (id == 0) {
				return errors.New("exactly one of --username or --id is required")
			}

			return withUserService(cmd, func(svc user.Service, cfg *config.Config) error {
				ctx, cancel := commandContext(cfg)
				defer cancel()

				var (
					u   *schema.User
					err error
				)
				if id != 0 {
					u, err = svc.Get(ctx, id)
				} else {
					u, err = svc.GetByUsername(ctx, username)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "id: %d\nusername: %s\n", u.ID, u.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to look up")
	cmd.Flags().IntVar(&id, "id", 0, "User id to look up")

	return cmd
}

func withUserService(cmd *cobra.Command, fn func(user.Service, *config.Config) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	drv, err := database.NewEntDriver(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer drv.Close()

	hasher := password.NewHasher(password.FromCentralConfig(cfg.Password))
	store := storage.NewDatabaseStorage(database.WithQueryLogging(drv, cfg.Database.Logging.Enabled))
	return fn(user.New(store, hasher), cfg)
}
