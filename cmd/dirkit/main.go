package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/dirkit/internal/auth"
	"github.com/bobmcallan/dirkit/internal/clients/admin"
	"github.com/bobmcallan/dirkit/internal/common"
	"github.com/bobmcallan/dirkit/internal/models"
)

const usage = `dirkit - workspace directory admin client

Usage:
  dirkit check <email>                      report whether the email is a user, group, or neither
  dirkit user get <email>                   fetch a user record
  dirkit user create <email> <first> <last> create a user (password read from DIRKIT_NEW_USER_PASSWORD)
  dirkit user delete <email>                delete a user
  dirkit aliases <email>                    list a user's email aliases
  dirkit users                              list all users in the customer scope
  dirkit version                            print version information
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if os.Args[1] == "version" {
		fmt.Println(common.GetFullVersion())
		return
	}

	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	config, err := common.LoadConfig(os.Getenv("DIRKIT_CONFIG"), "dirkit.toml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(config.Logging.Level)

	if missing := config.ValidateRequired(); len(missing) > 0 {
		logger.Error().Strs("missing", missing).Msg("Incomplete credentials")
		os.Exit(1)
	}

	common.PrintBanner(config, logger)

	ctx := context.Background()

	source, err := buildTokenSource(ctx, config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Authentication failed")
		os.Exit(1)
	}

	client := admin.NewClient(source,
		admin.WithBaseURL(config.Directory.BaseURL),
		admin.WithCustomer(config.Directory.Customer),
		admin.WithRateLimit(config.Directory.RateLimit),
		admin.WithTimeout(config.Directory.GetTimeout()),
		admin.WithLogger(logger),
	)

	if err := run(ctx, client, os.Args[1:]); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			logger.Warn().Msg("Not found")
			os.Exit(1)
		}
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// buildTokenSource picks the configured grant: service account when
// present, refresh token otherwise. ValidateRequired guarantees one of
// the two credential sets is complete.
func buildTokenSource(ctx context.Context, config *common.Config, logger *common.Logger) (*auth.Authenticator, error) {
	opts := []auth.Option{
		auth.WithTokenURL(config.Directory.TokenURL),
		auth.WithLogger(logger),
	}

	if config.Auth.HasServiceAccount() {
		key, err := os.ReadFile(config.Auth.ServiceAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account key: %w", err)
		}
		return auth.NewServiceAccountAuthenticator(ctx, auth.ServiceAccountCredentials{
			Email:       config.Auth.ServiceAccount,
			PrivateKey:  key,
			Impersonate: config.Auth.Impersonate,
		}, opts...)
	}

	return auth.NewAuthenticator(ctx, config.Auth.ClientID, config.Auth.ClientSecret, config.Auth.RefreshToken, opts...)
}

func run(ctx context.Context, client *admin.Client, args []string) error {
	switch args[0] {
	case "check":
		if len(args) != 2 {
			return fmt.Errorf("usage: dirkit check <email>")
		}
		return runCheck(ctx, client, args[1])

	case "user":
		if len(args) < 3 {
			return fmt.Errorf("usage: dirkit user get|create|delete <email> ...")
		}
		return runUser(ctx, client, args[1], args[2:])

	case "aliases":
		if len(args) != 2 {
			return fmt.Errorf("usage: dirkit aliases <email>")
		}
		aliases, err := client.GetUserAliases(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(aliases)

	case "users":
		users, err := client.FindUsers(ctx)
		if err != nil {
			return err
		}
		return printJSON(users)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func runCheck(ctx context.Context, client *admin.Client, email string) error {
	isUser, err := client.IsEmailAUser(ctx, email)
	if err != nil {
		return err
	}

	isGroup := false
	if !isUser {
		isGroup, err = client.IsEmailAGroup(ctx, email)
		if err != nil {
			return err
		}
	}

	return printJSON(map[string]any{
		"email": email,
		"user":  isUser,
		"group": isGroup,
	})
}

func runUser(ctx context.Context, client *admin.Client, verb string, args []string) error {
	switch verb {
	case "get":
		user, err := client.GetUser(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(user)

	case "create":
		if len(args) != 3 {
			return fmt.Errorf("usage: dirkit user create <email> <first> <last>")
		}
		user, err := client.CreateUser(ctx, &models.User{
			PrimaryEmail: args[0],
			Name: &models.UserName{
				GivenName:  args[1],
				FamilyName: args[2],
			},
			Password: os.Getenv("DIRKIT_NEW_USER_PASSWORD"),
		})
		if err != nil {
			return err
		}
		return printJSON(user)

	case "delete":
		return client.DeleteUser(ctx, args[0])

	default:
		return fmt.Errorf("unknown user command: %s", verb)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
