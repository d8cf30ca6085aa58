package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pushover "github.com/lhoward/pushover-go-client"
)

type credentials struct {
	AppToken  string `env:"PUSHOVER_APP_TOKEN,required"`
	UserToken string `env:"PUSHOVER_USER_TOKEN,required"`
}

// buildRecipient wires up an Application and Recipient from the
// environment. A .env file in the working directory is honored when
// present.
func buildRecipient(verbose bool) (*pushover.Application, *pushover.Recipient, error) {
	_ = godotenv.Load()

	var creds credentials
	if err := env.Parse(&creds); err != nil {
		return nil, nil, fmt.Errorf("loading credentials: %w", err)
	}

	app, err := pushover.NewApplication(creds.AppToken,
		pushover.WithRequestLogger(newConsoleLogger(verbose)),
	)
	if err != nil {
		return nil, nil, err
	}

	user, err := app.NewRecipient(creds.UserToken)
	if err != nil {
		return nil, nil, err
	}

	return app, user, nil
}
