package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"memrise-uploader/lib/restyutil"
	"memrise-uploader/lib/scrapers/memrise"
	"memrise-uploader/lib/util/serviceutil"

	"github.com/AlecAivazis/survey/v2"
	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

const keyringService = "memrise-cli"

var sessionFile *string

func init() {
	sessionFile = rootCmd.PersistentFlags().String(
		"session-file", "",
		"Persist session cookies to this file and reuse them on later runs.",
	)
}

// credentials come from the environment (optionally a .env file), then
// the system keyring, then interactive prompts. a password entered at the
// prompt can be stored in the keyring for next time.
func getCredentials() (username, password string) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}

	username = os.Getenv("MEMRISE_USERNAME")
	password = os.Getenv("MEMRISE_PASSWORD")

	if username == "" {
		input := survey.Input{Message: "Memrise username:"}
		err := survey.AskOne(&input, &username, survey.WithValidator(survey.Required))
		if err != nil {
			serviceutil.Fatal("failed to read username", err)
		}
	} else {
		slog.Info("using username from environment", "username", username)
	}

	if password != "" {
		slog.Info("using password from environment")
		return username, password
	}

	password, err = keyring.Get(keyringService, username)
	if err == nil {
		slog.Info("using password from system keyring")
		return username, password
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		slog.Warn("failed to read system keyring", "err", err)
	}

	prompt := survey.Password{Message: "Memrise password:"}
	err = survey.AskOne(&prompt, &password, survey.WithValidator(survey.Required))
	if err != nil {
		serviceutil.Fatal("failed to read password", err)
	}

	store := false
	confirm := survey.Confirm{Message: "Store the password in the system keyring?"}
	err = survey.AskOne(&confirm, &store)
	if err == nil && store {
		err = keyring.Set(keyringService, username, password)
		if err != nil {
			slog.Warn("failed to store password in system keyring", "err", err)
		}
	}

	return username, password
}

// login builds a client and establishes a session, reusing a persisted
// one when --session-file is set and the stored cookies still look valid.
func login(ctx context.Context) *memrise.Client {
	client, err := memrise.NewClient(ctx, memrise.ClientOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize memrise client", err)
	}
	if *verbose {
		client.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/memrise"))
	}

	if *sessionFile != "" && client.RestoreSession(*sessionFile) {
		slog.Info("reusing persisted session", "path", *sessionFile)
		return client
	}

	username, password := getCredentials()

	loginCtx, cancel := context.WithTimeout(ctx, time.Minute*3)
	defer cancel()
	err = client.Login(loginCtx, username, password)

	var authErr *memrise.AuthenticationError
	if errors.As(err, &authErr) {
		serviceutil.Fatal("invalid username or password", err)
	}
	if err != nil {
		serviceutil.Fatal("failed to login to memrise", err)
	}

	if *sessionFile != "" {
		err := client.SaveSession(*sessionFile)
		if err != nil {
			slog.Warn("failed to persist session", "path", *sessionFile, "err", err)
		}
	}

	return client
}
