package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/gcontacts/internal/client/iocli"
	"github.com/iudanet/gcontacts/internal/client/storage"
	"github.com/iudanet/gcontacts/internal/client/sync"
)

const (
	envAccessToken = "GCONTACTS_ACCESS_TOKEN"
	envIDToken     = "GCONTACTS_ID_TOKEN"
)

// Tokens - источники OAuth токенов из флагов командной строки
type Tokens struct {
	FromArgs string
	FromFile string
	IDToken  string
}

type Cli struct {
	io          iocli.IO
	syncService sync.Service
	usage       storage.UsageReporter
	tokens      Tokens
	accessToken string
	userID      string
}

// New создает CLI. usage может быть nil, если хранилище не сообщает занятый объем.
func New(io iocli.IO, syncService sync.Service, usage storage.UsageReporter, tokens Tokens) *Cli {
	return &Cli{
		io:          io,
		syncService: syncService,
		usage:       usage,
		tokens:      tokens,
	}
}

// signIn определяет пользователя. Access token запрашивается только если
// он нужен для загрузки контактов или ID token отсутствует.
func (c *Cli) signIn(ctx context.Context, needToken bool) error {
	idToken := c.idToken()

	if needToken || idToken == "" {
		token, err := c.getAccessToken()
		if err != nil {
			return fmt.Errorf("failed to get access token: %w", err)
		}
		c.accessToken = token
	}

	userID, err := c.syncService.SignIn(ctx, c.accessToken, idToken)
	if err != nil {
		return err
	}
	c.userID = userID
	return nil
}

func (c *Cli) idToken() string {
	if env := os.Getenv(envIDToken); env != "" {
		return env
	}
	return c.tokens.IDToken
}

// getAccessToken retrieves the OAuth access token with priority:
// 1. Environment variable GCONTACTS_ACCESS_TOKEN
// 2. File given by --token-file
// 3. Command-line parameter --token
// 4. Interactive prompt (fallback)
func (c *Cli) getAccessToken() (string, error) {
	if c.accessToken != "" {
		return c.accessToken, nil
	}

	// Priority 1: Environment variable
	if env := os.Getenv(envAccessToken); env != "" {
		return env, nil
	}

	// Priority 2: File
	if c.tokens.FromFile != "" {
		content, err := os.ReadFile(c.tokens.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		token := strings.TrimSpace(string(content))
		if token == "" {
			return "", fmt.Errorf("token file is empty")
		}
		return token, nil
	}

	// Priority 3: CLI parameter
	if c.tokens.FromArgs != "" {
		return c.tokens.FromArgs, nil
	}

	// Priority 4: Interactive prompt (fallback)
	token, err := c.io.ReadPassword("Access token: ")
	if err != nil {
		return "", fmt.Errorf("failed to read token from stdin: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("access token cannot be empty")
	}

	return token, nil
}

func PrintUsage(io iocli.IO) {
	io.Println("gcontacts - encrypted offline cache of your Google Contacts")
	io.Println()
	io.Println("Usage:")
	io.Println("  gcontacts [OPTIONS] COMMAND")
	io.Println()
	io.Println("Options:")
	io.Println("  --version               Show version information")
	io.Println("  --config PATH           Path to YAML config file (or GCONTACTS_CONFIG)")
	io.Println("  --backend NAME          Storage backend: bolt, sqlite, memory (default: bolt)")
	io.Println("  --db PATH               Path to local database (default: gcontacts.db)")
	io.Println("  --threshold DURATION    Refetch contacts older than this (default: 24h)")
	io.Println("  --token TOKEN           OAuth access token (not recommended, use env var or file)")
	io.Println("  --token-file PATH       Path to file containing OAuth access token")
	io.Println("  --id-token TOKEN        ID token, identifies the user without a network call")
	io.Println()
	io.Println("Access Token Priority (highest to lowest):")
	io.Println("  1. GCONTACTS_ACCESS_TOKEN environment variable")
	io.Println("  2. --token-file (file path)")
	io.Println("  3. --token (command line)")
	io.Println("  4. Interactive prompt (fallback)")
	io.Println()
	io.Println("Commands:")
	io.Println("  sync [--force]          Fetch contacts if the cache is stale (always with --force)")
	io.Println("  list [--short] [query]  Show contacts, optionally filtered by name, email or phone")
	io.Println("  status                  Show local cache status")
	io.Println("  logout                  Remove cached contacts of the current user")
	io.Println()
	io.Println("Examples:")
	io.Println("  export GCONTACTS_ACCESS_TOKEN=$(gcloud auth print-access-token)")
	io.Println("  gcontacts sync")
	io.Println("  gcontacts list ada")
	io.Println("  gcontacts --backend sqlite --db ~/.cache/gcontacts.sqlite status")
}
