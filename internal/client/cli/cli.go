package cli

import (
	"fmt"
	"os"

	"github.com/maati-dev/maati/internal/client/api"
	"github.com/maati-dev/maati/internal/client/iocli"
	"github.com/maati-dev/maati/internal/client/session"
)

// Cli wires the API client, the local session and terminal IO together and
// dispatches commands.
type Cli struct {
	apiClient *api.Client
	session   *session.Session
	io        iocli.IO
	village   string // --village override, empty means the session's selection
}

func New(apiClient *api.Client, sess *session.Session, io iocli.IO, village string) *Cli {
	return &Cli{
		apiClient: apiClient,
		session:   sess,
		io:        io,
		village:   village,
	}
}

// villageID resolves the village a command operates on: the --village flag
// wins, otherwise the village selected in the stored session.
func (c *Cli) villageID() (string, error) {
	if c.village != "" {
		return c.village, nil
	}
	if id := c.session.VillageID(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no village selected: pass --village ID or log in with an assigned village")
}

// getPassword reads a password from the MAATI_PASSWORD environment variable,
// falling back to an interactive no-echo prompt.
func (c *Cli) getPassword(prompt string) (string, error) {
	if envPassword := os.Getenv("MAATI_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

func PrintUsage() {
	fmt.Println("MAATI Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  maati [OPTIONS] COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version        Show version information")
	fmt.Println("  --server URL     Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH        Path to local session store (default: maati-client.db)")
	fmt.Println("  --village ID     Operate on this village instead of the session's selection")
	fmt.Println()
	fmt.Println("Passwords are read from the MAATI_PASSWORD environment variable when set,")
	fmt.Println("otherwise prompted interactively.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register                     Set the password on your employee record")
	fmt.Println("  login                        Login to server")
	fmt.Println("  logout                       Logout and clear the stored session")
	fmt.Println("  status                       Show session status and token expiry")
	fmt.Println("  refresh                      Refresh the access token now")
	fmt.Println("  villages [--stage N]         List villages")
	fmt.Println("  village <id>                 Show one village")
	fmt.Println("  families [--name S] [--option N] [--page N] [--limit N]")
	fmt.Println("                               List beneficiary families of the village")
	fmt.Println("  family <id>                  Show full family detail")
	fmt.Println("  meetings list                List consultation meetings")
	fmt.Println("  meetings add                 Record a consultation meeting")
	fmt.Println("  meetings rm <id>             Delete a meeting")
	fmt.Println("  buildings                    List community buildings")
	fmt.Println("  feedback list                List villager feedback")
	fmt.Println("  feedback get <id>            Show one feedback record")
	fmt.Println("  logs [--limit N]             Show recent activity log entries")
	fmt.Println("  dashboard                    Village dashboard (families, options, buildings)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  maati login")
	fmt.Println("  maati villages --stage 3")
	fmt.Println("  maati --village V042 families --option 1 --page 2")
	fmt.Println("  maati meetings add")
	fmt.Println("  export MAATI_PASSWORD='s3cret-pass'")
	fmt.Println("  maati --server https://maati.example.org login")
}
