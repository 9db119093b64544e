package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nhle/equipment-alerts/internal/credential"
)

type CredentialCmd struct {
	flags *Flags
	in    io.Reader
}

// NewCredentialCmd creates a new credential command reading secrets from stdin
func NewCredentialCmd(flags *Flags) *CredentialCmd {
	return &CredentialCmd{flags: flags, in: os.Stdin}
}

// Register adds the credential command to the application
func (cmd *CredentialCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "credential",
		Usage: "Store secrets in the system keyring",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store a secret read from stdin under key",
				ArgsUsage: "<key>",
				Description: `Reads one line from stdin and stores it in the keyring. Point
database.keyring_key at the same key to connect with the stored DSN:

  echo "postgres://alerts@db/equipment" | alertd credential set database-dsn`,
				Action: cmd.set,
			},
			{
				Name:      "delete",
				Usage:     "Remove a secret from the keyring",
				ArgsUsage: "<key>",
				Action:    cmd.delete,
			},
		},
	})

	return app
}

func (cmd *CredentialCmd) set(ctx context.Context, c *cli.Command) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("credential key is required")
	}

	value, err := readSecret(cmd.in)
	if err != nil {
		return err
	}

	vault, err := credential.Open()
	if err != nil {
		return err
	}
	if err := vault.Set(key, value); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.flags.Out, "Stored credential %q\n", key)
	return err
}

func (cmd *CredentialCmd) delete(ctx context.Context, c *cli.Command) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("credential key is required")
	}

	vault, err := credential.Open()
	if err != nil {
		return err
	}
	if err := vault.Delete(key); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.flags.Out, "Deleted credential %q\n", key)
	return err
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("secret must not be empty")
	}
	return line, nil
}
