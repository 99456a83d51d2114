package user

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/avelar/homebox/auth/passwd"
	"github.com/avelar/homebox/internal/cmdflags"
	"github.com/avelar/homebox/sitedb"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage admin users",
		Subcommands: []*cli.Command{
			registerCmd(),
		},
	}
}

func registerCmd() *cli.Command {
	var dbPath string
	var username string
	return &cli.Command{
		Name:  "register",
		Usage: "Create or update an admin user. The password is read from the ADMIN_PASSWORD environment variable, or from stdin when unset",
		Flags: []cli.Flag{
			cmdflags.SiteDB(&dbPath),
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to register",
				Destination: &username,
				Value:       "admin",
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword()
			if err != nil {
				return err
			}
			db, err := sitedb.Open(ctx.Context, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			hasher, err := passwd.NewHasher()
			if err != nil {
				return err
			}
			digest, err := hasher.Hash(password)
			if err != nil {
				return err
			}
			if err := db.UpsertUser(ctx.Context, username, digest); err != nil {
				return err
			}
			if os.Getenv("ADMIN_PASSWORD") != "" {
				// the hash is stored now, no reason to keep the secret around
				os.Stderr.WriteString("Security reminder: remove ADMIN_PASSWORD from your environment now that the admin user is registered.\n")
			}
			return nil
		},
	}
}

func readPassword() (string, error) {
	password := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))
	if password == "" {
		sc := bufio.NewScanner(os.Stdin)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", errors.New("missing password from stdin")
		}
		password = strings.TrimSpace(sc.Text())
	}
	if len(password) < 8 || len(password) > 255 {
		return "", errors.New("password must be between 8 and 255 characters")
	}
	return password, nil
}
