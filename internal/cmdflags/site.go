package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func SiteDB(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"d"},
		Usage:       "Path to the sqlite site database",
		EnvVars:     []string{"HOMEBOX_DB"},
		Destination: out,
		Value:       *out,
		Required:    true,
	}
}

func Bind(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "localhost:8080"
	}
	return &cli.StringFlag{
		Name:        "bind",
		Aliases:     []string{"b"},
		Usage:       "Address to bind the HTTP server to",
		EnvVars:     []string{"HOMEBOX_BIND"},
		Destination: out,
		Value:       *out,
	}
}

func Production(out *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "production",
		Usage:       "Enable production hardening (Secure cookies require HTTPS)",
		EnvVars:     []string{"HOMEBOX_PRODUCTION"},
		Destination: out,
		Value:       *out,
	}
}

func TrustProxy(out *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "trust-proxy",
		Usage:       "Take the client address from the first X-Forwarded-For hop. Only enable behind a proxy you control",
		EnvVars:     []string{"HOMEBOX_TRUST_PROXY"},
		Destination: out,
		Value:       *out,
	}
}
