// Command ndn-traffic-push publishes NDN Data packets as described by a
// traffic configuration file.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go4.org/must"

	"github.com/ndntg/ndn-traffic-push/app/trafficpush"
	"github.com/ndntg/ndn-traffic-push/mk/version"
)

var app = &cli.App{
	Name:      "ndn-traffic-push",
	Usage:     "Publish NDN Data packets as described by a traffic configuration file.",
	ArgsUsage: "<config-file>",
	Version:   version.Get(),
	Description: "Multiple prefixes can be configured for publishing.\n" +
		"Set the environment variable NDN_TRAFFIC_LOGFILE to append the traffic report to a file.",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "maximum `number` of Data packets to send",
		},
		&cli.Int64Flag{
			Name:    "delay",
			Aliases: []string{"d"},
			Usage:   "wait this amount of `microseconds` before sending each Data packet",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "turn off logging of Data generation",
		},
		&cli.BoolFlag{
			Name:  "nfd",
			Usage: "connect to NFD management instead of NDN-DPDK",
		},
		&cli.StringFlag{
			Name:    "gqlserver",
			Usage:   "GraphQL `endpoint` of NDN-DPDK daemon",
			Value:   "http://127.0.0.1:3030/",
			EnvVars: []string{"GQLSERVER"},
		},
	},
	Action: run,
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		cli.ShowAppHelp(c)
		return cli.Exit("ERROR: traffic configuration file is missing", 2)
	}
	count := c.Int64("count")
	if count < 0 {
		return cli.Exit("ERROR: the argument for --count cannot be negative", 2)
	}
	delay := c.Int64("delay")
	if delay < 0 {
		return cli.Exit("ERROR: the argument for --delay cannot be negative", 2)
	}

	patterns, e := trafficpush.LoadPatterns(c.Args().First())
	if e != nil {
		return cli.Exit(fmt.Sprintf("ERROR: %v", e), 2)
	}

	cfg := trafficpush.Config{
		Patterns:     patterns,
		Count:        uint64(count),
		ContentDelay: time.Duration(delay) * time.Microsecond,
		Quiet:        c.Bool("quiet"),
	}

	if filename := os.Getenv("NDN_TRAFFIC_LOGFILE"); filename != "" {
		f, e := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if e != nil {
			return cli.Exit(fmt.Sprintf("ERROR: %v", e), 2)
		}
		defer must.Close(f)
		cfg.Report = f
	}

	var transport trafficpush.Transport
	if count > 0 {
		uplink, e := trafficpush.OpenUplink(trafficpush.UplinkConfig{
			GqlServer: c.String("gqlserver"),
			Nfd:       c.Bool("nfd"),
		})
		if e != nil {
			return cli.Exit(fmt.Sprintf("ERROR: %v", e), 1)
		}
		defer must.Close(uplink)
		transport = uplink
	}

	if e := trafficpush.NewRunner(cfg, transport).Run(c.Context); e != nil {
		var ce *trafficpush.ConfigError
		if errors.As(e, &ce) {
			return cli.Exit(fmt.Sprintf("ERROR: %v", e), 2)
		}
		return cli.Exit(fmt.Sprintf("ERROR: %v", e), 1)
	}
	return nil
}

func main() {
	if e := app.Run(os.Args); e != nil {
		// cli.Exit errors are handled inside app.Run; anything arriving
		// here is a usage error
		fmt.Fprintln(os.Stderr, "ERROR:", e)
		os.Exit(2)
	}
}
