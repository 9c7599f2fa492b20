package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

// main probes the health endpoint of the mock gateway. The exit code is 0 for a 2xx response and 1 otherwise,
// which makes it usable as container health check.
func main() {
	app := cli.NewApp()
	app.Name = "hc"
	app.Usage = "probe the mock gateway health endpoint"
	app.ArgsUsage = "[url]"
	app.Flags = []cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 2 * time.Second,
			Usage: "Request timeout.",
		},
	}
	app.Action = func(c *cli.Context) error {
		url := "http://localhost:11223/health"
		if c.Args().Present() {
			url = c.Args().First()
		}
		if err := checkWebEndpoint(url, c.Duration("timeout")); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}

	_ = app.Run(os.Args)
}

func checkWebEndpoint(url string, timeout time.Duration) error {
	client := &http.Client{
		Timeout: timeout,
	}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unhealthy: %s", resp.Status)
	}
	return nil
}
