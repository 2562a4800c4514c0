package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/jobs"
	"github.com/twoofus/server/internal/service"
)

func JobCmd() *cobra.Command {
	var at string
	var remote string

	cmd := &cobra.Command{
		Use:       "job <name>",
		Short:     "Run a scheduled job once",
		Long:      "Run a scheduled job once. Jobs: " + strings.Join(jobs.Names(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: jobs.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote != "" {
				return runRemoteJob(remote, args[0])
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer closeApp(a)

			runner := a.Jobs
			if at != "" {
				now, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fail("--at must be RFC 3339: %v", err)
				}
				runner = runner.WithClock(func() time.Time { return now })
			}

			start := time.Now()
			summary, err := runner.Run(cmd.Context(), args[0])
			if err != nil {
				return fail("%s: %v", args[0], err)
			}
			color.Green("✓ %s finished in %s", args[0], time.Since(start).Round(time.Millisecond))
			return printJSON(summary)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "pretend the job runs at this RFC 3339 time")
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a deployment; sends a signed webhook instead of running locally")
	return cmd
}

// runRemoteJob calls POST {base}/webhooks/jobs/{name} signed with WEBHOOK_SECRET.
func runRemoteJob(base, name string) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	verifier, err := service.NewWebhookVerifier(cfg.WebhookSecret)
	if err != nil {
		return err
	}

	payload := []byte(`{}`)
	msgID := "msg_" + uuid.New().String()
	now := time.Now()
	signature, err := verifier.Sign(msgID, now, payload)
	if err != nil {
		return fail("sign request: %v", err)
	}

	url := strings.TrimSuffix(base, "/") + "/webhooks/jobs/" + name
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("webhook-id", msgID)
	req.Header.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("webhook-signature", signature)

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fail("call %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fail("%s returned %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	color.Green("✓ %s accepted", name)
	fmt.Println(string(body))
	return nil
}
