// Command admin manages the Asana side of the ticket-numbering integration:
// it lists workspaces, projects and webhooks, and creates or deletes the
// webhooks that point at the server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"asana-ticket-numbering/config"
	"asana-ticket-numbering/pkg/asana"
	"asana-ticket-numbering/pkg/log"
)

const usage = `Usage: admin <command> [flags]

Commands:
  workspaces                                   list workspaces
  projects       [-workspace ID]               list projects of a workspace
  webhooks       -project ID [-workspace ID]   list webhooks on a project
  create-webhook -project ID -prefix P [-counter-key K] [-target URL]
  delete-webhook -id ID
  task           -id ID                        show a task
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		os.Exit(1)
	}
	if cfg.Asana.PersonalAccessToken == "" {
		fmt.Println("ASANA_PERSONAL_KEY is not set")
		os.Exit(1)
	}

	logger := log.Init(log.ZapConfig{
		Level:        "warn",
		Mode:         "development",
		Encoding:     "console",
		ColorEnabled: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &admin{
		client:           asana.NewClient(cfg.Asana.BaseURL, cfg.Asana.PersonalAccessToken, cfg.Asana.Timeout),
		defaultWorkspace: cfg.Asana.WorkspaceID,
		out:              os.Stdout,
		tunnels:          newTunnelDetector("http://localhost:4040"),
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Errorf(ctx, "admin %s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

type admin struct {
	client           *asana.Client
	defaultWorkspace string
	out              io.Writer
	tunnels          tunnelDetector
}

func (a *admin) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "workspaces":
		return a.workspaces(ctx)
	case "projects":
		return a.projects(ctx, args)
	case "webhooks":
		return a.webhooks(ctx, args)
	case "create-webhook":
		return a.createWebhook(ctx, args)
	case "delete-webhook":
		return a.deleteWebhook(ctx, args)
	case "task":
		return a.task(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}
