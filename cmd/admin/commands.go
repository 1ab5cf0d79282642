package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"asana-ticket-numbering/pkg/asana"
)

func (a *admin) workspaces(ctx context.Context) error {
	workspaces, err := a.client.GetWorkspaces(ctx)
	if err != nil {
		return err
	}
	for i, w := range workspaces {
		fmt.Fprintf(a.out, "%d. %s (ID: %s)\n", i+1, w.Name, w.GID)
	}
	return nil
}

func (a *admin) projects(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("projects", flag.ContinueOnError)
	workspace := fs.String("workspace", a.defaultWorkspace, "workspace ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *workspace == "" {
		return errors.New("-workspace or ASANA_WORKSPACE_ID is required")
	}

	projects, err := a.client.GetProjects(ctx, *workspace)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects found.")
		return nil
	}
	for i, p := range projects {
		fmt.Fprintf(a.out, "%d. %s (ID: %s)\n", i+1, p.Name, p.GID)
	}
	return nil
}

func (a *admin) webhooks(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("webhooks", flag.ContinueOnError)
	workspace := fs.String("workspace", a.defaultWorkspace, "workspace ID")
	project := fs.String("project", "", "project ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *workspace == "" || *project == "" {
		return errors.New("-project and -workspace (or ASANA_WORKSPACE_ID) are required")
	}

	webhooks, err := a.client.GetWebhooks(ctx, *workspace, *project)
	if err != nil {
		return err
	}
	return a.printJSON(webhooks)
}

func (a *admin) createWebhook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-webhook", flag.ContinueOnError)
	project := fs.String("project", "", "project ID")
	target := fs.String("target", "", "server URL; detected from a local ngrok agent when empty")
	prefix := fs.String("prefix", "", "ticket prefix inserted into task names")
	counterKey := fs.String("counter-key", "", "sequence name, defaults to the prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *project == "" || *prefix == "" {
		return errors.New("-project and -prefix are required")
	}
	if *counterKey == "" {
		*counterKey = *prefix
	}

	base := *target
	if base == "" {
		publicURL, err := a.tunnels.publicURL(ctx)
		if err != nil {
			return fmt.Errorf("no -target given and %w", err)
		}
		base = publicURL + "/webhook"
		fmt.Fprintf(a.out, "Using ngrok URL: %s\n", base)
	}

	targetURL, err := webhookTarget(base, *counterKey, *prefix)
	if err != nil {
		return err
	}

	webhook, err := a.client.CreateWebhook(ctx, asana.CreateWebhookRequest{
		Resource: *project,
		Target:   targetURL,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Webhook created:")
	return a.printJSON(webhook)
}

func (a *admin) deleteWebhook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-webhook", flag.ContinueOnError)
	id := fs.String("id", "", "webhook ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	if err := a.client.DeleteWebhook(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Webhook %s deleted\n", *id)
	return nil
}

func (a *admin) task(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("task", flag.ContinueOnError)
	id := fs.String("id", "", "task ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	task, err := a.client.GetTask(ctx, *id)
	if err != nil {
		return err
	}
	return a.printJSON(task)
}

func (a *admin) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

// webhookTarget appends the subscription query parameters to the server URL.
func webhookTarget(base, counterKey, prefix string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", base, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("invalid target %q: scheme must be http or https", base)
	}
	q := u.Query()
	q.Set("counter_key", counterKey)
	q.Set("prefix", prefix)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
