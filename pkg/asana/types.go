package asana

// DefaultBaseURL is the Asana REST API root.
const DefaultBaseURL = "https://app.asana.com/api/1.0"

// Task is the subset of an Asana task this service reads.
type Task struct {
	GID          string `json:"gid"`
	Name         string `json:"name"`
	ResourceType string `json:"resource_type,omitempty"`
}

// Workspace is an Asana workspace (or organization).
type Workspace struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Project is an Asana project.
type Project struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Webhook is an Asana webhook subscription.
type Webhook struct {
	GID      string   `json:"gid"`
	Active   bool     `json:"active"`
	Target   string   `json:"target"`
	Resource Resource `json:"resource"`
}

// Resource is a compact reference to any Asana object.
type Resource struct {
	GID          string `json:"gid"`
	Name         string `json:"name,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

// UpdateTaskRequest is the body for PUT /tasks/{gid}.
type UpdateTaskRequest struct {
	Name string `json:"name,omitempty"`
}

// CreateWebhookRequest is the body for POST /webhooks.
type CreateWebhookRequest struct {
	Resource string `json:"resource"`
	Target   string `json:"target"`
}

// envelope wraps every Asana request and response body.
type envelope[T any] struct {
	Data T `json:"data"`
}
