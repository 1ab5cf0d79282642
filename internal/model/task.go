package model

// Task mirrors the upstream task attributes this service reads or rewrites.
type Task struct {
	ID   string // Asana gid
	Name string
}
