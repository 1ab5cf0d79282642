package model

// ResourceType is the Asana resource kind an event refers to.
type ResourceType string

const (
	ResourceTypeTask    ResourceType = "task"
	ResourceTypeProject ResourceType = "project"
	ResourceTypeStory   ResourceType = "story"
)

// FieldName is the task field whose change triggers numbering.
const FieldName = "name"

// Event is a single change notification from an Asana webhook delivery.
// It only lives for one processing pass.
type Event struct {
	ResourceType ResourceType
	ResourceID   string
	ChangedField string // empty for non-"changed" actions
	Action       string
}

// IsTaskRename reports whether the event is a task name change.
func (e Event) IsTaskRename() bool {
	return e.ResourceType == ResourceTypeTask && e.ChangedField == FieldName
}
