package watchfolder

import "sheetwatch/internal/descriptor"

// EventType identifies a controller notification.
type EventType string

const (
	// EventFileAdded fires when a recognized file appears in the watch folder.
	EventFileAdded EventType = "file-added"
	// EventFileRemoved fires when a tracked file disappears.
	EventFileRemoved EventType = "file-removed"
	// EventStatusChanged fires on every descriptor status transition.
	EventStatusChanged EventType = "status-changed"
	// EventResultsChanged fires when something inside the results subfolder
	// changes, so viewers can refresh rendered output.
	EventResultsChanged EventType = "results-changed"
)

// Event is a typed notification pushed to the controller's event channel.
// Consumers read events on their own schedule; descriptor state is never
// mutated by the consumer side.
type Event struct {
	Type     EventType
	Filename string
	Status   descriptor.Status
}
