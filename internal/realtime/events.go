package realtime

// Event types broadcast on the bus. Payloads carry ids only; consumers
// must re-fetch state. The bus is an invalidation hint, never an event
// log.
const (
	EventFolderCreated   = "folder:created"
	EventFolderMoved     = "folder:moved"
	EventFolderDeleted   = "folder:deleted"
	EventDocumentUpload  = "document:uploaded"
	EventDocumentDeleted = "document:deleted"
)

// Event is an ephemeral tagged payload. It is never persisted and there
// is no replay.
type Event struct {
	Type    string            `json:"type"`
	Payload map[string]string `json:"payload"`
}

// FolderEvent builds a folder structural-change event.
func FolderEvent(eventType, folderID string) Event {
	return Event{Type: eventType, Payload: map[string]string{"folder_id": folderID}}
}

// DocumentEvent builds a document structural-change event. The folder id
// lets consumers refresh only the affected listing.
func DocumentEvent(eventType, documentID, folderID string) Event {
	return Event{Type: eventType, Payload: map[string]string{"document_id": documentID, "folder_id": folderID}}
}
