// Package queue defines the audit messages published to the message
// broker when study cases change.
package queue

// Actions carried by a StudyCaseEvent.
const (
	ActionCreated      = "created"
	ActionRenamed      = "renamed"
	ActionFileReplaced = "file_replaced"
	ActionDeleted      = "deleted"
)

// StudyCaseEvent is published on every study-case mutation. It carries
// enough context for downstream consumers (audit log, notifications) to
// act without querying the primary database.
type StudyCaseEvent struct {
	Action      string `json:"action"`
	StudyCaseID uint64 `json:"study_case_id"`
	NomEtude    string `json:"nom_etude"`
	OldNomEtude string `json:"old_nom_etude,omitempty"`
	ZipFile     string `json:"zip_file,omitempty"`
	ActorID     uint64 `json:"actor_id"`
	OccurredAt  string `json:"occurred_at"`
}
