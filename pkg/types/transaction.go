package types

import (
	"encoding/json"
	"time"
)

// Kind distinguishes apply transactions from the rollbacks that close them.
type Kind string

const (
	KindApply    Kind = "apply"
	KindRollback Kind = "rollback"
)

// Operation is the filesystem mutation recorded by a Change.
type Operation string

const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
)

// Transaction is the unit of atomicity for one apply or one rollback.
type Transaction struct {
	TxnID        string     `json:"txn_id"`
	Kind         Kind       `json:"kind"`
	CreatedAt    time.Time  `json:"created_at"`
	Profile      string     `json:"profile,omitempty"`
	Namespace    string     `json:"namespace,omitempty"`
	TemplateRoot string     `json:"template_root,omitempty"`
	RolledBack   bool       `json:"rolled_back"`
	RolledBackAt *time.Time `json:"rolled_back_at,omitempty"`
	Changes      []Change   `json:"changes"`
	Conflicts    []Conflict `json:"conflicts"`

	// Rollback transactions only.
	RollbackOf string `json:"rollback_of,omitempty"`
	Restored   int    `json:"restored,omitempty"`
	Removed    int    `json:"removed,omitempty"`
}

// IsOpenApply reports whether t is an apply that has not been rolled back.
func (t *Transaction) IsOpenApply() bool {
	return t.Kind == KindApply && !t.RolledBack
}

// rollbackRecord is the stored shape of a rollback transaction.
type rollbackRecord struct {
	TxnID      string    `json:"txn_id"`
	Kind       Kind      `json:"kind"`
	RollbackOf string    `json:"rollback_of"`
	CreatedAt  time.Time `json:"created_at"`
	Restored   int       `json:"restored"`
	Removed    int       `json:"removed"`
}

// MarshalJSON writes rollbacks as bare events and applies with their full
// change and conflict lists.
func (t Transaction) MarshalJSON() ([]byte, error) {
	if t.Kind == KindRollback {
		return json.Marshal(rollbackRecord{
			TxnID:      t.TxnID,
			Kind:       t.Kind,
			RollbackOf: t.RollbackOf,
			CreatedAt:  t.CreatedAt,
			Restored:   t.Restored,
			Removed:    t.Removed,
		})
	}
	type plain Transaction
	out := plain(t)
	if out.Changes == nil {
		out.Changes = []Change{}
	}
	if out.Conflicts == nil {
		out.Conflicts = []Conflict{}
	}
	return json.Marshal(out)
}

// Change is one filesystem mutation belonging to a transaction. Paths are
// relative to the project root, slash separated.
type Change struct {
	Path      string    `json:"path"`
	Operation Operation `json:"operation"`
	// Backup is nil for created files and points at the pre-change copy
	// for updated ones.
	Backup   *string `json:"backup"`
	ActionID string  `json:"action_id"`
	Checksum string  `json:"checksum,omitempty"`
}

// Conflict is a merge collision that was detected and not applied.
type Conflict struct {
	Path            string `json:"path"`
	Reason          string `json:"reason"`
	SuggestedSource string `json:"suggested_source"`
	ActionID        string `json:"action_id,omitempty"`
}

// Conflict reasons
const (
	ReasonTOMLInvalid            = "target_toml_invalid"
	ReasonJSONInvalid            = "target_json_invalid"
	ReasonYAMLInvalid            = "target_yaml_invalid"
	ReasonJSONNotObject          = "target_json_not_object"
	ReasonYAMLNotMapping         = "target_yaml_not_mapping"
	ReasonBlockMarkersUnbalanced = "managed_block_unbalanced"
)
