package ui

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// jsonRenderer writes results as indented JSON documents.
type jsonRenderer struct {
	encoder *json.Encoder
}

func newJSONRenderer(w io.Writer) *jsonRenderer {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return &jsonRenderer{encoder: encoder}
}

func (r *jsonRenderer) RenderHistory(history *core.HistoryResult) error {
	return r.encoder.Encode(history)
}

func (r *jsonRenderer) RenderTransaction(txn *types.Transaction) error {
	return r.encoder.Encode(txn)
}

func (r *jsonRenderer) RenderStatus(report *core.StatusReport) error {
	return r.encoder.Encode(report)
}
