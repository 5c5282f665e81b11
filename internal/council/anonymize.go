package council

import (
	"fmt"
	"strings"
)

const labelAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// LabelMap is the per-run bijection between anonymous labels and model
// identifiers. It is built once per run and never mutated afterwards.
type LabelMap struct {
	labels       []string
	labelToModel map[string]string
	modelToLabel map[string]string
}

// Labels returns the assigned labels in stage-one order.
func (m *LabelMap) Labels() []string {
	return append([]string(nil), m.labels...)
}

func (m *LabelMap) Model(label string) (string, bool) {
	model, ok := m.labelToModel[label]
	return model, ok
}

func (m *LabelMap) Label(model string) (string, bool) {
	label, ok := m.modelToLabel[model]
	return label, ok
}

// LabelToModel returns a copy of the label → model mapping for result
// metadata.
func (m *LabelMap) LabelToModel() map[string]string {
	out := make(map[string]string, len(m.labelToModel))
	for k, v := range m.labelToModel {
		out[k] = v
	}
	return out
}

// Anonymize assigns sequential labels to the stage-one responses in list
// order and renders the transcript handed to evaluators. Model identity
// never appears in the transcript. Labeling is a pure function of input
// order: the same order always yields the same labels.
//
// Anonymize panics if the responses outnumber the label alphabet. Council
// size is validated before any model is queried, so a running pipeline can
// never reach that state.
func Anonymize(responses []Stage1Response) (*LabelMap, string) {
	if len(responses) > len(labelAlphabet) {
		panic(fmt.Sprintf("cannot anonymize %d responses, label alphabet has %d letters", len(responses), len(labelAlphabet)))
	}

	lm := &LabelMap{
		labels:       make([]string, 0, len(responses)),
		labelToModel: make(map[string]string, len(responses)),
		modelToLabel: make(map[string]string, len(responses)),
	}

	var sb strings.Builder
	for i, r := range responses {
		label := string(labelAlphabet[i])
		lm.labels = append(lm.labels, label)
		lm.labelToModel[label] = r.Model
		lm.modelToLabel[r.Model] = label

		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## Response %s\n\n%s\n", label, strings.TrimSpace(r.Response))
	}

	return lm, sb.String()
}
