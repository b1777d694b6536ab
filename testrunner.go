package trellis

import (
	"encoding/json"
	"fmt"
)

// flowStep represents a single action in a flow script.
type flowStep struct {
	Action string `json:"action"`
	Kind   string `json:"kind,omitempty"`
	Label  string `json:"label,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// flowScript is the top-level JSON structure for a flow script.
type flowScript struct {
	Steps []flowStep `json:"steps"`
}

// FlowRunner sequences navigation requests across ticks for automated flow
// testing. Attach to a Manager via SetFlowRunner; each step runs once the
// previous tick's requests have drained.
//
// Supported actions: "show", "hide", "back", "hide_overlays",
// "wait" (frames), and "snapshot" (dumps the stacks with an optional label).
type FlowRunner struct {
	steps     []flowStep
	cursor    int
	waitCount int
	done      bool
}

// LoadFlowScript parses a JSON flow script:
//
//	{"steps": [
//	  {"action": "show", "kind": "settings"},
//	  {"action": "wait", "frames": 30},
//	  {"action": "back"},
//	  {"action": "snapshot", "label": "after back"}
//	]}
func LoadFlowScript(jsonData []byte) (*FlowRunner, error) {
	var script flowScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse flow script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse flow script: no steps")
	}
	return &FlowRunner{steps: script.Steps}, nil
}

// SetFlowRunner attaches a FlowRunner to the manager. The runner's step
// method is called from Manager.Update before the request queue is consumed
// each tick.
func (m *Manager) SetFlowRunner(runner *FlowRunner) {
	m.runner = runner
}

// Done reports whether all steps in the flow script have been executed.
func (r *FlowRunner) Done() bool {
	return r.done
}

// step advances the flow runner by one tick. Called from Manager.Update.
func (r *FlowRunner) step(m *Manager) {
	if r.done {
		return
	}
	// Wait for pending requests to drain before advancing.
	if len(m.requests) > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "show":
		m.InjectShow(Kind(st.Kind), nil, nil)
	case "hide":
		m.InjectHide(Kind(st.Kind), nil)
	case "back":
		m.InjectBack()
	case "hide_overlays":
		m.InjectHideAllOverlays()
	case "snapshot":
		m.DumpSnapshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(m.requests) == 0 {
		r.done = true
	}
}
