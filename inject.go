package trellis

// requestOp identifies a queued navigation request.
type requestOp uint8

const (
	opShow requestOp = iota
	opHide
	opBack
	opHideOverlays
	opGate
)

// request is one queued fire-and-forget navigation request. Requests are
// consumed by Update, one per tick, in submission order, which keeps the
// effects of a burst of requests observable frame by frame.
type request struct {
	op      requestOp
	kind    Kind
	data    any
	onClose CloseCallback
	result  any
	enabled bool
	min     Priority
}

// InjectShow queues a show request for kind. Consumed on a later tick.
func (m *Manager) InjectShow(kind Kind, data any, onClose CloseCallback) {
	m.requests = append(m.requests, request{op: opShow, kind: kind, data: data, onClose: onClose})
}

// InjectHide queues a hide request for kind.
func (m *Manager) InjectHide(kind Kind, result any) {
	m.requests = append(m.requests, request{op: opHide, kind: kind, result: result})
}

// InjectBack queues a back-button press.
func (m *Manager) InjectBack() {
	m.requests = append(m.requests, request{op: opBack})
}

// InjectHideAllOverlays queues a request to close the whole overlay stack.
func (m *Manager) InjectHideAllOverlays() {
	m.requests = append(m.requests, request{op: opHideOverlays})
}

// InjectInteraction queues a global interaction gate change.
func (m *Manager) InjectInteraction(enabled bool, minPriority Priority) {
	m.requests = append(m.requests, request{op: opGate, enabled: enabled, min: minPriority})
}

// consumeRequest pops and executes one queued request. Called from Update.
func (m *Manager) consumeRequest() {
	if len(m.requests) == 0 {
		return
	}
	req := m.requests[0]
	copy(m.requests, m.requests[1:])
	m.requests[len(m.requests)-1] = request{}
	m.requests = m.requests[:len(m.requests)-1]

	switch req.op {
	case opShow:
		m.Show(req.kind, req.data, req.onClose)
	case opHide:
		m.Hide(req.kind, req.result)
	case opBack:
		m.PressBack()
	case opHideOverlays:
		m.HideAllOverlays()
	case opGate:
		m.SetGlobalInteraction(req.enabled, req.min)
	}
}
