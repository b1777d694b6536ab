package ecs

import (
	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// PanelEventType is the Donburi event type for trellis lifecycle events.
// Subscribe to this in your ECS systems to react to navigation changes.
var PanelEventType = events.NewEventType[trellis.PanelEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Lifecycle
// events are published to PanelEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) trellis.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitPanelEvent(event trellis.PanelEvent) {
	PanelEventType.Publish(s.world, event)
}
