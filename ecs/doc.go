// Package ecs provides ECS adapters for trellis's panel lifecycle events.
//
// The primary adapter is [NewDonburiSink], which bridges trellis lifecycle
// events (panel shown, panel hidden, screen changed) into a [Donburi] world
// as typed events. Subscribe to [PanelEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	mgr.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
