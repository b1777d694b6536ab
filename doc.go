// Package trellis is a stack-based UI navigation framework for [Ebitengine].
//
// Trellis manages which full-screen views, overlays, and transient
// notifications are on screen, drives each panel through its lifecycle with
// animated transitions, governs panel memory (eager preloading vs. on-demand
// loading with idle destruction), and applies responsive scaling across
// device aspect ratios.
//
// # Quick start
//
// Register a Config per panel kind, create a [Manager], and hand it to
// [Run], which creates a window and game loop for you:
//
//	reg := trellis.NewRegistry()
//	reg.Register(trellis.Config{
//		Kind: "main_menu", Role: trellis.RoleFullScreen,
//		Load: trellis.LoadEager, New: newMainMenu,
//	})
//	reg.Register(trellis.Config{
//		Kind: "settings", Role: trellis.RoleOverlay,
//		Load: trellis.LoadOnDemand, AllowBack: true, New: newSettings,
//	})
//
//	mgr := trellis.NewManager(reg, trellis.Options{
//		Opening:    "main_menu",
//		Screens:    trellis.NewLayer("screens"),
//		Overlays:   trellis.NewLayer("overlays"),
//		Transients: trellis.NewLayer("transients"),
//	})
//	trellis.Run(mgr, trellis.GameConfig{Title: "My Game", Width: 1080, Height: 1920})
//
// For full control, implement [ebiten.Game] yourself and call
// [Manager.Update], [Manager.SetScreenSize], and [Manager.PressBack]
// directly.
//
// # Panels
//
// Every UI unit is a [Panel]: a [Behavior] (the four lifecycle hooks), a
// [Surface] (the narrow rendering contract), and a visibility state machine.
// Behaviors that also implement [Animator] get animated transitions; embed
// [FadeAnimator] or [SlideAnimator] for ready-made ones (built on [gween]).
//
// # Navigation
//
// [Manager.Show] routes by the panel's [Role]: full-screen views push the
// navigation stack and close non-persistent overlays, overlays stack above
// the current screen in strict draw order, transients auto-dismiss after
// their configured duration. [Manager.PressBack] dismisses the top overlay
// first, then the top full-screen view, never the last one.
//
// Callers that must not hold a Manager reference use the [Bus]: requests are
// fire-and-forget and lifecycle notifications (panel shown, panel hidden,
// screen changed) are broadcast to every subscriber in emission order. ECS
// integration is available via the [Donburi] adapter in trellis/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package trellis
