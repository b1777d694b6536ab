package trellis

import (
	"strings"
	"testing"
)

const tick = float32(1.0 / 60)

func navFixture(t *testing.T) (*fixture, *Manager) {
	t.Helper()
	f := newFixture(t,
		Config{Kind: "home", Role: RoleFullScreen, Load: LoadEager},
		Config{Kind: "shop", Role: RoleFullScreen, Load: LoadOnDemand, AllowBack: true},
		Config{Kind: "profile", Role: RoleFullScreen, Load: LoadOnDemand, AllowBack: true},
		Config{Kind: "settings", Role: RoleOverlay, Load: LoadOnDemand, AllowBack: true, IdleDelay: 1},
		Config{Kind: "chat", Role: RoleOverlay, Load: LoadOnDemand, Persists: true},
		Config{Kind: "inventory", Role: RoleOverlay, Load: LoadOnDemand, AllowBack: true},
		Config{Kind: "toast", Role: RoleTransient, Load: LoadOnDemand, Duration: 1},
	)
	return f, f.start(t, Options{Opening: "home"})
}

func hasReport(f *fixture, substr string) bool {
	for _, r := range f.reports {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

// --- Startup ---

func TestStartUpShowsOpeningView(t *testing.T) {
	f, mgr := navFixture(t)

	home := f.panel(t, "home")
	if !home.IsVisible() {
		t.Error("opening view should be visible")
	}
	if len(mgr.screens) != 1 || mgr.screens[0] != home {
		t.Errorf("screens = %v, want [home]", mgr.screens)
	}
	if f.behaviors["home"].setups != 1 || f.behaviors["home"].refreshes != 1 {
		t.Errorf("home hooks: setups=%d refreshes=%d, want 1/1",
			f.behaviors["home"].setups, f.behaviors["home"].refreshes)
	}
}

func TestStartUpIsIdempotent(t *testing.T) {
	f, mgr := navFixture(t)

	shown := 0
	mgr.Bus().OnPanelShown(func(Kind) { shown++ })
	mgr.StartUp()

	if shown != 0 {
		t.Error("repeated StartUp must not re-show anything")
	}
	if f.behaviors["home"].setups != 1 {
		t.Errorf("home setups = %d, want 1", f.behaviors["home"].setups)
	}
}

func TestStartUpDiscardsInvalidOpeningView(t *testing.T) {
	f := newFixture(t,
		Config{Kind: "settings", Role: RoleOverlay, Load: LoadEager},
	)
	mgr := f.start(t, Options{Opening: "settings"})

	if len(mgr.screens) != 0 {
		t.Error("invalid opening view must leave the full-screen stack empty")
	}
	if !hasReport(f, "opening view") {
		t.Errorf("reports = %v, want an opening-view diagnostic", f.reports)
	}

	// The manager still serves requests afterwards.
	mgr.Show("settings", nil, nil)
	if !f.panel(t, "settings").IsVisible() {
		t.Error("manager should keep working after a discarded opening view")
	}
}

func TestStartUpRejectsOnDemandOpeningView(t *testing.T) {
	f := newFixture(t,
		Config{Kind: "home", Role: RoleFullScreen, Load: LoadOnDemand},
	)
	mgr := f.start(t, Options{Opening: "home"})
	if len(mgr.screens) != 0 {
		t.Error("on-demand opening view must be discarded")
	}
}

// --- Full-screen stack ---

func TestSingleFullScreenVisibility(t *testing.T) {
	f, mgr := navFixture(t)

	sequence := []Kind{"shop", "profile", "shop"}
	for _, kind := range sequence {
		mgr.Show(kind, nil, nil)

		visible := 0
		for _, p := range mgr.loaded {
			if p.Config().Role == RoleFullScreen && p.Surface().IsVisible() {
				visible++
				if p.Kind() != kind {
					t.Errorf("visible screen = %q, want %q", p.Kind(), kind)
				}
			}
		}
		if visible != 1 {
			t.Errorf("after Show(%q): %d visible screens, want 1", kind, visible)
		}
		if mgr.topScreen() != f.panel(t, kind) {
			t.Errorf("after Show(%q): top = %v", kind, mgr.topScreen().Kind())
		}
	}
}

func TestHideScreenResumesPrevious(t *testing.T) {
	f, mgr := navFixture(t)
	mgr.Show("shop", nil, nil)

	home := f.panel(t, "home")
	if home.Surface().IsVisible() {
		t.Fatal("previous screen should be deactivated")
	}
	refreshes := f.behaviors["home"].refreshes

	mgr.Hide("shop", nil)

	if !home.Surface().IsVisible() {
		t.Error("previous screen should be reactivated")
	}
	if f.behaviors["home"].refreshes != refreshes+1 {
		t.Error("resume should re-run the refresh hook")
	}
	if f.behaviors["home"].lastData != nil {
		t.Error("resume passes no data")
	}
	if len(mgr.screens) != 1 {
		t.Errorf("screens = %d entries, want 1", len(mgr.screens))
	}
}

func TestShowActiveScreenRefreshesInPlace(t *testing.T) {
	f, mgr := navFixture(t)

	changed := 0
	mgr.Bus().OnScreenChanged(func(_, _ Kind) { changed++ })
	mgr.Show("home", "again", nil)

	if changed != 0 {
		t.Error("refreshing the active screen must not emit screen changed")
	}
	if len(mgr.screens) != 1 {
		t.Errorf("screens = %d entries, want 1", len(mgr.screens))
	}
	if f.behaviors["home"].lastData != "again" {
		t.Error("refresh should deliver the new payload")
	}
}

func TestHideBuriedScreenPreservesTop(t *testing.T) {
	f, mgr := navFixture(t)
	mgr.Show("shop", nil, nil)
	mgr.Show("profile", nil, nil)

	profileRefreshes := f.behaviors["profile"].refreshes
	mgr.Hide("shop", nil)

	if mgr.topScreen() != f.panel(t, "profile") {
		t.Errorf("top = %v, want profile", mgr.topScreen().Kind())
	}
	if !f.panel(t, "profile").Surface().IsVisible() {
		t.Error("top screen must stay visible")
	}
	if f.behaviors["profile"].refreshes != profileRefreshes {
		t.Error("hiding a buried screen must not re-show the top")
	}
	want := []Kind{"home", "profile"}
	if len(mgr.screens) != len(want) {
		t.Fatalf("screens = %d entries, want %d", len(mgr.screens), len(want))
	}
	for i, kind := range want {
		if mgr.screens[i].Kind() != kind {
			t.Errorf("screens[%d] = %q, want %q", i, mgr.screens[i].Kind(), kind)
		}
	}
}

// --- Overlay stack ---

func TestOverlayOrderingMonotonic(t *testing.T) {
	f, mgr := navFixture(t)

	kinds := []Kind{"settings", "chat", "inventory"}
	var orders []int
	for _, kind := range kinds {
		mgr.Show(kind, nil, nil)
		orders = append(orders, f.panel(t, kind).Surface().Order())
	}
	for i := 1; i < len(orders); i++ {
		if orders[i] <= orders[i-1] {
			t.Fatalf("orders = %v, want strictly increasing", orders)
		}
	}

	// Remove the middle overlay; a fresh push must still land above the top.
	mgr.Hide("chat", nil)
	topOrder := f.panel(t, "inventory").Surface().Order()
	mgr.Show("chat", nil, nil)
	if got := f.panel(t, "chat").Surface().Order(); got <= topOrder {
		t.Errorf("re-pushed order = %d, want > %d", got, topOrder)
	}
}

func TestOverlayOrderResetsWhenStackEmpties(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.Show("settings", nil, nil)
	first := f.panel(t, "settings").Surface().Order()
	mgr.Hide("settings", nil)
	mgr.Show("settings", nil, nil)

	if got := f.panel(t, "settings").Surface().Order(); got != first {
		t.Errorf("order after stack emptied = %d, want %d", got, first)
	}
}

func TestOverlayRepeatShowRefreshesInPlace(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.Show("settings", "a", nil)
	order := f.panel(t, "settings").Surface().Order()
	mgr.Show("chat", nil, nil)
	mgr.Show("settings", "b", nil)

	if len(mgr.overlays) != 2 {
		t.Fatalf("overlays = %d entries, want 2", len(mgr.overlays))
	}
	if got := f.panel(t, "settings").Surface().Order(); got != order {
		t.Errorf("order = %d, want unchanged %d", got, order)
	}
	if mgr.topOverlay() != f.panel(t, "chat") {
		t.Error("refresh must not re-order the stack")
	}
	if f.behaviors["settings"].lastData != "b" {
		t.Error("refresh should deliver the new payload")
	}
}

func TestOverlaySoftLimitWarns(t *testing.T) {
	f := newFixture(t, Config{Kind: "home", Role: RoleFullScreen, Load: LoadEager})
	kinds := []Kind{"o1", "o2", "o3", "o4", "o5", "o6"}
	for _, kind := range kinds {
		f.register(t, Config{Kind: kind, Role: RoleOverlay, Load: LoadOnDemand})
	}
	mgr := f.start(t, Options{Opening: "home"})

	for _, kind := range kinds[:5] {
		mgr.Show(kind, nil, nil)
	}
	if hasReport(f, "soft limit") {
		t.Fatal("warning fired at the threshold, want above it")
	}
	mgr.Show("o6", nil, nil)
	if !hasReport(f, "soft limit") {
		t.Errorf("reports = %v, want a soft-limit warning", f.reports)
	}
	if !f.panel(t, "o6").IsVisible() {
		t.Error("the overlay above the soft limit still shows")
	}
}

// --- Loading and memory ---

func TestGetOrLoadReturnsSameInstance(t *testing.T) {
	_, mgr := navFixture(t)

	p1, err := mgr.GetOrLoad("settings")
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	p2, err := mgr.GetOrLoad("settings")
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if p1 != p2 {
		t.Error("GetOrLoad must return the cached instance")
	}
}

func TestIdleDestructionAfterDelay(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.Show("settings", nil, nil) // IdleDelay: 1
	p := f.panel(t, "settings")
	mgr.Hide("settings", nil)

	mgr.Update(0.5)
	if _, loaded := mgr.loaded["settings"]; !loaded {
		t.Fatal("destroyed before the idle delay elapsed")
	}
	mgr.Update(0.6)
	if _, loaded := mgr.loaded["settings"]; loaded {
		t.Fatal("still loaded after the idle delay elapsed")
	}
	if p.State() != StateDestroyed {
		t.Errorf("State = %v, want destroyed", p.State())
	}
	if f.behaviors["settings"].teardowns != 1 {
		t.Errorf("teardowns = %d, want 1", f.behaviors["settings"].teardowns)
	}
}

func TestReshowWithinIdleWindowCancelsDestruction(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.Show("settings", nil, nil)
	p := f.panel(t, "settings")
	mgr.Hide("settings", nil)

	mgr.Update(0.5)
	mgr.Show("settings", nil, nil)
	mgr.Update(2)

	got, ok := mgr.loaded["settings"]
	if !ok {
		t.Fatal("panel was destroyed despite the re-show")
	}
	if got != p {
		t.Error("instance identity must be preserved across the idle window")
	}
	if f.behaviors["settings"].teardowns != 0 {
		t.Error("teardown must not run for a canceled destruction")
	}
}

func TestEagerPanelsAreNeverDestroyed(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.Show("shop", nil, nil)
	mgr.Hide("shop", nil) // home resumes, shop hidden
	mgr.Show("shop", nil, nil)
	mgr.Hide("shop", nil)
	mgr.Update(60)

	if _, loaded := mgr.loaded["home"]; !loaded {
		t.Error("eager panel must survive")
	}
	if f.behaviors["home"].teardowns != 0 {
		t.Error("eager panel must never tear down")
	}
}

func TestMissingConfigReported(t *testing.T) {
	f, mgr := navFixture(t)
	mgr.Show("nonsense", nil, nil)
	if !hasReport(f, "no config registered") {
		t.Errorf("reports = %v, want a configuration-missing diagnostic", f.reports)
	}
	mgr.Hide("nonsense", nil)
	if len(mgr.loaded) == 0 {
		t.Error("other panels must be unaffected")
	}
}

func TestFactoryWithoutSurfaceAbortsInstantiation(t *testing.T) {
	f := newFixture(t, Config{Kind: "home", Role: RoleFullScreen, Load: LoadEager})
	f.register(t, Config{
		Kind: "broken", Role: RoleOverlay, Load: LoadOnDemand,
		New: func() (Behavior, Surface) { return &stubBehavior{}, nil },
	})
	mgr := f.start(t, Options{Opening: "home"})

	mgr.Show("broken", nil, nil)
	if _, loaded := mgr.loaded["broken"]; loaded {
		t.Error("an aborted instantiation must not be cached")
	}
	if !hasReport(f, "no surface") {
		t.Errorf("reports = %v, want a missing-surface diagnostic", f.reports)
	}
}

func TestLoadInFlightGuard(t *testing.T) {
	f := newFixture(t, Config{Kind: "home", Role: RoleFullScreen, Load: LoadEager})
	var mgr *Manager
	var nested error
	f.register(t, Config{
		Kind: "recursive", Role: RoleOverlay, Load: LoadOnDemand,
		New: func() (Behavior, Surface) {
			_, nested = mgr.GetOrLoad("recursive")
			return &stubBehavior{}, NewBasicSurface()
		},
	})
	mgr = f.start(t, Options{Opening: "home"})

	if _, err := mgr.GetOrLoad("recursive"); err != nil {
		t.Fatalf("outer GetOrLoad: %v", err)
	}
	if nested == nil {
		t.Fatal("nested load should be rejected, not double-instantiate")
	}
	if len(mgr.loaded) != 2 { // home + recursive
		t.Errorf("loaded = %d entries, want 2", len(mgr.loaded))
	}
}

// --- Close callbacks ---

func TestRedundantHideIsInert(t *testing.T) {
	_, mgr := navFixture(t)

	hidden := 0
	mgr.Bus().OnPanelHidden(func(Kind) { hidden++ })

	mgr.Show("settings", nil, nil) // IdleDelay: 1
	mgr.Hide("settings", nil)
	mgr.Update(0.9)
	mgr.Hide("settings", nil)

	if hidden != 1 {
		t.Errorf("hidden events = %d, want 1 (redundant hide must not notify)", hidden)
	}

	// The idle clock keeps running from the first hide.
	mgr.Update(0.2)
	if _, loaded := mgr.loaded["settings"]; loaded {
		t.Error("redundant hide must not extend the idle-destruction window")
	}
}

func TestManagerCloseCallback(t *testing.T) {
	_, mgr := navFixture(t)

	var results []any
	mgr.Show("settings", nil, func(result any) { results = append(results, result) })
	mgr.Hide("settings", "saved")
	mgr.Hide("settings", "again")

	if len(results) != 1 || results[0] != "saved" {
		t.Errorf("results = %v, want [saved]", results)
	}
}

// --- Cascading close ---

func TestNavigationClosesNonPersistentOverlays(t *testing.T) {
	f, mgr := navFixture(t)

	var events []string
	mgr.Bus().OnPanelShown(func(kind Kind) { events = append(events, "shown:"+string(kind)) })
	mgr.Bus().OnPanelHidden(func(kind Kind) { events = append(events, "hidden:"+string(kind)) })
	mgr.Bus().OnScreenChanged(func(newKind, previous Kind) {
		events = append(events, "screen:"+string(newKind)+"<-"+string(previous))
	})

	callbackFired := false
	mgr.Show("settings", nil, func(any) { callbackFired = true }) // persists: false
	mgr.Show("chat", nil, nil)                                    // persists: true
	events = events[:0]

	mgr.Show("shop", nil, nil)

	if !callbackFired {
		t.Error("the closed overlay's callback must fire")
	}
	if f.panel(t, "settings").IsVisible() {
		t.Error("non-persistent overlay should be closed")
	}
	if !f.panel(t, "chat").IsVisible() {
		t.Error("persistent overlay should survive navigation")
	}

	want := []string{"hidden:settings", "shown:shop", "screen:shop<-home"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}

	// The closed overlay's destruction timer started through the normal path.
	if !mgr.sched.pending(f.panel(t, "settings"), timerDestroy) {
		t.Error("cascading close must start the idle-destruction timer")
	}
}

func TestHideAllOverlays(t *testing.T) {
	f, mgr := navFixture(t)
	mgr.Show("settings", nil, nil)
	mgr.Show("chat", nil, nil)

	mgr.HideAllOverlays()

	if len(mgr.overlays) != 0 {
		t.Errorf("overlays = %d entries, want 0", len(mgr.overlays))
	}
	if f.panel(t, "chat").IsVisible() {
		t.Error("HideAllOverlays closes persistent overlays too")
	}
}

// --- Back button ---

func TestBackDismissesTopOverlayOnly(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.Show("chat", nil, nil)     // AllowBack: false
	mgr.Show("settings", nil, nil) // AllowBack: true, top

	mgr.PressBack()

	if f.panel(t, "settings").IsVisible() {
		t.Error("top overlay should be dismissed")
	}
	if !f.panel(t, "chat").IsVisible() {
		t.Error("lower overlay must remain")
	}
	if len(mgr.screens) != 1 {
		t.Error("full-screen stack must be untouched")
	}
}

func TestBackFallsThroughToScreens(t *testing.T) {
	f, mgr := navFixture(t)
	mgr.Show("shop", nil, nil)

	mgr.PressBack()

	if f.panel(t, "shop").IsVisible() {
		t.Error("top screen should be dismissed")
	}
	if !f.panel(t, "home").IsVisible() {
		t.Error("previous screen should resume")
	}
}

func TestBackNeverClosesLastScreen(t *testing.T) {
	f := newFixture(t, Config{Kind: "solo", Role: RoleFullScreen, Load: LoadEager, AllowBack: true})
	mgr := f.start(t, Options{Opening: "solo"})

	mgr.PressBack()

	if !f.panel(t, "solo").IsVisible() {
		t.Error("the last screen must survive back presses")
	}
	if len(mgr.screens) != 1 {
		t.Errorf("screens = %d entries, want 1", len(mgr.screens))
	}
}

func TestBackRespectsTransitionGuard(t *testing.T) {
	f := newFixture(t, Config{Kind: "home", Role: RoleFullScreen, Load: LoadEager})
	manual := &manualBehavior{}
	f.register(t, Config{
		Kind: "modal", Role: RoleOverlay, Load: LoadOnDemand, AllowBack: true,
		New: func() (Behavior, Surface) { return manual, NewBasicSurface() },
	})
	mgr := f.start(t, Options{Opening: "home"})

	mgr.Show("modal", nil, nil) // entrance animation never finishes
	mgr.PressBack()

	if len(mgr.overlays) != 1 {
		t.Error("a transitioning overlay must not be dismissed")
	}
	manual.finishIn(t)
	mgr.PressBack()
	manual.finishOut(t)
	if len(mgr.overlays) != 0 {
		t.Error("the settled overlay should be dismissed")
	}
}

// --- Interaction gate ---

func TestGatePriority(t *testing.T) {
	f, mgr := navFixture(t)
	f.register(t, Config{
		Kind: "veil", Role: RoleOverlay, Load: LoadOnDemand,
		Priority: PriorityAboveCinematic,
	})

	mgr.Show("settings", nil, nil) // PriorityNormal
	mgr.Show("veil", nil, nil)

	mgr.SetGlobalInteraction(false, PriorityNormal)
	if f.panel(t, "settings").Surface().IsInteractive() {
		t.Error("normal-priority panel should be blocked")
	}
	if !f.panel(t, "veil").Surface().IsInteractive() {
		t.Error("above-cinematic panel must stay interactive")
	}

	mgr.SetGlobalInteraction(true, PriorityNormal)
	if !f.panel(t, "settings").Surface().IsInteractive() {
		t.Error("enabling the gate restores interactivity")
	}
	if !f.panel(t, "veil").Surface().IsInteractive() {
		t.Error("enabling the gate restores interactivity")
	}
}

func TestGateSkipsBuriedScreens(t *testing.T) {
	f, mgr := navFixture(t)
	mgr.Show("shop", nil, nil) // home buried, surface deactivated

	mgr.SetGlobalInteraction(false, PriorityNormal)

	if f.panel(t, "shop").Surface().IsInteractive() {
		t.Error("active screen should be blocked")
	}
	if !f.panel(t, "home").Surface().IsInteractive() {
		t.Error("buried screen must be left alone by a gate change")
	}

	// Resuming goes through applyGate, so the gate catches up.
	mgr.Hide("shop", nil)
	if f.panel(t, "home").Surface().IsInteractive() {
		t.Error("resumed screen should pick up the active gate")
	}
}

func TestGateAppliesToNewlyShownPanels(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.SetGlobalInteraction(false, PriorityHigh)
	mgr.Show("settings", nil, nil)

	if f.panel(t, "settings").Surface().IsInteractive() {
		t.Error("a panel shown while the gate is down must come up blocked")
	}
}

// --- Transients ---

func TestTransientAutoHide(t *testing.T) {
	f, mgr := navFixture(t)

	fired := false
	mgr.Show("toast", nil, func(any) { fired = true }) // Duration: 1
	p := f.panel(t, "toast")
	if !p.IsVisible() {
		t.Fatal("toast should be visible")
	}
	if len(mgr.overlays) != 0 || len(mgr.screens) != 1 {
		t.Error("transients must not join either stack")
	}

	mgr.Update(0.5)
	if !p.IsVisible() {
		t.Fatal("auto-hide fired early")
	}
	mgr.Update(0.6)
	if p.IsVisible() {
		t.Fatal("toast should be auto-hidden after its duration")
	}
	if !fired {
		t.Error("auto-hide goes through the standard path, firing the callback")
	}
	if !mgr.sched.pending(p, timerDestroy) {
		t.Error("on-demand transient should start its idle-destruction timer")
	}
}

func TestTransientAutoHideSkipsAlreadyHidden(t *testing.T) {
	f, mgr := navFixture(t)

	hidden := 0
	mgr.Bus().OnPanelHidden(func(Kind) { hidden++ })

	mgr.Show("toast", nil, nil)
	mgr.Hide("toast", nil)
	mgr.Update(2)

	if hidden != 1 {
		t.Errorf("hidden events = %d, want 1 (stale auto-hide must no-op)", hidden)
	}
	_ = f
}

func TestTransientReshowReplacesAutoHideTimer(t *testing.T) {
	f, mgr := navFixture(t)

	mgr.Show("toast", nil, nil)
	mgr.Update(0.8)
	mgr.Show("toast", nil, nil) // timer restarts
	mgr.Update(0.5)

	if !f.panel(t, "toast").IsVisible() {
		t.Error("re-show must restart the auto-hide clock")
	}
	mgr.Update(0.6)
	if f.panel(t, "toast").IsVisible() {
		t.Error("toast should hide one duration after the re-show")
	}
}

// --- Reentrancy via manager ---

func TestManagerRejectsShowWhileTransitioning(t *testing.T) {
	f := newFixture(t, Config{Kind: "home", Role: RoleFullScreen, Load: LoadEager})
	manual := &manualBehavior{}
	f.register(t, Config{
		Kind: "modal", Role: RoleOverlay, Load: LoadOnDemand,
		New: func() (Behavior, Surface) { return manual, NewBasicSurface() },
	})
	mgr := f.start(t, Options{Opening: "home"})

	mgr.Show("modal", nil, nil)
	mgr.Show("modal", nil, nil) // mid-entrance

	if !hasReport(f, "transitioning") {
		t.Errorf("reports = %v, want a reentrant-transition diagnostic", f.reports)
	}
	if len(mgr.overlays) != 1 {
		t.Errorf("overlays = %d entries, want 1", len(mgr.overlays))
	}
	if manual.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", manual.refreshes)
	}
}
