package trellis

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// GameConfig controls the ebiten host adapter.
type GameConfig struct {
	Title         string
	Width, Height int

	// BackKeys trigger PressBack on the tick they are first pressed.
	// Nil means {ebiten.KeyEscape}.
	BackKeys []ebiten.Key
}

// Game adapts a Manager to ebiten's game loop: it polls the back trigger,
// forwards screen dimensions from Layout, ticks the manager, and draws every
// role container that is a *Layer (screens below overlays below transients).
//
// For full control over drawing, skip Game and call Manager.Update,
// Manager.SetScreenSize, and Manager.PressBack from your own ebiten.Game.
type Game struct {
	mgr      *Manager
	backKeys []ebiten.Key
	layers   []*Layer
}

// NewGame wraps mgr for ebiten. Containers configured on the manager that
// are *Layer values are drawn in role order.
func NewGame(mgr *Manager, cfg GameConfig) *Game {
	g := &Game{mgr: mgr, backKeys: cfg.BackKeys}
	if len(g.backKeys) == 0 {
		g.backKeys = []ebiten.Key{ebiten.KeyEscape}
	}
	for _, c := range []Container{mgr.opts.Screens, mgr.opts.Overlays, mgr.opts.Transients} {
		if layer, ok := c.(*Layer); ok {
			g.layers = append(g.layers, layer)
		}
	}
	return g
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	for _, key := range g.backKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.mgr.PressBack()
			break
		}
	}
	g.mgr.Update(float32(1.0 / float64(ebiten.TPS())))
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	for _, layer := range g.layers {
		layer.Draw(screen)
	}
}

// Layout implements ebiten.Game and feeds the scaling strategy.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mgr.SetScreenSize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run creates a window, starts the manager, and blocks in ebiten's game loop
// until the window closes.
//
//	mgr := trellis.NewManager(registry, trellis.Options{
//		Opening:  "main_menu",
//		Screens:  trellis.NewLayer("screens"),
//		Overlays: trellis.NewLayer("overlays"),
//	})
//	if err := trellis.Run(mgr, trellis.GameConfig{Title: "My Game", Width: 1080, Height: 1920}); err != nil {
//		log.Fatal(err)
//	}
func Run(mgr *Manager, cfg GameConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1080
	}
	if cfg.Height <= 0 {
		cfg.Height = 1920
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	mgr.StartUp()
	return ebiten.RunGame(NewGame(mgr, cfg))
}
