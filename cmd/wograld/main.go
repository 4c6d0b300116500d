package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wograld/server/internal/config"
	"github.com/wograld/server/internal/core/event"
	coresys "github.com/wograld/server/internal/core/system"
	"github.com/wograld/server/internal/data"
	"github.com/wograld/server/internal/scripting"
	"github.com/wograld/server/internal/system"
	"github.com/wograld/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              Wograld  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. World
	bus := event.NewBus()
	w := world.New(log.Named("world"), bus, world.Options{
		PoolBatch:        cfg.World.PoolBatch,
		Seed:             cfg.World.Seed,
		AbortOnInvariant: cfg.World.AbortOnInvariant,
		MaxFallDepth:     cfg.World.MaxFallDepth,
	})

	// 4. Archetypes and maps
	printSection("data")
	nArch, err := data.LoadArchetypes(w, cfg.Data.Archetypes)
	if err != nil {
		return fmt.Errorf("load archetypes: %w", err)
	}
	printStat("archetypes", nArch)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	nMaps, err := data.LoadMapDir(ctx, w, cfg.Data.MapDir, log.Named("data"))
	if err != nil {
		return fmt.Errorf("load maps: %w", err)
	}
	printStat("maps", nMaps)
	printStat("objects", w.LiveCount())
	if cfg.World.StartMap != "" && w.Map(cfg.World.StartMap) == nil {
		return fmt.Errorf("start map %q is not loaded", cfg.World.StartMap)
	}

	// 5. Scripts
	printSection("scripts")
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, w, log.Named("lua"))
	if err != nil {
		return fmt.Errorf("init scripting: %w", err)
	}
	defer engine.Close()
	w.SetHooks(engine.Hooks())
	printOK("lua triggers bound")

	// 6. Systems
	faultCh := make(chan error, 1)
	moves := system.NewMoveIntentSystem(w, 1024, 256, log.Named("input"))
	runner := coresys.NewRunner()
	runner.Register(moves)
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewActiveSystem(w, log.Named("active"), func(err error) {
		select {
		case faultCh <- err:
		default:
		}
	}))
	subscribeLogging(bus, log.Named("events"))

	// 7. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()
	inputTicker := time.NewTicker(cfg.Server.InputRate)
	defer inputTicker.Stop()

	printSection("ready")
	printStat("systems", runner.Len())
	printStat("active objects", w.ActiveCount())
	printReady(fmt.Sprintf("ticking every %s", cfg.Server.TickRate))
	fmt.Println()

	log.Info("server started",
		zap.String("name", cfg.Server.Name),
		zap.Duration("tick_rate", cfg.Server.TickRate),
		zap.Int("archetypes", nArch),
		zap.Int("maps", nMaps),
	)

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)

		case <-inputTicker.C:
			runner.TickPhase(coresys.PhaseInput, cfg.Server.InputRate)

		case err := <-faultCh:
			log.Error("world stopped on an internal error", zap.Error(err))
			return fmt.Errorf("world fault: %w", err)

		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			// deliver whatever the last tick produced
			bus.SwapBuffers()
			bus.DispatchAll()
			log.Info("server stopped",
				zap.Int("objects", w.LiveCount()),
				zap.Int("players", w.PlayerCount()),
				zap.Int("pending_moves", moves.Pending()))
			return nil
		}
	}
}

// subscribeLogging writes player-facing notifications to the log. There is
// no client connection; this is where a presentation layer would attach.
func subscribeLogging(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(m event.Message) {
		log.Debug("message", zap.Uint32("to", m.Tag), zap.String("text", m.Text))
	})
	event.Subscribe(bus, func(e event.MapEntered) {
		log.Debug("map entered", zap.Uint32("player", e.Tag), zap.String("map", e.Map),
			zap.Int("x", e.X), zap.Int("y", e.Y))
	})
	event.Subscribe(bus, func(e event.MapScrolled) {
		log.Debug("map scrolled", zap.Uint32("player", e.Tag), zap.Int("dx", e.DX), zap.Int("dy", e.DY))
	})
	event.Subscribe(bus, func(e event.MusicChanged) {
		log.Debug("music", zap.Uint32("player", e.Tag), zap.Int("track", e.Track))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
