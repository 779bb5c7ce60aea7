// arsim runs the anchoring engine headless against the simulated tracking
// session: a scripted GPS walk past the scene's geo-tagged objects, with
// metrics and an overlay WebSocket surface to watch it happen.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/ar-anchor/core"
	"github.com/signalsfoundry/ar-anchor/framectrl"
	"github.com/signalsfoundry/ar-anchor/internal/logging"
	"github.com/signalsfoundry/ar-anchor/internal/observability"
	"github.com/signalsfoundry/ar-anchor/internal/overlay"
	"github.com/signalsfoundry/ar-anchor/internal/xrsim"
	"github.com/signalsfoundry/ar-anchor/model"
)

func main() {
	configPath := flag.String("config", "configs/arsim.yaml", "path to the YAML application config")
	scenePath := flag.String("scene", "", "path to the JSON scene description (overrides config)")
	duration := flag.Duration("duration", 0, "total run duration (overrides config)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, log := logging.WithSessionLogger(context.Background(), log)

	cfg, err := LoadAppConfig(*configPath)
	if err != nil {
		log.Error(ctx, "config load failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *scenePath != "" {
		cfg.ScenePath = *scenePath
	}
	if *duration > 0 {
		cfg.Frame.Duration = *duration
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	metrics, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	f, err := os.Open(cfg.ScenePath)
	if err != nil {
		log.Error(ctx, "scene open failed",
			logging.String("path", cfg.ScenePath),
			logging.String("error", err.Error()))
		os.Exit(1)
	}
	desc, err := core.LoadSceneDescription(f)
	f.Close()
	if err != nil {
		log.Error(ctx, "scene load failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	scene := core.NewScene()
	for _, def := range desc.Objects {
		if _, err := scene.AddObject(def, xrsim.NewRenderNode(), desc.Session.DefaultRadiusM); err != nil {
			log.Error(ctx, "object setup failed",
				logging.String("object", def.ID),
				logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	deps := core.SessionDeps{
		Logger:  log,
		Metrics: metrics,
	}

	if desc.Placed != nil {
		if _, err := scene.AttachPlacementSlot(xrsim.NewRenderNode()); err != nil {
			log.Error(ctx, "placement slot setup failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		deps.Placed = *desc.Placed
	}

	overlaySrv := overlay.NewServer(log)
	deps.Status = overlaySrv

	session := &xrsim.Session{CreateLatencyFrames: cfg.AnchorLatencyFrames}
	deps.Anchors = session

	walker := xrsim.NewWalker(
		model.GeoPoint{LatDeg: cfg.Walk.Lat, LonDeg: cfg.Walk.Lon},
		cfg.Walk.BearingDeg, cfg.Walk.StepM,
	)
	deps.Location = walker

	orch, err := core.NewOrchestrator(scene, desc.Session, deps)
	if err != nil {
		log.Error(ctx, "session setup failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer orch.Close()

	go serveHTTP(ctx, log, cfg.Listen.Metrics, "/metrics", metrics.Handler())
	go serveHTTP(ctx, log, cfg.Listen.Overlay, "/overlay", overlaySrv)

	space := &xrsim.Space{Name: "local"}
	viewer := core.Pose{Position: mgl64.Vec3{0, 1.6, 0}, Orientation: mgl64.QuatIdent()}

	mode := framectrl.RealTime
	if cfg.Frame.Accelerated {
		mode = framectrl.Accelerated
	}
	pacer := framectrl.NewFramePacer(cfg.Frame.Interval, mode)

	pacer.AddListener(func(frame int, now time.Time) {
		if walkerDue(frame, cfg.Walk.EveryNFrames) {
			walker.Step()
		}
		session.Step()

		orch.OnFrame(&xrsim.Frame{Viewer: &viewer}, space)

		var locPtr *model.UserLocation
		if loc, ok := orch.Tracker().Latest(); ok {
			locPtr = &loc
		}
		overlaySrv.Broadcast(overlay.StatusFrame{
			Frame:     frame,
			Timestamp: now,
			Mode:      string(orch.Mode()),
			Objects:   scene.Snapshot(locPtr),
		})

		if frame%60 == 0 {
			printFrameSummary(frame, walker, scene, locPtr)
		}
	})

	log.Info(ctx, "starting ar session",
		logging.String("mode", string(desc.Session.Mode)),
		logging.Int("objects", len(desc.Objects)),
		logging.String("duration", cfg.Frame.Duration.String()),
	)
	<-pacer.Start(cfg.Frame.Duration)
	log.Info(ctx, "session complete", logging.Int("frames", pacer.FrameCount()))
}

// walkerDue reports whether the GPS walker should step on this frame.
// Frames are numbered from 1, and the first frame always delivers a fix so
// the session does not run blind until the cadence comes around.
func walkerDue(frame, everyNFrames int) bool {
	if everyNFrames <= 1 {
		return true
	}
	return (frame-1)%everyNFrames == 0
}

func printFrameSummary(frame int, walker *xrsim.Walker, scene *core.Scene, loc *model.UserLocation) {
	user := walker.Position()
	fmt.Printf("[frame %5d] user @ (%.6f, %.6f)\n", frame, user.LatDeg, user.LonDeg)
	for _, snap := range scene.Snapshot(loc) {
		fmt.Printf("  - %-16s state=%-10s visible=%-5v d=%6.1fm pos=(%.1f, %.1f, %.1f)\n",
			snap.ID, snap.State, snap.Visible, snap.Distance,
			snap.Position[0], snap.Position[1], snap.Position[2])
	}
}

func serveHTTP(ctx context.Context, log logging.Logger, addr, path string, handler http.Handler) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn(ctx, "http server stopped",
			logging.String("addr", addr),
			logging.String("error", err.Error()))
	}
}
