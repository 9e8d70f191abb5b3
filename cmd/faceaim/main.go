package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ayusman/faceaim/internal/app"
	"github.com/ayusman/faceaim/internal/calibrate"
	"github.com/ayusman/faceaim/internal/capture"
	"github.com/ayusman/faceaim/internal/config"
	"github.com/ayusman/faceaim/internal/detector"
	"github.com/ayusman/faceaim/internal/inject"
	"github.com/ayusman/faceaim/internal/input"
	"github.com/ayusman/faceaim/internal/log"
	"github.com/ayusman/faceaim/internal/pose"
	"github.com/ayusman/faceaim/internal/server"
	"github.com/ayusman/faceaim/internal/store"
	"github.com/ayusman/faceaim/internal/tray"
	"github.com/ayusman/faceaim/internal/ui"
)

func init() {
	// HighGUI windows must stay on the thread that created them.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a JSON settings file")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn or error (overrides the settings file)")
	debug := flag.Bool("debug", false, "draw raw pose coordinates on the preview")
	flag.Parse()

	settings := config.DefaultSettings()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "faceaim: %v\n", err)
			return 1
		}
		settings = loaded
	}
	level := settings.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	log.Init(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detCfg := detector.DefaultConfig()
	if settings.LandmarkModel != "" {
		detCfg.ModelPath = settings.LandmarkModel
	}
	det, err := detector.NewLandmarkService(detCfg)
	if err != nil {
		log.Error("landmark detector unavailable", "error", err)
		return 1
	}
	defer det.Close()

	solver := pose.NewCVSolver()
	defer solver.Close()

	var filter pose.Filter
	if settings.PoseFilter == config.PoseFilterKalman {
		filter = pose.NewKalmanFilter(1.0 / capture.DefaultFPS)
	}
	tracker := pose.NewTracker(det, solver, filter)

	var st *store.Store
	if settings.DataDir != "" {
		st, err = openStore(settings.DataDir)
		if err != nil {
			log.Warn("session journal disabled", "error", err)
		} else {
			defer st.Close()
		}
	}

	if w, h := inject.ScreenSize(); w > 0 && (w != settings.ResX || h != settings.ResY) {
		log.Warn("resolution differs from the primary display",
			"res_x", settings.ResX, "res_y", settings.ResY, "screen_w", w, "screen_h", h)
	}

	queue := input.NewQueue(input.DefaultQueueSize)

	var frames *server.FrameBuffer
	if settings.ListenAddr != "" {
		frames = server.NewFrameBuffer()
		defer frames.Close()
	}

	var tr *tray.Tray
	if settings.Tray {
		tr = tray.New(queue, settings.DefaultControlMode)
	}

	a, err := app.New(app.Config{
		Settings: settings,
		Debug:    *debug,
		Camera:   capture.NewCamera(settings.CameraID, settings.Mirror),
		Tracker:  tracker,
		Display:  ui.NewWindow(),
		Injector: inject.NewRobot(),
		Store:    st,
		Actions:  queue,
		Frames:   frames,
		OnChange: func(s server.Status) {
			if tr == nil {
				return
			}
			tr.SetMode(s.Mode)
			tr.SetPaused(s.Paused)
			tr.SetOverlayHidden(s.TextHidden)
		},
	})
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	if err := a.Open(); err != nil {
		log.Error("failed to open camera", "camera", settings.CameraID, "error", err)
		return 1
	}

	if settings.ListenAddr != "" {
		srv := server.New(server.Config{Store: st, Status: a, Actions: queue, Frames: frames})
		go func() {
			if err := srv.ListenAndServe(ctx, settings.ListenAddr); err != nil {
				log.Error("status server failed", "error", err)
			}
		}()
	}

	if tr != nil {
		go tr.Run()
		defer tr.Quit()
	}

	code := 0
	if _, err := a.Calibrate(ctx); err != nil {
		if !errors.Is(err, calibrate.ErrAborted) && ctx.Err() == nil {
			log.Error("calibration failed", "error", err)
			code = 1
		}
	} else if err := a.Run(ctx); err != nil {
		log.Error("control loop failed", "error", err)
		code = 1
	}

	if err := a.Close(); err != nil {
		log.Warn("shutdown", "error", err)
	}
	return code
}

func openStore(dir string) (*store.Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return store.New(filepath.Join(dir, "faceaim.db"))
}
