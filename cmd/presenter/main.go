package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/presenter/internal/app"
	"github.com/ayusman/presenter/internal/capture"
	"github.com/ayusman/presenter/internal/config"
	"github.com/ayusman/presenter/internal/discovery"
	"github.com/ayusman/presenter/internal/gesture"
	"github.com/ayusman/presenter/internal/plugin"
	"github.com/ayusman/presenter/internal/presentation"
	"github.com/ayusman/presenter/internal/relay"
	"github.com/ayusman/presenter/internal/server"
	"github.com/ayusman/presenter/internal/server/api"
	"github.com/ayusman/presenter/internal/store"
	"github.com/ayusman/presenter/internal/tray"
)

func main() {
	configPath := flag.String("config", "presenter.conf", "path to KEY=VALUE config file")
	addr := flag.String("addr", "", "listen address, overrides ADDR")
	flag.Parse()

	fmt.Println("Gesture Presenter")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	// Initialize the store
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	uploadDir := filepath.Join(cfg.DataDir, "presentations")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	st, err := store.New(filepath.Join(cfg.DataDir, "presenter.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	session := presentation.NewSession()
	if err := api.LoadDeck(st, session, uploadDir); err != nil {
		log.Fatalf("Failed to load slides: %v", err)
	}
	log.Printf("Loaded %d slides", len(session.Snapshot().Slides))

	preset, err := gesture.Preset(cfg.GesturePreset)
	if err != nil {
		log.Fatalf("Invalid gesture preset: %v", err)
	}
	settings := gesture.NewSettings(preset)

	// Plugins
	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	log.Printf("Discovered %d plugins in %s", len(plugins.List()), plugins.PluginDir())
	dispatcher := plugin.NewDispatcher(plugins, plugin.NewExecutor(plugin.DefaultTimeoutMs))
	dispatcher.Start()
	defer dispatcher.Stop()
	session.Subscribe(dispatcher.HandleChange)

	// MQTT relay
	if cfg.MQTTBroker != "" {
		r, err := relay.Connect(relay.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
		})
		if err != nil {
			log.Printf("MQTT relay disabled: %v", err)
		} else {
			defer r.Close()
			session.Subscribe(r.HandleChange)
		}
	}

	// Server-side capture
	var frames *capture.Latest
	var pipeline *app.App
	if cfg.CaptureEnabled() {
		frames = capture.NewLatest()
		pipeline = app.New(app.Config{
			CameraID:      cfg.CameraID,
			FrameInterval: cfg.FrameInterval,
			Session:       session,
			Settings:      settings,
			Frames:        frames,
		})
		if err := pipeline.Start(); err != nil {
			log.Printf("Camera unavailable, capture disabled: %v", err)
			pipeline, frames = nil, nil
		} else {
			defer pipeline.Stop()
		}
	}

	webDir := findWebDir(cfg.WebDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		UploadDir: uploadDir,
		Store:     st,
		Session:   session,
		Settings:  settings,
		Defaults:  &preset,
		Frames:    frames,
	})

	if cfg.Discovery {
		svc := discovery.NewService(cfg.Port(), "")
		if err := svc.Start(); err != nil {
			log.Printf("LAN discovery disabled: %v", err)
		} else {
			defer svc.Stop()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	if cfg.Tray {
		t := tray.New(localURL(cfg))
		session.Subscribe(t.HandleChange)
		if pipeline != nil {
			t.OnToggle(pipeline.SetEnabled)
		}
		go func() {
			waitForExit(errCh)
			t.Quit()
		}()
		// Blocks on the main thread until Quit.
		t.Run()
		return
	}

	waitForExit(errCh)
}

// waitForExit blocks until a termination signal arrives or the server fails.
func waitForExit(errCh <-chan error) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("Received %v, shutting down", s)
	case err := <-errCh:
		log.Printf("Server failed: %v", err)
	}
}

func localURL(cfg *config.Config) string {
	port := cfg.Port()
	if port == 0 {
		port = 80
	}
	return fmt.Sprintf("http://localhost:%d/", port)
}

// findWebDir returns configured if it exists, otherwise the first of "web",
// "../web" and "../../web" that does. Returns "" when none is found.
func findWebDir(configured string) string {
	candidates := []string{configured, "web", "../web", "../../web"}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
