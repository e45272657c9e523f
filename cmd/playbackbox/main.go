// Command playbackbox records HTTPS traffic through a MITM proxy and
// later replays it from the recorded inventory with reproduced timing.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"playbackbox/internal/capture"
	"playbackbox/internal/inventory"
	"playbackbox/internal/lifecycle"
	"playbackbox/internal/mitm"
	"playbackbox/internal/perrors"
	"playbackbox/internal/player"
	"playbackbox/internal/recorder"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "record":
		err = runRecord(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Printf("playbackbox: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: playbackbox record [entryUrl] --port P --device {desktop|mobile} --inventory DIR [--control-port P2] [--ca-dir DIR]")
	fmt.Fprintln(os.Stderr, "       playbackbox play --port P --inventory DIR [--control-port P2]")
}

func runRecord(args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	port := fs.Int("port", 8080, "port for the recording proxy to listen on")
	device := fs.String("device", "desktop", "device tag for this session: desktop or mobile")
	invDir := fs.String("inventory", "./inventory", "directory to write the inventory into")
	controlPort := fs.Int("control-port", 0, "optional port for the POST /_shutdown control endpoint")
	caDir := fs.String("ca-dir", "", "directory to persist the MITM CA keypair in (ephemeral if empty)")
	// flag parsing stops at the first positional argument, so a leading
	// entryUrl is taken off before the flags that follow it are parsed.
	var entryURL string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		entryURL = args[0]
		args = args[1:]
	}
	fs.Parse(args)
	if entryURL == "" && fs.NArg() > 0 {
		entryURL = fs.Arg(0)
	}

	deviceType := inventory.DeviceDesktop
	if *device == "mobile" {
		deviceType = inventory.DeviceMobile
	}

	var ca tls.Certificate
	var err error
	if *caDir != "" {
		ca, err = mitm.LoadOrCreateCA(*caDir)
	} else {
		ca, err = mitm.EphemeralCA()
	}
	if err != nil {
		return fmt.Errorf("ca setup: %w", err)
	}

	store := capture.NewStore()
	rec := recorder.NewRecorder(store)

	engine, err := mitm.NewEngine(ca, 0, mitm.Hooks{
		OnRequest:    rec.HandleRequest,
		OnResponse:   rec.HandleResponse,
		OnFetchError: rec.HandleFetchError,
	})
	if err != nil {
		return fmt.Errorf("mitm engine setup: %w", err)
	}

	ctx, cancel := lifecycle.WaitForSignal()
	defer cancel()

	var cp *lifecycle.ControlPort
	if *controlPort != 0 {
		cp = lifecycle.NewControlPort(fmt.Sprintf(":%d", *controlPort), cancel)
		go func() {
			if err := cp.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("control port: %v", err)
			}
		}()
	}

	addr := fmt.Sprintf(":%d", *port)
	server := &http.Server{Addr: addr, Handler: engine.Handler()}
	bindErr := make(chan error, 1)
	go func() {
		log.Printf("playbackbox: recording on %s, inventory %s", addr, *invDir)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			bindErr <- fmt.Errorf("proxy listener: %w: %w", perrors.ErrBindFailed, err)
			cancel()
			return
		}
		bindErr <- nil
	}()

	<-ctx.Done()

	select {
	case err := <-bindErr:
		if err != nil {
			log.Printf("playbackbox: %v", err)
			if cp != nil {
				_ = cp.Close()
			}
			return err
		}
	default:
	}

	log.Printf("playbackbox: shutting down recording session")

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	if cp != nil {
		_ = cp.Close()
	}

	return lifecycle.ShutdownRecording(lifecycle.RecordingConfig{
		Store:      store,
		BaseDir:    *invDir,
		EntryURL:   entryURL,
		DeviceType: deviceType,
	})
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	port := fs.Int("port", 8080, "port for the playback listener")
	invDir := fs.String("inventory", "./inventory", "directory to read the inventory from")
	controlPort := fs.Int("control-port", 0, "optional port for the POST /_shutdown control endpoint")
	fs.Parse(args)

	inv, err := inventory.Load(*invDir)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	p, err := player.NewPlayer(inv, *invDir)
	if err != nil {
		return fmt.Errorf("build player: %w", err)
	}

	ctx, cancel := lifecycle.WaitForSignal()
	defer cancel()

	var cp *lifecycle.ControlPort
	if *controlPort != 0 {
		cp = lifecycle.NewControlPort(fmt.Sprintf(":%d", *controlPort), cancel)
		go func() {
			if err := cp.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("control port: %v", err)
			}
		}()
	}

	addr := fmt.Sprintf(":%d", *port)
	server := &http.Server{Addr: addr, Handler: p.Handler()}
	bindErr := make(chan error, 1)
	go func() {
		log.Printf("playbackbox: playing back on %s from %s", addr, *invDir)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			bindErr <- fmt.Errorf("playback listener: %w: %w", perrors.ErrBindFailed, err)
			cancel()
			return
		}
		bindErr <- nil
	}()

	<-ctx.Done()

	select {
	case err := <-bindErr:
		if err != nil {
			log.Printf("playbackbox: %v", err)
			if cp != nil {
				_ = cp.Close()
			}
			return err
		}
	default:
	}

	log.Printf("playbackbox: shutting down playback session")

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	if cp != nil {
		_ = cp.Close()
	}

	lifecycle.ShutdownPlayback()
	return nil
}
