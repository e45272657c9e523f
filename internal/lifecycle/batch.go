package lifecycle

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"playbackbox/internal/capture"
	"playbackbox/internal/inventory"
	"playbackbox/internal/pipeline"
)

// RecordingConfig describes what ShutdownRecording needs to finalize a
// recording session into a saved inventory.
type RecordingConfig struct {
	Store      *capture.Store
	BaseDir    string
	EntryURL   string
	DeviceType inventory.DeviceType
	Domains    []inventory.DomainInfo
}

// ShutdownRecording runs the full recording-mode shutdown sequence
// described in spec.md §4.G steps 2-5: wait out the quiescence window,
// batch-run every captured response through the content pipeline,
// serialize and fsync index.json, then verify every content file is
// stat-visible before returning.
func ShutdownRecording(cfg RecordingConfig) error {
	time.Sleep(quiescenceWindow)

	resources := batchProcess(cfg.Store, cfg.BaseDir)

	inv := &inventory.Inventory{
		EntryURL:   cfg.EntryURL,
		DeviceType: cfg.DeviceType,
		Domains:    cfg.Domains,
		Resources:  resources,
	}
	if err := inventory.Save(cfg.BaseDir, inv); err != nil {
		return err
	}

	return verifyContentVisibility(cfg.BaseDir, resources)
}

// ShutdownPlayback runs playback mode's simpler drain: no batch
// processing or persistence, just a short wait for in-flight responses
// to finish before the process exits.
func ShutdownPlayback() {
	time.Sleep(playbackDrainWindow)
}

// batchProcess runs recording-side content pipeline steps 1-7 for
// every raw captured response. A per-resource failure is logged and
// skipped; it never aborts the whole save.
func batchProcess(store *capture.Store, baseDir string) []inventory.Resource {
	raws := store.List()
	resources := make([]inventory.Resource, 0, len(raws))

	for _, raw := range raws {
		res, content, err := pipeline.ProcessForRecording(raw)
		if err != nil {
			log.Printf("lifecycle: skipping %s %s, pipeline error: %v", raw.Method, raw.URL, err)
			continue
		}

		if len(content) > 0 {
			relPath, err := inventory.ResourceFilePath(res.Method, res.URL)
			if err != nil {
				log.Printf("lifecycle: skipping %s %s, path derivation error: %v", raw.Method, raw.URL, err)
				continue
			}
			if err := inventory.WriteContent(baseDir, relPath, content); err != nil {
				log.Printf("lifecycle: skipping %s %s, content write error: %v", raw.Method, raw.URL, err)
				continue
			}
			res.ContentFilePath = relPath
		}

		resources = append(resources, res)
	}

	return resources
}

// verifyContentVisibility stat()s every saved content file, retrying
// up to visibilityRetries times at visibilityInterval apart, so a
// sibling process launched right after shutdown never races a
// not-yet-flushed file.
func verifyContentVisibility(baseDir string, resources []inventory.Resource) error {
	for _, res := range resources {
		if res.ContentFilePath == "" {
			continue
		}
		full := filepath.Join(baseDir, "contents", res.ContentFilePath)
		var lastErr error
		for attempt := 0; attempt < visibilityRetries; attempt++ {
			if _, err := os.Stat(full); err == nil {
				lastErr = nil
				break
			} else {
				lastErr = err
				time.Sleep(visibilityInterval)
			}
		}
		if lastErr != nil {
			log.Printf("lifecycle: content file for %s %s still not visible after %d retries: %v",
				res.Method, res.URL, visibilityRetries, lastErr)
		}
	}
	return nil
}
