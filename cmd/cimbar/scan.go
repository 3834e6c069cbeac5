package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/mezinster/cimbar-go/cimbar"
	"github.com/mezinster/cimbar-go/encryption"
	"github.com/mezinster/cimbar-go/tuning"
)

// submitResult carries one LiveSession.Submit outcome back to the
// single-threaded collector loop.
type submitResult struct {
	path     string
	payload  []byte
	complete bool
	err      error
}

func cmdScan(args []string) error {
	fs := pflag.NewFlagSet("scan", pflag.ExitOnError)
	password := fs.StringP("password", "p", "", "password to decrypt the assembled payload with (required)")
	hz := fs.Float64("rate", 4.0, "submission rate in frames/second, simulating a live camera feed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: cimbar scan [flags] <frames-dir>")
	}
	if *password == "" {
		return fmt.Errorf("--password is required")
	}

	paths, err := frameFiles(fs.Arg(0))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no frame images found in %s", fs.Arg(0))
	}

	session := cimbar.NewLiveSession(tuning.Default())
	results := make(chan submitResult)

	period := time.Duration(float64(time.Second) / *hz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	go func() {
		for _, p := range paths {
			<-ticker.C
			path := p
			go func() {
				bitmap, err := loadRGBA(path)
				if err != nil {
					results <- submitResult{path: path, err: err}
					return
				}
				payload, complete, err := session.Submit(bitmap)
				results <- submitResult{path: path, payload: payload, complete: complete, err: err}
			}()
		}
	}()

	for range paths {
		r := <-results
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "cimbar scan: %s: %v\n", r.path, r.err)
			continue
		}
		fmt.Printf("submitted %s (%d frame(s) seen)\n", r.path, session.FramesSeen())
		if r.complete {
			plaintext, err := encryption.Decrypt(r.payload, *password)
			if err != nil {
				return fmt.Errorf("decrypting assembled payload: %w", err)
			}
			_, err = os.Stdout.Write(plaintext)
			return err
		}
	}

	return fmt.Errorf("scan finished without completing the adjacency chain")
}

// frameFiles lists .png/.gif files in dir, sorted by name so replaying a
// directory of sequentially-numbered captures is deterministic.
func frameFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".png" || ext == ".gif" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
