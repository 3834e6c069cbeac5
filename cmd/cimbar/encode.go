package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mezinster/cimbar-go/cimbar"
	"github.com/mezinster/cimbar-go/encryption"
)

func cmdEncode(args []string) error {
	fs := pflag.NewFlagSet("encode", pflag.ExitOnError)
	password := fs.StringP("password", "p", "", "password to encrypt the payload with (required)")
	frameSize := fs.IntP("frame-size", "s", 128, "frame_size: one of 128, 192, 256, 384")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: cimbar encode [flags] <in> <out-prefix>")
	}
	if *password == "" {
		return fmt.Errorf("--password is required")
	}

	plaintext, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(0), err)
	}

	encrypted, err := encryption.Encrypt(plaintext, *password)
	if err != nil {
		return fmt.Errorf("encrypting payload: %w", err)
	}

	frames, err := cimbar.Encode(encrypted, *frameSize)
	if err != nil {
		return fmt.Errorf("encoding frames: %w", err)
	}

	prefix := fs.Arg(1)
	for i, img := range frames {
		path := fmt.Sprintf("%s_%04d.png", prefix, i)
		if err := savePNG(path, img); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	gifPath := prefix + ".gif"
	if err := saveGIF(gifPath, frames); err != nil {
		return fmt.Errorf("writing %s: %w", gifPath, err)
	}

	fmt.Printf("wrote %d frame(s): %s_0000.png .. %s_%04d.png, %s\n", len(frames), prefix, prefix, len(frames)-1, gifPath)
	return nil
}
