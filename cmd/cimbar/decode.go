package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mezinster/cimbar-go/cimbar"
	"github.com/mezinster/cimbar-go/encryption"
	"github.com/mezinster/cimbar-go/tuning"
)

func cmdDecode(args []string) error {
	fs := pflag.NewFlagSet("decode", pflag.ExitOnError)
	password := fs.StringP("password", "p", "", "password to decrypt the recovered payload with (required)")
	tuningPath := fs.String("tuning", "", "optional YAML tuning config override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: cimbar decode [flags] <photo.png>")
	}
	if *password == "" {
		return fmt.Errorf("--password is required")
	}

	cfg := tuning.Default()
	if *tuningPath != "" {
		loaded, err := tuning.Load(*tuningPath)
		if err != nil {
			return fmt.Errorf("loading tuning config: %w", err)
		}
		cfg = loaded
	}

	bitmap, err := loadRGBA(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(0), err)
	}

	encrypted, err := cimbar.DecodePhoto(bitmap, cfg)
	if err != nil {
		return fmt.Errorf("decoding photo: %w", err)
	}

	plaintext, err := encryption.Decrypt(encrypted, *password)
	if err != nil {
		return fmt.Errorf("decrypting payload: %w", err)
	}

	_, err = os.Stdout.Write(plaintext)
	return err
}
