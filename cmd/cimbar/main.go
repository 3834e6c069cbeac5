// Command cimbar is a demonstration front-end for the cimbar module: it
// exercises the full encrypt -> encode -> render -> photograph/replay ->
// decode -> decrypt path from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = cmdEncode(os.Args[2:])
	case "decode":
		err = cmdDecode(os.Args[2:])
	case "scan":
		err = cmdScan(os.Args[2:])
	case "selftest":
		err = cmdSelftest(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "cimbar:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cimbar <command> [flags]

commands:
  encode <in> <out-prefix>   encrypt, encode, and render <in> as PNG frames + an animated GIF
  decode <photo.png>         decode one photographed/rendered frame, decrypt, write to stdout
  scan <frames-dir>          feed a directory of captured frames through a live scan session
  selftest                   run the end-to-end scenarios as a smoke check`)
}
