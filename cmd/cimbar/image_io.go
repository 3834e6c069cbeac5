package main

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"os"

	"github.com/mezinster/cimbar-go/frame"
)

// loadRGBA reads a PNG or GIF file and returns its first frame as RGBA,
// converting via image/draw if the source isn't already that format.
func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, img.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// cimbarGIFPalette covers every color this codec ever renders: the 8 cell
// colors, finder white/dark, and black dots.
func cimbarGIFPalette() color.Palette {
	pal := color.Palette{
		color.RGBA{A: 255},
		frame.FinderWhite,
		frame.FinderDark,
	}
	for _, c := range frame.Colors {
		pal = append(pal, c)
	}
	return pal
}

// saveGIF writes frames as one animated GIF, one frame per 500ms.
func saveGIF(path string, frames []*image.RGBA) error {
	pal := cimbarGIFPalette()
	g := &gif.GIF{}
	for _, f := range frames {
		p := image.NewPaletted(f.Bounds(), pal)
		draw.Draw(p, f.Bounds(), f, f.Bounds().Min, draw.Src)
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, 50)
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return gif.EncodeAll(fh, g)
}
