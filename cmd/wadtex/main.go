package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/quaketools/wad2"
)

func main() {
	app := &cli.Command{
		Name:  "wadtex",
		Usage: "Decode Quake WAD2/BSP texture archives",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			exportCmd(),
			inspectCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Decode archives and write every texture as PNG",
		ArgsUsage: "<file.wad|file.bsp|image> ...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
			&cli.StringFlag{Name: "config", Usage: "YAML options file"},
			&cli.StringFlag{Name: "emit-suffix", Usage: "glow image filename suffix"},
			&cli.BoolFlag{Name: "cut-out-luma", Usage: "black out fullbright texels in the color image"},
			&cli.BoolFlag{Name: "relative", Usage: "name loose images relative to --base-path"},
			&cli.StringFlag{Name: "base-path", Usage: "base path for relative naming"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log per-file progress"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return fmt.Errorf("no input files")
			}
			opts, err := resolveOptions(cmd)
			if err != nil {
				return err
			}
			if cmd.Bool("verbose") {
				wad2.SetLogger(log.New(os.Stderr, "", log.LstdFlags))
			}

			session := wad2.NewSession(opts)
			session.ImportFiles(cmd.Args().Slice())
			groups := session.Finalize()

			outDir := cmd.String("out")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			written := 0
			save := func(t *wad2.Texture) error {
				base := filepath.Join(outDir, fileSafe(t.Name))
				if err := imgio.Save(base+".png", toImage(t.Width, t.Height, t.Color), imgio.PNGEncoder()); err != nil {
					return err
				}
				written++
				if t.HasEmission {
					name := base + opts.EmitSuffix + ".png"
					if err := imgio.Save(name, toImage(t.Width, t.Height, t.Emission), imgio.PNGEncoder()); err != nil {
						return err
					}
					written++
				}
				return nil
			}
			for _, t := range session.TexturesList {
				if err := save(t); err != nil {
					return err
				}
			}
			for _, g := range groups {
				for _, t := range g.Frames {
					if !t.IsSequenceFrame || t.Name == g.Key {
						continue // base frame already written from the registry
					}
					if err := save(t); err != nil {
						return err
					}
				}
			}
			fmt.Printf("Wrote %v images (%v textures, %v sequences)\n",
				written, len(session.TexturesList), len(groups))
			return nil
		},
	}
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print an archive's lump directory as JSON",
		ArgsUsage: "<file.wad|file.bsp>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected exactly one archive")
			}
			path := cmd.Args().First()
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			kind, lumpInfos, err := wad2.ReadDirectory(f)
			if err != nil {
				return err
			}
			out := struct {
				File   string          `json:"file"`
				Kind   string          `json:"kind"`
				Lumps  []wad2.LumpInfo `json:"lumps"`
				NLumps int             `json:"lump_count"`
			}{
				File:   filepath.Base(path),
				Kind:   kindName(kind),
				Lumps:  lumpInfos,
				NLumps: len(lumpInfos),
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func resolveOptions(cmd *cli.Command) (wad2.Options, error) {
	opts := wad2.DefaultOptions()
	if path := cmd.String("config"); path != "" {
		loaded, err := wad2.LoadOptions(path)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}
	if cmd.IsSet("emit-suffix") {
		opts.EmitSuffix = cmd.String("emit-suffix")
	}
	if cmd.IsSet("cut-out-luma") {
		opts.CutOutLuma = cmd.Bool("cut-out-luma")
	}
	if cmd.IsSet("relative") {
		opts.RelativeNaming = cmd.Bool("relative")
	}
	if cmd.IsSet("base-path") {
		opts.BasePath = cmd.String("base-path")
	}
	return opts, nil
}

func kindName(kind wad2.ContainerKind) string {
	switch kind {
	case wad2.ContainerWAD2:
		return "wad2"
	case wad2.ContainerBSP:
		return "bsp"
	default:
		return "image"
	}
}

// fileSafe swaps the glyphs that are engine names but not filesystem
// names, the reverse of the loose-image mapping.
func fileSafe(name string) string {
	name = strings.ReplaceAll(name, "*", "#")
	return strings.ReplaceAll(name, "/", "_")
}

// toImage converts a bottom-to-top float RGBA buffer back into a
// top-to-bottom NRGBA image for encoding.
func toImage(width, height int, pix []float32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * width * 4
		for x := 0; x < width; x++ {
			dst := img.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				img.Pix[dst+c] = uint8(pix[src+x*4+c]*255 + 0.5)
			}
		}
	}
	return img
}
