package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/codegangsta/cli"
	"github.com/kevin-cantwell/guidemovie"
)

func main() {
	app := cli.NewApp()
	app.Version = "0.1.0"
	app.Name = "guidemovie"
	app.Usage = "Builds an animated GIF review movie from a directory of FITS guide frames."
	app.UsageText = "guidemovie [options] [directory]"
	app.Flags = []cli.Flag{
		cli.Float64Flag{
			Name:  "fr",
			Usage: "`RATE` in ms/frame. 100 ms/frame is 10 frames/second.",
			Value: 100,
		},
		cli.Float64Flag{
			Name:  "ir",
			Usage: "`RATE` in ms/frame for the first 5 frames. 1000 ms/frame is 1 frame/second.",
			Value: 1000,
		},
		cli.BoolFlag{
			Name:  "tr",
			Usage: "Draws 5\" and 15\" target circles at the reference pixel during the intro frames.",
		},
		cli.BoolFlag{
			Name:  "C",
			Usage: "Only includes the center snapshot of each frame.",
		},
		cli.StringFlag{
			Name:  "title",
			Usage: "`TITLE` drawn above every frame. Empty suppresses the title. Derived from the first frame's header by default.",
		},
		cli.Float64Flag{
			Name:  "gamma",
			Usage: "`GAMMA` = 1.0 gives a linear intensity scale. GAMMA greater than 1.0 darkens the faint end.",
			Value: 1.0,
		},
		cli.BoolFlag{
			Name:  "invert",
			Usage: "Inverts the grayscale.",
		},
		cli.IntFlag{
			Name:  "size",
			Usage: "`SIZE` caps the longer output dimension in pixels.",
			Value: 900,
		},
	}
	app.Action = func(c *cli.Context) {
		dir := c.Args().First()
		if dir == "" {
			exit("directory containing .fits or .fits.fz files required", 1)
		}
		if !strings.HasSuffix(dir, "/") {
			dir += "/"
		}

		fmt.Printf("Base Framerate: %v\n", c.Float64("fr"))

		frames, err := guidemovie.FindFrames(dir)
		if err != nil {
			exit(err.Error(), 1)
		}
		if len(frames) == 0 {
			fmt.Println("No files found.")
			return
		}

		opts := []guidemovie.Option{
			guidemovie.WithFrameInterval(c.Float64("fr")),
			guidemovie.WithIntroInterval(c.Float64("ir")),
			guidemovie.WithGamma(c.Float64("gamma")),
			guidemovie.WithMaxSize(c.Int("size")),
			guidemovie.WithProgress(os.Stdout),
		}
		if c.Bool("tr") {
			opts = append(opts, guidemovie.WithReticle())
		}
		if c.Bool("C") {
			opts = append(opts, guidemovie.WithCenterCrop())
		}
		if c.Bool("invert") {
			opts = append(opts, guidemovie.WithInvertedColors())
		}
		if c.IsSet("title") {
			opts = append(opts, guidemovie.WithTitle(c.String("title")))
		}

		savefile, err := guidemovie.NewAnimator(opts...).Animate(frames)
		if err != nil {
			exit(err.Error(), 1)
		}
		fmt.Printf("New gif created: %s\n", savefile)
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func exit(msg string, code int) {
	fmt.Println(msg)
	os.Exit(code)
}
