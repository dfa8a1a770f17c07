package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/eak1mov/go-megatex/archive"
	"github.com/eak1mov/go-megatex/atlas"
	"github.com/eak1mov/go-megatex/codec"
	"github.com/eak1mov/go-megatex/megatex"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type packCmd struct {
	filterFlags
	createAtlas bool
	maxFailRate float64
	previewPath string
	previewSize int
	inputFormat string
}

func (c *packCmd) Name() string     { return "pack" }
func (c *packCmd) Synopsis() string { return "compile a megatexture from resource packs" }
func (c *packCmd) Usage() string {
	return "megatex pack [-create-atlas -max-fail-rate <rate> -preview <path> -if <format>] <primary> [<backup>] <atlas-file> <output.png>\n" +
		"  Without a backup, or with a backup that is the primary file, any missing tile is fatal.\n"
}
func (c *packCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.setFlags(f)
	f.BoolVar(&c.createAtlas, "create-atlas", false, "Build the atlas from the sources and save it before compiling")
	f.Float64Var(&c.maxFailRate, "max-fail-rate", megatex.DefaultMaxFailRate, "Largest share of tiles taken from the backup")
	f.StringVar(&c.previewPath, "preview", "", "Also write a scaled preview PNG to this path")
	f.IntVar(&c.previewSize, "preview-size", 1024, "Preview width and height in pixels")
	f.StringVar(&c.inputFormat, "if", "", "Input format (zip, sqlar, dir)")
}

func (c *packCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 3 && f.NArg() != 4 {
		log.Print(c.Usage())
		return subcommands.ExitUsageError
	}
	srcPaths := f.Args()[:f.NArg()-2]
	atlasPath := f.Arg(f.NArg() - 2)
	outputPath := f.Arg(f.NArg() - 1)

	// A backup naming the primary file gives no second chance.
	if len(srcPaths) == 2 && sameFile(srcPaths[0], srcPaths[1]) {
		newLogger().Warn("backup is the primary archive, compiling from a single source", "path", srcPaths[1])
		srcPaths = srcPaths[:1]
	}

	srcs, err := openSources(c.inputFormat, srcPaths)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer closeAll(srcs)

	primary := srcs[0]
	var backup archive.Source
	if len(srcs) > 1 {
		backup = srcs[1]
	}

	var a *atlas.Atlas
	if c.createAtlas {
		a, err = c.build(srcs[:1], srcPaths)
		if err == nil {
			err = atlas.SaveFile(atlasPath, a)
		}
	} else {
		a, err = atlas.LoadFile(atlasPath)
	}
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	bar := progressbar.NewOptions(len(a.Squares),
		progressbar.OptionSetDescription("compiling"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
	)
	result, err := megatex.Compile(a, primary, backup,
		megatex.WithMaxFailRate(c.maxFailRate),
		megatex.WithLogger(newLogger()),
		megatex.WithProgress(func() { bar.Add(1) }),
	)
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	err = writeFile(outputPath, func(w io.Writer) error {
		return codec.Encode(w, result.Image)
	})
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	if c.previewPath != "" {
		err = writeFile(c.previewPath, func(w io.Writer) error {
			return codec.EncodePreview(w, result.Image, c.previewSize)
		})
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
	}

	width, height := result.Image.Dimensions()
	fmt.Printf("%s: %dx%d, %d squares, %d from backup, digest %016x\n",
		outputPath, width, height, len(a.Squares), len(result.Fallbacks), result.Digest)
	return subcommands.ExitSuccess
}

// writeFile creates filePath and fills it with write.
func writeFile(filePath string, write func(io.Writer) error) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return write(file)
}
