package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/eak1mov/go-megatex/archive"
	"github.com/eak1mov/go-megatex/atlas"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

// filterFlags are shared by the commands that build an atlas.
type filterFlags struct {
	prefix   string
	ext      string
	layout   string
	packName string
}

func (c *filterFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.prefix, "prefix", atlas.TexturePrefix, "Entry name prefix of eligible tiles")
	f.StringVar(&c.ext, "ext", ".png", "Entry name extension of eligible tiles")
	f.StringVar(&c.layout, "layout", atlas.LayoutRowMajor.String(), "Grid layout (rowmajor, hilbert)")
	f.StringVar(&c.packName, "name", "", "Pack name stored in the atlas (default: first source file name)")
}

// build scans srcs and assigns the eligible tiles to a grid.
func (c *filterFlags) build(srcs []archive.Source, srcPaths []string) (*atlas.Atlas, error) {
	layout, err := atlas.ParseLayout(c.layout)
	if err != nil {
		return nil, err
	}
	packName := c.packName
	if packName == "" {
		packName = filepath.Base(srcPaths[0])
	}

	total := 0
	for _, src := range srcs {
		total += src.Len()
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
	)
	defer func() {
		bar.Finish()
		fmt.Println()
	}()

	opts := []atlas.BuildOption{
		atlas.WithFilter(atlas.PrefixFilter(c.prefix, c.ext)),
		atlas.WithLayout(layout),
		atlas.WithPackName(packName),
		atlas.WithLogger(newLogger()),
		atlas.WithProgress(func() { bar.Add(1) }),
	}
	if len(srcs) == 1 {
		return atlas.Build(srcs[0], opts...)
	}
	return atlas.BuildMulti(srcs, opts...)
}

type atlasCmd struct {
	filterFlags
	inputFormat string
}

func (c *atlasCmd) Name() string     { return "atlas" }
func (c *atlasCmd) Synopsis() string { return "build an atlas from resource packs" }
func (c *atlasCmd) Usage() string {
	return "megatex atlas [-prefix <prefix> -ext <ext> -layout <layout> -name <name> -if <format>] <source>... <atlas-file>\n"
}
func (c *atlasCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.setFlags(f)
	f.StringVar(&c.inputFormat, "if", "", "Input format (zip, sqlar, dir)")
}

func (c *atlasCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() < 2 {
		log.Print(c.Usage())
		return subcommands.ExitUsageError
	}
	srcPaths := f.Args()[:f.NArg()-1]
	atlasPath := f.Arg(f.NArg() - 1)

	srcs, err := openSources(c.inputFormat, srcPaths)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer closeAll(srcs)

	a, err := c.build(srcs, srcPaths)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	if err := atlas.SaveFile(atlasPath, a); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s: %d squares on a %dx%d grid from %d source(s)\n",
		atlasPath, len(a.Squares), a.SideLength, a.SideLength, len(srcs))
	return subcommands.ExitSuccess
}
