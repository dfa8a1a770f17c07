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

type unpackCmd struct {
	inputFormat  string
	outputFormat string
}

func (c *unpackCmd) Name() string     { return "unpack" }
func (c *unpackCmd) Synopsis() string { return "cut a megatexture back into a resource pack" }
func (c *unpackCmd) Usage() string {
	return "megatex unpack [-if <format> -of <format>] <megatexture.png> <output> <atlas-file> [<template>]\n"
}
func (c *unpackCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputFormat, "if", "", "Template format (zip, sqlar, dir)")
	f.StringVar(&c.outputFormat, "of", "", "Output format (zip, sqlar, dir)")
}

func (c *unpackCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 3 && f.NArg() != 4 {
		log.Print(c.Usage())
		return subcommands.ExitUsageError
	}
	imagePath, outputPath, atlasPath := f.Arg(0), f.Arg(1), f.Arg(2)

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	img, err := codec.DecodeBytes(imageData)
	if err != nil {
		log.Printf("%s: %v", imagePath, err)
		return subcommands.ExitFailure
	}

	a, err := atlas.LoadFile(atlasPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	var template archive.Source
	if f.NArg() == 4 {
		template, err = openSource(c.inputFormat, f.Arg(3))
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		if closer, ok := template.(io.Closer); ok {
			defer closer.Close()
		}
	}

	writer, err := createWriter(c.outputFormat, outputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if closer, ok := writer.(io.Closer); ok {
		defer closer.Close()
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("unpacking"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
	)
	stats, err := megatex.Decompose(img, a, template, writer,
		megatex.WithLogger(newLogger()),
		megatex.WithProgress(func() { bar.Add(1) }),
	)
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	if err := writer.Finalize(); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s: %d squares replaced, %d appended, %d entries copied, %d directories\n",
		outputPath, stats.Replaced, stats.Appended, stats.Copied, stats.Directories)
	return subcommands.ExitSuccess
}
