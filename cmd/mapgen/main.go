// mapgen paints random galaxies and draws painted maps in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/paintgalaxy/server/internal/galaxy"
	"github.com/paintgalaxy/server/internal/mapfile"
)

func main() {
	inputFile := flag.String("input", "", "Painted map to draw (.yaml or .json)")
	random := flag.Int("random", 0, "Paint a random galaxy with this many stars instead of reading -input")
	seed := flag.Int64("seed", 0, "Seed for -random (default: random based on current time)")
	homeEvery := flag.Int("home-every", 10, "With -random, mark every Nth star as a potential home star")
	nebulas := flag.Int("nebulas", 4, "With -random, number of nebulas")
	name := flag.String("name", "Random Galaxy", "With -random, galaxy name")
	width := flag.Int("width", galaxy.DefaultWidth, "Canvas width")
	height := flag.Int("height", galaxy.DefaultHeight, "Canvas height")
	cols := flag.Int("cols", 80, "Preview columns")
	rows := flag.Int("rows", 40, "Preview rows")
	save := flag.String("save", "", "With -random, write the painted map to this YAML file")
	outputFile := flag.String("output", "", "Output file for the preview (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	flag.Parse()

	bounds := galaxy.Bounds{Width: *width, Height: *height}

	var m *galaxy.Map
	var err error
	switch {
	case *random > 0:
		s := *seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		m, err = NewMapGenerator(s, bounds).Generate(*name, *random, *homeEvery, *nebulas)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error painting map: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Painted %d stars (seed: %d)\n", len(m.Stars), s)
		if *save != "" {
			if err := mapfile.Write(m, *save); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Map written to %s\n", *save)
		}
	case *inputFile != "":
		m, err = mapfile.Load(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "Error: either -input or -random is required")
		flag.Usage()
		os.Exit(1)
	}

	if err := m.Validate(bounds); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	output := Report(m, bounds, *cols, *rows, *showLegend)
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output)
	}
}
