// Command genplaceholders writes generated art for every picture the asset
// pack refers to, so a local game server can run without the real images.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chosenoffset.com/mhaclient/internal/assets"
	"chosenoffset.com/mhaclient/internal/placeholders"
)

func main() {
	out := flag.String("out", "static", "directory the server serves images from")
	packPath := flag.String("asset-pack", "", "YAML asset pack (built-in when empty)")
	flag.Parse()

	fmt.Println("MHA Placeholder Graphics Generator")
	fmt.Println("==================================")

	pack := assets.Default()
	if *packPath != "" {
		var err error
		if pack, err = assets.LoadPack(*packPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	n, err := generate(pack, *out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done! Wrote %d images under %s\n", n, *out)
}

// generate writes one PNG per pack image path below dir. Enemy pictures get
// the villain accent, everything else the hero accent.
func generate(pack *assets.Pack, dir string) (int, error) {
	n := 0
	for _, p := range pack.ImagePaths() {
		accent := placeholders.ColorPalette.Hero
		if strings.Contains(p, "/enemies/") {
			accent = placeholders.ColorPalette.Villain
		}
		img := placeholders.Portrait(placeholders.PortraitWidth, placeholders.PortraitHeight, accent)

		target := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return n, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		f, err := os.Create(target)
		if err != nil {
			return n, fmt.Errorf("create %s: %w", target, err)
		}
		if err := placeholders.WritePNG(f, img); err != nil {
			f.Close()
			return n, fmt.Errorf("encode %s: %w", target, err)
		}
		if err := f.Close(); err != nil {
			return n, fmt.Errorf("close %s: %w", target, err)
		}
		fmt.Printf("  %s\n", target)
		n++
	}
	return n, nil
}
