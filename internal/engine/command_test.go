package engine

import (
	"strings"
	"testing"

	"magnify/internal/config"
)

func TestBuildArgsMinimal(t *testing.T) {
	cfg := config.Engine{GPUID: "auto"}
	req := Request{
		InputPath:  "/in/x.png",
		OutputPath: "/out/x.png",
		Model:      "ultrasharp-4x",
		Scale:      4,
		Format:     FormatPNG,
	}
	got := strings.Join(buildArgs(cfg, "", req), " ")
	want := "-i /in/x.png -o /out/x.png -s 4 -n ultrasharp-4x -f png"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBuildArgsFullOptions(t *testing.T) {
	cfg := config.Engine{
		ModelScale:       4,
		TileSize:         256,
		GPUID:            "1",
		Threads:          "1:2:2",
		TTAMode:          true,
		CompressionLevel: 50,
	}
	req := Request{InputPath: "a", OutputPath: "b", Model: "m", Scale: 2, Format: FormatWEBP}
	got := strings.Join(buildArgs(cfg, "/models", req), " ")

	for _, frag := range []string{"-m /models", "-z 4", "-c 50", "-t 256", "-g 1", "-j 1:2:2", "-x", "-f webp"} {
		if !strings.Contains(got, frag) {
			t.Fatalf("missing %q in %q", frag, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JPEG"); err != nil || f != FormatJPG {
		t.Fatalf("jpeg: %v %v", f, err)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatal("expected error for gif")
	}
}

func TestValidScale(t *testing.T) {
	for _, s := range []int{2, 3, 4} {
		if !ValidScale(s) {
			t.Fatalf("scale %d should be valid", s)
		}
	}
	if ValidScale(5) || ValidScale(0) {
		t.Fatal("unexpected valid scale")
	}
}
