package benchmarks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zoobzio/gaze"
	gazetest "github.com/zoobzio/gaze/testing"
)

type solidEyelids struct{}

func (solidEyelids) LoadEyelid(_ string, lo, hi []uint8, edge uint8, _ int) error {
	for i := range lo {
		lo[i], hi[i] = edge, edge
	}
	return nil
}

func solidTextures() gaze.TextureLoader {
	return gaze.TextureLoaderFunc(func(string, int) (*gaze.Texture, error) {
		return &gaze.Texture{Pixels: make([]uint16, 256*256), Width: 256, Height: 256}, nil
	})
}

func BenchmarkTextureCache_Hit(b *testing.B) {
	cache := gaze.NewTextureCache(gaze.DefaultTextureCacheCapacity)
	loader := solidTextures()
	ctx := context.Background()
	if _, err := cache.GetOrLoad(ctx, "iris.bmp", loader, 0, 1<<20); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.GetOrLoad(ctx, "iris.bmp", loader, 0, 1<<20) //nolint:errcheck // Hit path
	}
}

func BenchmarkCoordinator_Reload(b *testing.B) {
	root := b.TempDir()
	mood := `{"iris": {"texture": "iris.bmp"}, "sclera": {"texture": "sclera.bmp"}}`
	if err := os.WriteFile(filepath.Join(root, "mood.eye"), []byte(mood), 0o600); err != nil {
		b.Fatal(err)
	}

	device, _ := gazetest.NewDevice(1 << 24)
	coord := gaze.NewCoordinator(device, gaze.NewFileConfigLoader(root), solidTextures(), solidEyelids{})
	coord.Initialize(context.Background(), "mood.eye")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		coord.Reload(ctx, "mood.eye")
	}
}

func BenchmarkLineBuffer_Push(b *testing.B) {
	line := []byte("MOOD:angry\n")
	var lb gaze.LineBuffer

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range line {
			_, _, _ = lb.Push(c) //nolint:errcheck // Never overflows
		}
	}
}
