package renderer

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// testScene is a minimal Scene for renderer tests
type testScene struct {
	world  *geometry.HittableList
	camera *Camera
	config SamplingConfig
}

func (s *testScene) GetWorld() geometry.Shape          { return s.world }
func (s *testScene) GetCamera() *Camera                { return s.camera }
func (s *testScene) GetSamplingConfig() SamplingConfig { return s.config }
func (s *testScene) GetBackgroundColors() (core.Vec3, core.Vec3) {
	return core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1.0, 1.0, 1.0)
}

// newSingleSphereTestScene builds one diffuse sphere in front of a camera looking down -z
func newSingleSphereTestScene(t *testing.T, config SamplingConfig, withSphere bool) *testScene {
	t.Helper()

	world := geometry.NewHittableList()
	if withSphere {
		sphere, err := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
		if err != nil {
			t.Fatal(err)
		}
		world.Add(sphere)
	}

	camera := mustCamera(t, CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: float64(config.Width) / float64(config.Height),
	})

	return &testScene{world: world, camera: camera, config: config}
}

func TestSamplingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  SamplingConfig
		wantErr bool
	}{
		{"default", DefaultSamplingConfig(), false},
		{"zero depth renders black but is valid", SamplingConfig{Width: 1, Height: 1, SamplesPerPixel: 1, MaxDepth: 0}, false},
		{"zero width", SamplingConfig{Width: 0, Height: 10, SamplesPerPixel: 1, MaxDepth: 1}, true},
		{"negative height", SamplingConfig{Width: 10, Height: -1, SamplesPerPixel: 1, MaxDepth: 1}, true},
		{"zero samples", SamplingConfig{Width: 10, Height: 10, SamplesPerPixel: 0, MaxDepth: 1}, true},
		{"negative depth", SamplingConfig{Width: 10, Height: 10, SamplesPerPixel: 1, MaxDepth: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidSamplingConfig) {
				t.Errorf("Expected ErrInvalidSamplingConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
		})
	}
}

func TestNewRaytracer_RejectsInvalidConfig(t *testing.T) {
	sc := newSingleSphereTestScene(t, SamplingConfig{Width: 4, Height: 4, SamplesPerPixel: 1, MaxDepth: 1}, false)
	sc.config.SamplesPerPixel = 0

	if _, err := NewRaytracer(sc, core.NewSeededSampler(42)); !errors.Is(err, ErrInvalidSamplingConfig) {
		t.Errorf("Expected ErrInvalidSamplingConfig, got %v", err)
	}
}

func TestVec3ToColor(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected uint8
	}{
		{"black", 0, 0},
		{"quarter is gamma corrected to half", 0.25, 128},
		{"one clamps below 256", 1, 255},
		{"overexposed clamps", 4, 255},
		{"negative clamps to zero", -0.5, 0},
		{"NaN becomes zero", math.NaN(), 0},
		{"infinity becomes zero", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := vec3ToColor(core.NewVec3(tt.input, tt.input, tt.input))
			expected := color.RGBA{R: tt.expected, G: tt.expected, B: tt.expected, A: 255}
			if c != expected {
				t.Errorf("Expected %v, got %v", expected, c)
			}
		})
	}
}

func TestPixelToScreen(t *testing.T) {
	config := SamplingConfig{Width: 5, Height: 3}

	tests := []struct {
		name      string
		x, y      int
		expectedS float64
		expectedT float64
	}{
		{"top left", 0, 0, 0, 1},
		{"bottom right", 4, 2, 1, 0},
		{"center", 2, 1, 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tc := PixelToScreen(config, tt.x, tt.y)
			if s != tt.expectedS || tc != tt.expectedT {
				t.Errorf("Expected (%f,%f), got (%f,%f)", tt.expectedS, tt.expectedT, s, tc)
			}
		})
	}

	s, tc := PixelToScreen(SamplingConfig{Width: 1, Height: 1}, 0, 0)
	if s != 0 || tc != 0 {
		t.Errorf("Expected single pixel at (0,0), got (%f,%f)", s, tc)
	}
}

func TestRaytracer_RenderPass(t *testing.T) {
	config := SamplingConfig{Width: 8, Height: 6, SamplesPerPixel: 3, MaxDepth: 5}
	sc := newSingleSphereTestScene(t, config, true)

	rt, err := NewRaytracer(sc, core.NewSeededSampler(42))
	if err != nil {
		t.Fatal(err)
	}
	img, stats := rt.RenderPass()

	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Expected 8x6 image, got %v", img.Bounds())
	}
	if stats.TotalPixels != 48 || stats.TotalSamples != 144 {
		t.Errorf("Expected 48 pixels and 144 samples, got %+v", stats)
	}
	if stats.MinSamples != 3 || stats.MaxSamplesUsed != 3 || stats.AverageSamples != 3 {
		t.Errorf("Expected exactly 3 samples per pixel, got %+v", stats)
	}
}

func TestRaytracer_Deterministic(t *testing.T) {
	config := SamplingConfig{Width: 6, Height: 4, SamplesPerPixel: 4, MaxDepth: 10}

	render := func() []uint8 {
		sc := newSingleSphereTestScene(t, config, true)
		rt, err := NewRaytracer(sc, core.NewSeededSampler(7))
		if err != nil {
			t.Fatal(err)
		}
		img, _ := rt.RenderPass()
		return img.Pix
	}

	first, second := render(), render()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Renders with the same seed differ at byte %d", i)
		}
	}
}

func TestRaytracer_TopRowIsSkyTop(t *testing.T) {
	// Without geometry the top row looks further up the gradient than the bottom row
	config := SamplingConfig{Width: 3, Height: 9, SamplesPerPixel: 1, MaxDepth: 1}
	sc := newSingleSphereTestScene(t, config, false)

	rt, err := NewRaytracer(sc, core.NewSeededSampler(1))
	if err != nil {
		t.Fatal(err)
	}
	img, _ := rt.RenderPass()

	top := img.RGBAAt(1, 0)
	bottom := img.RGBAAt(1, 8)
	if top.R >= bottom.R {
		t.Errorf("Expected bluer sky at the top (R %d) than at the bottom (R %d)", top.R, bottom.R)
	}
}

func TestRaytracer_DiffuseSphereDarkerThanSky(t *testing.T) {
	config := SamplingConfig{Width: 21, Height: 21, SamplesPerPixel: 100, MaxDepth: 50}

	withSphere := newSingleSphereTestScene(t, config, true)
	rt, err := NewRaytracer(withSphere, core.NewSeededSampler(42))
	if err != nil {
		t.Fatal(err)
	}
	img, _ := rt.RenderPass()

	// Sky color along the same center direction with nothing in the way
	sky := vec3ToColor(core.NewVec3(0.75, 0.85, 1.0))

	center := img.RGBAAt(10, 10)
	if center.R >= sky.R || center.G >= sky.G || center.B >= sky.B {
		t.Errorf("Expected center pixel %v to be strictly darker than sky %v", center, sky)
	}
}

// nanMaterial reflects along the normal with a NaN red attenuation
type nanMaterial struct{}

func (nanMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, hit.Normal),
		Attenuation: core.NewVec3(math.NaN(), 1, 1),
	}, true
}

func TestRaytracer_NonFiniteSamplesDoNotBlackenPixel(t *testing.T) {
	// A single pixel sees both the sphere and the sky around it
	config := SamplingConfig{Width: 1, Height: 1, SamplesPerPixel: 50, MaxDepth: 5}
	sc := newSingleSphereTestScene(t, config, false)
	sphere, err := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, nanMaterial{})
	if err != nil {
		t.Fatal(err)
	}
	sc.world.Add(sphere)

	rt, err := NewRaytracer(sc, core.NewSeededSampler(3))
	if err != nil {
		t.Fatal(err)
	}
	img, _ := rt.RenderPass()

	if pixel := img.RGBAAt(0, 0); pixel.R == 0 {
		t.Errorf("Expected the sky samples to keep the red channel lit, got %v", pixel)
	}
}
