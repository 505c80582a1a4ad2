package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stellar-data/transit.report/internal/transit"
)

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tuning.json")

	testJSON := `{
  "zcut": 0.8,
  "nin": 200,
  "ng": 100,
  "nk": 0,
  "small_planet_limit": 0.02,
  "parallel": false
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("LoadTuningConfig() error = %v", err)
	}

	if cfg.ZCut == nil || *cfg.ZCut != 0.8 {
		t.Errorf("Expected ZCut 0.8, got %v", cfg.ZCut)
	}
	if cfg.NIn == nil || *cfg.NIn != 200 {
		t.Errorf("Expected NIn 200, got %v", cfg.NIn)
	}
	if cfg.NG == nil || *cfg.NG != 100 {
		t.Errorf("Expected NG 100, got %v", cfg.NG)
	}
	if cfg.NK == nil || *cfg.NK != 0 {
		t.Errorf("Expected NK 0, got %v", cfg.NK)
	}
	if cfg.Parallel == nil || *cfg.Parallel != false {
		t.Errorf("Expected Parallel false, got %v", cfg.Parallel)
	}

	// Fields missing from the file stay unset
	if cfg.NEdge != nil {
		t.Errorf("Expected NEdge unset, got %v", *cfg.NEdge)
	}
	if cfg.KMin != nil || cfg.KMax != nil {
		t.Errorf("Expected radius ratio limits unset, got %v, %v", cfg.KMin, cfg.KMax)
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	if err := os.WriteFile(configPath, []byte(`{"nin": 150}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("LoadTuningConfig() error = %v", err)
	}

	// A partial file only overrides what it names
	model := cfg.ModelConfig()
	def := transit.DefaultConfig()
	if model.NIn != 150 {
		t.Errorf("Expected NIn 150, got %d", model.NIn)
	}
	if model.ZCut != def.ZCut {
		t.Errorf("Expected default ZCut %f, got %f", def.ZCut, model.ZCut)
	}
	if model.NG != def.NG || model.NK != def.NK {
		t.Errorf("Expected default table resolution, got ng=%d nk=%d", model.NG, model.NK)
	}
}

func TestLoadTuningConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTuningConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "tuning.yaml")
		if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadTuningConfig(path)
		if err == nil || !strings.Contains(err.Error(), ".json extension") {
			t.Errorf("Expected extension error, got %v", err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(tmpDir, "broken.json")
		if err := os.WriteFile(path, []byte(`{"nin": `), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.json")
		if err := os.WriteFile(path, []byte(`{"zcut": 1.5}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("Expected validation error for zcut out of range")
		}
	})
}

func TestTuningConfigValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	cases := []struct {
		name    string
		cfg     TuningConfig
		wantErr bool
	}{
		{"empty", TuningConfig{}, false},
		{"full valid", TuningConfig{ZCut: f(0.7), NIn: n(100), NEdge: n(50), NG: n(50), NK: n(256), KMin: f(0.005), KMax: f(0.5), SmallPlanetLimit: f(0.05), Workers: n(4)}, false},
		{"zcut low", TuningConfig{ZCut: f(0.0)}, true},
		{"zcut high", TuningConfig{ZCut: f(1.0)}, true},
		{"nin too small", TuningConfig{NIn: n(1)}, true},
		{"nedge too small", TuningConfig{NEdge: n(0)}, true},
		{"ng too small", TuningConfig{NG: n(1)}, true},
		{"negative nk", TuningConfig{NK: n(-1)}, true},
		{"inverted k limits", TuningConfig{KMin: f(0.5), KMax: f(0.1)}, true},
		{"negative spl", TuningConfig{SmallPlanetLimit: f(-0.1)}, true},
		{"negative workers", TuningConfig{Workers: n(-2)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestTuningConfigApply(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }
	b := func(v bool) *bool { return &v }

	cfg := transit.DefaultConfig()
	tc := TuningConfig{
		ZCut: f(0.75), NEdge: n(80),
		KMin: f(0.01), KMax: f(0.3),
		Parallel: b(false), Workers: n(2),
	}
	tc.Apply(&cfg)

	if cfg.ZCut != 0.75 || cfg.NEdge != 80 {
		t.Errorf("Grid overrides not applied: zcut=%f nedge=%d", cfg.ZCut, cfg.NEdge)
	}
	if cfg.KLims[0] != 0.01 || cfg.KLims[1] != 0.3 {
		t.Errorf("Radius ratio limits not applied: %v", cfg.KLims)
	}
	if cfg.Parallel || cfg.Workers != 2 {
		t.Errorf("Scheduling overrides not applied: parallel=%v workers=%d", cfg.Parallel, cfg.Workers)
	}

	def := transit.DefaultConfig()
	if cfg.NIn != def.NIn || cfg.NG != def.NG {
		t.Errorf("Unset fields must keep defaults: nin=%d ng=%d", cfg.NIn, cfg.NG)
	}
}
