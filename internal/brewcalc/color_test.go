package brewcalc

import (
	"errors"
	"math"
	"testing"
)

// --- MCU ---

func TestMCU(t *testing.T) {
	got, err := MCU(10, 5, 5)
	if err != nil {
		t.Fatalf("MCU: %v", err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("MCU(10, 5, 5) = %v, want 10", got)
	}
}

func TestMCU_ZeroBatch(t *testing.T) {
	if _, err := MCU(10, 5, 0); !errors.Is(err, ErrInvalidBatchSize) {
		t.Errorf("err = %v, want ErrInvalidBatchSize", err)
	}
}

func TestMCU_NegativeAmount(t *testing.T) {
	if _, err := MCU(-1, 5, 5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
}

// --- MoreySRM ---

func TestMoreySRM(t *testing.T) {
	got := MoreySRM(10)
	if math.Abs(got-7.2398) > 0.005 {
		t.Errorf("MoreySRM(10) = %v, want ~7.2398", got)
	}
}

func TestMoreySRM_Zero(t *testing.T) {
	if got := MoreySRM(0); got != 0 {
		t.Errorf("MoreySRM(0) = %v, want 0", got)
	}
}

func TestMoreySRM_Monotonic(t *testing.T) {
	prev := 0.0
	for mcu := 1.0; mcu <= 100; mcu++ {
		srm := MoreySRM(mcu)
		if srm <= prev {
			t.Fatalf("MoreySRM not increasing at mcu=%v: %v <= %v", mcu, srm, prev)
		}
		prev = srm
	}
}

// --- EstimateSRM ---

func TestEstimateSRM(t *testing.T) {
	spec := RecipeSpec{BatchSize: 5, BatchUnit: "gal", BoilTime: 60, Efficiency: 75}
	lines := []Line{
		{Type: Grain, Name: "2-row", Amount: 9, Unit: "lb", Potential: 37, Lovibond: 2},
		{Type: Grain, Name: "crystal 60", Amount: 1, Unit: "lb", Potential: 34, Lovibond: 60},
	}

	got, err := EstimateSRM(spec, lines)
	if err != nil {
		t.Fatalf("EstimateSRM: %v", err)
	}
	// MCU = (9×2 + 1×60)/5 = 15.6 → Morey ≈ 9.83.
	want := MoreySRM(15.6)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimateSRM = %v, want %v", got, want)
	}
}

func TestEstimateSRM_NoFermentables(t *testing.T) {
	spec := RecipeSpec{BatchSize: 5, BatchUnit: "gal", BoilTime: 60, Efficiency: 75}
	lines := []Line{{Type: Hop, Name: "cascade", Amount: 1, Unit: "oz", AlphaAcid: 5.5, Time: 60}}

	got, err := EstimateSRM(spec, lines)
	if err != nil {
		t.Fatalf("EstimateSRM: %v", err)
	}
	if got != 0 {
		t.Errorf("EstimateSRM = %v, want 0", got)
	}
}

// --- Color bands ---

func TestColorBands_CoverEverythingOnce(t *testing.T) {
	bands := ColorBands()
	if len(bands) != 14 {
		t.Fatalf("len(bands) = %d, want 14", len(bands))
	}
	if bands[0].Min != 0 {
		t.Errorf("first band starts at %v, want 0", bands[0].Min)
	}
	if !math.IsInf(bands[len(bands)-1].Max, 1) {
		t.Errorf("last band ends at %v, want +Inf", bands[len(bands)-1].Max)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Min != bands[i-1].Max {
			t.Errorf("gap or overlap between %q and %q: %v vs %v",
				bands[i-1].Name, bands[i].Name, bands[i-1].Max, bands[i].Min)
		}
	}
	for _, b := range bands {
		if b.Name == "" || b.Hex == "" {
			t.Errorf("band %+v missing name or hex", b)
		}
	}
}

func TestSRMColor_EverySampleMapsToExactlyOneBand(t *testing.T) {
	bands := ColorBands()
	for srm := 0.0; srm <= 100; srm += 0.25 {
		matches := 0
		for _, b := range bands {
			if srm >= b.Min && srm < b.Max {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("srm %v matched %d bands, want exactly 1", srm, matches)
		}
	}
}

func TestSRMColor_Breakpoints(t *testing.T) {
	cases := []struct {
		srm  float64
		want string
	}{
		{0, "Pale Straw"},
		{1.9, "Pale Straw"},
		{2, "Straw"},
		{3.5, "Pale Gold"},
		{7.24, "Pale Amber"},
		{19.9, "Brown"},
		{20, "Ruby Brown"},
		{39.9, "Black"},
		{40, "Opaque Black"},
		{500, "Opaque Black"},
	}
	for _, c := range cases {
		if got := SRMColor(c.srm); got.Name != c.want {
			t.Errorf("SRMColor(%v) = %q, want %q", c.srm, got.Name, c.want)
		}
	}
}

func TestSRMColor_NegativeClampsToPalest(t *testing.T) {
	if got := SRMColor(-1); got.Name != "Pale Straw" {
		t.Errorf("SRMColor(-1) = %q, want Pale Straw", got.Name)
	}
}
