package recipe

import (
	"errors"
	"strings"
	"testing"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Ingredient{}, &models.Recipe{}, &models.RecipeIngredient{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

// seedIngredient inserts a catalog row directly, with a fixed ID.
func seedIngredient(t *testing.T, db *gorm.DB, ing models.Ingredient) models.Ingredient {
	t.Helper()
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("seed ingredient %s: %v", ing.Name, err)
	}
	return ing
}

func seedBasics(t *testing.T, db *gorm.DB) (grain, hop, yeast models.Ingredient) {
	t.Helper()
	grain = seedIngredient(t, db, models.Ingredient{ID: "ing-2row0", Name: "Pale 2-Row", Type: "grain", Potential: 37, Lovibond: 2})
	hop = seedIngredient(t, db, models.Ingredient{ID: "ing-casc0", Name: "Cascade", Type: "hop", AlphaAcid: 5.5})
	yeast = seedIngredient(t, db, models.Ingredient{ID: "ing-us050", Name: "SafAle US-05", Type: "yeast", Attenuation: 81, MinTemp: 59, MaxTemp: 75})
	return grain, hop, yeast
}

// mustCreate builds a standard 5 gal test recipe.
func mustCreate(t *testing.T, db *gorm.DB) *models.Recipe {
	t.Helper()
	r, err := Create(db, CreateOpts{
		Name:       "House Pale Ale",
		Style:      "American Pale Ale",
		BatchSize:  5,
		BoilTime:   60,
		Efficiency: 75,
		Units:      "imperial",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return r
}

// --- ID and Create tests ---

func TestGenerateID_Format(t *testing.T) {
	id, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID() error: %v", err)
	}
	if !strings.HasPrefix(id, "rcp-") {
		t.Errorf("ID %q missing rcp- prefix", id)
	}
	if len(id) != 9 {
		t.Errorf("ID length = %d, want 9; id = %q", len(id), id)
	}
}

func TestCreate_Defaults(t *testing.T) {
	db := openTestDB(t)
	r := mustCreate(t, db)

	if r.Status != "draft" {
		t.Errorf("Status = %q, want %q", r.Status, "draft")
	}
	if r.BatchUnit != "gal" {
		t.Errorf("BatchUnit = %q, want %q", r.BatchUnit, "gal")
	}
}

func TestCreate_MetricDefaults(t *testing.T) {
	db := openTestDB(t)
	r, err := Create(db, CreateOpts{Name: "Helles", BatchSize: 20, Efficiency: 72, Units: "metric"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if r.BatchUnit != "l" {
		t.Errorf("BatchUnit = %q, want %q", r.BatchUnit, "l")
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    CreateOpts
		wantErr string
	}{
		{
			name:    "missing name",
			opts:    CreateOpts{BatchSize: 5, Efficiency: 72},
			wantErr: "name is required",
		},
		{
			name:    "zero batch",
			opts:    CreateOpts{Name: "x", BatchSize: 0, Efficiency: 72},
			wantErr: "batch size must be positive",
		},
		{
			name:    "negative boil",
			opts:    CreateOpts{Name: "x", BatchSize: 5, BoilTime: -10, Efficiency: 72},
			wantErr: "boil time must not be negative",
		},
		{
			name:    "efficiency zero",
			opts:    CreateOpts{Name: "x", BatchSize: 5, Efficiency: 0},
			wantErr: "efficiency must be in (0, 100]",
		},
		{
			name:    "efficiency over 100",
			opts:    CreateOpts{Name: "x", BatchSize: 5, Efficiency: 120},
			wantErr: "efficiency must be in (0, 100]",
		},
		{
			name:    "bad unit system",
			opts:    CreateOpts{Name: "x", BatchSize: 5, Efficiency: 72, Units: "nautical"},
			wantErr: "units must be imperial or metric",
		},
		{
			name:    "mass batch unit",
			opts:    CreateOpts{Name: "x", BatchSize: 5, Efficiency: 72, BatchUnit: "lb"},
			wantErr: "unsupported unit",
		},
	}

	db := openTestDB(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(db, tt.opts)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCreate_ZeroBatchIsSentinel(t *testing.T) {
	db := openTestDB(t)
	_, err := Create(db, CreateOpts{Name: "x", BatchSize: -1, Efficiency: 72})
	if !errors.Is(err, brewcalc.ErrInvalidBatchSize) {
		t.Errorf("error = %v, want ErrInvalidBatchSize", err)
	}
}

// --- Get / List tests ---

func TestGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := Get(db, "rcp-zzzzz")
	if err == nil {
		t.Fatal("expected error for missing recipe")
	}
	if !strings.Contains(err.Error(), "recipe: not found") {
		t.Errorf("error = %q", err)
	}
}

func TestGet_LinesInGrainBillOrder(t *testing.T) {
	db := openTestDB(t)
	grain, hop, yeast := seedBasics(t, db)
	r := mustCreate(t, db)

	for _, opts := range []LineOpts{
		{IngredientID: grain.ID, Amount: 10},
		{IngredientID: hop.ID, Amount: 1, Time: 60},
		{IngredientID: yeast.ID, Amount: 1},
	} {
		if _, err := AddIngredient(db, r.ID, opts); err != nil {
			t.Fatalf("AddIngredient() error = %v", err)
		}
	}

	got, err := Get(db, r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Ingredients) != 3 {
		t.Fatalf("len(Ingredients) = %d, want 3", len(got.Ingredients))
	}
	wantOrder := []string{"Pale 2-Row", "Cascade", "SafAle US-05"}
	for i, ri := range got.Ingredients {
		if ri.Ingredient.Name != wantOrder[i] {
			t.Errorf("line %d = %q, want %q", i, ri.Ingredient.Name, wantOrder[i])
		}
		if ri.SortOrder != i {
			t.Errorf("line %d SortOrder = %d, want %d", i, ri.SortOrder, i)
		}
	}
}

func TestList_Filters(t *testing.T) {
	db := openTestDB(t)
	mustCreate(t, db)
	r2, err := Create(db, CreateOpts{Name: "Winter Stout", Style: "Stout", BatchSize: 5, Efficiency: 72})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := Update(db, r2.ID, map[string]interface{}{"status": "final"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	finals, err := List(db, ListFilters{Status: "final"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(finals) != 1 || finals[0].Name != "Winter Stout" {
		t.Errorf("status filter returned %d recipes", len(finals))
	}

	stouts, err := List(db, ListFilters{Style: "Stout"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stouts) != 1 {
		t.Errorf("style filter returned %d recipes, want 1", len(stouts))
	}

	byName, err := List(db, ListFilters{Name: "Pale"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "House Pale Ale" {
		t.Errorf("name filter returned %d recipes", len(byName))
	}
}

// --- Update tests ---

func TestUpdate_StatusTransitions(t *testing.T) {
	tests := []struct {
		from  string
		to    string
		valid bool
	}{
		{"draft", "final", true},
		{"draft", "archived", true},
		{"final", "draft", true},
		{"final", "archived", true},
		{"archived", "draft", true},
		{"archived", "final", false},
		{"draft", "draft", false},
		{"final", "brewing", false},
	}

	for _, tt := range tests {
		if got := isValidTransition(tt.from, tt.to); got != tt.valid {
			t.Errorf("isValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestUpdate_InvalidTransition(t *testing.T) {
	db := openTestDB(t)
	r := mustCreate(t, db)

	if err := Update(db, r.ID, map[string]interface{}{"status": "archived"}); err != nil {
		t.Fatalf("draft -> archived should be valid: %v", err)
	}
	err := Update(db, r.ID, map[string]interface{}{"status": "final"})
	if err == nil {
		t.Fatal("archived -> final should be invalid")
	}
	if !strings.Contains(err.Error(), "invalid status transition") {
		t.Errorf("error = %q", err)
	}
}

func TestUpdate_RevalidatesProcess(t *testing.T) {
	db := openTestDB(t)
	r := mustCreate(t, db)

	err := Update(db, r.ID, map[string]interface{}{"efficiency": 130.0})
	if err == nil {
		t.Fatal("expected validation error for efficiency 130")
	}
	if !strings.Contains(err.Error(), "efficiency must be in (0, 100]") {
		t.Errorf("error = %q", err)
	}
}

func TestUpdate_BatchChangeRecomputes(t *testing.T) {
	db := openTestDB(t)
	grain, _, _ := seedBasics(t, db)
	r := mustCreate(t, db)
	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	before, _ := Get(db, r.ID)
	if before.OG != 1.0555 {
		t.Fatalf("OG before = %v, want 1.0555", before.OG)
	}

	// Same grain in twice the water: half the points.
	if err := Update(db, r.ID, map[string]interface{}{"batch_size": 10.0}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	after, _ := Get(db, r.ID)
	if after.OG != 1.0278 {
		t.Errorf("OG after = %v, want 1.0278", after.OG)
	}
}

func TestUpdate_LabelChangeKeepsSnapshot(t *testing.T) {
	db := openTestDB(t)
	grain, _, _ := seedBasics(t, db)
	r := mustCreate(t, db)
	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	before, _ := Get(db, r.ID)
	if err := Update(db, r.ID, map[string]interface{}{"name": "House Pale Ale v2"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	after, _ := Get(db, r.ID)

	if !after.MetricsAt.Equal(*before.MetricsAt) {
		t.Errorf("MetricsAt changed on a label-only update")
	}
	if after.OG != before.OG {
		t.Errorf("OG changed on a label-only update: %v -> %v", before.OG, after.OG)
	}
}

// --- Line mutation tests ---

func TestAddIngredient_SnapshotMatchesKnownScenario(t *testing.T) {
	db := openTestDB(t)
	grain, _, _ := seedBasics(t, db)
	r := mustCreate(t, db)

	// 10 lb at 37 ppg into 5 gal at 75%: 55.5 points.
	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	got, _ := Get(db, r.ID)
	if got.OG != 1.0555 {
		t.Errorf("OG = %v, want 1.0555", got.OG)
	}
	if got.FG != 1.0139 {
		t.Errorf("FG = %v, want 1.0139", got.FG)
	}
	if got.ABV != 5.46 {
		t.Errorf("ABV = %v, want 5.46", got.ABV)
	}
	if !got.MetricsEstimated {
		t.Error("MetricsEstimated = false, want true without a yeast line")
	}
	if got.MetricsAt == nil {
		t.Error("MetricsAt not stamped")
	}
}

func TestAddIngredient_YeastClearsEstimatedFlag(t *testing.T) {
	db := openTestDB(t)
	grain, _, yeast := seedBasics(t, db)
	r := mustCreate(t, db)

	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}
	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: yeast.ID, Amount: 1}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	got, _ := Get(db, r.ID)
	if got.MetricsEstimated {
		t.Error("MetricsEstimated = true with a published-attenuation yeast")
	}
	// FG from the strain's 81%, not the default 75%.
	if got.FG != 1.0105 {
		t.Errorf("FG = %v, want 1.0105", got.FG)
	}
}

func TestAddIngredient_Defaults(t *testing.T) {
	db := openTestDB(t)
	grain, hop, yeast := seedBasics(t, db)
	r := mustCreate(t, db)

	gl, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10})
	if err != nil {
		t.Fatalf("AddIngredient(grain) error = %v", err)
	}
	if gl.Unit != "lb" {
		t.Errorf("grain unit = %q, want lb", gl.Unit)
	}

	hl, err := AddIngredient(db, r.ID, LineOpts{IngredientID: hop.ID, Amount: 1, Time: 60})
	if err != nil {
		t.Fatalf("AddIngredient(hop) error = %v", err)
	}
	if hl.Unit != "oz" {
		t.Errorf("hop unit = %q, want oz", hl.Unit)
	}
	if hl.Use != "boil" {
		t.Errorf("hop use = %q, want boil", hl.Use)
	}
	if hl.TimeUnit != "min" {
		t.Errorf("hop time unit = %q, want min", hl.TimeUnit)
	}

	yl, err := AddIngredient(db, r.ID, LineOpts{IngredientID: yeast.ID, Amount: 1})
	if err != nil {
		t.Fatalf("AddIngredient(yeast) error = %v", err)
	}
	if yl.Unit != "pkg" {
		t.Errorf("yeast unit = %q, want pkg", yl.Unit)
	}
}

func TestAddIngredient_DryHopDefaultsToDays(t *testing.T) {
	db := openTestDB(t)
	_, hop, _ := seedBasics(t, db)
	r := mustCreate(t, db)

	hl, err := AddIngredient(db, r.ID, LineOpts{IngredientID: hop.ID, Amount: 2, Use: "dry-hop", Time: 3})
	if err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}
	if hl.TimeUnit != "day" {
		t.Errorf("dry-hop time unit = %q, want day", hl.TimeUnit)
	}

	// Dry hops never add bitterness.
	got, _ := Get(db, r.ID)
	if got.IBU != 0 {
		t.Errorf("IBU = %v, want 0 for dry-hop only", got.IBU)
	}
}

func TestAddIngredient_Validation(t *testing.T) {
	db := openTestDB(t)
	grain, hop, _ := seedBasics(t, db)
	r := mustCreate(t, db)

	if _, err := AddIngredient(db, "rcp-zzzzz", LineOpts{IngredientID: grain.ID, Amount: 1}); err == nil || !strings.Contains(err.Error(), "recipe: not found") {
		t.Errorf("missing recipe error = %v", err)
	}
	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: "ing-zzzzz", Amount: 1}); err == nil || !strings.Contains(err.Error(), "ingredient not found") {
		t.Errorf("missing ingredient error = %v", err)
	}

	_, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: -1})
	if !errors.Is(err, brewcalc.ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}

	_, err = AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 1, Unit: "gal"})
	if !errors.Is(err, units.ErrUnsupportedUnit) {
		t.Errorf("volume unit for grain error = %v, want ErrUnsupportedUnit", err)
	}

	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: hop.ID, Amount: 1, Use: "fridge"}); err == nil || !strings.Contains(err.Error(), "unknown hop use") {
		t.Errorf("bad hop use error = %v", err)
	}
}

func TestUpdateIngredientAmount(t *testing.T) {
	db := openTestDB(t)
	grain, _, _ := seedBasics(t, db)
	r := mustCreate(t, db)
	line, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10})
	if err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	if err := UpdateIngredientAmount(db, r.ID, line.ID, 5); err != nil {
		t.Fatalf("UpdateIngredientAmount() error = %v", err)
	}

	got, _ := Get(db, r.ID)
	if got.Ingredients[0].Amount != 5 {
		t.Errorf("Amount = %v, want 5", got.Ingredients[0].Amount)
	}
	// Half the grain: 27.75 points.
	if got.OG != 1.0278 {
		t.Errorf("OG = %v, want 1.0278", got.OG)
	}
}

func TestUpdateIngredientAmount_Validation(t *testing.T) {
	db := openTestDB(t)
	grain, _, _ := seedBasics(t, db)
	r := mustCreate(t, db)
	line, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10})
	if err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	if err := UpdateIngredientAmount(db, r.ID, line.ID, -2); !errors.Is(err, brewcalc.ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}
	if err := UpdateIngredientAmount(db, r.ID, 9999, 1); err == nil || !strings.Contains(err.Error(), "line 9999 not found") {
		t.Errorf("missing line error = %v", err)
	}

	other := mustCreate(t, db)
	if err := UpdateIngredientAmount(db, other.ID, line.ID, 1); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("cross-recipe line error = %v", err)
	}
}

func TestRemoveIngredient(t *testing.T) {
	db := openTestDB(t)
	grain, hop, _ := seedBasics(t, db)
	r := mustCreate(t, db)
	if _, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10}); err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}
	hopLine, err := AddIngredient(db, r.ID, LineOpts{IngredientID: hop.ID, Amount: 1, Time: 60})
	if err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	before, _ := Get(db, r.ID)
	if before.IBU == 0 {
		t.Fatal("expected nonzero IBU with a boil hop")
	}

	if err := RemoveIngredient(db, r.ID, hopLine.ID); err != nil {
		t.Fatalf("RemoveIngredient() error = %v", err)
	}

	after, _ := Get(db, r.ID)
	if len(after.Ingredients) != 1 {
		t.Errorf("len(Ingredients) = %d, want 1", len(after.Ingredients))
	}
	if after.IBU != 0 {
		t.Errorf("IBU = %v, want 0 after removing the only hop", after.IBU)
	}
}

// --- Clone tests ---

func TestClone_DeepCopiesLines(t *testing.T) {
	db := openTestDB(t)
	grain, _, _ := seedBasics(t, db)
	r := mustCreate(t, db)
	srcLine, err := AddIngredient(db, r.ID, LineOpts{IngredientID: grain.ID, Amount: 10})
	if err != nil {
		t.Fatalf("AddIngredient() error = %v", err)
	}

	clone, err := Clone(db, r.ID, "Experimental Pale")
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if clone.ID == r.ID {
		t.Fatal("clone shares the source ID")
	}
	if clone.Status != "draft" {
		t.Errorf("clone status = %q, want draft", clone.Status)
	}
	if clone.OG != 1.0555 {
		t.Errorf("clone OG = %v, want 1.0555", clone.OG)
	}

	// Editing the source must not touch the clone.
	if err := UpdateIngredientAmount(db, r.ID, srcLine.ID, 2); err != nil {
		t.Fatalf("UpdateIngredientAmount() error = %v", err)
	}
	got, _ := Get(db, clone.ID)
	if got.Ingredients[0].Amount != 10 {
		t.Errorf("clone line amount = %v, want 10", got.Ingredients[0].Amount)
	}
}

func TestClone_DefaultName(t *testing.T) {
	db := openTestDB(t)
	r := mustCreate(t, db)

	clone, err := Clone(db, r.ID, "")
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if clone.Name != "House Pale Ale (copy)" {
		t.Errorf("clone name = %q", clone.Name)
	}
}

// --- Scale tests ---

func TestScale_Preview(t *testing.T) {
	db := openTestDB(t)
	grain, hop, yeast := seedBasics(t, db)
	r := mustCreate(t, db)
	for _, opts := range []LineOpts{
		{IngredientID: grain.ID, Amount: 10},
		{IngredientID: hop.ID, Amount: 1, Time: 60},
		{IngredientID: yeast.ID, Amount: 1},
	} {
		if _, err := AddIngredient(db, r.ID, opts); err != nil {
			t.Fatalf("AddIngredient() error = %v", err)
		}
	}
	src, _ := Get(db, r.ID)

	preview, err := Scale(db, r.ID, 10)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}

	if preview.Spec.BatchSize != 10 {
		t.Errorf("scaled batch = %v, want 10", preview.Spec.BatchSize)
	}
	if preview.Lines[0].Amount != 20 {
		t.Errorf("scaled grain = %v, want 20", preview.Lines[0].Amount)
	}
	if preview.Lines[1].Amount != 2 {
		t.Errorf("scaled hop = %v, want 2", preview.Lines[1].Amount)
	}
	if preview.Lines[2].Amount != 2 {
		t.Errorf("scaled yeast = %v pkg, want 2", preview.Lines[2].Amount)
	}

	// Concentration metrics survive within the stored rounding.
	if units.Round(preview.Metrics.OG, 4) != src.OG {
		t.Errorf("scaled OG = %v, want %v", preview.Metrics.OG, src.OG)
	}
	if units.Round(preview.Metrics.IBU, 1) != src.IBU {
		t.Errorf("scaled IBU = %v, want %v", preview.Metrics.IBU, src.IBU)
	}
	if units.Round(preview.Metrics.SRM, 1) != src.SRM {
		t.Errorf("scaled SRM = %v, want %v", preview.Metrics.SRM, src.SRM)
	}

	// Previews never persist.
	stored, _ := Get(db, r.ID)
	if stored.BatchSize != 5 {
		t.Errorf("source batch = %v, want 5 after preview", stored.BatchSize)
	}
}

func TestScale_InvalidTarget(t *testing.T) {
	db := openTestDB(t)
	r := mustCreate(t, db)

	_, err := Scale(db, r.ID, 0)
	if !errors.Is(err, brewcalc.ErrInvalidScaleFactor) {
		t.Errorf("error = %v, want ErrInvalidScaleFactor", err)
	}
}

func TestSaveScaled(t *testing.T) {
	db := openTestDB(t)
	grain, _, yeast := seedBasics(t, db)
	r := mustCreate(t, db)
	for _, opts := range []LineOpts{
		{IngredientID: grain.ID, Amount: 10},
		{IngredientID: yeast.ID, Amount: 1},
	} {
		if _, err := AddIngredient(db, r.ID, opts); err != nil {
			t.Fatalf("AddIngredient() error = %v", err)
		}
	}

	saved, err := SaveScaled(db, r.ID, 2.5, "")
	if err != nil {
		t.Fatalf("SaveScaled() error = %v", err)
	}
	if saved.Name != "House Pale Ale (2.5 gal)" {
		t.Errorf("saved name = %q", saved.Name)
	}
	if saved.BatchSize != 2.5 {
		t.Errorf("saved batch = %v, want 2.5", saved.BatchSize)
	}
	if saved.Ingredients[0].Amount != 5 {
		t.Errorf("saved grain = %v lb, want 5", saved.Ingredients[0].Amount)
	}
	// Half a packet still pitches a whole one.
	if saved.Ingredients[1].Amount != 1 {
		t.Errorf("saved yeast = %v pkg, want 1", saved.Ingredients[1].Amount)
	}

	src, _ := Get(db, r.ID)
	// Both snapshots round the same concentration.
	if saved.OG != src.OG {
		t.Errorf("saved OG = %v, want %v", saved.OG, src.OG)
	}
	if src.BatchSize != 5 {
		t.Errorf("source batch = %v, want 5 after SaveScaled", src.BatchSize)
	}
}
