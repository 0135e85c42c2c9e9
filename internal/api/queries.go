package api

import (
	"fmt"
	"time"

	"github.com/zulandar/mashtun/internal/analytics"
	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/catalog"
	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/recipe"
	"github.com/zulandar/mashtun/internal/session"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/gorm"
)

// RecipeRow holds recipe data for the list view.
type RecipeRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Style     string    `json:"style,omitempty"`
	Status    string    `json:"status"`
	BatchSize float64   `json:"batch_size"`
	BatchUnit string    `json:"batch_unit"`
	OG        float64   `json:"og"`
	ABV       float64   `json:"abv"`
	IBU       float64   `json:"ibu"`
	SRM       float64   `json:"srm"`
	CreatedAt time.Time `json:"created_at"`
}

// RecipeList returns recipes matching filters as display rows.
func RecipeList(db *gorm.DB, filters recipe.ListFilters) ([]RecipeRow, error) {
	recipes, err := recipe.List(db, filters)
	if err != nil {
		return nil, err
	}

	rows := make([]RecipeRow, len(recipes))
	for i, r := range recipes {
		rows[i] = RecipeRow{
			ID:        r.ID,
			Name:      r.Name,
			Style:     r.Style,
			Status:    r.Status,
			BatchSize: r.BatchSize,
			BatchUnit: r.BatchUnit,
			OG:        r.OG,
			ABV:       r.ABV,
			IBU:       r.IBU,
			SRM:       r.SRM,
			CreatedAt: r.CreatedAt,
		}
	}
	return rows, nil
}

// MetricsView is a set of computed vitals plus the labels derived from
// them: the balance classification and the SRM color band.
type MetricsView struct {
	OG         float64    `json:"og"`
	FG         float64    `json:"fg"`
	ABV        float64    `json:"abv"`
	IBU        float64    `json:"ibu"`
	SRM        float64    `json:"srm"`
	Estimated  bool       `json:"estimated"`
	Balance    string     `json:"balance"`
	Color      string     `json:"color"`
	ColorHex   string     `json:"color_hex"`
	ComputedAt *time.Time `json:"computed_at,omitempty"`
}

// metricsView derives the display labels for a set of vitals.
func metricsView(m brewcalc.Metrics, at *time.Time) *MetricsView {
	band := brewcalc.SRMColor(m.SRM)
	return &MetricsView{
		OG:         m.OG,
		FG:         m.FG,
		ABV:        m.ABV,
		IBU:        m.IBU,
		SRM:        m.SRM,
		Estimated:  m.Estimated,
		Balance:    brewcalc.ClassifyBalance(m.IBU, m.OG),
		Color:      band.Name,
		ColorHex:   band.Hex,
		ComputedAt: at,
	}
}

// LineRow holds one recipe ingredient line for display.
type LineRow struct {
	ID           uint    `json:"id"`
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
	Use          string  `json:"use,omitempty"`
	Time         float64 `json:"time,omitempty"`
	TimeUnit     string  `json:"time_unit,omitempty"`
}

// RecipeDetail holds full recipe data for the detail view.
type RecipeDetail struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Style      string       `json:"style,omitempty"`
	Status     string       `json:"status"`
	BatchSize  float64      `json:"batch_size"`
	BatchUnit  string       `json:"batch_unit"`
	BoilTime   float64      `json:"boil_time"`
	Efficiency float64      `json:"efficiency"`
	Units      string       `json:"units"`
	Notes      string       `json:"notes,omitempty"`
	Metrics    *MetricsView `json:"metrics,omitempty"`
	Lines      []LineRow    `json:"ingredients"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// GetRecipeDetail returns full recipe data: lines in grain-bill order plus
// the metric snapshot with its display labels. Metrics stays nil until the
// recipe has been computed at least once.
func GetRecipeDetail(db *gorm.DB, id string) (*RecipeDetail, error) {
	r, err := recipe.Get(db, id)
	if err != nil {
		return nil, err
	}

	detail := &RecipeDetail{
		ID:         r.ID,
		Name:       r.Name,
		Style:      r.Style,
		Status:     r.Status,
		BatchSize:  r.BatchSize,
		BatchUnit:  r.BatchUnit,
		BoilTime:   r.BoilTime,
		Efficiency: r.Efficiency,
		Units:      r.Units,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.MetricsAt != nil {
		detail.Metrics = metricsView(brewcalc.Metrics{
			OG:        r.OG,
			FG:        r.FG,
			ABV:       r.ABV,
			IBU:       r.IBU,
			SRM:       r.SRM,
			Estimated: r.MetricsEstimated,
		}, r.MetricsAt)
	}

	detail.Lines = make([]LineRow, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		detail.Lines[i] = LineRow{
			ID:           ri.ID,
			IngredientID: ri.IngredientID,
			Name:         ri.Ingredient.Name,
			Type:         ri.Ingredient.Type,
			Amount:       ri.Amount,
			Unit:         ri.Unit,
			Use:          ri.Use,
			Time:         ri.Time,
			TimeUnit:     ri.TimeUnit,
		}
	}
	return detail, nil
}

// ScaledLine is one resized ingredient line in a scale preview.
type ScaledLine struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Use      string  `json:"use,omitempty"`
	Time     float64 `json:"time,omitempty"`
	TimeUnit string  `json:"time_unit,omitempty"`
}

// ScaleResult is an unsaved scale preview: the resized lines and the
// vitals the resized recipe would have. Nothing is persisted.
type ScaleResult struct {
	SourceID  string       `json:"source_id"`
	BatchSize float64      `json:"batch_size"`
	BatchUnit string       `json:"batch_unit"`
	Lines     []ScaledLine `json:"ingredients"`
	Metrics   *MetricsView `json:"metrics"`
}

// ScalePreview resizes a recipe without persisting anything. The preview
// metrics are rounded the same way a stored snapshot would be, so the
// preview shows exactly what saving it would record.
func ScalePreview(db *gorm.DB, id string, batchSize float64) (*ScaleResult, error) {
	preview, err := recipe.Scale(db, id, batchSize)
	if err != nil {
		return nil, err
	}

	m := preview.Metrics
	m.OG = units.Round(m.OG, 4)
	m.FG = units.Round(m.FG, 4)
	m.ABV = units.Round(m.ABV, 2)
	m.IBU = units.Round(m.IBU, 1)
	m.SRM = units.Round(m.SRM, 1)

	out := &ScaleResult{
		SourceID:  preview.Source.ID,
		BatchSize: preview.Spec.BatchSize,
		BatchUnit: string(preview.Spec.BatchUnit),
		Metrics:   metricsView(m, nil),
	}
	out.Lines = make([]ScaledLine, len(preview.Lines))
	for i, line := range preview.Lines {
		out.Lines[i] = ScaledLine{
			Name:     line.Name,
			Type:     string(line.Type),
			Amount:   line.Amount,
			Unit:     string(line.Unit),
			Use:      string(line.Use),
			Time:     line.Time,
			TimeUnit: string(line.TimeUnit),
		}
	}
	return out, nil
}

// SessionRow holds session data for the list view.
type SessionRow struct {
	ID          string     `json:"id"`
	RecipeID    string     `json:"recipe_id"`
	Status      string     `json:"status"`
	PlannedOG   float64    `json:"planned_og"`
	MeasuredOG  float64    `json:"measured_og,omitempty"`
	MeasuredFG  float64    `json:"measured_fg,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	BrewedAt    *time.Time `json:"brewed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SessionList returns sessions matching filters as display rows.
func SessionList(db *gorm.DB, filters session.ListFilters) ([]SessionRow, error) {
	sessions, err := session.List(db, filters)
	if err != nil {
		return nil, err
	}

	rows := make([]SessionRow, len(sessions))
	for i, s := range sessions {
		rows[i] = SessionRow{
			ID:          s.ID,
			RecipeID:    s.RecipeID,
			Status:      s.Status,
			PlannedOG:   s.PlannedOG,
			MeasuredOG:  s.MeasuredOG,
			MeasuredFG:  s.MeasuredFG,
			CreatedAt:   s.CreatedAt,
			BrewedAt:    s.BrewedAt,
			CompletedAt: s.CompletedAt,
		}
	}
	return rows, nil
}

// ReadingRow holds one gravity reading for display.
type ReadingRow struct {
	Gravity     float64   `json:"gravity"`
	Temperature float64   `json:"temperature,omitempty"`
	TempUnit    string    `json:"temp_unit,omitempty"`
	Source      string    `json:"source"`
	TakenAt     time.Time `json:"taken_at"`
}

// ProgressView summarizes where a fermentation stands.
type ProgressView struct {
	PlannedOG      float64    `json:"planned_og"`
	PlannedFG      float64    `json:"planned_fg"`
	MeasuredOG     float64    `json:"measured_og,omitempty"`
	CurrentGravity float64    `json:"current_gravity,omitempty"`
	Attenuation    float64    `json:"attenuation,omitempty"`
	ReadingCount   int        `json:"reading_count"`
	LastReadingAt  *time.Time `json:"last_reading_at,omitempty"`
}

// SessionDetail holds full session data for the detail view.
type SessionDetail struct {
	ID          string       `json:"id"`
	RecipeID    string       `json:"recipe_id"`
	RecipeName  string       `json:"recipe_name"`
	Status      string       `json:"status"`
	YeastID     string       `json:"yeast_id,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	BrewedAt    *time.Time   `json:"brewed_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Progress    ProgressView `json:"progress"`
	Readings    []ReadingRow `json:"readings"`
}

// GetSessionDetail returns full session data: the reading log oldest first
// plus the fermentation progress summary.
func GetSessionDetail(db *gorm.DB, id string) (*SessionDetail, error) {
	s, err := session.Get(db, id)
	if err != nil {
		return nil, err
	}
	prog, err := session.Progress(db, id)
	if err != nil {
		return nil, err
	}

	detail := &SessionDetail{
		ID:          s.ID,
		RecipeID:    s.RecipeID,
		RecipeName:  s.Recipe.Name,
		Status:      s.Status,
		YeastID:     s.YeastID,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		BrewedAt:    s.BrewedAt,
		CompletedAt: s.CompletedAt,
		Progress: ProgressView{
			PlannedOG:      prog.PlannedOG,
			PlannedFG:      prog.PlannedFG,
			MeasuredOG:     prog.MeasuredOG,
			CurrentGravity: prog.CurrentGravity,
			Attenuation:    prog.Attenuation,
			ReadingCount:   prog.ReadingCount,
		},
	}
	if !prog.LastReadingAt.IsZero() {
		last := prog.LastReadingAt
		detail.Progress.LastReadingAt = &last
	}

	detail.Readings = make([]ReadingRow, len(s.Readings))
	for i, rd := range s.Readings {
		detail.Readings[i] = ReadingRow{
			Gravity:     rd.Gravity,
			Temperature: rd.Temperature,
			TempUnit:    rd.TempUnit,
			Source:      rd.Source,
			TakenAt:     rd.TakenAt,
		}
	}
	return detail, nil
}

// IngredientRow holds catalog data for display. Only the attribute fields
// matching Type carry meaning; the rest are zero.
type IngredientRow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Origin      string  `json:"origin,omitempty"`
	Potential   float64 `json:"potential,omitempty"`
	Lovibond    float64 `json:"lovibond,omitempty"`
	AlphaAcid   float64 `json:"alpha_acid,omitempty"`
	Attenuation float64 `json:"attenuation,omitempty"`
	MinTemp     float64 `json:"min_temp,omitempty"`
	MaxTemp     float64 `json:"max_temp,omitempty"`
}

// IngredientList returns catalog entries matching filters.
func IngredientList(db *gorm.DB, filters catalog.ListFilters) ([]IngredientRow, error) {
	ings, err := catalog.List(db, filters)
	if err != nil {
		return nil, err
	}

	rows := make([]IngredientRow, len(ings))
	for i, ing := range ings {
		rows[i] = IngredientRow{
			ID:          ing.ID,
			Name:        ing.Name,
			Type:        ing.Type,
			Origin:      ing.Origin,
			Potential:   ing.Potential,
			Lovibond:    ing.Lovibond,
			AlphaAcid:   ing.AlphaAcid,
			Attenuation: ing.Attenuation,
			MinTemp:     ing.MinTemp,
			MaxTemp:     ing.MaxTemp,
		}
	}
	return rows, nil
}

// YeastStatRow joins one yeast's observed attenuation aggregate with its
// published figure from the catalog.
type YeastStatRow struct {
	IngredientID string     `json:"ingredient_id"`
	Name         string     `json:"name"`
	Published    float64    `json:"published_attenuation,omitempty"`
	Observed     float64    `json:"observed_attenuation"`
	SampleCount  int        `json:"sample_count"`
	Confidence   string     `json:"confidence"`
	Delta        string     `json:"delta,omitempty"`
	LastSampleAt *time.Time `json:"last_sample_at,omitempty"`
}

// YeastStats returns every cached attenuation stat joined with the yeast's
// catalog entry, best-sampled strains first. Delta is empty for strains
// whose lab publishes no attenuation figure.
func YeastStats(db *gorm.DB) ([]YeastStatRow, error) {
	var stats []models.AttenuationStat
	if err := db.Order("sample_count DESC, ingredient_id ASC").Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("api: yeast stats: %w", err)
	}

	rows := make([]YeastStatRow, len(stats))
	for i, st := range stats {
		row := YeastStatRow{
			IngredientID: st.IngredientID,
			Observed:     st.AvgAttenuation,
			SampleCount:  st.SampleCount,
			Confidence:   st.Confidence,
			LastSampleAt: st.LastSampleAt,
		}
		// Look up the strain's catalog entry for its name and published
		// attenuation.
		var ing models.Ingredient
		if err := db.Select("name, attenuation").Where("id = ?", st.IngredientID).First(&ing).Error; err == nil {
			row.Name = ing.Name
			row.Published = ing.Attenuation
			if ing.Attenuation > 0 {
				diff := analytics.CompareToSpec(ing.Attenuation, st.AvgAttenuation)
				row.Delta = analytics.FormatDifference(diff)
			}
		}
		rows[i] = row
	}
	return rows, nil
}
