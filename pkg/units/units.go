package units

import (
	"strings"
)

const (
	DimensionVolume  Dimension = "volume"
	DimensionWeight  Dimension = "weight"
	DimensionCount   Dimension = "count"
	DimensionUnknown Dimension = "unknown"

	Each = "each"
)

// US customary fluid ounce and avoirdupois ounce expressed in metric.
const (
	millilitersPerFluidOunce = 29.5735295625
	gramsPerOunce            = 28.349523125
)

type (
	Dimension string

	// ConversionTable answers whether two cooking units can be combined and
	// by which factor. Incompatibility is a normal answer, never an error.
	ConversionTable interface {
		Normalize(unit string) string
		DimensionOf(unit string) Dimension
		Convert(quantity float64, fromUnit, toUnit string) (float64, bool)
		Compatible(a, b string) bool
		ToBase(quantity float64, unit string) (float64, bool)
	}

	unitDefinition struct {
		dimension Dimension
		// factor to the dimension's base unit (fluid ounce, ounce); unused for counts
		factor float64
	}

	conversionTable struct {
		units   map[string]unitDefinition
		aliases map[string]string
	}
)

var defaultTable = newConversionTable()

// Default returns the shared, immutable table of known cooking units.
func Default() ConversionTable {
	return defaultTable
}

func NewConversionTable() ConversionTable {
	return newConversionTable()
}

func newConversionTable() *conversionTable {
	units := map[string]unitDefinition{
		"teaspoon":    {DimensionVolume, 1.0 / 6.0},
		"tablespoon":  {DimensionVolume, 0.5},
		"fluid ounce": {DimensionVolume, 1},
		"cup":         {DimensionVolume, 8},
		"pint":        {DimensionVolume, 16},
		"quart":       {DimensionVolume, 32},
		"gallon":      {DimensionVolume, 128},
		"milliliter":  {DimensionVolume, 1 / millilitersPerFluidOunce},
		"liter":       {DimensionVolume, 1000 / millilitersPerFluidOunce},

		"ounce":    {DimensionWeight, 1},
		"pound":    {DimensionWeight, 16},
		"gram":     {DimensionWeight, 1 / gramsPerOunce},
		"kilogram": {DimensionWeight, 1000 / gramsPerOunce},
	}
	for _, count := range []string{Each, "can", "package", "bunch", "clove", "slice", "piece", "jar", "bottle", "bag", "box", "dozen"} {
		units[count] = unitDefinition{dimension: DimensionCount}
	}

	aliases := map[string]string{
		"tsp": "teaspoon", "tsps": "teaspoon",
		"tbsp": "tablespoon", "tbsps": "tablespoon", "tbs": "tablespoon", "tbl": "tablespoon",
		"fl oz": "fluid ounce", "floz": "fluid ounce", "fl. oz": "fluid ounce", "fluid ounces": "fluid ounce",
		"c":  "cup",
		"pt": "pint", "pts": "pint",
		"qt": "quart", "qts": "quart",
		"gal": "gallon", "gals": "gallon",
		"ml": "milliliter", "millilitre": "milliliter", "millilitres": "milliliter",
		"l": "liter", "litre": "liter", "litres": "liter",
		"oz": "ounce", "ozs": "ounce",
		"lb": "pound", "lbs": "pound",
		"g": "gram", "gr": "gram", "gramme": "gram", "grammes": "gram",
		"kg": "kilogram", "kgs": "kilogram", "kilo": "kilogram", "kilos": "kilogram",
		"ea": Each, "": Each, "x": Each, "whole": Each, "unit": Each, "units": Each, "item": Each, "items": Each,
		"pkg": "package", "pkgs": "package", "pack": "package", "packs": "package",
		"pc": "piece", "pcs": "piece",
		"doz": "dozen",
	}

	return &conversionTable{units: units, aliases: aliases}
}

// Normalize maps spellings, abbreviations and plurals onto the canonical unit
// name. Unknown units come back lower-cased and trimmed.
func (t *conversionTable) Normalize(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.Join(strings.Fields(u), " ")
	u = strings.TrimSuffix(u, ".")

	if canonical, ok := t.aliases[u]; ok {
		return canonical
	}
	if _, ok := t.units[u]; ok {
		return u
	}
	// plurals: "cups", "boxes", "bunches", "fluid ounces"
	for _, suffix := range []string{"es", "s"} {
		if stem, found := strings.CutSuffix(u, suffix); found {
			if _, ok := t.units[stem]; ok {
				return stem
			}
			if canonical, ok := t.aliases[stem]; ok && stem != "" {
				return canonical
			}
		}
	}
	return u
}

func (t *conversionTable) DimensionOf(unit string) Dimension {
	def, ok := t.units[t.Normalize(unit)]
	if !ok {
		return DimensionUnknown
	}
	return def.dimension
}

// Compatible reports whether quantities in a and b can be summed losslessly.
func (t *conversionTable) Compatible(a, b string) bool {
	_, ok := t.Convert(1, a, b)
	return ok
}

// ToBase converts a volume or weight quantity into its dimension's base unit.
// Count and unknown units have no base and report false.
func (t *conversionTable) ToBase(quantity float64, unit string) (float64, bool) {
	def, ok := t.units[t.Normalize(unit)]
	if !ok || def.factor == 0 {
		return 0, false
	}
	return quantity * def.factor, true
}

// Convert expresses quantity (in fromUnit) in toUnit. The second result is
// false when the units are not combinable.
func (t *conversionTable) Convert(quantity float64, fromUnit, toUnit string) (float64, bool) {
	from, to := t.Normalize(fromUnit), t.Normalize(toUnit)
	if from == to {
		return quantity, true
	}

	fromDef, ok := t.units[from]
	if !ok || fromDef.factor == 0 {
		return 0, false
	}
	toDef, ok := t.units[to]
	if !ok || toDef.factor == 0 || toDef.dimension != fromDef.dimension {
		return 0, false
	}
	return quantity * fromDef.factor / toDef.factor, true
}
