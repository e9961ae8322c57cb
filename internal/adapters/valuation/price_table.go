package valuation

// baseline describes the new-vehicle price and yearly value loss for one
// model line. The table pins the model version: changing a number here is a
// new version of the engine.
type baseline struct {
	BasePrice          float64
	AnnualDepreciation float64
}

// priceTable maps lower-cased make -> model line -> baseline. Model lines are
// matched on the first token of the normalized model string, so "Civic LX"
// and "Civic Touring" share one line.
var priceTable = map[string]map[string]baseline{
	"honda": {
		"civic":   {26000, 0.095},
		"accord":  {29500, 0.095},
		"cr-v":    {31000, 0.090},
		"crv":     {31000, 0.090},
		"fit":     {19000, 0.100},
		"pilot":   {39000, 0.105},
		"odyssey": {38000, 0.110},
	},
	"toyota": {
		"corolla":    {23500, 0.085},
		"camry":      {28500, 0.085},
		"rav4":       {31000, 0.085},
		"prius":      {27500, 0.095},
		"tacoma":     {33000, 0.065},
		"highlander": {39500, 0.095},
		"4runner":    {41500, 0.070},
		"sienna":     {37500, 0.105},
	},
	"ford": {
		"focus":    {21000, 0.130},
		"fusion":   {25500, 0.130},
		"escape":   {28500, 0.125},
		"explorer": {38500, 0.125},
		"f-150":    {36500, 0.095},
		"f150":     {36500, 0.095},
		"mustang":  {31500, 0.110},
	},
	"chevrolet": {
		"malibu":    {25500, 0.135},
		"cruze":     {22500, 0.135},
		"equinox":   {28000, 0.130},
		"silverado": {37000, 0.100},
		"tahoe":     {52000, 0.115},
	},
	"nissan": {
		"sentra":   {21500, 0.130},
		"altima":   {26000, 0.130},
		"rogue":    {28500, 0.125},
		"frontier": {30500, 0.090},
	},
	"mazda": {
		"3":      {23500, 0.110},
		"mazda3": {23500, 0.110},
		"6":      {26500, 0.110},
		"cx-5":   {28500, 0.105},
	},
	"subaru": {
		"impreza":   {23500, 0.095},
		"outback":   {29500, 0.090},
		"forester":  {28000, 0.090},
		"crosstrek": {25500, 0.090},
	},
	"hyundai": {
		"elantra": {21500, 0.130},
		"sonata":  {25500, 0.130},
		"tucson":  {27500, 0.125},
	},
	"kia": {
		"forte":    {20500, 0.130},
		"optima":   {25000, 0.130},
		"sorento":  {31000, 0.125},
		"sportage": {27000, 0.125},
	},
	"volkswagen": {
		"jetta":  {22500, 0.135},
		"golf":   {24500, 0.130},
		"passat": {26500, 0.140},
		"tiguan": {28500, 0.135},
	},
	"jeep": {
		"wrangler": {33500, 0.070},
		"cherokee": {29500, 0.130},
	},
	"bmw": {
		"3":  {43500, 0.160},
		"5":  {55500, 0.170},
		"x3": {46500, 0.160},
		"x5": {62500, 0.170},
	},
	"mercedes-benz": {
		"c-class": {45000, 0.165},
		"e-class": {56500, 0.170},
		"glc":     {47500, 0.165},
	},
}

// genericBaseline is the last-resort curve for makes the table has never
// seen. Predictions made from it are flagged low confidence.
var genericBaseline = baseline{30000, 0.125}

const (
	// expectedMilesPerYear is the assumed odometer reading when mileage is
	// absent; a listing at exactly this pace gets no mileage adjustment.
	expectedMilesPerYear = 12000

	// dollarsPerMile adjusts the prediction for odometer distance from the
	// expected pace.
	dollarsPerMile = 0.05

	// maxDepreciationYears caps the age so very old vehicles keep a floor
	// value instead of decaying to nothing.
	maxDepreciationYears = 25

	// minPredictedPrice is the hard positive floor of any prediction.
	minPredictedPrice = 500.0
)

// regionFactors nudges predictions for markets that consistently price above
// or below the national curve. Keys are matched against lower-cased tokens of
// the listing location; unknown locations get factor 1 (graceful fallback).
var regionFactors = map[string]float64{
	"ca":         1.05,
	"california": 1.05,
	"wa":         1.03,
	"seattle":    1.03,
	"ny":         1.03,
	"tx":         0.98,
	"texas":      0.98,
	"oh":         0.96,
	"ohio":       0.96,
	"mi":         0.96,
	"michigan":   0.96,
}
