package format

import "math"

// Unit ratios.
const (
	DefaultDPI = 72

	EMUPerInch  = 914400
	EMUPerCM    = 360000
	EMUPerPixel = 9525
	CMPerInch   = 2.54

	TwipsPerPoint      = 20
	HalfPointsPerPoint = 2

	// PixelTwipRatio is a rough screen-pixel approximation, not a DPI
	// accurate conversion. Existing documents depend on it.
	PixelTwipRatio = 15
)

// Translator converts between the measurement units used by WordprocessingML.
// Only inch based conversions depend on DPI.
type Translator struct {
	DPI float64
}

// NewTranslator returns a translator for the given DPI; values <= 0 use
// DefaultDPI.
func NewTranslator(dpi float64) *Translator {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Translator{DPI: dpi}
}

func (t *Translator) dpi() float64 {
	if t == nil || t.DPI <= 0 {
		return DefaultDPI
	}
	return t.DPI
}

// PointToTwip converts points to twips, rounded to the nearest twip.
func PointToTwip(pt float64) int {
	return int(math.Round(pt * TwipsPerPoint))
}

// TwipToPoint converts twips to points.
func TwipToPoint(twip int) float64 {
	return float64(twip) / TwipsPerPoint
}

// PointToHalfPoint converts points to half-points, rounded to nearest.
func PointToHalfPoint(pt float64) int {
	return int(math.Round(pt * HalfPointsPerPoint))
}

// HalfPointToPoint converts half-points to points.
func HalfPointToPoint(hp int) float64 {
	return float64(hp) / HalfPointsPerPoint
}

// PixelToTwip applies the fixed PixelTwipRatio approximation.
func PixelToTwip(px float64) int {
	return int(math.Round(px * PixelTwipRatio))
}

// TwipToPixel is the inverse of PixelToTwip.
func TwipToPixel(twip int) float64 {
	return float64(twip) / PixelTwipRatio
}

// PixelToEMU converts pixels at 96 DPI to EMU.
func PixelToEMU(px float64) int64 {
	return int64(math.Round(px * EMUPerPixel))
}

// InchToEMU converts inches to EMU.
func InchToEMU(in float64) int64 {
	return int64(math.Round(in * EMUPerInch))
}

// CMToEMU converts centimetres to EMU.
func CMToEMU(cm float64) int64 {
	return int64(math.Round(cm * EMUPerCM))
}

// CMToInch converts centimetres to inches.
func CMToInch(cm float64) float64 {
	return cm / CMPerInch
}

// InchToCM converts inches to centimetres.
func InchToCM(in float64) float64 {
	return in * CMPerInch
}

// InchToPoint converts inches to points at the translator's DPI.
func (t *Translator) InchToPoint(in float64) float64 {
	return in * t.dpi()
}

// PointToInch converts points to inches at the translator's DPI.
func (t *Translator) PointToInch(pt float64) float64 {
	return pt / t.dpi()
}

// InchToTwip converts inches to twips at the translator's DPI.
func (t *Translator) InchToTwip(in float64) int {
	return PointToTwip(t.InchToPoint(in))
}

// TwipToInch converts twips to inches at the translator's DPI.
func (t *Translator) TwipToInch(twip int) float64 {
	return t.PointToInch(TwipToPoint(twip))
}

// PointToEMU converts points to EMU at the translator's DPI.
func (t *Translator) PointToEMU(pt float64) int64 {
	return int64(math.Round(pt * EMUPerInch / t.dpi()))
}
