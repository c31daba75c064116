package domain

type band struct {
	upper float64
	label string
}

// US EPA AQI bands.
var aqiBands = []band{
	{50, "Good"},
	{100, "Moderate"},
	{150, "Unhealthy for Sensitive Groups"},
	{200, "Unhealthy"},
	{300, "Very Unhealthy"},
}

// Pollen severity index, 0-12.
var pollenBands = []band{
	{2.4, "Low"},
	{4.8, "Low-Medium"},
	{7.2, "Medium"},
	{9.6, "Medium-High"},
}

// AQICategory returns the EPA category label for an AQI reading.
func AQICategory(aqi float64) string {
	return lookupBand(aqiBands, aqi, "Hazardous")
}

// PollenCategory returns the severity label for a pollen index reading.
func PollenCategory(index float64) string {
	return lookupBand(pollenBands, index, "High")
}

func lookupBand(bands []band, value float64, top string) string {
	for _, b := range bands {
		if value <= b.upper {
			return b.label
		}
	}
	return top
}
