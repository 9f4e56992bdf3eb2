package weather

// Condition is the human-readable form of a WMO weather code.
type Condition struct {
	Description string
	Icon        string
}

// Unknown is returned for codes outside the WMO table.
var Unknown = Condition{Description: "unknown", Icon: "unknown"}

var wmoConditions = map[int]Condition{
	0:  {"Trời quang", "clear"},
	1:  {"Ít mây", "mostly-clear"},
	2:  {"Mây rải rác", "partly-cloudy"},
	3:  {"U ám", "overcast"},
	45: {"Sương mù", "fog"},
	48: {"Sương mù đóng băng", "fog"},
	51: {"Mưa phùn nhẹ", "drizzle"},
	53: {"Mưa phùn", "drizzle"},
	55: {"Mưa phùn dày", "drizzle"},
	56: {"Mưa phùn băng giá", "freezing-drizzle"},
	57: {"Mưa phùn băng giá dày", "freezing-drizzle"},
	61: {"Mưa nhỏ", "rain"},
	63: {"Mưa", "rain"},
	65: {"Mưa to", "heavy-rain"},
	66: {"Mưa băng giá", "freezing-rain"},
	67: {"Mưa băng giá to", "freezing-rain"},
	71: {"Tuyết rơi nhẹ", "snow"},
	73: {"Tuyết rơi", "snow"},
	75: {"Tuyết rơi dày", "snow"},
	77: {"Hạt tuyết", "snow"},
	80: {"Mưa rào nhẹ", "showers"},
	81: {"Mưa rào", "showers"},
	82: {"Mưa rào dữ dội", "showers"},
	85: {"Mưa tuyết nhẹ", "snow-showers"},
	86: {"Mưa tuyết", "snow-showers"},
	95: {"Dông", "thunderstorm"},
	96: {"Dông kèm mưa đá nhẹ", "thunderstorm-hail"},
	99: {"Dông kèm mưa đá", "thunderstorm-hail"},
}

// Classify maps a WMO weather code to its description and icon. It is total:
// any code missing from the table yields Unknown.
func Classify(code int) Condition {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return Unknown
}
