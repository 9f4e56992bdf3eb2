package poi

import "github.com/kjstillabower/travel-discovery-service/internal/models"

// fallbackOffset is the distance in degrees between the center and each placeholder.
const fallbackOffset = 0.01

var fallbackTemplates = []struct {
	name        string
	description string
	dLat, dLng  float64
}{
	{"Địa điểm 1", "Điểm tham quan thú vị gần đây", fallbackOffset, fallbackOffset},
	{"Địa điểm 2", "Khu vực văn hóa lịch sử", -fallbackOffset, fallbackOffset},
	{"Địa điểm 3", "Điểm du lịch nổi tiếng", fallbackOffset, -fallbackOffset},
	{"Địa điểm 4", "Cảnh quan thiên nhiên đẹp", -fallbackOffset, -fallbackOffset},
	{"Địa điểm 5", "Khu vực ẩm thực đặc sản", 0, 0},
}

// Fallback returns the five placeholder POIs around center. The result depends
// only on center and is always in the same order. Each call returns a fresh slice.
func Fallback(center models.Coordinate) []models.PointOfInterest {
	out := make([]models.PointOfInterest, 0, len(fallbackTemplates))
	for _, tpl := range fallbackTemplates {
		out = append(out, models.PointOfInterest{
			Name:        tpl.name,
			Description: tpl.description,
			Coordinates: center.Offset(tpl.dLat, tpl.dLng),
		})
	}
	return out
}
