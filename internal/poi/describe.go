package poi

import "github.com/kjstillabower/travel-discovery-service/internal/models"

// DefaultDescription is used when no recognized category tag is present.
const DefaultDescription = "Địa điểm đáng khám phá tại Việt Nam"

var (
	tourismDescriptions = map[string]string{
		"attraction": "Điểm tham quan du lịch nổi tiếng",
		"museum":     "Bảo tàng lưu giữ di sản văn hóa và lịch sử",
		"viewpoint":  "Điểm ngắm cảnh đẹp, view panorama tuyệt vời",
		"artwork":    "Tác phẩm nghệ thuật công cộng, điểm check-in độc đáo",
		"gallery":    "Phòng tranh nghệ thuật, triển lãm đa dạng",
	}
	historicDescriptions = map[string]string{
		"memorial":            "Đài tưởng niệm lịch sử, nơi tôn vinh các anh hùng dân tộc",
		"monument":            "Di tích lịch sử quan trọng, kiến trúc đặc sắc",
		"archaeological_site": "Khu di tích khảo cổ học, dấu tích văn minh cổ đại",
		"castle":              "Lâu đài cổ kính, kiến trúc thời phong kiến",
		"ruins":               "Tàn tích lịch sử, dấu vết của thời gian",
	}
	naturalDescriptions = map[string]string{
		"beach":     "Bãi biển đẹp, cát trắng nước trong, lý tưởng để nghỉ dưỡng",
		"cave":      "Hang động tự nhiên, khám phá thạch nhũ kỳ thú",
		"peak":      "Đỉnh núi hùng vĩ, chinh phục và ngắm cảnh từ trên cao",
		"waterfall": "Thác nước hùng vĩ, khung cảnh thiên nhiên tuyệt đẹp",
	}
	placeOfWorshipDescription = "Nơi thờ cúng tâm linh, kiến trúc tôn giáo độc đáo"
)

// Describe builds a category sentence from raw map tags.
//
// Precedence: a known tourism value, then historic, then natural, then
// amenity=place_of_worship. Failing all of those, the sentence echoes whichever of
// tourism/historic/natural is set (same order), or DefaultDescription. A free-text
// description tag is appended after the sentence. The result is never empty.
func Describe(tags models.Tags) string {
	base := categorySentence(tags)
	if extra := tags.Get("description"); extra != "" {
		return base + ". " + extra
	}
	return base
}

func categorySentence(tags models.Tags) string {
	tourism := tags.Get("tourism")
	historic := tags.Get("historic")
	natural := tags.Get("natural")

	if s, ok := tourismDescriptions[tourism]; ok {
		return s
	}
	if s, ok := historicDescriptions[historic]; ok {
		return s
	}
	if s, ok := naturalDescriptions[natural]; ok {
		return s
	}
	if tags.Get("amenity") == "place_of_worship" {
		return placeOfWorshipDescription
	}

	switch {
	case tourism != "":
		return "Địa điểm du lịch thú vị - " + tourism
	case historic != "":
		return "Di tích lịch sử - " + historic
	case natural != "":
		return "Kỳ quan thiên nhiên - " + natural
	default:
		return DefaultDescription
	}
}
