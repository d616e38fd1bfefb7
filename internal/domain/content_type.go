package domain

// ContentType is the TourAPI content category identifier (contentTypeId).
type ContentType string

func (c ContentType) String() string {
	return string(c)
}

const (
	ContentTypeAttraction ContentType = "12" // 관광지
	ContentTypeCulture    ContentType = "14" // 문화시설
	ContentTypeFestival   ContentType = "15" // 축제/공연/행사
	ContentTypeCourse     ContentType = "25" // 여행코스
	ContentTypeLeisure    ContentType = "28" // 레포츠
	ContentTypeLodging    ContentType = "32" // 숙박
	ContentTypeShopping   ContentType = "38" // 쇼핑
	ContentTypeRestaurant ContentType = "39" // 음식점
)

var ContentTypes = []ContentType{
	ContentTypeAttraction,
	ContentTypeCulture,
	ContentTypeFestival,
	ContentTypeCourse,
	ContentTypeLeisure,
	ContentTypeLodging,
	ContentTypeShopping,
	ContentTypeRestaurant,
}

func (c ContentType) Name() string {
	switch c {
	case ContentTypeAttraction:
		return "Attraction"
	case ContentTypeCulture:
		return "Cultural Facility"
	case ContentTypeFestival:
		return "Festival"
	case ContentTypeCourse:
		return "Course"
	case ContentTypeLeisure:
		return "Leisure"
	case ContentTypeLodging:
		return "Lodging"
	case ContentTypeShopping:
		return "Shopping"
	case ContentTypeRestaurant:
		return "Restaurant"
	default:
		return "Unknown"
	}
}

func (c ContentType) Valid() bool {
	for _, known := range ContentTypes {
		if c == known {
			return true
		}
	}
	return false
}
