package client

import (
	"net/url"
	"strconv"
	"strings"

	"tourkorea/explorer/internal/domain"
)

// Operation is one TourAPI endpoint, named by its path segment.
type Operation string

const (
	OpAreaCode      Operation = "areaCode2"
	OpAreaBasedList Operation = "areaBasedList2"
	OpSearchKeyword Operation = "searchKeyword2"
	OpDetailCommon  Operation = "detailCommon2"
	OpDetailIntro   Operation = "detailIntro2"
	OpDetailImage   Operation = "detailImage2"
	OpDetailPet     Operation = "detailPetTour2"
)

func (o Operation) String() string {
	return string(o)
}

// Identity is the fixed identification block merged into every query.
type Identity struct {
	ServiceKey string
	MobileOS   string
	MobileApp  string
}

func (id Identity) values() (url.Values, error) {
	if strings.TrimSpace(id.ServiceKey) == "" {
		return nil, &ConfigError{Key: "tourapi.service_key"}
	}

	q := url.Values{}
	q.Set("serviceKey", id.ServiceKey)
	setIf(q, "MobileOS", id.MobileOS)
	setIf(q, "MobileApp", id.MobileApp)
	q.Set("_type", "json")
	return q, nil
}

// Pagination is the rows-per-page / page-number pair; zero values are omitted.
type Pagination struct {
	NumOfRows int
	PageNo    int
}

func (p Pagination) apply(q url.Values) {
	setInt(q, "numOfRows", p.NumOfRows)
	setInt(q, "pageNo", p.PageNo)
}

type AreaCodeParams struct {
	Pagination
	// AreaCode narrows the lookup to the districts of one region.
	AreaCode string
}

type AreaBasedListParams struct {
	Pagination
	AreaCode      string
	ContentTypeID domain.ContentType
	// Arrange is the sort order: A title, C modified, D created, O/Q/R with image.
	Arrange string
}

type SearchKeywordParams struct {
	Pagination
	Keyword       string
	AreaCode      string
	ContentTypeID domain.ContentType
	Arrange       string
}

// BuildAreaCodeQuery builds the query string for areaCode2.
func BuildAreaCodeQuery(id Identity, p AreaCodeParams) (string, error) {
	q, err := id.values()
	if err != nil {
		return "", err
	}
	p.apply(q)
	setIf(q, "areaCode", p.AreaCode)
	return q.Encode(), nil
}

// BuildAreaBasedListQuery builds the query string for areaBasedList2.
func BuildAreaBasedListQuery(id Identity, p AreaBasedListParams) (string, error) {
	q, err := id.values()
	if err != nil {
		return "", err
	}
	p.apply(q)
	setIf(q, "areaCode", p.AreaCode)
	setIf(q, "contentTypeId", p.ContentTypeID.String())
	setIf(q, "arrange", p.Arrange)
	return q.Encode(), nil
}

// BuildSearchKeywordQuery builds the query string for searchKeyword2; the keyword must be non-blank.
func BuildSearchKeywordQuery(id Identity, p SearchKeywordParams) (string, error) {
	q, err := id.values()
	if err != nil {
		return "", err
	}
	keyword := strings.TrimSpace(p.Keyword)
	if keyword == "" {
		return "", &ValidationError{Param: "keyword", Reason: "must not be empty"}
	}
	p.apply(q)
	q.Set("keyword", keyword)
	setIf(q, "areaCode", p.AreaCode)
	setIf(q, "contentTypeId", p.ContentTypeID.String())
	setIf(q, "arrange", p.Arrange)
	return q.Encode(), nil
}

// BuildDetailCommonQuery builds the query string for detailCommon2.
func BuildDetailCommonQuery(id Identity, contentID string) (string, error) {
	return buildByID(id, contentID)
}

// BuildDetailImageQuery builds the query string for detailImage2.
func BuildDetailImageQuery(id Identity, contentID string) (string, error) {
	q, err := byIDValues(id, contentID)
	if err != nil {
		return "", err
	}
	q.Set("imageYN", "Y")
	return q.Encode(), nil
}

// BuildDetailPetQuery builds the query string for detailPetTour2.
func BuildDetailPetQuery(id Identity, contentID string) (string, error) {
	return buildByID(id, contentID)
}

// BuildDetailIntroQuery builds the query string for detailIntro2; both id and content type are required.
func BuildDetailIntroQuery(id Identity, contentID string, contentType domain.ContentType) (string, error) {
	q, err := byIDValues(id, contentID)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		return "", &ValidationError{Param: "contentTypeId", Reason: "must not be empty"}
	}
	if !contentType.Valid() {
		return "", &ValidationError{Param: "contentTypeId", Reason: "unknown content type " + contentType.String()}
	}
	q.Set("contentTypeId", contentType.String())
	return q.Encode(), nil
}

func buildByID(id Identity, contentID string) (string, error) {
	q, err := byIDValues(id, contentID)
	if err != nil {
		return "", err
	}
	return q.Encode(), nil
}

func byIDValues(id Identity, contentID string) (url.Values, error) {
	q, err := id.values()
	if err != nil {
		return nil, err
	}
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return nil, &ValidationError{Param: "contentId", Reason: "must not be empty"}
	}
	if !isDigits(contentID) {
		return nil, &ValidationError{Param: "contentId", Reason: "must be numeric"}
	}
	q.Set("contentId", contentID)
	return q, nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int) {
	if value != 0 {
		q.Set(key, strconv.Itoa(value))
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
