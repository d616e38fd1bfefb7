package domain

import (
	"fmt"
	"time"
)

const modifiedTimeLayout = "20060102150405"

var kst = time.FixedZone("KST", 9*60*60)

// ListingItem is one tourist-spot summary as returned by list and search operations.
type ListingItem struct {
	ContentID     string      `json:"contentid"`
	ContentTypeID ContentType `json:"contenttypeid"`
	Title         string      `json:"title"`
	Addr1         string      `json:"addr1"`
	Addr2         string      `json:"addr2,omitempty"`
	AreaCode      string      `json:"areacode,omitempty"`
	FirstImage    string      `json:"firstimage,omitempty"`
	FirstImage2   string      `json:"firstimage2,omitempty"`
	Tel           string      `json:"tel,omitempty"`
	Cat1          string      `json:"cat1,omitempty"`
	Cat2          string      `json:"cat2,omitempty"`
	Cat3          string      `json:"cat3,omitempty"`
	MapX          string      `json:"mapx"`
	MapY          string      `json:"mapy"`
	ModifiedTime  string      `json:"modifiedtime"` // YYYYMMDDHHmmss
}

// Modified parses ModifiedTime in Korea Standard Time.
func (l ListingItem) Modified() (time.Time, error) {
	t, err := time.ParseInLocation(modifiedTimeLayout, l.ModifiedTime, kst)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid modified time %q: %w", l.ModifiedTime, err)
	}
	return t, nil
}

// Category returns the most specific category code, stopping at the first empty level.
func (l ListingItem) Category() string {
	code := ""
	for _, c := range []string{l.Cat1, l.Cat2, l.Cat3} {
		if c == "" {
			break
		}
		code = c
	}
	return code
}

// Page is one page of results from a paginated TourAPI operation.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageNo     int `json:"pageNo"`
	NumOfRows  int `json:"numOfRows"`
}

// HasMore reports whether items beyond this page exist.
func (p *Page[T]) HasMore() bool {
	if p.NumOfRows <= 0 {
		return false
	}
	return p.PageNo*p.NumOfRows < p.TotalCount
}
