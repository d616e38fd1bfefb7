package domain

// DetailRecord is the full common detail of a tourist spot.
type DetailRecord struct {
	ListingItem
	Overview    string `json:"overview,omitempty"`
	Zipcode     string `json:"zipcode,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	SigunguCode string `json:"sigungucode,omitempty"`
}

// Normalize strips markup the upstream embeds in overview and homepage fields.
func (d *DetailRecord) Normalize() {
	d.Overview = PlainText(d.Overview)
	if link := FirstLink(d.Homepage); link != "" {
		d.Homepage = link
	} else {
		d.Homepage = PlainText(d.Homepage)
	}
}

// ImageRecord is one gallery image of a tourist spot.
type ImageRecord struct {
	ContentID     string `json:"contentid"`
	OriginImgURL  string `json:"originimgurl"`
	SmallImageURL string `json:"smallimageurl"`
	ImgName       string `json:"imgname,omitempty"`
	SerialNum     string `json:"serialnum,omitempty"`
}

// AreaCode is a region code/name pair used as filter-menu data.
type AreaCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
	RNum int    `json:"rnum,omitempty"`
}
