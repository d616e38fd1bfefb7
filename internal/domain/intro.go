package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Intro is the category-specific operational metadata of a tourist spot.
// Every content type has its own variant; Fields lists only the values present upstream.
type Intro interface {
	ContentType() ContentType
	Fields() []IntroField
}

type IntroField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IntroRecord ties an Intro variant to the spot it describes.
type IntroRecord struct {
	ContentID     string      `json:"contentid"`
	ContentTypeID ContentType `json:"contenttypeid"`
	Intro         Intro       `json:"intro"`
}

func collect(pairs ...string) []IntroField {
	fields := make([]IntroField, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := PlainText(pairs[i+1]); v != "" {
			fields = append(fields, IntroField{Key: pairs[i], Value: v})
		}
	}
	return fields
}

type AttractionIntro struct {
	InfoCenter  string `json:"infocenter,omitempty"`
	RestDate    string `json:"restdate,omitempty"`
	UseTime     string `json:"usetime,omitempty"`
	Parking     string `json:"parking,omitempty"`
	ChkPet      string `json:"chkpet,omitempty"`
	ExpGuide    string `json:"expguide,omitempty"`
	AccomCount  string `json:"accomcount,omitempty"`
	UseSeason   string `json:"useseason,omitempty"`
	Heritage    string `json:"heritage1,omitempty"`
	ChkBabyCarr string `json:"chkbabycarriage,omitempty"`
}

func (AttractionIntro) ContentType() ContentType { return ContentTypeAttraction }

func (i AttractionIntro) Fields() []IntroField {
	return collect(
		"infocenter", i.InfoCenter,
		"restdate", i.RestDate,
		"usetime", i.UseTime,
		"parking", i.Parking,
		"chkpet", i.ChkPet,
		"expguide", i.ExpGuide,
		"accomcount", i.AccomCount,
		"useseason", i.UseSeason,
		"heritage1", i.Heritage,
		"chkbabycarriage", i.ChkBabyCarr,
	)
}

type CultureIntro struct {
	InfoCenter string `json:"infocenterculture,omitempty"`
	UseTime    string `json:"usetimeculture,omitempty"`
	RestDate   string `json:"restdateculture,omitempty"`
	UseFee     string `json:"usefee,omitempty"`
	Parking    string `json:"parkingculture,omitempty"`
	ParkingFee string `json:"parkingfee,omitempty"`
	Scale      string `json:"scale,omitempty"`
	SpendTime  string `json:"spendtime,omitempty"`
}

func (CultureIntro) ContentType() ContentType { return ContentTypeCulture }

func (i CultureIntro) Fields() []IntroField {
	return collect(
		"infocenterculture", i.InfoCenter,
		"usetimeculture", i.UseTime,
		"restdateculture", i.RestDate,
		"usefee", i.UseFee,
		"parkingculture", i.Parking,
		"parkingfee", i.ParkingFee,
		"scale", i.Scale,
		"spendtime", i.SpendTime,
	)
}

type FestivalIntro struct {
	EventStartDate string `json:"eventstartdate,omitempty"` // YYYYMMDD
	EventEndDate   string `json:"eventenddate,omitempty"`   // YYYYMMDD
	EventPlace     string `json:"eventplace,omitempty"`
	EventHomepage  string `json:"eventhomepage,omitempty"`
	PlayTime       string `json:"playtime,omitempty"`
	Program        string `json:"program,omitempty"`
	UseTime        string `json:"usetimefestival,omitempty"`
	Sponsor        string `json:"sponsor1,omitempty"`
	SponsorTel     string `json:"sponsor1tel,omitempty"`
	AgeLimit       string `json:"agelimit,omitempty"`
}

func (FestivalIntro) ContentType() ContentType { return ContentTypeFestival }

func (i FestivalIntro) Fields() []IntroField {
	return collect(
		"eventstartdate", i.EventStartDate,
		"eventenddate", i.EventEndDate,
		"eventplace", i.EventPlace,
		"eventhomepage", i.EventHomepage,
		"playtime", i.PlayTime,
		"program", i.Program,
		"usetimefestival", i.UseTime,
		"sponsor1", i.Sponsor,
		"sponsor1tel", i.SponsorTel,
		"agelimit", i.AgeLimit,
	)
}

type CourseIntro struct {
	Distance   string `json:"distance,omitempty"`
	TakeTime   string `json:"taketime,omitempty"`
	Schedule   string `json:"schedule,omitempty"`
	Theme      string `json:"theme,omitempty"`
	InfoCenter string `json:"infocentertourcourse,omitempty"`
}

func (CourseIntro) ContentType() ContentType { return ContentTypeCourse }

func (i CourseIntro) Fields() []IntroField {
	return collect(
		"distance", i.Distance,
		"taketime", i.TakeTime,
		"schedule", i.Schedule,
		"theme", i.Theme,
		"infocentertourcourse", i.InfoCenter,
	)
}

type LeisureIntro struct {
	InfoCenter  string `json:"infocenterleports,omitempty"`
	OpenPeriod  string `json:"openperiod,omitempty"`
	UseTime     string `json:"usetimeleports,omitempty"`
	UseFee      string `json:"usefeeleports,omitempty"`
	RestDate    string `json:"restdateleports,omitempty"`
	Parking     string `json:"parkingleports,omitempty"`
	Reservation string `json:"reservation,omitempty"`
}

func (LeisureIntro) ContentType() ContentType { return ContentTypeLeisure }

func (i LeisureIntro) Fields() []IntroField {
	return collect(
		"infocenterleports", i.InfoCenter,
		"openperiod", i.OpenPeriod,
		"usetimeleports", i.UseTime,
		"usefeeleports", i.UseFee,
		"restdateleports", i.RestDate,
		"parkingleports", i.Parking,
		"reservation", i.Reservation,
	)
}

type LodgingIntro struct {
	CheckInTime    string `json:"checkintime,omitempty"`
	CheckOutTime   string `json:"checkouttime,omitempty"`
	RoomCount      string `json:"roomcount,omitempty"`
	RoomType       string `json:"roomtype,omitempty"`
	Parking        string `json:"parkinglodging,omitempty"`
	Reservation    string `json:"reservationlodging,omitempty"`
	ReservationURL string `json:"reservationurl,omitempty"`
	InfoCenter     string `json:"infocenterlodging,omitempty"`
	ChkCooking     string `json:"chkcooking,omitempty"`
}

func (LodgingIntro) ContentType() ContentType { return ContentTypeLodging }

func (i LodgingIntro) Fields() []IntroField {
	return collect(
		"checkintime", i.CheckInTime,
		"checkouttime", i.CheckOutTime,
		"roomcount", i.RoomCount,
		"roomtype", i.RoomType,
		"parkinglodging", i.Parking,
		"reservationlodging", i.Reservation,
		"reservationurl", i.ReservationURL,
		"infocenterlodging", i.InfoCenter,
		"chkcooking", i.ChkCooking,
	)
}

type ShoppingIntro struct {
	OpenTime   string `json:"opentime,omitempty"`
	RestDate   string `json:"restdateshopping,omitempty"`
	SaleItem   string `json:"saleitem,omitempty"`
	InfoCenter string `json:"infocentershopping,omitempty"`
	Parking    string `json:"parkingshopping,omitempty"`
	ShopGuide  string `json:"shopguide,omitempty"`
}

func (ShoppingIntro) ContentType() ContentType { return ContentTypeShopping }

func (i ShoppingIntro) Fields() []IntroField {
	return collect(
		"opentime", i.OpenTime,
		"restdateshopping", i.RestDate,
		"saleitem", i.SaleItem,
		"infocentershopping", i.InfoCenter,
		"parkingshopping", i.Parking,
		"shopguide", i.ShopGuide,
	)
}

type RestaurantIntro struct {
	FirstMenu   string `json:"firstmenu,omitempty"`
	TreatMenu   string `json:"treatmenu,omitempty"`
	OpenTime    string `json:"opentimefood,omitempty"`
	RestDate    string `json:"restdatefood,omitempty"`
	InfoCenter  string `json:"infocenterfood,omitempty"`
	Reservation string `json:"reservationfood,omitempty"`
	Parking     string `json:"parkingfood,omitempty"`
	Packing     string `json:"packing,omitempty"`
}

func (RestaurantIntro) ContentType() ContentType { return ContentTypeRestaurant }

func (i RestaurantIntro) Fields() []IntroField {
	return collect(
		"firstmenu", i.FirstMenu,
		"treatmenu", i.TreatMenu,
		"opentimefood", i.OpenTime,
		"restdatefood", i.RestDate,
		"infocenterfood", i.InfoCenter,
		"reservationfood", i.Reservation,
		"parkingfood", i.Parking,
		"packing", i.Packing,
	)
}

// DecodeIntro decodes one raw detailIntro2 item into the variant for contentType.
func DecodeIntro(contentType ContentType, raw []byte) (Intro, error) {
	var intro Intro
	switch contentType {
	case ContentTypeAttraction:
		intro = &AttractionIntro{}
	case ContentTypeCulture:
		intro = &CultureIntro{}
	case ContentTypeFestival:
		intro = &FestivalIntro{}
	case ContentTypeCourse:
		intro = &CourseIntro{}
	case ContentTypeLeisure:
		intro = &LeisureIntro{}
	case ContentTypeLodging:
		intro = &LodgingIntro{}
	case ContentTypeShopping:
		intro = &ShoppingIntro{}
	case ContentTypeRestaurant:
		intro = &RestaurantIntro{}
	default:
		return nil, fmt.Errorf("unknown content type %q", contentType)
	}

	if err := json.Unmarshal(raw, intro); err != nil {
		return nil, fmt.Errorf("failed to decode %s intro: %w", contentType.Name(), err)
	}
	return intro, nil
}
