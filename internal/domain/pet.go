package domain

import "strings"

// PetInfoRecord describes pet accompaniment rules for one tourist spot.
// A nil *PetInfoRecord means no pet data is available, which is not the same as pets being refused.
type PetInfoRecord struct {
	ContentID       string `json:"contentid"`
	AcmpyTypeCd     string `json:"acmpyTypeCd,omitempty"`     // accompaniment type, e.g. "전구역 동반가능", "동반불가"
	AcmpyPsblCpam   string `json:"acmpyPsblCpam,omitempty"`   // which animals may accompany
	AcmpyNeedMtr    string `json:"acmpyNeedMtr,omitempty"`    // required items
	RelaPosesFclty  string `json:"relaPosesFclty,omitempty"`  // related facilities
	RelaFrnshPrdlst string `json:"relaFrnshPrdlst,omitempty"` // furnished goods
	RelaPurcPrdlst  string `json:"relaPurcPrdlst,omitempty"`  // goods for sale
	RelaRntlPrdlst  string `json:"relaRntlPrdlst,omitempty"`  // goods for rent
	EtcAcmpyInfo    string `json:"etcAcmpyInfo,omitempty"`
}

// Allowed reports whether the record permits pets at all.
func (p *PetInfoRecord) Allowed() bool {
	if p == nil {
		return false
	}
	code := strings.ReplaceAll(p.AcmpyTypeCd, " ", "")
	return !strings.Contains(code, "불가")
}
