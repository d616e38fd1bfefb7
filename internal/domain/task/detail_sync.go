package task

import "tourkorea/explorer/internal/domain"

// DetailSyncTask asks a worker to fetch and store the detail snapshot of one tourist spot.
type DetailSyncTask struct {
	ContentID     string             `json:"content_id"`
	ContentTypeID domain.ContentType `json:"content_type_id"`
	AreaCode      string             `json:"area_code"`
	PageNumber    int                `json:"page_number"` // listing page the id was found on
}

func (t *DetailSyncTask) TaskType() string {
	return TypeDetailSync
}

func (t *DetailSyncTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
