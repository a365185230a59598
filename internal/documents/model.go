package documents

import (
	"io"
	"time"
)

// MaxUploadBytes caps the size of a single uploaded file.
const MaxUploadBytes = 25 << 20

// Owner types a document can be attached to.
const (
	OwnerClient      = "client"
	OwnerStaff       = "staff"
	OwnerBeneficiary = "beneficiary"
	OwnerContract    = "contract"
)

// ownerTables maps owner types to the table holding the owner row.
var ownerTables = map[string]string{
	OwnerClient:      "clients",
	OwnerStaff:       "staff",
	OwnerBeneficiary: "beneficiaries",
	OwnerContract:    "contracts",
}

// Document is the metadata row of a stored file.
type Document struct {
	ID          int64     `json:"id"`
	OwnerType   string    `json:"owner_type"`
	OwnerID     int64     `json:"owner_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"-"`
	UploadedBy  int64     `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload describes an incoming file.
type Upload struct {
	OwnerType   string
	OwnerID     int64
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ListFilters narrows document listings to one owner.
type ListFilters struct {
	OwnerType string
	OwnerID   int64
	Page      int
	Limit     int
}
