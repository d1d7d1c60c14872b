package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CandidateDoc is the stored shape of one image-to-SKU candidate match, as
// the ingestion pipeline writes it. Three competing SKU columns exist
// because ingestion has been inconsistent about which one it fills; the
// adapter resolves them into a single normalized field.
type CandidateDoc struct {
	ID               string    `gorm:"primaryKey;column:id" json:"id"`
	Manufacturer     string    `gorm:"index;column:manufacturer" json:"manufacturer"`
	SKUNumber        string    `gorm:"index;column:sku_number" json:"sku_number"`
	PartNumber       string    `gorm:"index;column:part_number" json:"part_number"`
	SKU              string    `gorm:"index;column:sku" json:"sku"`
	Title            string    `gorm:"column:title" json:"title"`
	Description      string    `gorm:"column:description" json:"description"`
	ImageURL         string    `gorm:"column:image_url" json:"image_url"`
	Confidence       float64   `gorm:"index;column:confidence" json:"confidence"`
	Status           string    `gorm:"index;column:status" json:"status"`
	RejectionComment string    `gorm:"column:rejection_comment" json:"rejection_comment"`
	ReviewedBy       string    `gorm:"column:reviewed_by" json:"reviewed_by"`
	UpdatedBy        string    `gorm:"column:updated_by" json:"updated_by"`
	OriginalStatus   string    `gorm:"column:original_status" json:"original_status"`
	FinalStatus      string    `gorm:"column:final_status" json:"final_status"`
	CreatedAt        time.Time `gorm:"index;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CandidateDoc) TableName() string {
	return "image_metadata"
}

// CandidateRecord is the normalized view every caller sees. ConfidenceScore
// is always a percentage in [0,100]; the raw stored fraction never leaves
// the adapter.
type CandidateRecord struct {
	ID               string    `json:"id"`
	Manufacturer     string    `json:"manufacturer"`
	SKUNumber        string    `json:"sku_number"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ImageURL         string    `json:"image_url"`
	ConfidenceScore  float64   `json:"confidence_score"`
	Status           Status    `json:"status"`
	RejectionComment string    `json:"rejection_comment,omitempty"`
	ReviewedBy       string    `json:"reviewed_by,omitempty"`
	UpdatedBy        string    `json:"updated_by,omitempty"`
	OriginalStatus   string    `json:"original_status,omitempty"`
	FinalStatus      string    `json:"final_status,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ReviewLogEntry is the append-only audit record for one transition.
// Snapshot holds a best-effort copy of manufacturer/image_url/confidence at
// review time; rows are never updated after creation.
type ReviewLogEntry struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"review_id"`
	ProductID       string         `gorm:"index;not null;column:product_id" json:"product_id"`
	RequestedAction string         `gorm:"not null;column:requested_action" json:"requested_action"`
	FinalStatus     string         `gorm:"not null;column:final_status" json:"final_status"`
	ReviewerID      uuid.UUID      `gorm:"type:uuid;index;column:reviewer_id" json:"reviewer_id"`
	ReviewerEmail   string         `gorm:"column:reviewer_email" json:"reviewer_email"`
	ReviewerRole    string         `gorm:"column:reviewer_role" json:"reviewer_role"`
	Snapshot        datatypes.JSON `gorm:"column:snapshot" json:"snapshot,omitempty"`
	CreatedAt       time.Time      `gorm:"index;not null;default:now()" json:"timestamp"`
}

func (ReviewLogEntry) TableName() string {
	return "review_log"
}

// FeedbackEntry is the append-only binary training label emitted on every
// terminal decision, consumed by the model retraining pipeline.
type FeedbackEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OriginalID   string    `gorm:"index;not null;column:original_id" json:"original_id"`
	SKUNumber    string    `gorm:"column:sku_number" json:"sku_number"`
	Manufacturer string    `gorm:"column:manufacturer" json:"manufacturer"`
	ImageURL     string    `gorm:"column:image_url" json:"image_url"`
	Label        int       `gorm:"not null;column:label" json:"label"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (FeedbackEntry) TableName() string {
	return "feedback"
}
