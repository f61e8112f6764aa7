package domain

import "time"

// Resource is one uploaded file (worksheet, meal plan, sheet music) shared
// with students.
type Resource struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UploadedBy  string    `json:"uploaded_by" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"not null"`
	FileName    string    `json:"file_name" gorm:"not null"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}
