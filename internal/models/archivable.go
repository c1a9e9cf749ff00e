package models

import "time"

// Archivable is the soft-delete column pair shared by every lifecycle-managed table.
type Archivable struct {
	Archived   bool       `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

func (a Archivable) IsArchived() bool {
	return a.Archived
}

// ArchivableRecord is satisfied by any model embedding Archivable.
type ArchivableRecord interface {
	IsArchived() bool
}
