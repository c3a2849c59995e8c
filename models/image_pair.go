package models

import "time"

// ImagePair One uploaded original image together with its mask
type ImagePair struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	OriginalFilename string    `json:"original_filename" gorm:"not null"`
	OriginalPath     string    `json:"original_path" gorm:"not null"`
	MaskFilename     string    `json:"mask_filename" gorm:"not null"`
	MaskPath         string    `json:"mask_path" gorm:"not null"`
	UploadDate       time.Time `json:"upload_date" gorm:"autoCreateTime;index"`
	FileSize         *int64    `json:"file_size"`
	ImageWidth       *int      `json:"image_width"`
	ImageHeight      *int      `json:"image_height"`
}

func (ImagePair) TableName() string {
	return "image_pairs"
}
