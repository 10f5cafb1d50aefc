package course

import "gorm.io/gorm"

// Lecture represents a single video lecture within a course
type Lecture struct {
	gorm.Model
	CourseID        uint   `json:"course_id" gorm:"index;not null"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url"`
	TotalSeconds    int    `json:"total_seconds" gorm:"default:0"`    // full runtime of the video
	RequiredSeconds int    `json:"required_seconds" gorm:"default:0"` // minimum watch time to count as complete
	OrderIndex      int    `json:"order_index" gorm:"default:0"`      // lecture order in course
	IsPublished     bool   `json:"is_published" gorm:"default:false"`
	IsDeleted       bool   `gorm:"default:false"`
}
