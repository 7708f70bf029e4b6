package models

import "gorm.io/gorm"

// AnswerRecord 记录一次成功的问答（审计/分析用）
type AnswerRecord struct {
	gorm.Model
	SessionID     string `gorm:"index;size:36"`
	Question      string `gorm:"type:text"`
	Response      string `gorm:"type:text"`
	Sources       string `gorm:"type:text"`
	FollowupCount int
}
