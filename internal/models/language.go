package models

// Language is reference data that posts are tagged with.
type Language struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// UserLanguage records that a user follows a language.
type UserLanguage struct {
	UserID     uint `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	LanguageID uint `gorm:"primaryKey;autoIncrement:false;index" json:"languageId"`
}

// LanguageOption is the value/label pair the UI renders in selectors.
type LanguageOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FollowedLanguage pairs a language id with its name.
type FollowedLanguage struct {
	Value uint   `json:"value"`
	Label string `json:"label"`
}
