package model

type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
}

type Warehouse struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Location string `gorm:"type:varchar(200)" json:"location" validate:"max=200"`
}
