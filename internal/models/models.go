package models

import (
	"time"
)

// Visit is one logged page view. Rows are only ever inserted.
type Visit struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	VisitTime time.Time `gorm:"column:visit_time;default:CURRENT_TIMESTAMP"`
	ClientIP  string    `gorm:"column:client_ip;type:varchar(50)"`
	UserAgent string    `gorm:"column:user_agent;type:text"`
	Path      string    `gorm:"column:path;type:varchar(255)"`
}

// Student is a seeded reference row shown on the status page.
type Student struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(100)"`
	GroupName string    `gorm:"column:group_name;type:varchar(50)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false;default:CURRENT_TIMESTAMP"`
}

func (Visit) TableName() string {
	return "visits"
}

func (Student) TableName() string {
	return "students"
}

// SeedStudents is inserted into an empty students table, in this order.
func SeedStudents() []Student {
	return []Student{
		{Name: "Роман Дик", GroupName: "DevOps-1"},
		{Name: "Алексей Петров", GroupName: "DevOps-2"},
		{Name: "Мария Сидорова", GroupName: "DevOps-1"},
	}
}
