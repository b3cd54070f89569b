package model

import (
	"time"

	"gorm.io/gorm"
)

// User 后台账号。username/email/mobile 任一可用于登录，email 与 mobile 不做唯一约束，
// 出现重复时登录直接报错而不是任选其一。
type User struct {
	ID              int64          `gorm:"primaryKey;autoIncrement"`
	Username        string         `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email           string         `gorm:"type:varchar(255);index"`
	Mobile          string         `gorm:"type:varchar(30);index"`
	Password        string         `gorm:"type:varchar(255);not null"` // bcrypt
	Name            string         `gorm:"type:varchar(40)"`
	Avatar          string         `gorm:"type:varchar(255)"`
	UserType        int            `gorm:"default:0"` // 0 后台用户 1 前台用户
	IsActive        bool           `gorm:"not null;default:true;index"`
	LoginErrorCount int            `gorm:"not null;default:0"`
	PwdChangeCount  int            `gorm:"not null;default:0"`
	DeptID          *int64         `gorm:"index"`
	Dept            *Dept          `gorm:"foreignKey:DeptID"`
	Roles           []Role         `gorm:"many2many:system_users_role;"`
	LastLogin       *time.Time
	CreatedAt       time.Time      `gorm:"index;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "system_users"
}

type Dept struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(64);not null"`
	Key  string `gorm:"type:varchar(64);uniqueIndex"`
}

func (Dept) TableName() string {
	return "system_dept"
}

type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(64);not null"`
	Key  string `gorm:"type:varchar(64);uniqueIndex"`
}

func (Role) TableName() string {
	return "system_role"
}

// LoginLog 登录成功审计记录
type LoginLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"type:varchar(150);index"`
	UserID    int64     `gorm:"index"`
	IP        string    `gorm:"type:varchar(64)"`
	Agent     string    `gorm:"type:text"`
	LoginType int       `gorm:"default:1"` // 1 普通登录
	CreatedAt time.Time `gorm:"index;autoCreateTime"`
}

func (LoginLog) TableName() string {
	return "system_login_log"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Dept{}, &Role{}, &User{}, &LoginLog{})
}
