package repository

import (
	"time"

	"gorm.io/gorm"
)

type Admin struct {
	Id        int        `gorm:"primaryKey"`
	Username  string     `gorm:"not null;unique"`
	Email     string     `gorm:"not null"`
	FullName  string     `gorm:"not null"`
	Password  string     `gorm:"not null"`
	IsActive  bool       `gorm:"not null;default:true"`
	LastLogin *time.Time `gorm:"null"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime"`
}

type AdminRepository struct {
	DB *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

func (r *AdminRepository) GetAdminById(adminId int) (*Admin, error) {
	var admin Admin
	result := r.DB.First(&admin, adminId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &admin, nil
}

func (r *AdminRepository) GetAdminByUsername(username string) (*Admin, error) {
	var admin Admin
	result := r.DB.First(&admin, "username = ?", username)
	if result.Error != nil {
		return nil, result.Error
	}
	return &admin, nil
}

func (r *AdminRepository) FindAll() ([]*Admin, error) {
	var admins []*Admin
	result := r.DB.Order("created_at asc").Find(&admins)
	if result.Error != nil {
		return nil, result.Error
	}
	return admins, nil
}

func (r *AdminRepository) Save(admin *Admin) (*Admin, error) {
	result := r.DB.Save(admin)
	if result.Error != nil {
		return nil, result.Error
	}
	return admin, nil
}

func (r *AdminRepository) TouchLastLogin(adminId int) error {
	now := time.Now()
	return r.DB.Model(&Admin{}).Where("id = ?", adminId).Update("last_login", &now).Error
}
