package repository

import (
	"time"

	"gorm.io/gorm"
)

type Challenge struct {
	Id                 int         `gorm:"primaryKey"`
	Title              string      `gorm:"not null"`
	Description        string      `gorm:"not null"`
	SortOrder          int         `gorm:"not null;unique"`
	Points             int         `gorm:"not null;default:100"`
	AlgorithmicProblem string      `gorm:"not null"`
	BuildathonProblem  *string     `gorm:"null"`
	Flag               string      `gorm:"not null"`
	IsActive           bool        `gorm:"not null;default:true"`
	TestCases          []*TestCase `gorm:"foreignKey:ChallengeId"`
	CreatedAt          time.Time   `gorm:"not null;autoCreateTime"`
	UpdatedAt          time.Time   `gorm:"not null;autoUpdateTime"`
}

type TestCase struct {
	Id          int    `gorm:"primaryKey"`
	ChallengeId int    `gorm:"not null;references:challenges(id)"`
	Input       string `gorm:"not null"`
	Expected    string `gorm:"not null"`
	IsPublic    bool   `gorm:"not null;default:false"`

	Challenge *Challenge `gorm:"foreignKey:ChallengeId;constraint:OnDelete:CASCADE;"`
}

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) GetChallengeById(challengeId int) (*Challenge, error) {
	var challenge Challenge
	result := r.DB.Preload("TestCases", func(db *gorm.DB) *gorm.DB {
		return db.Order("test_cases.id asc")
	}).First(&challenge, challengeId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &challenge, nil
}

func (r *ChallengeRepository) GetChallengeBySortOrder(sortOrder int) (*Challenge, error) {
	var challenge Challenge
	result := r.DB.First(&challenge, "sort_order = ?", sortOrder)
	if result.Error != nil {
		return nil, result.Error
	}
	return &challenge, nil
}

func (r *ChallengeRepository) FindAll() ([]*Challenge, error) {
	var challenges []*Challenge
	result := r.DB.Order("sort_order asc").Find(&challenges)
	if result.Error != nil {
		return nil, result.Error
	}
	return challenges, nil
}

func (r *ChallengeRepository) Save(challenge *Challenge) (*Challenge, error) {
	result := r.DB.Save(challenge)
	if result.Error != nil {
		return nil, result.Error
	}
	return challenge, nil
}

func (r *ChallengeRepository) Delete(challengeId int) error {
	result := r.DB.Select("TestCases").Delete(&Challenge{Id: challengeId})
	return result.Error
}

// GetTestCases returns all test cases for a challenge, public and hidden
// alike, in stored order.
func (r *ChallengeRepository) GetTestCases(challengeId int) ([]*TestCase, error) {
	var testCases []*TestCase
	result := r.DB.Order("id asc").Find(&testCases, "challenge_id = ?", challengeId)
	if result.Error != nil {
		return nil, result.Error
	}
	return testCases, nil
}

func (r *ChallengeRepository) ReplaceTestCases(challengeId int, testCases []*TestCase) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(TestCase{}, "challenge_id = ?", challengeId).Error; err != nil {
			return err
		}
		if len(testCases) == 0 {
			return nil
		}
		for _, testCase := range testCases {
			testCase.ChallengeId = challengeId
		}
		return tx.Create(testCases).Error
	})
}

func (r *ChallengeRepository) Search(search string, isActive *bool, page int, limit int) ([]*Challenge, int64, error) {
	query := r.DB.Model(&Challenge{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var challenges []*Challenge
	result := query.Order("sort_order asc").Offset((page - 1) * limit).Limit(limit).Find(&challenges)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return challenges, total, nil
}

func (r *ChallengeRepository) CountActive() (int64, error) {
	var count int64
	result := r.DB.Model(&Challenge{}).Where("is_active = ?", true).Count(&count)
	return count, result.Error
}
