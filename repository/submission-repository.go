package repository

import (
	"time"

	"gorm.io/gorm"
)

type SubmissionType = string

const (
	TypeAlgorithmic SubmissionType = "ALGORITHMIC"
	TypeBuildathon  SubmissionType = "BUILDATHON"
)

type SubmissionStatus = string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusAccepted SubmissionStatus = "ACCEPTED"
	StatusRejected SubmissionStatus = "REJECTED"
)

type Submission struct {
	Id            int              `gorm:"primaryKey"`
	TeamId        int              `gorm:"not null;index:idx_submissions_team_challenge;references:teams(id)"`
	ChallengeId   int              `gorm:"not null;index:idx_submissions_team_challenge;references:challenges(id)"`
	Type          SubmissionType   `gorm:"not null"`
	Status        SubmissionStatus `gorm:"not null"`
	Code          string           `gorm:"not null;default:''"`
	LanguageId    int              `gorm:"not null;default:0"`
	FlagSubmitted string           `gorm:"not null;default:''"`
	GithubLink    string           `gorm:"not null;default:''"`
	Output        string           `gorm:"not null;default:''"`
	Points        int              `gorm:"not null;default:0"`
	SubmittedAt   time.Time        `gorm:"not null"`

	Team      *Team      `gorm:"foreignKey:TeamId;constraint:OnDelete:CASCADE;"`
	Challenge *Challenge `gorm:"foreignKey:ChallengeId;constraint:OnDelete:CASCADE;"`
}

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) GetSubmissionById(id int) (*Submission, error) {
	var submission Submission
	result := r.DB.Preload("Team").Preload("Challenge").First(&submission, Submission{Id: id})
	if result.Error != nil {
		return nil, result.Error
	}
	return &submission, nil
}

func (r *SubmissionRepository) SaveSubmission(submission *Submission) (*Submission, error) {
	result := r.DB.Save(submission)
	if result.Error != nil {
		return nil, result.Error
	}
	return submission, nil
}

func (r *SubmissionRepository) GetRecent(limit int) ([]*Submission, error) {
	var submissions []*Submission
	result := r.DB.Preload("Team").Preload("Challenge").
		Order("submitted_at desc").Limit(limit).Find(&submissions)
	if result.Error != nil {
		return nil, result.Error
	}
	return submissions, nil
}

func (r *SubmissionRepository) GetForTeam(teamId int) ([]*Submission, error) {
	var submissions []*Submission
	result := r.DB.Order("submitted_at desc").Find(&submissions, "team_id = ?", teamId)
	if result.Error != nil {
		return nil, result.Error
	}
	return submissions, nil
}

func (r *SubmissionRepository) Count() (int64, error) {
	var count int64
	result := r.DB.Model(&Submission{}).Count(&count)
	return count, result.Error
}

func (r *SubmissionRepository) CountByStatus(status SubmissionStatus) (int64, error) {
	var count int64
	result := r.DB.Model(&Submission{}).Where("status = ?", status).Count(&count)
	return count, result.Error
}

type TypeCount struct {
	Type  SubmissionType
	Count int64
}

func (r *SubmissionRepository) CountByType() ([]*TypeCount, error) {
	var counts []*TypeCount
	result := r.DB.Model(&Submission{}).
		Select("type, count(id) as count").Group("type").Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}

func (r *SubmissionRepository) CountForChallenge(challengeId int) (int64, error) {
	var count int64
	result := r.DB.Model(&Submission{}).Where("challenge_id = ?", challengeId).Count(&count)
	return count, result.Error
}
