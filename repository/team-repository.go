package repository

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Team struct {
	Id               int            `gorm:"primaryKey"`
	Name             string         `gorm:"not null;unique"`
	Email            string         `gorm:"not null;unique"`
	Password         string         `gorm:"not null"`
	Members          pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	GithubLogin      *string        `gorm:"null"`
	Points           int            `gorm:"not null;default:0"`
	CurrentChallenge int            `gorm:"not null;default:0"`
	CreatedAt        time.Time      `gorm:"not null;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"not null;autoUpdateTime"`
}

type TeamRepository struct {
	DB *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{DB: db}
}

func (r *TeamRepository) GetTeamById(teamId int) (*Team, error) {
	var team Team
	result := r.DB.First(&team, teamId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &team, nil
}

func (r *TeamRepository) GetTeamByEmail(email string) (*Team, error) {
	var team Team
	result := r.DB.First(&team, "email = ?", email)
	if result.Error != nil {
		return nil, result.Error
	}
	return &team, nil
}

func (r *TeamRepository) GetTeamByNameOrEmail(name string, email string) (*Team, error) {
	var team Team
	result := r.DB.First(&team, "name = ? OR email = ?", name, email)
	if result.Error != nil {
		return nil, result.Error
	}
	return &team, nil
}

func (r *TeamRepository) Save(team *Team) (*Team, error) {
	result := r.DB.Save(team)
	if result.Error != nil {
		return nil, result.Error
	}
	return team, nil
}

func (r *TeamRepository) Delete(teamId int) error {
	result := r.DB.Delete(Team{}, teamId)
	return result.Error
}

func (r *TeamRepository) FindAll() ([]*Team, error) {
	var teams []*Team
	result := r.DB.Order("points desc").Find(&teams)
	if result.Error != nil {
		return nil, result.Error
	}
	return teams, nil
}

// GetLeaderboard orders by points descending, with registration time as
// tiebreaker so earlier teams rank first on equal score.
func (r *TeamRepository) GetLeaderboard(limit int) ([]*Team, error) {
	var teams []*Team
	query := r.DB.Order("points desc").Order("created_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&teams)
	if result.Error != nil {
		return nil, result.Error
	}
	return teams, nil
}

func (r *TeamRepository) Search(search string, sortBy string, order string, page int, limit int) ([]*Team, int64, error) {
	query := r.DB.Model(&Team{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var teams []*Team
	result := query.Order(sortBy + " " + order).Offset((page - 1) * limit).Limit(limit).Find(&teams)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return teams, total, nil
}

func (r *TeamRepository) Count() (int64, error) {
	var count int64
	result := r.DB.Model(&Team{}).Count(&count)
	return count, result.Error
}

func (r *TeamRepository) CountRegisteredSince(since time.Time) ([]*Team, error) {
	var teams []*Team
	result := r.DB.Select("created_at").Find(&teams, "created_at >= ?", since)
	if result.Error != nil {
		return nil, result.Error
	}
	return teams, nil
}

// AwardChallenge is the shared score/pointer transition. It persists the
// submission and, if the team has no earlier accepted submission of the same
// type for this challenge, bumps the team score and challenge pointer. The
// team row is locked FOR UPDATE first, so concurrent duplicate submissions
// serialize on it and the second transaction sees the first one's accepted
// row instead of double-awarding.
func (r *TeamRepository) AwardChallenge(submission *Submission, points int) (bool, error) {
	awarded := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var team Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&team, submission.TeamId).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&Submission{}).
			Where("team_id = ? AND challenge_id = ? AND type = ? AND status = ?",
				submission.TeamId, submission.ChallengeId, submission.Type, StatusAccepted).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			// already awarded for this (team, challenge, type); keep the
			// row for history but record that it granted nothing
			submission.Points = 0
			return tx.Save(submission).Error
		}
		if err := tx.Save(submission).Error; err != nil {
			return err
		}
		result := tx.Model(&Team{}).Where("id = ?", submission.TeamId).
			Updates(map[string]any{
				"points":            gorm.Expr("points + ?", points),
				"current_challenge": gorm.Expr("current_challenge + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		awarded = true
		return nil
	})
	return awarded, err
}
