package service

import (
	"fmt"

	"oasis/auth"
	"oasis/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUsernameTaken = fmt.Errorf("admin with this username already exists")

type AdminService struct {
	adminRepository      *repository.AdminRepository
	teamRepository       *repository.TeamRepository
	challengeRepository  *repository.ChallengeRepository
	submissionRepository *repository.SubmissionRepository
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{
		adminRepository:      repository.NewAdminRepository(db),
		teamRepository:       repository.NewTeamRepository(db),
		challengeRepository:  repository.NewChallengeRepository(db),
		submissionRepository: repository.NewSubmissionRepository(db),
	}
}

func (e *AdminService) Login(username string, password string) (*repository.Admin, string, error) {
	admin, err := e.adminRepository.GetAdminByUsername(username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := e.adminRepository.TouchLastLogin(admin.Id); err != nil {
		return nil, "", err
	}
	token, err := auth.CreateToken(admin.Id, auth.RoleAdmin, admin.Username)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

func (e *AdminService) CreateAdmin(username string, password string, email string, fullName string) (*repository.Admin, error) {
	if _, err := e.adminRepository.GetAdminByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &repository.Admin{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: string(hashed),
		IsActive: true,
	}
	return e.adminRepository.Save(admin)
}

func (e *AdminService) ListAdmins() ([]*repository.Admin, error) {
	return e.adminRepository.FindAll()
}

// SetAdminActive flips the activation flag. Deactivated admins keep their row
// and history but cannot log in.
func (e *AdminService) SetAdminActive(username string, active bool) (*repository.Admin, error) {
	admin, err := e.adminRepository.GetAdminByUsername(username)
	if err != nil {
		return nil, err
	}
	admin.IsActive = active
	return e.adminRepository.Save(admin)
}

func (e *AdminService) ResetAdminPassword(username string, newPassword string) (*repository.Admin, error) {
	admin, err := e.adminRepository.GetAdminByUsername(username)
	if err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, err
	}
	admin.Password = string(hashed)
	return e.adminRepository.Save(admin)
}

type DashboardStats struct {
	TotalTeams         int64
	ActiveChallenges   int64
	TotalSubmissions   int64
	Leaderboard        []*repository.Team
	SubmissionsByType  []*repository.TypeCount
	RecentActivity     []*repository.Submission
	RegistrationsByDay map[string]int
}

func (e *AdminService) GetDashboard() (*DashboardStats, error) {
	totalTeams, err := e.teamRepository.Count()
	if err != nil {
		return nil, err
	}
	activeChallenges, err := e.challengeRepository.CountActive()
	if err != nil {
		return nil, err
	}
	totalSubmissions, err := e.submissionRepository.Count()
	if err != nil {
		return nil, err
	}
	leaderboard, err := e.teamRepository.GetLeaderboard(10)
	if err != nil {
		return nil, err
	}
	byType, err := e.submissionRepository.CountByType()
	if err != nil {
		return nil, err
	}
	recent, err := e.submissionRepository.GetRecent(10)
	if err != nil {
		return nil, err
	}
	registrations, err := NewTeamService(e.teamRepository.DB).RegistrationsByDay(7)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalTeams:         totalTeams,
		ActiveChallenges:   activeChallenges,
		TotalSubmissions:   totalSubmissions,
		Leaderboard:        leaderboard,
		SubmissionsByType:  byType,
		RecentActivity:     recent,
		RegistrationsByDay: registrations,
	}, nil
}

type AnalyticsOverview struct {
	TotalTeams       int64
	ActiveChallenges int64
	TotalSubmissions int64
	CompletionRate   int
	TopTeams         []*repository.Team
}

func (e *AdminService) GetAnalytics() (*AnalyticsOverview, error) {
	totalTeams, err := e.teamRepository.Count()
	if err != nil {
		return nil, err
	}
	activeChallenges, err := e.challengeRepository.CountActive()
	if err != nil {
		return nil, err
	}
	totalSubmissions, err := e.submissionRepository.Count()
	if err != nil {
		return nil, err
	}
	accepted, err := e.submissionRepository.CountByStatus(repository.StatusAccepted)
	if err != nil {
		return nil, err
	}
	completionRate := 0
	if totalSubmissions > 0 {
		completionRate = int(float64(accepted)/float64(totalSubmissions)*100 + 0.5)
	}
	topTeams, err := e.teamRepository.GetLeaderboard(5)
	if err != nil {
		return nil, err
	}
	return &AnalyticsOverview{
		TotalTeams:       totalTeams,
		ActiveChallenges: activeChallenges,
		TotalSubmissions: totalSubmissions,
		CompletionRate:   completionRate,
		TopTeams:         topTeams,
	}, nil
}
