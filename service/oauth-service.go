package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"oasis/app_error"
	"oasis/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gorm.io/gorm"
)

type OauthState struct {
	TeamId   int
	Timeout  int64
	Redirect string
}

// OauthService links a team to its GitHub account, which is where buildathon
// repositories live.
type OauthService struct {
	config      *oauth2.Config
	mu          sync.Mutex
	stateMap    map[string]OauthState
	teamService *TeamService
}

func NewOauthService(db *gorm.DB) *OauthService {
	cfg := config.Env()
	return &OauthService{
		config: &oauth2.Config{
			ClientID:     cfg.GithubClientID,
			ClientSecret: cfg.GithubClientSecret,
			RedirectURL:  cfg.GithubRedirectURL,
			Scopes:       []string{"read:user"},
			Endpoint:     github.Endpoint,
		},
		stateMap:    make(map[string]OauthState),
		teamService: NewTeamService(db),
	}
}

type GithubUserResponse struct {
	Id        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarUrl string `json:"avatar_url"`
	HtmlUrl   string `json:"html_url"`
}

func (e *OauthService) GetRedirectUrl(teamId int, redirect string) (string, error) {
	stateBytes := make([]byte, 32)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(stateBytes)
	e.mu.Lock()
	// expire stale states while we hold the lock
	for key, value := range e.stateMap {
		if value.Timeout < time.Now().Unix() {
			delete(e.stateMap, key)
		}
	}
	e.stateMap[state] = OauthState{
		TeamId:   teamId,
		Timeout:  time.Now().Add(5 * time.Minute).Unix(),
		Redirect: redirect,
	}
	e.mu.Unlock()
	return e.config.AuthCodeURL(state), nil
}

func (e *OauthService) HandleCallback(ctx context.Context, code string, state string) (string, error) {
	e.mu.Lock()
	oauthState, ok := e.stateMap[state]
	delete(e.stateMap, state)
	e.mu.Unlock()
	if !ok || oauthState.Timeout < time.Now().Unix() {
		return "", app_error.New(fmt.Errorf("invalid or expired oauth state"), http.StatusBadRequest)
	}

	token, err := e.config.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	githubUser, err := e.fetchGithubUser(ctx, token)
	if err != nil {
		return "", err
	}
	if _, err := e.teamService.SetGithubLogin(oauthState.TeamId, githubUser.Login); err != nil {
		return "", err
	}
	return oauthState.Redirect, nil
}

func (e *OauthService) fetchGithubUser(ctx context.Context, token *oauth2.Token) (*GithubUserResponse, error) {
	httpClient := e.config.Client(ctx, token)
	request, err := http.NewRequestWithContext(ctx, "GET", "https://api.github.com/user", nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/vnd.github+json")
	response, err := httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	githubUser := &GithubUserResponse{}
	if err := json.Unmarshal(body, githubUser); err != nil {
		return nil, err
	}
	if githubUser.Login == "" {
		return nil, fmt.Errorf("could not resolve github user")
	}
	return githubUser, nil
}
