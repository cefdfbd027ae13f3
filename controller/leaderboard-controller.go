package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"oasis/repository"
	"oasis/service"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

type LeaderboardController struct {
	teamService *service.TeamService
	mu          sync.Mutex
	connections map[*websocket.Conn]bool
	lastPayload []byte
}

func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	controller := &LeaderboardController{
		teamService: service.NewTeamService(db),
		connections: make(map[*websocket.Conn]bool),
	}
	controller.StartLeaderboardUpdater()
	return controller
}

func setupLeaderboardController(db *gorm.DB, cacheStore persistence.CacheStore) []RouteInfo {
	e := NewLeaderboardController(db)
	basePath := "/leaderboard"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: cache.CachePage(cacheStore, 5*time.Second, e.getLeaderboardHandler())},
		{Method: "GET", Path: "/ws", HandlerFunc: e.webSocketHandler},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// allow any host origin to connect to the websocket
		return true
	},
}

type LeaderboardEntry struct {
	Id               int    `json:"id"`
	Name             string `json:"name"`
	Points           int    `json:"points"`
	CurrentChallenge int    `json:"currentChallenge"`
}

func toLeaderboardEntry(team *repository.Team) *LeaderboardEntry {
	return &LeaderboardEntry{
		Id:               team.Id,
		Name:             team.Name,
		Points:           team.Points,
		CurrentChallenge: team.CurrentChallenge,
	}
}

// @id GetLeaderboard
// @Description Fetches the leaderboard, ordered by points descending
// @Tags leaderboard
// @Produce json
// @Success 200 {array} LeaderboardEntry
// @Router /leaderboard [get]
func (e *LeaderboardController) getLeaderboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := e.teamService.GetLeaderboard(0)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, Map(teams, toLeaderboardEntry))
	}
}

// @id LeaderboardWebSocket
// @Description Websocket for leaderboard updates. Connected clients receive
// @Description the full leaderboard whenever team scores change.
// @Tags leaderboard
// @Success 200 {array} LeaderboardEntry
// @Router /leaderboard/ws [get]
func (e *LeaderboardController) webSocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		http.NotFound(c.Writer, c.Request)
		return
	}
	defer conn.Close()

	// send the current standing to the new subscriber
	e.mu.Lock()
	payload := e.lastPayload
	e.mu.Unlock()
	if payload != nil {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}

	e.mu.Lock()
	e.connections[conn] = true
	e.mu.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			e.mu.Lock()
			delete(e.connections, conn)
			e.mu.Unlock()
			return
		}
	}
}

func (e *LeaderboardController) StartLeaderboardUpdater() {
	go func() {
		for {
			time.Sleep(5 * time.Second)
			e.mu.Lock()
			subscriberCount := len(e.connections)
			e.mu.Unlock()
			if subscriberCount == 0 {
				continue
			}
			teams, err := e.teamService.GetLeaderboard(0)
			if err != nil {
				continue
			}
			payload, err := json.Marshal(Map(teams, toLeaderboardEntry))
			if err != nil {
				continue
			}
			e.mu.Lock()
			if bytes.Equal(payload, e.lastPayload) {
				e.mu.Unlock()
				continue
			}
			e.lastPayload = payload
			for conn := range e.connections {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					delete(e.connections, conn)
				}
			}
			e.mu.Unlock()
		}
	}()
}
