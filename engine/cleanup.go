package engine

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeSchedules starts the cron jobs (currently just session cleanup)
func (serverHandler *ServerHandler) InitializeSchedules() *cron.Cron {
	c := cron.New()

	var cleanupJob cron.Job
	cleanupJob = cron.FuncJob(func() { serverHandler.cleanupJobFunc() })
	cleanupJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cleanupJob) //ensure we don't kick off another if old one is still running
	c.AddJob(fmt.Sprintf("@every %dm", serverHandler.ServerConfig.CleanupInterval), cleanupJob)

	Logger.Info("Adding session cleanup scheduler", "interval_minutes", serverHandler.ServerConfig.CleanupInterval)
	c.Start()
	return c
}

// cleanupJobFunc closes viewer sessions that sat idle past their TTL so
// decode handles and staged files don't pile up.
func (serverHandler *ServerHandler) cleanupJobFunc() {
	ttl := time.Duration(serverHandler.ServerConfig.SessionTTL) * time.Minute
	closed := serverHandler.Sessions.CloseIdle(ttl)
	if closed > 0 {
		Logger.Info("Closed idle viewer sessions", "count", closed)
	}
}
