package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/response"
)

// EnvironmentPinger checks an environment database.
type EnvironmentPinger interface {
	Ping(ctx context.Context, env model.Environment) error
}

// HealthHandler reports the reachability of the backing stores.
type HealthHandler struct {
	pinger EnvironmentPinger
	rdb    *redis.Client
}

// NewHealthHandler creates a new HealthHandler. Either dependency may be nil.
func NewHealthHandler(pinger EnvironmentPinger, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{pinger: pinger, rdb: rdb}
}

// Health godoc
// GET /health
// Always 200; "degraded" when a store is unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	checks := make(map[string]string, len(model.Environments)+1)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = "down"
			return
		}
		checks[name] = "up"
	}

	if h.pinger != nil {
		for _, env := range model.Environments {
			wg.Add(1)
			go func(env model.Environment) {
				defer wg.Done()
				record("mongodb_"+string(env), h.pinger.Ping(ctx, env))
			}(env)
		}
	}
	if h.rdb != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record("redis", h.rdb.Ping(ctx).Err())
		}()
	}
	wg.Wait()

	status := "ok"
	for _, v := range checks {
		if v != "up" {
			status = "degraded"
			break
		}
	}

	response.Success(c, http.StatusOK, gin.H{"status": status, "checks": checks})
}
