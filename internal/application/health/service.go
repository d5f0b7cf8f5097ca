// Package health collects the request stats, dependency checks and runtime
// figures shown on the status page.
package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"hatchery-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 2 * time.Second

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// WorkspaceCounter reports how many grid workspaces are open.
type WorkspaceCounter interface {
	Len() int
}

// Sources are the dependencies CollectHealth inspects. Any may be nil.
type Sources struct {
	Redis *redis.Client
	DB    DBPinger
	Grid  WorkspaceCounter
}

type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Grid         GridInfo             `json:"grid"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int                     `json:"totalRequests"`
	SuccessCount    int                     `json:"successCount"`
	FailedCount     int                     `json:"failedCount"`
	SuccessRate     string                  `json:"successRate"`
	AvgResponseTime string                  `json:"avgResponseTime"`
	LastRequest     *middleware.LastRequest `json:"lastRequest"`
}

type GridInfo struct {
	OpenWorkspaces int `json:"openWorkspaces"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// CollectHealth pings the database and Redis concurrently and reads the request
// stats HealthMarker keeps in Redis. Status is "ok" only when both are connected.
func CollectHealth(ctx context.Context, src Sources) CollectResult {
	var db, cache DepStatus
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		db = ping(gctx, src.DB != nil, func(ctx context.Context) error { return src.DB.PingContext(ctx) })
		return nil
	})
	g.Go(func() error {
		cache = ping(gctx, src.Redis != nil, func(ctx context.Context) error { return src.Redis.Ping(ctx).Err() })
		return nil
	})
	_ = g.Wait()

	startMs := time.Now().UnixMilli()
	traffic := TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"}
	if cache.Status == "connected" {
		traffic, startMs = readTraffic(ctx, src.Redis, startMs)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}

	result := CollectResult{
		Status: "issue",
		Runtime: RuntimeInfo{
			UptimeSeconds: uptime,
			Memory:        MemoryInfo{Alloc: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
			Goroutines:    runtime.NumGoroutine(),
			Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
			GoVersion:     runtime.Version(),
		},
		Traffic:      traffic,
		Dependencies: map[string]DepStatus{"database": db, "redis": cache},
	}
	if src.Grid != nil {
		result.Grid.OpenWorkspaces = src.Grid.Len()
	}
	if db.Status == "connected" && cache.Status == "connected" {
		result.Status = "ok"
	}
	return result
}

func ping(ctx context.Context, present bool, fn func(context.Context) error) DepStatus {
	if !present {
		return DepStatus{Status: "disconnected"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	start := time.Now()
	if err := fn(ctx); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// readTraffic derives the traffic block from the stat keys. A missing start time is
// initialised to now.
func readTraffic(ctx context.Context, rdb *redis.Client, nowMs int64) (TrafficInfo, int64) {
	stats := TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"}
	vals, err := rdb.MGet(ctx, middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq).Result()
	if err != nil {
		return stats, nowMs
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	startMs := nowMs
	if t, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startMs = t
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, nowMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	if n, _ := strconv.Atoi(str(3)); n > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(n), 'f', 2, 64)
	}
	if s := str(5); s != "" {
		var last middleware.LastRequest
		if json.Unmarshal([]byte(s), &last) == nil {
			stats.LastRequest = &last
		}
	}
	return stats, startMs
}
