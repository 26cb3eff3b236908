package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/code-100-precent/LingReactive/pkg/logger"
	"github.com/code-100-precent/LingReactive/pkg/reactive"
)

// streamd is a small demonstration server: a ticker stream served over SSE,
// a websocket echo wired through a subject, and prometheus metrics for both.
func main() {
	if err := logger.Init(&logger.LogConfig{Level: env("LOG_LEVEL", "info")}, env("MODE", "dev")); err != nil {
		panic(err)
	}
	lg := logger.L()

	registry := prometheus.NewRegistry()
	metrics := reactive.NewMetrics(registry)

	bag := reactive.NewCancelBag()
	defer bag.Close()

	echo := reactive.NewPassthroughSubject[[]byte]()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	router := gin.New()
	router.Use(gin.Recovery())

	// Every client gets the shared tick stream, formatted and paced by SSE
	// demand.
	ticks := reactive.Map(
		reactive.Interval(time.Duration(cast.ToInt(env("TICK_MS", "1000")))*time.Millisecond),
		func(t time.Time) gin.H { return gin.H{"now": t.Format(time.RFC3339Nano)} },
	)
	router.GET("/events", reactive.SSEHandler(func(*gin.Context) reactive.Publisher[gin.H] {
		return reactive.Observe(metrics, "events", ticks)
	}))

	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			lg.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		inbound := reactive.Observe(metrics, "ws_in", reactive.FromConn(conn))
		inbound.Subscribe(reactive.NewSink(echo.Send, func(reactive.Completion) { conn.Close() }))
		echo.Subscribe(reactive.ToConn(conn))
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	addr := env("ADDR", ":8080")
	go func() {
		if err := router.Run(addr); err != nil {
			lg.Fatal("server stopped", zap.Error(err))
		}
	}()
	lg.Info("streamd listening", zap.String("addr", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	echo.SendCompletion(reactive.Finished())
	lg.Info("streamd shutting down")
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
