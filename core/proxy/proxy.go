// Package proxy serves the HTTP status surface in front of the upstream
// RPC node.
package proxy

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quantalab/mirrorbridge/core/logging"
	"github.com/quantalab/mirrorbridge/core/metrics"
	"github.com/quantalab/mirrorbridge/core/rpc"
)

// Bind address environment variables and their defaults.
const (
	EnvHost     = "HOST"
	EnvPort     = "PORT"
	DefaultHost = "0.0.0.0"
	DefaultPort = "8080"
)

// BindAddrFromEnv resolves the listen address from HOST/PORT.
func BindAddrFromEnv() string {
	host := os.Getenv(EnvHost)
	if host == "" {
		host = DefaultHost
	}
	port := os.Getenv(EnvPort)
	if port == "" {
		port = DefaultPort
	}
	return host + ":" + port
}

// Server owns the gin engine and the upstream client.
type Server struct {
	client *rpc.Client
	engine *gin.Engine
	log    zerolog.Logger
}

// NewServer wires the routes onto a fresh engine. Every response, success
// or failure, is CORS-open.
func NewServer(client *rpc.Client) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type"},
	}))

	s := &Server{
		client: client,
		engine: engine,
		log:    logging.For("proxy"),
	}

	engine.GET("/status", s.handleStatus)
	engine.GET("/height", s.handleHeight)
	engine.GET("/sync", s.handleSync)
	engine.GET("/peers", s.handlePeers)
	engine.GET("/latency", s.handleLatency)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.NoRoute(func(c *gin.Context) {
		metrics.ObserveProxyRequest(c.Request.URL.Path, strconv.Itoa(http.StatusNotFound))
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "endpoint not found"})
	})

	return s
}

// Handler exposes the engine for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("status proxy listening")
	return s.engine.Run(addr)
}

func (s *Server) fail(c *gin.Context, route string, err error) {
	s.log.Warn().Str("route", route).Err(err).Msg("route failed")
	metrics.ObserveProxyRequest(route, strconv.Itoa(http.StatusServiceUnavailable))
	c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
}

func (s *Server) ok(c *gin.Context, route string, body gin.H) {
	metrics.ObserveProxyRequest(route, strconv.Itoa(http.StatusOK))
	body["ok"] = true
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleStatus(c *gin.Context) {
	chain, chainLatency, err := s.client.GetBlockchainInfo(c.Request.Context())
	if err != nil {
		s.fail(c, "/status", err)
		return
	}
	network, netLatency, err := s.client.GetNetworkInfo(c.Request.Context())
	if err != nil {
		s.fail(c, "/status", err)
		return
	}
	latency := chainLatency
	if netLatency > latency {
		latency = netLatency
	}
	s.ok(c, "/status", gin.H{
		"blockHeight":         chain.Blocks,
		"syncProgress":        chain.VerificationProgress,
		"syncProgressPercent": chain.VerificationProgress * 100,
		"peerCount":           network.Connections,
		"latencyMs":           toMillis(latency),
	})
}

func (s *Server) handleHeight(c *gin.Context) {
	chain, _, err := s.client.GetBlockchainInfo(c.Request.Context())
	if err != nil {
		s.fail(c, "/height", err)
		return
	}
	s.ok(c, "/height", gin.H{"blockHeight": chain.Blocks})
}

func (s *Server) handleSync(c *gin.Context) {
	chain, _, err := s.client.GetBlockchainInfo(c.Request.Context())
	if err != nil {
		s.fail(c, "/sync", err)
		return
	}
	s.ok(c, "/sync", gin.H{
		"syncProgress":        chain.VerificationProgress,
		"syncProgressPercent": chain.VerificationProgress * 100,
	})
}

func (s *Server) handlePeers(c *gin.Context) {
	network, _, err := s.client.GetNetworkInfo(c.Request.Context())
	if err != nil {
		s.fail(c, "/peers", err)
		return
	}
	s.ok(c, "/peers", gin.H{"peerCount": network.Connections})
}

func (s *Server) handleLatency(c *gin.Context) {
	_, latency, err := s.client.GetNetworkInfo(c.Request.Context())
	if err != nil {
		s.fail(c, "/latency", err)
		return
	}
	s.ok(c, "/latency", gin.H{"latencyMs": toMillis(latency)})
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
