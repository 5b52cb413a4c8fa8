package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pomai-cache/corekv/internal/cache"
	"github.com/pomai-cache/corekv/internal/httpapi"
	"github.com/pomai-cache/corekv/internal/usage"
)

const (
	Version     = "0.1.0"
	ServiceName = "corekv"
)

// Config is the process-level configuration, loaded once at startup
// from the environment.
type Config struct {
	Port int

	MaxMemoryBytes     int64
	EvictionPolicy     string
	EvictionSampleSize int
	MemberSetCap       int

	ActiveExpireInterval time.Duration
	DecayInterval        time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	printBanner(cfg)

	c := cache.New(cacheConfigFrom(cfg))
	defer c.Shutdown()

	srv := httpapi.NewServer(c, httpapi.Config{
		Port:         cfg.Port,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	})

	go func() {
		log.Printf("HTTP server starting on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	gracefulShutdown(cfg, srv, c)
}

func cacheConfigFrom(cfg *Config) cache.Config {
	policy := usage.LRU
	if cfg.EvictionPolicy == "lfu" {
		policy = usage.LFU
	}
	return cache.Config{
		MaxMemory:            cfg.MaxMemoryBytes,
		EvictionPolicy:       policy,
		EvictionSampleSize:   cfg.EvictionSampleSize,
		MemberSetCap:         cfg.MemberSetCap,
		ActiveExpireInterval: cfg.ActiveExpireInterval,
		DecayInterval:        cfg.DecayInterval,
	}
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		Port: getenvInt("CACHE_PORT", 7379),

		MaxMemoryBytes:     int64(getenvInt("CACHE_MAX_MEMORY_BYTES", 0)),
		EvictionPolicy:     getenv("CACHE_EVICTION_POLICY", "lru"),
		EvictionSampleSize: getenvInt("CACHE_EVICTION_SAMPLE_SIZE", cache.DefaultEvictionSampleSize),
		MemberSetCap:       getenvInt("CACHE_MEMBERSET_CAP", cache.DefaultMemberSetCap),

		ActiveExpireInterval: getenvDuration("CACHE_ACTIVE_EXPIRE_INTERVAL", 200*time.Millisecond),
		DecayInterval:        getenvDuration("CACHE_DECAY_INTERVAL", 60*time.Second),

		HTTPReadTimeout:  getenvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: getenvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  getenvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:  getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("CACHE_PORT must be 1-65535, got %d", cfg.Port)
	}
	if cfg.MaxMemoryBytes < 0 {
		return fmt.Errorf("CACHE_MAX_MEMORY_BYTES cannot be negative")
	}
	if cfg.EvictionPolicy != "lru" && cfg.EvictionPolicy != "lfu" {
		return fmt.Errorf("CACHE_EVICTION_POLICY must be 'lru' or 'lfu', got %q", cfg.EvictionPolicy)
	}
	return nil
}

func printBanner(cfg *Config) {
	banner := `
========================================
   %s v%s
========================================
  In-process, memory-bounded KV cache

System:
  Go:             %s
  CPU:            %d cores
  Platform:       %s/%s

Config:
  HTTP:           :%d
  Max memory:     %s
  Eviction:       %s

Endpoints:
  Health:         http://localhost:%d/health
  Stats:          http://localhost:%d/stats
  Metrics:        http://localhost:%d/metrics
========================================
`
	maxMem := "Unlimited"
	if cfg.MaxMemoryBytes > 0 {
		maxMem = formatBytes(cfg.MaxMemoryBytes)
	}
	fmt.Printf(banner,
		ServiceName, Version,
		runtime.Version(), runtime.NumCPU(), runtime.GOOS, runtime.GOARCH,
		cfg.Port, maxMem, cfg.EvictionPolicy,
		cfg.Port, cfg.Port, cfg.Port,
	)
}

func gracefulShutdown(cfg *Config, srv *httpapi.Server, c *cache.Cache) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	sig := <-sigCh
	log.Printf("signal received: %v, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	c.Shutdown()

	log.Println("shutdown complete")
}

func getenv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getenvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func formatBytes(n int64) string {
	if n == 0 {
		return "0 B"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for x := n / unit; x >= unit; x /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
