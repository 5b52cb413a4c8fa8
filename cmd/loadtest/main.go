// Command loadtest drives the cache's HTTP surface with a mixed
// get/set workload across many concurrent clients, reporting
// throughput and latency percentiles.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

var (
	addr          = flag.String("addr", "http://localhost:7379", "Server address")
	clients       = flag.Int("clients", 20, "Number of concurrent clients")
	requests      = flag.Int("requests", 100000, "Total requests")
	dataSize      = flag.Int("data-size", 128, "Value size in bytes")
	workloadRatio = flag.Float64("ratio", 0.8, "Read ratio (0.0-1.0)")
)

type config struct {
	addr          string
	clients       int
	requests      int
	dataSize      int
	workloadRatio float64
}

type result struct {
	duration   time.Duration
	totalOps   int
	throughput float64
	errors     int64
	latencies  []time.Duration
}

func main() {
	flag.Parse()
	cfg := config{
		addr:          *addr,
		clients:       *clients,
		requests:      *requests,
		dataSize:      *dataSize,
		workloadRatio: *workloadRatio,
	}

	printBanner(cfg)
	warmup(cfg)
	r := run(cfg)
	printResult(r)
}

func printBanner(cfg config) {
	fmt.Println("========================================")
	fmt.Println("   CORE-KV LOAD TEST")
	fmt.Println("========================================")
	fmt.Printf("Server:    %s\n", cfg.addr)
	fmt.Printf("Clients:   %d\n", cfg.clients)
	fmt.Printf("Requests:  %d\n", cfg.requests)
	fmt.Printf("Data size: %d bytes\n", cfg.dataSize)
	fmt.Printf("Read ratio: %.2f\n", cfg.workloadRatio)
	fmt.Println("========================================")
}

func warmup(cfg config) {
	client := &http.Client{Timeout: 5 * time.Second}
	value := make([]byte, cfg.dataSize)
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("warm-%d", i)
		for j := range value {
			value[j] = byte(i % 256)
		}
		doSet(client, cfg.addr, key, value)
	}
}

func run(cfg config) result {
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	var totalErrors atomic.Int64
	var mu sync.Mutex
	allLatencies := make([]time.Duration, 0, cfg.requests)

	perClient := cfg.requests / cfg.clients
	start := time.Now()

	for i := 0; i < cfg.clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runClient(cfg, id, perClient, &totalOps, &totalErrors, &mu, &allLatencies)
		}(i)
	}
	wg.Wait()

	duration := time.Since(start)
	sort.Slice(allLatencies, func(i, j int) bool { return allLatencies[i] < allLatencies[j] })

	return result{
		duration:   duration,
		totalOps:   int(totalOps.Load()),
		throughput: float64(totalOps.Load()) / duration.Seconds(),
		errors:     totalErrors.Load(),
		latencies:  allLatencies,
	}
}

func runClient(cfg config, id, perClient int, totalOps, totalErrors *atomic.Int64, mu *sync.Mutex, allLatencies *[]time.Duration) {
	client := &http.Client{Timeout: 5 * time.Second}
	value := make([]byte, cfg.dataSize)
	local := make([]time.Duration, 0, perClient)

	for i := 0; i < perClient; i++ {
		key := fmt.Sprintf("key-%d-%d", id, i%1000)
		isRead := rand.Float64() < cfg.workloadRatio

		start := time.Now()
		var ok bool
		if isRead {
			ok = doGet(client, cfg.addr, key)
		} else {
			for j := range value {
				value[j] = byte((id + i) % 256)
			}
			ok = doSet(client, cfg.addr, key, value)
		}
		latency := time.Since(start)

		if !ok {
			totalErrors.Add(1)
			continue
		}
		totalOps.Add(1)
		local = append(local, latency)
	}

	mu.Lock()
	*allLatencies = append(*allLatencies, local...)
	mu.Unlock()
}

func doSet(client *http.Client, addr, key string, value []byte) bool {
	body, _ := json.Marshal(map[string]any{"key": key, "value": string(value)})
	resp, err := client.Post(addr+"/set", "application/json", bytes.NewReader(body))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func doGet(client *http.Client, addr, key string) bool {
	resp, err := client.Get(addr + "/get?key=" + key)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func printResult(r result) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Printf("  Duration:    %.3fs\n", r.duration.Seconds())
	fmt.Printf("  Total ops:   %d\n", r.totalOps)
	fmt.Printf("  Throughput:  %d req/s\n", int(r.throughput))
	fmt.Printf("  Errors:      %d\n", r.errors)
	if len(r.latencies) > 0 {
		fmt.Printf("  P50:   %.3f ms\n", percentile(r.latencies, 0.50))
		fmt.Printf("  P90:   %.3f ms\n", percentile(r.latencies, 0.90))
		fmt.Printf("  P99:   %.3f ms\n", percentile(r.latencies, 0.99))
	}
}

func percentile(latencies []time.Duration, p float64) float64 {
	if len(latencies) == 0 {
		return 0
	}
	idx := int(float64(len(latencies)) * p)
	if idx >= len(latencies) {
		idx = len(latencies) - 1
	}
	return float64(latencies[idx]) / 1e6
}
