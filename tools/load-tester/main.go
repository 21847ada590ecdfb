package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type upload struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// generate builds a random execution: each step either logs locally on one
// host or sends a message between two hosts, keeping vector clocks valid.
func generate(hosts, steps int) []string {
	names := make([]string, hosts)
	clocks := make([]map[string]int, hosts)
	for i := range names {
		names[i] = fmt.Sprintf("host%d", i)
		clocks[i] = map[string]int{}
	}
	emit := func(lines []string, h int, text string) []string {
		clocks[h][names[h]]++
		b, _ := json.Marshal(clocks[h])
		return append(lines, text, names[h]+" "+string(b))
	}

	var lines []string
	for s := 0; s < steps; s++ {
		from := rand.IntN(hosts)
		if hosts < 2 || rand.IntN(3) == 0 {
			lines = emit(lines, from, fmt.Sprintf("local step=%d", s))
			continue
		}
		to := (from + 1 + rand.IntN(hosts-1)) % hosts
		lines = emit(lines, from, fmt.Sprintf("send step=%d to=%s", s, names[to]))
		for k, v := range clocks[from] {
			if v > clocks[to][k] {
				clocks[to][k] = v
			}
		}
		lines = emit(lines, to, fmt.Sprintf("recv step=%d from=%s", s, names[from]))
	}
	return lines
}

func main() {
	targetURL := flag.String("url", "http://localhost:8080/executions", "Target URL for execution uploads")
	apiKey := flag.String("api-key", "supersecretkey", "API Key for authentication")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 50, "Requests per second limit")
	hosts := flag.Int("hosts", 4, "Hosts per generated execution")
	steps := flag.Int("steps", 200, "Steps per generated execution")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d, Hosts: %d, Steps: %d",
		*concurrency, *duration, *rps, *hosts, *steps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 10)

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 10 * time.Second,
			}

			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				payload, err := json.Marshal(upload{
					Name:  fmt.Sprintf("load-%d-%s", workerID, uuid.NewString()),
					Lines: generate(*hosts, *steps),
				})
				if err != nil {
					continue
				}

				req, err := http.NewRequestWithContext(ctx, http.MethodPost, *targetURL, bytes.NewReader(payload))
				if err != nil {
					continue
				}
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-API-Key", *apiKey)

				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					errorCount.Add(1)
					continue
				}

				if resp.StatusCode == http.StatusCreated {
					successCount.Add(1)
				} else {
					errorCount.Add(1)
				}
				resp.Body.Close()
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (201 Created): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
