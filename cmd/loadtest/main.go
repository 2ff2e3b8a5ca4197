package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"
	"golang.org/x/time/rate"
)

var (
	serverAddr      = flag.String("addr", "http://localhost:3000", "HTTP server address")
	numWorkers      = flag.Int("workers", 50, "Number of concurrent workers")
	ordersPerWorker = flag.Int("orders", 200, "Orders submitted per worker")
	maxRPS          = flag.Int("rps", 1000, "Request rate limit across all workers")
)

type createOrderRequest struct {
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	UserID    string  `json:"user_id"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type,omitempty"`
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, cleaning up...")
		cancel()
	}()

	client := &http.Client{Timeout: 5 * time.Second}

	// Latency from request write to response read, in microseconds.
	hist := hdrhistogram.New(1, 10_000_000, 3)
	var histMu sync.Mutex

	limiter := rate.NewLimiter(rate.Limit(*maxRPS), *maxRPS)
	var wg sync.WaitGroup
	var sent, failed atomic.Int64

	total := *numWorkers * *ordersPerWorker
	log.Printf("Starting %d workers, %d orders per worker against %s...", *numWorkers, *ordersPerWorker, *serverAddr)
	start := time.Now()

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for j := 0; j < *ordersPerWorker; j++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				reqStart := time.Now()
				err := submitOrder(ctx, client, generateRandomOrder(r, workerID))
				elapsed := time.Since(reqStart)

				sent.Add(1)
				if err != nil {
					failed.Add(1)
					continue
				}

				histMu.Lock()
				hist.RecordValue(elapsed.Microseconds())
				histMu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	duration := time.Since(start)

	printResults(total, sent.Load(), failed.Load(), duration, hist)

	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func submitOrder(ctx context.Context, client *http.Client, order createOrderRequest) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *serverAddr+"/order", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body createOrderResponse
	return json.NewDecoder(resp.Body).Decode(&body)
}

// generateRandomOrder keeps prices inside a narrow band so a healthy
// share of orders actually cross.
func generateRandomOrder(r *rand.Rand, workerID int) createOrderRequest {
	side := "Buy"
	if r.Float64() < 0.5 {
		side = "Sell"
	}

	return createOrderRequest{
		Price:    100.0 + float64(r.Intn(11)-5),
		Quantity: 1.0 + r.Float64()*9.0,
		UserID:   fmt.Sprintf("loadtest-%d", workerID),
		Side:     side,
	}
}

func printResults(total int, sent, failed int64, duration time.Duration, hist *hdrhistogram.Histogram) {
	green := color.New(color.FgGreen).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	cyan := color.New(color.FgCyan).SprintfFunc()

	log.Printf("Load test completed in %v", duration)
	log.Printf("Orders attempted: %s", cyan("%d", total))
	log.Printf("Orders sent:      %s", green("%d", sent))
	if failed > 0 {
		log.Printf("Orders failed:    %s", red("%d", failed))
	}
	log.Printf("Throughput:       %s orders/sec", cyan("%.0f", float64(sent)/duration.Seconds()))

	log.Printf("Latency p50:  %s", cyan("%.2fms", float64(hist.ValueAtQuantile(50))/1000))
	log.Printf("Latency p95:  %s", cyan("%.2fms", float64(hist.ValueAtQuantile(95))/1000))
	log.Printf("Latency p99:  %s", cyan("%.2fms", float64(hist.ValueAtQuantile(99))/1000))
	log.Printf("Latency max:  %s", cyan("%.2fms", float64(hist.Max())/1000))
}
