// Command client is a small CLI against the order book HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	serverAddr = flag.String("addr", "http://localhost:3000", "The server address")
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Remove the command from os.Args to make flag parsing work
	os.Args = append(os.Args[:1], os.Args[2:]...)

	client := &http.Client{Timeout: 10 * time.Second}

	switch command {
	case "create-order":
		createOrder(client)
	case "cancel-order":
		cancelOrder(client)
	case "depth":
		if err := printDepth(client); err != nil {
			log.Fatal().Err(err).Msg("Depth failed")
		}
	case "stats":
		printStats(client)
	case "health":
		printHealth(client)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func doRequest(client *http.Client, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, *serverAddr+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func createOrder(client *http.Client) {
	side := flag.String("side", "", "Order side (Buy/Sell)")
	orderType := flag.String("type", "Limit", "Order type (Limit/Market)")
	quantity := flag.Float64("qty", 0, "Order quantity")
	price := flag.Float64("price", 0, "Order price")
	userID := flag.String("user", "", "User ID")
	flag.Parse()

	if *side == "" || *quantity == 0 || *userID == "" {
		fmt.Println("Usage: create-order --side=Buy|Sell --qty=<quantity> --price=<price> --user=<user_id> [--type=Limit|Market]")
		os.Exit(1)
	}

	req := map[string]any{
		"price":      *price,
		"quantity":   *quantity,
		"user_id":    *userID,
		"side":       *side,
		"order_type": *orderType,
	}

	var resp struct {
		OrderID           string  `json:"order_id"`
		Status            string  `json:"status"`
		FilledQuantity    float64 `json:"filled_quantity"`
		RemainingQuantity float64 `json:"remaining_quantity"`
		AveragePrice      float64 `json:"average_price"`
		Fills             []struct {
			Quantity float64 `json:"quantity"`
			Price    float64 `json:"price"`
		} `json:"fills"`
	}
	if err := doRequest(client, http.MethodPost, "/order", req, &resp); err != nil {
		log.Fatal().Err(err).Msg("CreateOrder failed")
	}

	log.Info().
		Str("order_id", resp.OrderID).
		Str("status", resp.Status).
		Float64("filled_quantity", resp.FilledQuantity).
		Float64("remaining_quantity", resp.RemainingQuantity).
		Msg("Created order")

	for i, fill := range resp.Fills {
		log.Info().
			Int("index", i+1).
			Float64("quantity", fill.Quantity).
			Float64("price", fill.Price).
			Msg("Fill")
	}
}

func cancelOrder(client *http.Client) {
	orderID := flag.String("id", "", "Order ID")
	userID := flag.String("user", "", "User ID")
	flag.Parse()

	if *orderID == "" || *userID == "" {
		fmt.Println("Usage: cancel-order --id=<order_id> --user=<user_id>")
		os.Exit(1)
	}

	req := map[string]any{"order_id": *orderID, "user_id": *userID}

	var resp struct {
		Success           bool    `json:"success"`
		RemainingQuantity float64 `json:"remaining_quantity"`
		FilledQuantity    float64 `json:"filled_quantity"`
	}
	if err := doRequest(client, http.MethodDelete, "/order", req, &resp); err != nil {
		log.Fatal().Err(err).Msg("CancelOrder failed")
	}
	if !resp.Success {
		log.Fatal().Str("order_id", *orderID).Msg("Order not found or not owned by user")
	}

	log.Info().
		Str("order_id", *orderID).
		Float64("remaining_quantity", resp.RemainingQuantity).
		Float64("filled_quantity", resp.FilledQuantity).
		Msg("Order canceled")
}

func printDepth(client *http.Client) error {
	levels := flag.Int("levels", 0, "Number of price levels per side")
	flag.Parse()

	path := "/depth"
	if *levels > 0 {
		path += "?levels=" + strconv.Itoa(*levels)
	}

	var resp struct {
		Bids []struct {
			Price    float64 `json:"price"`
			Quantity float64 `json:"quantity"`
		} `json:"bids"`
		Asks []struct {
			Price    float64 `json:"price"`
			Quantity float64 `json:"quantity"`
		} `json:"asks"`
	}
	if err := doRequest(client, http.MethodGet, path, nil, &resp); err != nil {
		return err
	}

	color.NoColor = false
	cyan := color.New(color.FgCyan).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "%15s|%15s|%s\n", cyan("Price"), cyan("Quantity"), cyan("Side"))
	fmt.Fprintf(w, "%15s|%15s|%s\n", "---------------", "---------------", "----")

	// Asks print top-down so the spread sits in the middle.
	for i := len(resp.Asks) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "%15.3f|%15.3f|%s\n", resp.Asks[i].Price, resp.Asks[i].Quantity, red("ASK"))
	}
	fmt.Fprintf(w, "%15s|%15s|%s\n", "---------------", "---------------", "----")
	for _, level := range resp.Bids {
		fmt.Fprintf(w, "%15.3f|%15.3f|%s\n", level.Price, level.Quantity, green("BID"))
	}

	return w.Flush()
}

func printStats(client *http.Client) {
	var resp struct {
		TotalOrdersCreated   uint64   `json:"total_orders_created"`
		TotalOrdersMatched   uint64   `json:"total_orders_matched"`
		TotalOrdersCancelled uint64   `json:"total_orders_cancelled"`
		TotalVolumeTraded    float64  `json:"total_volume_traded"`
		BestBid              *float64 `json:"best_bid"`
		BestAsk              *float64 `json:"best_ask"`
		Spread               *float64 `json:"spread"`
		MidPrice             *float64 `json:"mid_price"`
	}
	if err := doRequest(client, http.MethodGet, "/stats", nil, &resp); err != nil {
		log.Fatal().Err(err).Msg("Stats failed")
	}

	ev := log.Info().
		Uint64("orders_created", resp.TotalOrdersCreated).
		Uint64("orders_matched", resp.TotalOrdersMatched).
		Uint64("orders_cancelled", resp.TotalOrdersCancelled).
		Float64("volume_traded", resp.TotalVolumeTraded)
	if resp.BestBid != nil {
		ev = ev.Float64("best_bid", *resp.BestBid)
	}
	if resp.BestAsk != nil {
		ev = ev.Float64("best_ask", *resp.BestAsk)
	}
	if resp.Spread != nil {
		ev = ev.Float64("spread", *resp.Spread)
	}
	if resp.MidPrice != nil {
		ev = ev.Float64("mid_price", *resp.MidPrice)
	}
	ev.Msg("Book stats")
}

func printHealth(client *http.Client) {
	var resp struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := doRequest(client, http.MethodGet, "/health", nil, &resp); err != nil {
		log.Fatal().Err(err).Msg("Health check failed")
	}
	log.Info().Str("status", resp.Status).Str("service", resp.Service).Msg("Health")
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  create-order --side=Buy|Sell --qty=<quantity> --price=<price> --user=<user_id> [--type=Limit|Market]")
	fmt.Println("  cancel-order --id=<order_id> --user=<user_id>")
	fmt.Println("  depth [--levels=N]")
	fmt.Println("  stats")
	fmt.Println("  health")
	fmt.Println("\nExamples:")
	fmt.Println("  create-order --side=Sell --type=Limit --qty=0.5 --price=100.0 --user=alice")
	fmt.Println("  create-order --side=Buy --type=Market --qty=1.0 --user=bob")
	fmt.Println("  depth --levels=10")
}
