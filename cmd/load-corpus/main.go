// Command load-corpus pushes a legal corpus file into a running engine
// through the init_legal_laws endpoint.
//
// Usage:
//
//	load-corpus -file corpus.txt [-collection legal_laws_guidelines] [-url http://localhost:8080]
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load("../../.env")
	}

	var (
		filePath   = flag.String("file", "", "Path to the corpus text file (required)")
		collection = flag.String("collection", "", "Target collection name (default: server default)")
		baseURL    = flag.String("url", "", "Engine base URL (default: http://localhost:PORT)")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	text, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read corpus file: %v", err)
	}

	url := *baseURL
	if url == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		url = "http://localhost:" + port
	}

	payload, err := json.Marshal(map[string]string{
		"legal_text":      string(text),
		"collection_name": *collection,
	})
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url+"/api/ai/init_legal_laws", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("API_KEY"); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	// Ingestion embeds every chunk, so allow the server its full window.
	client := &http.Client{Timeout: 3 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Server returned %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Message         string `json:"message"`
		CollectionName  string `json:"collection_name"`
		ChunksProcessed int    `json:"chunks_processed"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}

	fmt.Printf("✅ %s\n", result.Message)
	fmt.Printf("   Collection: %s\n", result.CollectionName)
	fmt.Printf("   Chunks: %d\n", result.ChunksProcessed)
}
