package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
	AudioURL string          `json:"audio_url"`
	Error    string          `json:"error"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server address")
	flag.Parse()

	command := strings.Join(flag.Args(), " ")
	if command == "" {
		command = "Kibena search models"
	}

	body, _ := json.Marshal(map[string]string{"command": command})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *addr+"/api/voice-command", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("bad request %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	fmt.Printf("sending %q\n", command)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("did not connect %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Fatalf("bad response %v", err)
	}
	if env.Error != "" {
		log.Fatalf("server error (HTTP %d): %s", resp.StatusCode, env.Error)
	}

	fmt.Printf("success %v | %s\n", env.Success, env.Message)
	fmt.Printf("response %s\n", env.Response)
	if env.AudioURL != "" {
		fmt.Printf("audio %s%s\n", *addr, env.AudioURL)
	}
}
