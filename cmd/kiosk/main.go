package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"rollcall/internal/attendance"
	"rollcall/internal/config"
)

// Kiosk is a check-in station. It reads session codes from stdin, either
// typed on a keyboard or emitted by a barcode scanner in keyboard-wedge
// mode, and submits them to the attendance API with the student token
// from KIOSK_TOKEN. Between submissions the registration flow suppresses
// repeat scans and holds the result on screen long enough to be read.
func main() {
	cfg := config.Load()

	token := os.Getenv("KIOSK_TOKEN")
	if token == "" {
		log.Fatal("KIOSK_TOKEN is required (a student access token)")
	}

	flow := attendance.NewFlow(cfg.SuccessDwell, cfg.FailureDwell)
	client := &http.Client{Timeout: 10 * time.Second}
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/v1/attendance"

	fmt.Println("ready: scan or type a session code")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		begin, ok := flow.Begin()
		if !ok {
			state, msg := flow.State()
			fmt.Printf("please wait (%s)\n", describe(state, msg))
			continue
		}

		code, ok := attendance.ExtractCode(line)
		if !ok {
			flow.Fail(begin, "no session code in input")
		} else {
			name, err := submit(client, endpoint, token, code)
			if err != nil {
				flow.Fail(begin, err.Error())
			} else {
				flow.Succeed(begin, "checked in: "+name)
			}
		}

		state, msg := flow.State()
		fmt.Println(describe(state, msg))
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read failed: %v", err)
	}
}

func submit(client *http.Client, endpoint, token, code string) (string, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		SessionName string `json:"session_name"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("bad response (%d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusCreated {
		if payload.Error != "" {
			return "", fmt.Errorf("%s", payload.Error)
		}
		return "", fmt.Errorf("request failed (%d)", resp.StatusCode)
	}
	return payload.SessionName, nil
}

func describe(state attendance.FlowState, msg string) string {
	switch state {
	case attendance.FlowSubmitting:
		return "submitting"
	case attendance.FlowSuccess:
		return "OK: " + msg
	case attendance.FlowFailure:
		return "FAILED: " + msg
	default:
		return "ready"
	}
}
