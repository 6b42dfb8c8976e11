package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	return resp, respBytes, err
}

func section(title string) {
	color.Cyan("\n========== %s ==========", title)
}

func check(resp *http.Response, raw []byte, wantStatus int) {
	if resp.StatusCode == wantStatus {
		color.Green("OK (%d)", resp.StatusCode)
	} else {
		color.Red("FAIL: got %d, want %d", resp.StatusCode, wantStatus)
	}
	prettyPrint(raw)
}

// Walks the happy path of the survey API against a locally running
// instance. Not a test suite: a quick eyeball check after deploy.
func main() {
	email := fmt.Sprintf("smoke+%d@example.com", os.Getpid())

	section("Start session")
	resp, raw, err := sendRequest("POST", "/survey/v1/session", map[string]interface{}{
		"email":   email,
		"consent": true,
	})
	if err != nil {
		color.Red("request failed: %v", err)
		os.Exit(1)
	}
	check(resp, raw, http.StatusOK)

	var startEnvelope struct {
		Data struct {
			SessionId string `json:"session_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &startEnvelope); err != nil || startEnvelope.Data.SessionId == "" {
		color.Red("could not extract session_id, aborting")
		os.Exit(1)
	}
	sessionId := startEnvelope.Data.SessionId

	answers := []string{
		"J'ai 29 ans et je travaille dans le conseil.",
		"Oui",
		"Mon principal défi est le suivi des retours clients au quotidien.",
	}
	for i, answer := range answers {
		section(fmt.Sprintf("Answer %d", i+1))
		resp, raw, err = sendRequest("POST", "/survey/v1/session/"+sessionId+"/answer", map[string]interface{}{
			"answer": answer,
		})
		if err != nil {
			color.Red("request failed: %v", err)
			os.Exit(1)
		}
		check(resp, raw, http.StatusOK)
	}

	section("Session status")
	resp, raw, err = sendRequest("GET", "/survey/v1/session/"+sessionId, nil)
	if err != nil {
		color.Red("request failed: %v", err)
		os.Exit(1)
	}
	check(resp, raw, http.StatusOK)

	section("Complete session")
	resp, raw, err = sendRequest("POST", "/survey/v1/session/"+sessionId+"/complete", map[string]interface{}{
		"feedback": "Smoke test terminé.",
	})
	if err != nil {
		color.Red("request failed: %v", err)
		os.Exit(1)
	}
	check(resp, raw, http.StatusOK)

	section("Duplicate start must be refused")
	resp, raw, err = sendRequest("POST", "/survey/v1/session", map[string]interface{}{
		"email":   email,
		"consent": true,
	})
	if err != nil {
		color.Red("request failed: %v", err)
		os.Exit(1)
	}
	check(resp, raw, http.StatusConflict)

	color.Cyan("\nSmoke run finished.")
}
