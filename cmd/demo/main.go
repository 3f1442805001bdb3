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
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
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

	client := &http.Client{} // translation can be slow, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var out map[string]interface{}
	json.Unmarshal(body, &out)
	return out
}

func main() {
	color.Cyan("🚀 Starting CI/CD Analytics API Walkthrough\n")

	// 1. Health check
	color.Yellow("\n1. Health Check")
	resp, body, err := sendRequest("GET", "/health", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 2. Schema info as exposed to the translator
	color.Yellow("\n2. Get Schema Info")
	resp, body, err = sendRequest("GET", "/schema", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 3. MCP status
	color.Yellow("\n3. MCP Status")
	resp, body, err = sendRequest("GET", "/mcp/status", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 4. First query, no session yet
	color.Yellow("\n4. Query: count all events by event type")
	resp, body, err = sendRequest("POST", "/query", map[string]interface{}{
		"query": "Count all events by event type",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	queryResp := decode(body)
	prettyPrint(queryResp)

	// Extract the session ID issued by the server
	var sessionID string
	if data, ok := queryResp["data"].(map[string]interface{}); ok {
		if id, ok := data["session_id"].(string); ok {
			sessionID = id
		}
	}

	// 5. Follow-up query in the same session
	color.Yellow("\n5. Follow-up Query (same session)")
	resp, body, err = sendRequest("POST", "/query", map[string]interface{}{
		"query":      "Count events by source",
		"session_id": sessionID,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 6. Session history
	if sessionID != "" {
		color.Yellow("\n6. Session History")
		resp, body, err = sendRequest("GET", "/sessions/"+sessionID+"/history", nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
		prettyPrint(decode(body))
	}

	// 7. Distinct values for a field
	color.Yellow("\n7. Distinct Event Types")
	resp, body, err = sendRequest("GET", "/collections/cdPipelineEvents/distinct/event_type", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 8. Sample documents
	color.Yellow("\n8. Sample Documents (limit 3)")
	resp, body, err = sendRequest("GET", "/collections/cdPipelineEvents/sample?limit=3", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 9. Clear the MCP schema cache
	color.Yellow("\n9. Clear MCP Cache")
	resp, body, err = sendRequest("POST", "/mcp/clear-cache", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	color.Cyan("\n✅ Walkthrough complete")
}
