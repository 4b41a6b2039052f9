package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/config"
)

// popup is a one-shot client mirroring the extension popup's assistant
// button: ask the background service to attach the assistant to the active
// tab, report the result, and exit. Exiting is the popup closing.
func main() {
	cfg, err := config.LoadPopup()
	if err != nil {
		slog.Error("failed to load popup config", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}

	resp, err := client.Post(cfg.ServiceURL+"/api/v1/assistant/open", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "assistant open failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read response: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "assistant open failed: HTTP %d: %s\n", resp.StatusCode, bytes.TrimSpace(body))
		os.Exit(1)
	}

	var out struct {
		TabID string `json:"tab_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		fmt.Fprintf(os.Stderr, "decode response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("assistant attached to tab %s\n", out.TabID)
}
