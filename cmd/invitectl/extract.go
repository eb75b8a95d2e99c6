package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/invite-sh/server/internal/model"
)

func runExtract(apiBase, localTime string, args []string, out io.Writer) error {
	if localTime == "" {
		localTime = time.Now().Format("Mon Jan 02 2006 15:04 MST")
	}
	req := model.ExtractionRequest{
		LocalTime: localTime,
		Details:   strings.Join(args, " "),
	}

	client := resty.New().SetBaseURL(apiBase).SetTimeout(60 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(&req).
		Post("/api/invites")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(resp.Body(), &e); jsonErr == nil && e.Error != "" {
			return fmt.Errorf("service returned %d: %s", resp.StatusCode(), e.Error)
		}
		return fmt.Errorf("service returned %d", resp.StatusCode())
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
