// Command restore drives the full restoration flow against a running server:
// upload an image, create a prediction, poll it to a terminal state within a
// bounded budget, deduct one credit, and print the restored image URL.
//
// One credit is deducted only after the provider confirms success. If the
// deduction then fails, the result is withheld and the error reported.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	var (
		server      = flag.String("server", "http://localhost:8080", "base URL of the photo restore server")
		imagePath   = flag.String("image", "", "path of the image file to restore")
		firebaseUID = flag.String("uid", "", "Firebase UID of the account to charge")
		idToken     = flag.String("token", "", "Firebase ID token (omit when the server runs with auth disabled)")
		interval    = flag.Duration("interval", time.Second, "delay between status polls")
		maxAttempts = flag.Int("max-attempts", 120, "maximum number of status polls before giving up")
	)
	flag.Parse()

	if *imagePath == "" || *firebaseUID == "" {
		flag.Usage()
		os.Exit(2)
	}

	client := &apiClient{
		baseURL:    *server,
		token:      *idToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	if err := run(client, *imagePath, *firebaseUID, *interval, *maxAttempts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(client *apiClient, imagePath, firebaseUID string, interval time.Duration, maxAttempts int) error {
	dataURL, err := encodeImage(imagePath)
	if err != nil {
		return err
	}

	created, err := client.createPrediction(dataURL)
	if err != nil {
		return fmt.Errorf("create prediction: %w", err)
	}
	fmt.Printf("prediction %s created (status %s)\n", created.ID, created.Status)

	final, err := pollPrediction(client, created.ID, interval, maxAttempts)
	if err != nil {
		return err
	}

	switch final.Status {
	case "succeeded":
		// Deduct before showing the result. A failed deduction withholds
		// the output.
		remaining, err := client.spendCredit(firebaseUID)
		if err != nil {
			return fmt.Errorf("restoration succeeded but the credit deduction failed, result withheld: %w", err)
		}
		fmt.Printf("restored image: %s\n", formatOutput(final.Output))
		fmt.Printf("credits remaining: %d\n", remaining)
		return nil
	case "failed", "canceled":
		if final.Error != "" {
			return fmt.Errorf("restoration %s: %s", final.Status, final.Error)
		}
		return fmt.Errorf("restoration %s", final.Status)
	default:
		return fmt.Errorf("unexpected terminal status %q", final.Status)
	}
}

// pollPrediction polls until the prediction is terminal or the attempt budget
// runs out. The timeout error is distinct from a provider-reported failure.
func pollPrediction(client *apiClient, id string, interval time.Duration, maxAttempts int) (*prediction, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p, err := client.getPrediction(id)
		if err != nil {
			return nil, fmt.Errorf("poll prediction: %w", err)
		}
		switch p.Status {
		case "succeeded", "failed", "canceled":
			return p, nil
		}
		time.Sleep(interval)
	}
	return nil, fmt.Errorf("timed out waiting for prediction %s after %d polls", id, maxAttempts)
}

func encodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func formatOutput(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	encoded, err := json.Marshal(output)
	if err != nil {
		return fmt.Sprintf("%v", output)
	}
	return string(encoded)
}

type prediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  string `json:"error"`
}

type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func (c *apiClient) createPrediction(inputImage string) (*prediction, error) {
	var p prediction
	err := c.do(http.MethodPost, "/api/predictions", map[string]any{"input_image": inputImage}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *apiClient) getPrediction(id string) (*prediction, error) {
	var p prediction
	if err := c.do(http.MethodGet, "/api/predictions/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *apiClient) spendCredit(firebaseUID string) (int, error) {
	var resp struct {
		Remaining int `json:"remaining"`
	}
	err := c.do(http.MethodPatch, "/api/credits", map[string]any{
		"firebaseUid": firebaseUID,
		"amount":      1,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Remaining, nil
}

func (c *apiClient) do(method, path string, in, out any) error {
	var body *bytes.Buffer
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewBuffer(payload)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
