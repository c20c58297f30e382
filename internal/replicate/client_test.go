package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePrediction(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody createRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Prediction{ID: "pred-1", Status: StatusStarting})
	}))
	defer server.Close()

	client := NewClient("r8_test_token", WithBaseURL(server.URL))

	prediction, err := client.CreatePrediction(context.Background(), "acme/restorer", map[string]any{
		"input_image": "data:image/png;base64,xxxx",
	}, &CreateOptions{
		Webhook:             "https://example.com/api/webhooks/replicate",
		WebhookEventsFilter: []string{"start", "completed"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/models/acme/restorer/predictions", gotPath)
	assert.Equal(t, "Bearer r8_test_token", gotAuth)
	assert.Equal(t, "data:image/png;base64,xxxx", gotBody.Input["input_image"])
	assert.Equal(t, "https://example.com/api/webhooks/replicate", gotBody.Webhook)
	assert.Equal(t, []string{"start", "completed"}, gotBody.WebhookEventsFilter)

	assert.Equal(t, "pred-1", prediction.ID)
	assert.Equal(t, StatusStarting, prediction.Status)
}

func TestCreatePrediction_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(apiError{Detail: "input_image is required", Status: 422})
	}))
	defer server.Close()

	client := NewClient("r8_test_token", WithBaseURL(server.URL))

	_, err := client.CreatePrediction(context.Background(), "acme/restorer", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input_image is required")
}

func TestGetPrediction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predictions/pred-1", r.URL.Path)
		json.NewEncoder(w).Encode(Prediction{
			ID:     "pred-1",
			Status: StatusSucceeded,
			Output: "https://replicate.delivery/out.png",
		})
	}))
	defer server.Close()

	client := NewClient("r8_test_token", WithBaseURL(server.URL))

	prediction, err := client.GetPrediction(context.Background(), "pred-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, prediction.Status)
	assert.Equal(t, "https://replicate.delivery/out.png", prediction.Output)
}

func TestWait_StopsAtTerminalState(t *testing.T) {
	statuses := []Status{StatusStarting, StatusProcessing, StatusSucceeded, StatusProcessing}
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := statuses[calls]
		calls++
		json.NewEncoder(w).Encode(Prediction{ID: "pred-1", Status: status})
	}))
	defer server.Close()

	client := NewClient("r8_test_token", WithBaseURL(server.URL))

	prediction, err := client.Wait(context.Background(), "pred-1", WaitOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, prediction.Status)
	assert.Equal(t, 3, calls)
}

func TestWait_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Prediction{ID: "pred-1", Status: StatusProcessing})
	}))
	defer server.Close()

	client := NewClient("r8_test_token", WithBaseURL(server.URL))

	_, err := client.Wait(context.Background(), "pred-1", WaitOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 3,
	})
	require.ErrorIs(t, err, ErrWaitTimeout)
}

// A provider-side failure is a terminal prediction, not a Wait error. Callers
// distinguish the two by checking Status and Error on the result.
func TestWait_ProviderFailureIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Prediction{ID: "pred-1", Status: StatusFailed, Error: "NSFW content detected"})
	}))
	defer server.Close()

	client := NewClient("r8_test_token", WithBaseURL(server.URL))

	prediction, err := client.Wait(context.Background(), "pred-1", WaitOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, prediction.Status)
	assert.Equal(t, "NSFW content detected", prediction.Error)
}

func TestWait_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Prediction{ID: "pred-1", Status: StatusProcessing})
	}))
	defer server.Close()

	client := NewClient("r8_test_token", WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Wait(ctx, "pred-1", WaitOptions{Interval: time.Minute, MaxAttempts: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
