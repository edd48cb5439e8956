//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func postQuestions(t *testing.T, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(fmt.Sprintf("%s/v1/questions", baseURL()), "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("questions request failed: %v", err)
	}
	return resp
}

func TestFetchQuestions(t *testing.T) {
	resp := postQuestions(t, `{"questions_num": 2}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s; is the question source reachable?", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	// A drained source legitimately yields an empty object.
	if strings.TrimSpace(string(body)) == "{}" {
		return
	}

	var payload []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode questions response failed: %v (body: %s)", err, body)
	}
	if len(payload) == 0 || len(payload) > 2 {
		t.Fatalf("expected between 1 and 2 questions, got %d", len(payload))
	}
	for i, q := range payload {
		if q.Question == "" || q.Answer == "" {
			t.Fatalf("question %d has empty fields: %+v", i, q)
		}
	}
}

func TestFetchZeroQuestions(t *testing.T) {
	resp := postQuestions(t, `{"questions_num": 0}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}
	if got := strings.TrimSpace(string(body)); got != "{}" {
		t.Fatalf("expected empty object body, got %s", got)
	}
}

func TestFetchQuestionsValidation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "missing field", body: `{}`},
		{name: "negative count", body: `{"questions_num": -3}`},
		{name: "non-integer count", body: `{"questions_num": "many"}`},
		{name: "malformed json", body: `{"questions_num":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postQuestions(t, tc.body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}

			var errResp map[string]interface{}
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response failed: %v", err)
			}
			if errResp["error"] == nil {
				t.Fatal("error field is missing")
			}
		})
	}
}

func TestFetchQuestionsMethodNotAllowed(t *testing.T) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/questions", baseURL()))
	if err != nil {
		t.Fatalf("questions request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
