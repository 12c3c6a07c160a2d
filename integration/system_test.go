//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL    = getenv("E2E_BASE_URL", "http://localhost:3001")
	writeToken = os.Getenv("E2E_WRITE_TOKEN")
)

type product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	PictureURL  string  `json:"pictureUrl"`
	Status      string  `json:"status,omitempty"`
}

type productResp struct {
	Message string  `json:"message"`
	Product product `json:"product"`
}

func TestSystem_E2E_CRUD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	name := fmt.Sprintf("e2e_%d_%d", time.Now().Unix(), rand.Intn(100000))

	var created productResp
	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{
		"name":        name,
		"description": "end to end",
		"price":       12.5,
		"category":    "Test",
		"pictureUrl":  "http://example.com/p.png",
	}, &created, http.StatusCreated)
	if created.Product.ID == "" {
		t.Fatalf("created product has no id: %#v", created)
	}
	id := created.Product.ID

	var updated productResp
	doJSON(t, http.MethodPut, baseURL+"/products/"+id, map[string]any{"price": 10}, &updated, http.StatusOK)
	if updated.Product.Price != 10 || updated.Product.Name != name {
		t.Fatalf("update not merged: %#v", updated.Product)
	}

	var got product
	doJSON(t, http.MethodGet, baseURL+"/products/"+id, nil, &got, http.StatusOK)

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		// Close flushes the save queue; the record must survive a restart.
		restartCatalogContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")
		doJSON(t, http.MethodGet, baseURL+"/products/"+id, nil, &got, http.StatusOK)
		if got.Price != 10 {
			t.Fatalf("price after restart=%v", got.Price)
		}
	}

	doJSON(t, http.MethodDelete, baseURL+"/products/"+id, nil, nil, http.StatusOK)
	doJSON(t, http.MethodGet, baseURL+"/products/"+id, nil, nil, http.StatusNotFound)
}

func TestSystem_E2E_CSVThenBulk(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("csvFile", "import.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte("name,description,price,category,pictureUrl\nCSV A,from csv,3.5,Import,\nbad,row\n"))
	_ = mw.Close()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/upload-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setAuth(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status=%d", resp.StatusCode)
	}

	var staged struct {
		Products []product `json:"products"`
		Total    int       `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&staged); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if staged.Total != 1 || staged.Products[0].Status != "pending" {
		t.Fatalf("unexpected staged products: %#v", staged)
	}

	var bulk struct {
		Results []struct {
			Success bool     `json:"success"`
			Product *product `json:"product"`
		} `json:"results"`
		SuccessCount int `json:"successCount"`
	}
	doJSON(t, http.MethodPost, baseURL+"/products/bulk", map[string]any{"products": staged.Products}, &bulk, http.StatusCreated)
	if bulk.SuccessCount != 1 || bulk.Results[0].Product == nil {
		t.Fatalf("bulk: %#v", bulk)
	}

	doJSON(t, http.MethodDelete, baseURL+"/products/"+bulk.Results[0].Product.ID, nil, nil, http.StatusOK)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		setAuth(req)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func setAuth(req *http.Request) {
	if writeToken != "" {
		req.Header.Set("Authorization", "Bearer "+writeToken)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
