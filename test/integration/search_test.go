package integration

import (
	"image/color"
	"net/http"
	"strconv"
	"testing"

	"github.com/lookalike-dev/lookalike/pkg/api"
)

func TestSimilarRanking(t *testing.T) {
	redID, _ := uploadImage(t, solidJPEG(t, colorRed))
	uploadImage(t, solidJPEG(t, colorGreen))
	uploadImage(t, solidJPEG(t, colorBlue))

	// A near-red query must rank the red image first.
	query := solidJPEG(t, color.RGBA{R: 250, G: 10, B: 10, A: 255})
	resp := postMultipart(t, testEnv.BaseURL()+"/similar", query, map[string]string{"k": "3"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var result api.SearchResponse
	decodeJSON(t, resp, &result)

	if len(result.Results) != 3 {
		t.Fatalf("results length = %d, want 3", len(result.Results))
	}
	if result.Results[0].ID != redID {
		t.Errorf("top result = %s, want red image %s", result.Results[0].ID, redID)
	}

	for i := 1; i < len(result.Results); i++ {
		if result.Results[i].Distance < result.Results[i-1].Distance {
			t.Errorf("distances not sorted: results[%d]=%f < results[%d]=%f",
				i, result.Results[i].Distance, i-1, result.Results[i-1].Distance)
		}
	}

	// Every reference must resolve to stored bytes.
	for _, r := range result.Results {
		if r.ObjectName != r.ID+".jpg" {
			t.Errorf("object_name = %q, want %q", r.ObjectName, r.ID+".jpg")
		}
		fetchResp := getURL(t, testEnv.BaseURL()+"/image/"+r.ObjectName)
		if fetchResp.StatusCode != http.StatusOK {
			t.Errorf("reference %s not fetchable: %d", r.ObjectName, fetchResp.StatusCode)
		}
		fetchResp.Body.Close()
	}
}

func TestSimilarHonorsK(t *testing.T) {
	for i := 0; i < 4; i++ {
		uploadImage(t, solidJPEG(t, color.RGBA{R: uint8(40 * i), G: 128, A: 255}))
	}

	query := solidJPEG(t, colorGreen)
	resp := postMultipart(t, testEnv.BaseURL()+"/similar", query, map[string]string{"k": "2"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var result api.SearchResponse
	decodeJSON(t, resp, &result)
	if len(result.Results) != 2 {
		t.Errorf("results length = %d, want 2", len(result.Results))
	}
}

func TestSimilarZeroK(t *testing.T) {
	uploadImage(t, solidJPEG(t, colorBlue))

	query := solidJPEG(t, colorBlue)
	resp := postMultipart(t, testEnv.BaseURL()+"/similar", query, map[string]string{"k": "0"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var result api.SearchResponse
	decodeJSON(t, resp, &result)
	if len(result.Results) != 0 {
		t.Errorf("k=0: results length = %d, want 0", len(result.Results))
	}
}

func TestSimilarNegativeK(t *testing.T) {
	query := solidJPEG(t, colorRed)
	resp := postMultipart(t, testEnv.BaseURL()+"/similar", query, map[string]string{"k": "-1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || errResp.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error = %+v, want invalid_request", errResp.Error)
	}
}

func TestSimilarMalformedK(t *testing.T) {
	query := solidJPEG(t, colorRed)
	resp := postMultipart(t, testEnv.BaseURL()+"/similar", query, map[string]string{"k": "lots"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
}

func TestSimilarMissingFile(t *testing.T) {
	resp := postMultipart(t, testEnv.BaseURL()+"/similar", nil, map[string]string{"k": "3"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
}

func TestSimilarKLargerThanIndex(t *testing.T) {
	// Querying for more neighbors than the index holds returns what exists.
	resp := getURL(t, testEnv.BaseURL()+"/stats")
	var stats api.Stats
	decodeJSON(t, resp, &stats)

	query := solidJPEG(t, colorGreen)
	searchResp := postMultipart(t, testEnv.BaseURL()+"/similar", query,
		map[string]string{"k": strconv.FormatInt(stats.Count+100, 10)})
	if searchResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", searchResp.StatusCode, readBody(t, searchResp))
	}

	var result api.SearchResponse
	decodeJSON(t, searchResp, &result)
	if int64(len(result.Results)) != stats.Count {
		t.Errorf("results length = %d, want full index size %d", len(result.Results), stats.Count)
	}
}

func TestSimilarEmptyIndex(t *testing.T) {
	// A fresh environment so the shared index's entries cannot leak in.
	env := setupTestEnvironment()
	defer env.Teardown()

	query := solidJPEG(t, colorRed)
	resp := postMultipart(t, env.BaseURL()+"/similar", query, map[string]string{"k": "5"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var result api.SearchResponse
	decodeJSON(t, resp, &result)
	if len(result.Results) != 0 {
		t.Errorf("empty index: results length = %d, want 0", len(result.Results))
	}
}
