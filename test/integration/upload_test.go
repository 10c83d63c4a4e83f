package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/lookalike-dev/lookalike/pkg/api"
)

func TestUploadAndFetch(t *testing.T) {
	data := solidJPEG(t, colorRed)
	id, objectName := uploadImage(t, data)

	if !api.ValidateImageID(id) {
		t.Errorf("upload returned malformed id %q", id)
	}
	if objectName != id+".jpg" {
		t.Errorf("object_name = %q, want %q", objectName, id+".jpg")
	}

	// The stored bytes must come back exactly as uploaded.
	resp := getURL(t, testEnv.BaseURL()+"/image/"+objectName)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch: expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want \"image/jpeg\"", ct)
	}
	body := readBody(t, resp)
	if body != string(data) {
		t.Errorf("fetched bytes differ from uploaded bytes (len %d vs %d)", len(body), len(data))
	}
}

func TestUploadMissingFile(t *testing.T) {
	resp := postMultipart(t, testEnv.BaseURL()+"/upload", nil, map[string]string{"note": "no file here"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeInvalidRequest)
	}
}

func TestUploadCorruptImage(t *testing.T) {
	resp := postMultipart(t, testEnv.BaseURL()+"/upload", []byte("this is not an image"), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeDecode {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeDecode)
	}
}

func TestUploadTruncatedImage(t *testing.T) {
	data := solidJPEG(t, colorBlue)
	resp := postMultipart(t, testEnv.BaseURL()+"/upload", data[:len(data)/2], nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil || errResp.Error.Type != api.ErrorTypeDecode {
		t.Errorf("error = %+v, want decode error", errResp.Error)
	}
}

func TestFetchUnknownImage(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/image/"+api.NewImageID()+".jpg")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	if errResp.Error.Type != api.ErrorTypeNotFound {
		t.Errorf("error.type = %q, want %q", errResp.Error.Type, api.ErrorTypeNotFound)
	}
}

func TestUploadAssignsDistinctIDs(t *testing.T) {
	data := solidJPEG(t, colorGreen)
	id1, _ := uploadImage(t, data)
	id2, _ := uploadImage(t, data)

	// Identical content is still two separate entries.
	if id1 == id2 {
		t.Errorf("two uploads of the same image share id %q", id1)
	}
}

func TestRequestIDHeader(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/healthz")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if rid := resp.Header.Get("X-Request-ID"); rid == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestHealthEndpoint(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "ok") {
		t.Errorf("body = %q, want it to contain \"ok\"", body)
	}
}
