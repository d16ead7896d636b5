package store

import (
	"context"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.UploadJSON(ctx, "bucket", "transcriptions/a.json", doc{Name: "a", Count: 2}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	var got doc
	if err := m.DownloadJSON(ctx, "bucket", "transcriptions/a.json", &got); err != nil {
		t.Fatalf("download: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("got %+v", got)
	}

	ok, err := m.Exists(ctx, "bucket", "transcriptions/a.json")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, _ = m.Exists(ctx, "bucket", "missing.json")
	if ok {
		t.Error("missing object should not exist")
	}
}

func TestMemoryMissingObject(t *testing.T) {
	m := NewMemory()
	var got doc
	if err := m.DownloadJSON(context.Background(), "b", "nope.json", &got); err == nil {
		t.Error("expected error for missing object")
	}
}

func TestMemoryInvalidJSON(t *testing.T) {
	m := NewMemory()
	m.PutRaw("b", "bad.json", []byte("not json"))

	var got doc
	if err := m.DownloadJSON(context.Background(), "b", "bad.json", &got); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Region != DefaultRegion {
		t.Errorf("default region = %s", cfg.Region)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	bad := &Config{Region: "us-east-1", AccessKey: "only-one-half"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unpaired credentials")
	}
}
