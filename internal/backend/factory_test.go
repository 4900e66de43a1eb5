package backend

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)

	result, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Backend == nil {
		t.Fatal("memory backend is nil")
	}
	if result.Cleanup != nil {
		t.Error("memory backend should need no cleanup")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)
	dbPath := filepath.Join(t.TempDir(), "flux.db")

	result, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: dbPath,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Cleanup == nil {
		t.Fatal("sqlite backend must provide cleanup")
	}
	if err := result.Cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}
}

func TestCreateBackendInvalidType(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: "postgres"}); err == nil {
		t.Error("invalid backend type accepted")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "./flux.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without spreadsheet", Config{Type: SheetsBackend}, true},
		{"sheets with spreadsheet", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, false},
		{"unknown type", Config{Type: "postgres"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
