package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "show", want: StatusShow},
		{in: "hide", want: StatusHide},
		{in: "SHOW", wantErr: true},
		{in: "", wantErr: true},
		{in: "hidden", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("ParseStatus(%q) error = %v, want ErrInvalidStatus", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatus_JSON(t *testing.T) {
	type wrapper struct {
		Status Status `json:"status"`
	}

	b, err := json.Marshal(wrapper{Status: StatusHide})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"status":"hide"}` {
		t.Errorf("Marshal = %s, want %s", b, `{"status":"hide"}`)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"status":"show"}`), &w); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if w.Status != StatusShow {
		t.Errorf("Status = %v, want %v", w.Status, StatusShow)
	}

	if err := json.Unmarshal([]byte(`{"status":"archived"}`), &w); err == nil {
		t.Error("expected error for unknown status")
	}

	if _, err := json.Marshal(wrapper{}); err == nil {
		t.Error("expected error marshalling zero status")
	}
}

func TestStatus_Scan(t *testing.T) {
	var s Status
	if err := s.Scan([]byte("hide")); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if s != StatusHide {
		t.Errorf("Status = %v, want %v", s, StatusHide)
	}
	if err := s.Scan(int64(1)); err == nil {
		t.Error("expected error scanning integer")
	}

	v, err := StatusShow.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != "show" {
		t.Errorf("Value = %v, want show", v)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		size       int
		wantPage   Page
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", wantPage: Page{Number: 1, Size: 10}, wantOffset: 0},
		{name: "third page", number: 3, size: 20, wantPage: Page{Number: 3, Size: 20}, wantOffset: 40},
		{name: "max size", number: 1, size: 100, wantPage: Page{Number: 1, Size: 100}},
		{name: "size too large", number: 1, size: 101, wantErr: true},
		{name: "negative size", number: 1, size: -1, wantErr: true},
		{name: "negative page", number: -2, size: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPage(tt.number, tt.size)
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("NewPage() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPage() failed: %v", err)
			}
			if got != tt.wantPage {
				t.Errorf("NewPage() = %+v, want %+v", got, tt.wantPage)
			}
			if got.Offset() != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestSyncErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: &SyncInProgressError{}, want: "sync_in_progress"},
		{err: &DuplicateSlugError{Slug: "a", Paths: []string{"a.md", "x/a.md"}}, want: "duplicate_slug"},
		{err: fmt.Errorf("listing: %w", &IOError{Err: errors.New("boom")}), want: "io"},
		{err: &PersistenceError{Op: "create", Slug: "a", Err: errors.New("locked")}, want: "persistence"},
		{err: errors.New("other"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := SyncErrorKind(tt.err); got != tt.want {
				t.Errorf("SyncErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDuplicateSlugError_NamesSlug(t *testing.T) {
	err := &DuplicateSlugError{Slug: "hello", Paths: []string{"hello.md", "notes/hello.md"}}
	want := `duplicate slug "hello" in hello.md, notes/hello.md`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
