package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/llm/openai"
	"github.com/joseph-ayodele/docfields/internal/parse"
)

func TestNewExtractorScheme(t *testing.T) {
	tests := []struct {
		scheme string
		want   parse.Scheme
		err    bool
	}{
		{"", parse.SchemeStandard, false},
		{"LEGACY", parse.SchemeLegacy, false},
		{"fuzzy", "", true},
	}
	for _, tc := range tests {
		e, err := NewExtractor(common.ExtractionConfig{Scheme: tc.scheme})
		if tc.err {
			var appErr *common.AppError
			if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
				t.Errorf("NewExtractor(%q) error = %v, want CONFIG_ERROR", tc.scheme, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewExtractor(%q) error = %v", tc.scheme, err)
		}
		if got := e.Classifier().Scheme(); got != tc.want {
			t.Errorf("NewExtractor(%q) scheme = %s, want %s", tc.scheme, got, tc.want)
		}
	}
}

func TestNewFieldExtractor(t *testing.T) {
	if fe := NewFieldExtractor(common.LLMConfig{}, nil); fe != nil {
		t.Errorf("disabled LLM returned %T", fe)
	}
	fe := NewFieldExtractor(common.LLMConfig{Enabled: true, APIKey: "k"}, nil)
	if _, ok := fe.(*openai.Client); !ok {
		t.Errorf("enabled LLM returned %T", fe)
	}
}

func TestBuildWithSQLite(t *testing.T) {
	cfg := &common.Config{
		SQLite:     common.SQLiteConfig{Path: filepath.Join(t.TempDir(), "app.db")},
		Extraction: common.ExtractionConfig{Scheme: "legacy", PageWorkers: 2},
	}
	a, err := Build(context.Background(), cfg, true, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer a.Close()
	if a.Repo == nil {
		t.Fatal("Repo = nil, want sqlite store")
	}

	res, err := a.Processor.ProcessText(context.Background(), "Student ID 42\nRoll 7\n", "")
	if err != nil {
		t.Fatalf("ProcessText() error = %v", err)
	}
	if got := res.Pages[0].Record.Type; got != constants.IDCard {
		t.Errorf("legacy type = %s, want id_card", got)
	}
	if _, err := a.Repo.Get(context.Background(), res.ID); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestBuildWithoutStore(t *testing.T) {
	cfg := &common.Config{SQLite: common.SQLiteConfig{Path: filepath.Join(t.TempDir(), "unused.db")}}
	a, err := Build(context.Background(), cfg, false, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer a.Close()
	if a.Repo != nil || a.Processor.Store != nil {
		t.Errorf("store opened although withStore is false")
	}
}
