package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("doc:").
		Tag("category").
		Numeric("price").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "category" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want category TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "price" || idx.Fields[1].Type != IndexFieldNumeric {
		t.Errorf("field[1] = %+v, want price NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_JSONWithAlias(t *testing.T) {
	idx := NewIndex("ds-idx").
		OnJSON().
		Prefix("ds:smlouvy:doc:").
		TextAs("$.title", "title").
		MustBuild()

	if idx.StorageType != StorageJSON {
		t.Errorf("storage = %q, want JSON", idx.StorageType)
	}
	f := idx.Fields[0]
	if f.Name != "$.title" || f.Alias != "title" || f.Type != IndexFieldText {
		t.Errorf("field = %+v", f)
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name:    "empty name",
			build:   NewIndex("").Text("a").Build,
			wantErr: "index name is required",
		},
		{
			name:    "invalid name characters",
			build:   NewIndex("bad name!").Text("a").Build,
			wantErr: "invalid characters",
		},
		{
			name:    "no fields",
			build:   NewIndex("idx").Build,
			wantErr: "at least one field",
		},
		{
			name:    "duplicate field",
			build:   NewIndex("idx").Text("a").Tag("a").Build,
			wantErr: "duplicate field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Build() err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIndexDefinitionString(t *testing.T) {
	idx := NewIndex("idx").OnJSON().Prefix("p:").TextAs("$.a", "a").Numeric("n").MustBuild()
	got := idx.String()
	want := "FT.CREATE idx ON JSON PREFIX p: SCHEMA $.a AS a TEXT n NUMERIC"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
