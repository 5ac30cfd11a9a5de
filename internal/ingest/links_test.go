package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLinks(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want []string
	}{
		{
			name: "txt",
			file: "links.txt",
			data: "https://fb.example/a/posts/1\n\n  https://fb.example/b/posts/2  \n",
			want: []string{"https://fb.example/a/posts/1", "https://fb.example/b/posts/2"},
		},
		{
			name: "txt with BOM",
			file: "links.txt",
			data: "\uFEFFhttps://fb.example/a/posts/1\n",
			want: []string{"https://fb.example/a/posts/1"},
		},
		{
			name: "csv first column",
			file: "links.CSV",
			data: "link,note\nhttps://fb.example/a/posts/1,first\n,\nhttps://fb.example/b/posts/2,second\n",
			want: []string{"https://fb.example/a/posts/1", "https://fb.example/b/posts/2"},
		},
		{
			name: "csv header only",
			file: "links.csv",
			data: "link\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadLinks(writeFile(t, tt.file, tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadLinksErrors(t *testing.T) {
	if _, err := LoadLinks(writeFile(t, "links.xlsx", "x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadLinks(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMerge(t *testing.T) {
	got := Merge([]string{" a ", ""}, []string{"b", "c"})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("unexpected merge %v", got)
	}
}
