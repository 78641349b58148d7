package dlcore

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"
)

func TestParseMixedFormats(t *testing.T) {
	content := "# header\n" +
		"d41d8cd98f00b204e9800998ecf8427e  sample_01.fastq.gz\n" +
		"D41D8CD98F00B204E9800998ECF8427E *sample_02.fastq.gz\n" +
		"MD5 (project/data/sample_03.fastq.gz) = d41d8cd98f00b204e9800998ecf8427e\n"

	got := Parse(strings.NewReader(content))

	want := map[string]string{
		"sample_01.fastq.gz": "d41d8cd98f00b204e9800998ecf8427e",
		"sample_02.fastq.gz": "d41d8cd98f00b204e9800998ecf8427e",
		"sample_03.fastq.gz": "d41d8cd98f00b204e9800998ecf8427e",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("entry %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseSkipsBlankAndCommentAndMalformed(t *testing.T) {
	content := "\n# comment\nnot-a-valid-line\n0123456789abcdef0123456789abcde  short-but-not-32\n"
	got := Parse(strings.NewReader(content))
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %v", got)
	}
}

func TestParseCollisionLastWins(t *testing.T) {
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa  dup.bin\n" +
		"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb  dup.bin\n"
	got := Parse(strings.NewReader(content))
	if got["dup.bin"] != "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Fatalf("want last entry to win, got %q", got["dup.bin"])
	}
}

func TestParseBasenameFromPath(t *testing.T) {
	content := "d41d8cd98f00b204e9800998ecf8427e  nested/dir/file.bin\n"
	got := Parse(strings.NewReader(content))
	if _, ok := got["file.bin"]; !ok {
		t.Fatalf("expected basename key 'file.bin', got %v", got)
	}
}

func TestParseBSDLineSkipsEmptyBasename(t *testing.T) {
	content := "MD5 () = d41d8cd98f00b204e9800998ecf8427e\n"
	got := Parse(strings.NewReader(content))
	if len(got) != 0 {
		t.Fatalf("expected empty basename to be skipped, got %v", got)
	}
}

func TestIsManifestKeyClassification(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"p/a.md5", true},
		{"p/MD5.txt", true},
		{"p/md5sum.txt", true},
		{"p/r.pdf", false},
		{"p/d/s.fastq.gz", false},
	}
	for _, c := range cases {
		if got := IsManifestKey(c.key); got != c.want {
			t.Errorf("IsManifestKey(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestHelloWorldMD5(t *testing.T) {
	sum := md5.Sum([]byte("hello world"))
	got := hex.EncodeToString(sum[:])
	want := "5eb63bbbe01eeed093cb22bb8f5acdc3"
	if got != want {
		t.Fatalf("md5(%q) = %s, want %s", "hello world", got, want)
	}
}
