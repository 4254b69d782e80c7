package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luebbehusen/blog"
)

// writeConfig lays out a one-post project in a temp dir and returns the
// path of its config file and the project root.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	post := filepath.Join(root, "content", "blog", "hello.md")
	if err := os.MkdirAll(filepath.Dir(post), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(post, []byte("---\ntitle: Hello\npublished: 2024-01-01\n---\nHi.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := "name: Test\n" +
		"url: https://example.com\n" +
		"content_dir: " + filepath.Join(root, "content") + "\n" +
		"static_dir: " + filepath.Join(root, "public") + "\n" +
		"out_dir: " + filepath.Join(root, "dist") + "\n" +
		"log_level: error\n"
	path := filepath.Join(root, "site.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "blog "+version+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestNewCommand(t *testing.T) {
	cfg, root := writeConfig(t)
	out, err := execute(t, "new", "Hello", "World", "--date", "2024-03-09", "--config", cfg)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	path := filepath.Join(root, "content", "blog", "hello-world.md")
	if out != "created "+path+"\n" {
		t.Errorf("output = %q", out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("post not created: %v", err)
	}
	if !strings.Contains(string(b), "published: 2024-03-09") {
		t.Errorf("post frontmatter = %s", b)
	}
}

func TestNewCommandRejectsBadDate(t *testing.T) {
	cfg, root := writeConfig(t)
	if _, err := execute(t, "new", "Later", "--date", "next tuesday", "--config", cfg); err == nil {
		t.Fatal("expected an invalid date error")
	}
	if _, err := os.Stat(filepath.Join(root, "content", "blog", "later.md")); !os.IsNotExist(err) {
		t.Error("no post should be written for a bad date")
	}
}

func TestBuildCommandOutFlag(t *testing.T) {
	cfg, root := writeConfig(t)
	out := filepath.Join(root, "site-out")
	stdout, err := execute(t, "build", "--config", cfg, "--out", out)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "built 1 posts") || !strings.Contains(stdout, out) {
		t.Errorf("output = %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "blog", "hello", "index.html")); err != nil {
		t.Errorf("post missing from --out directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "dist")); !os.IsNotExist(err) {
		t.Error("--out should override out_dir from the config file")
	}
}

func TestServeAddrFlag(t *testing.T) {
	cfg, _ := writeConfig(t)
	c := &cli{v: blog.NewViper(), configFile: cfg}
	cmd := newServeCmd(c)
	if err := cmd.ParseFlags([]string{"--addr", "127.0.0.1:9999"}); err != nil {
		t.Fatal(err)
	}
	site, _, err := c.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if site.Addr != "127.0.0.1:9999" {
		t.Errorf("addr = %q, want the flag value", site.Addr)
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := execute(t, "build", "--config", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
