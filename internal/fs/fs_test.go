package fs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestRenameWithFallback(t *testing.T) {
	dir, err := ioutil.TempDir("", "fs-rename")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	if err := RenameWithFallback(filepath.Join(dir, "does_not_exist"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected an error renaming a nonexistent source")
	}

	srcPath := filepath.Join(dir, "src")
	if err := ioutil.WriteFile(srcPath, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	dstPath := filepath.Join(dir, "dst")
	if err := RenameWithFallback(srcPath, dstPath); err != nil {
		t.Fatalf("RenameWithFallback: %v", err)
	}

	got, err := ioutil.ReadFile(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("dst contents = %q, want %q", got, "hello")
	}
	if _, err := os.Stat(srcPath); !os.IsNotExist(err) {
		t.Fatalf("src should no longer exist, got err=%v", err)
	}
}

func TestIsDirAndIsRegular(t *testing.T) {
	dir, err := ioutil.TempDir("", "fs-isdir")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	if ok, err := IsDir(dir); err != nil || !ok {
		t.Fatalf("IsDir(%s) = %v, %v; want true, nil", dir, ok, err)
	}

	file := filepath.Join(dir, "f")
	if err := ioutil.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := IsRegular(file); err != nil || !ok {
		t.Fatalf("IsRegular(%s) = %v, %v; want true, nil", file, ok, err)
	}
	if ok, err := IsRegular(filepath.Join(dir, "missing")); err != nil || ok {
		t.Fatalf("IsRegular(missing) = %v, %v; want false, nil", ok, err)
	}
}
