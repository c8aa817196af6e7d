package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testSeed = "4242424242424242424242424242424242424242424242424242424242424242"

func TestKeygenSignVerifyFlow(t *testing.T) {
	dir := t.TempDir()
	skPath := filepath.Join(dir, "key")
	sigPath := filepath.Join(dir, "sig")

	if code := run([]string{"keygen",
		"--lifetime", "256", "--activation", "0", "--count", "16",
		"--seed", testSeed, "--out", skPath}); code != 0 {
		t.Fatalf("keygen exit = %d", code)
	}
	if _, err := os.Stat(skPath + ".pub"); err != nil {
		t.Fatalf("public key not written: %v", err)
	}

	if code := run([]string{"sign",
		"--sk", skPath, "--epoch", "3", "--msg", "0xdeadbeef",
		"--out", sigPath}); code != 0 {
		t.Fatalf("sign exit = %d", code)
	}

	if code := run([]string{"verify",
		"--pk", skPath + ".pub", "--epoch", "3", "--msg", "0xdeadbeef",
		"--sig", sigPath}); code != 0 {
		t.Fatalf("verify exit = %d", code)
	}

	// Wrong epoch fails with a non-zero exit.
	if code := run([]string{"verify",
		"--pk", skPath + ".pub", "--epoch", "4", "--msg", "0xdeadbeef",
		"--sig", sigPath}); code == 0 {
		t.Error("verify accepted the wrong epoch")
	}

	// Wrong message fails.
	if code := run([]string{"verify",
		"--pk", skPath + ".pub", "--epoch", "3", "--msg", "0xdeadbeee",
		"--sig", sigPath}); code == 0 {
		t.Error("verify accepted the wrong message")
	}
}

func TestKeygenMinimalAndInspect(t *testing.T) {
	dir := t.TempDir()
	skPath := filepath.Join(dir, "key")

	if code := run([]string{"keygen",
		"--lifetime", "256", "--count", "8", "--minimal",
		"--seed", testSeed, "--out", skPath}); code != 0 {
		t.Fatalf("keygen exit = %d", code)
	}

	// Minimal form is just the 49-byte header.
	b, err := os.ReadFile(skPath)
	if err != nil {
		t.Fatalf("read secret key: %v", err)
	}
	if len(b) != 49 {
		t.Errorf("minimal key length = %d, want 49", len(b))
	}

	if code := run([]string{"inspect", "--key", skPath}); code != 0 {
		t.Error("inspect failed on minimal secret key")
	}
	if code := run([]string{"inspect", "--key", skPath + ".pub"}); code != 0 {
		t.Error("inspect failed on public key")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if code := run(nil); code == 0 {
		t.Error("no arguments accepted")
	}
	if code := run([]string{"frobnicate"}); code == 0 {
		t.Error("unknown command accepted")
	}
	if code := run([]string{"keygen", "--lifetime", "300", "--out", "x"}); code == 0 {
		t.Error("non-power-of-two lifetime accepted")
	}
	if code := run([]string{"keygen", "--lifetime", "64", "--out", "x"}); code == 0 {
		t.Error("unrecognized lifetime accepted")
	}
	if code := run([]string{"sign", "--epoch", "1"}); code == 0 {
		t.Error("sign without key accepted")
	}
}

func TestVersionAndHelp(t *testing.T) {
	if code := run([]string{"version"}); code != 0 {
		t.Error("version exited non-zero")
	}
	if code := run([]string{"help"}); code != 0 {
		t.Error("help exited non-zero")
	}
}
