package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/spool"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}
	if rootCmd.Use != "spoolio" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "spoolio")
	}

	// Check for expected subcommands (compare by Name(), not Use which includes args)
	expectedCmds := []string{"init", "add", "pick", "status", "delete", "watch", "top", "key"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range expectedCmds {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")

	output, err := executeCommand(rootCmd, "init", dir)
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(output, dir) {
		t.Errorf("init output %q does not mention the spool path", output)
	}

	for _, sub := range []string{"tmp", "new", "wip", "cur"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Errorf("state directory %s missing after init: %v", sub, err)
		}
	}

	// init is idempotent
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("second init error = %v", err)
	}
}

func TestAddCommand_FromFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	payloadFile := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(payloadFile, []byte("job data"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(rootCmd, "add", dir, payloadFile)
	if err != nil {
		t.Fatalf("add error = %v", err)
	}

	key := strings.TrimSpace(output)
	if len(key) != spool.GeneratedKeyLen {
		t.Fatalf("add printed %q, want a %d-char key", key, spool.GeneratedKeyLen)
	}

	content, err := os.ReadFile(filepath.Join(dir, "new", key))
	if err != nil {
		t.Fatalf("element not readable under new: %v", err)
	}
	if string(content) != "job data" {
		t.Fatalf("element payload = %q, want %q", content, "job data")
	}
}

func TestAddCommand_MissingInput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	_, err := executeCommand(rootCmd, "add", dir, filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("add with missing input file succeeded")
	}
	if !strings.Contains(err.Error(), "could not open input") {
		t.Fatalf("add error = %v, want an open-input failure", err)
	}
}

func TestAddCommand_MissingSpool(t *testing.T) {
	_, err := executeCommand(rootCmd, "add", filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("add with missing spool succeeded")
	}
	if !strings.Contains(err.Error(), "could not open spool") {
		t.Fatalf("add error = %v, want an open-spool failure", err)
	}
}

func TestPickCommand_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	payloadFile := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(payloadFile, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	addOut, err := executeCommand(rootCmd, "add", dir, payloadFile)
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	key := strings.TrimSpace(addOut)

	pickOut, err := executeCommand(rootCmd, "pick", dir)
	if err != nil {
		t.Fatalf("pick error = %v", err)
	}
	if !strings.Contains(pickOut, "hello") {
		t.Fatalf("pick output %q does not contain the payload", pickOut)
	}
	if !strings.Contains(pickOut, key) {
		t.Fatalf("pick output %q does not report the key", pickOut)
	}

	// The element finished: it lives in cur now.
	if _, err := os.Stat(filepath.Join(dir, "cur", key)); err != nil {
		t.Fatalf("picked element not in cur: %v", err)
	}
}

func TestPickCommand_Requeue(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	payloadFile := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(payloadFile, []byte("again"), 0o644); err != nil {
		t.Fatal(err)
	}
	addOut, err := executeCommand(rootCmd, "add", dir, payloadFile)
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	key := strings.TrimSpace(addOut)

	defer func() { pickRequeue = false }()
	if _, err := executeCommand(rootCmd, "pick", "--requeue", dir); err != nil {
		t.Fatalf("pick --requeue error = %v", err)
	}

	// The element is back in new, claimable again.
	if _, err := os.Stat(filepath.Join(dir, "new", key)); err != nil {
		t.Fatalf("requeued element not in new: %v", err)
	}
}

func TestPickCommand_Empty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	output, err := executeCommand(rootCmd, "pick", dir)
	if err != nil {
		t.Fatalf("pick on empty spool error = %v, want clean exit", err)
	}
	if !strings.Contains(output, "spool is empty") {
		t.Fatalf("pick output %q does not report the empty spool", output)
	}
}

func TestStatusAndDeleteCommands(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	payloadFile := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(payloadFile, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	addOut, err := executeCommand(rootCmd, "add", dir, payloadFile)
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	key := strings.TrimSpace(addOut)

	statusOut, err := executeCommand(rootCmd, "status", dir, key)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if strings.TrimSpace(statusOut) != "new" {
		t.Fatalf("status = %q, want new", strings.TrimSpace(statusOut))
	}

	if _, err := executeCommand(rootCmd, "delete", dir, key); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if _, err := executeCommand(rootCmd, "status", dir, key); err == nil {
		t.Fatal("status on deleted element succeeded")
	}
	if _, err := executeCommand(rootCmd, "delete", dir, key); err == nil {
		t.Fatal("second delete succeeded")
	}
}

func TestStatusCommand_RejectsBadKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	if _, err := executeCommand(rootCmd, "init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	if _, err := executeCommand(rootCmd, "status", dir, "../escape"); err == nil {
		t.Fatal("status accepted a key containing a path separator")
	}
}

func TestKeyCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "key")
	if err != nil {
		t.Fatalf("key error = %v", err)
	}

	key := strings.TrimSpace(output)
	if len(key) != spool.GeneratedKeyLen {
		t.Fatalf("key output %q, want a %d-char key", key, spool.GeneratedKeyLen)
	}
	for _, c := range key {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("key %q contains non-hex character %q", key, c)
		}
	}
}
