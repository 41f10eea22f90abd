package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("indexed %d cells", 8)
	if got != "indexed 8 cells" {
		t.Errorf("custom logger got %q", got)
	}

	// nil installs a no-op, which must not reach the previous logger.
	got = ""
	SetLogger(nil)
	Logf("dropped")
	if got != "" {
		t.Errorf("no-op logger forwarded %q", got)
	}
}

func TestDebugf(t *testing.T) {
	original := Logf
	defer func() {
		Logf = original
		SetDebug(false)
	}()

	calls := 0
	SetLogger(func(string, ...interface{}) { calls++ })

	SetDebug(false)
	Debugf("hidden")
	if calls != 0 {
		t.Fatalf("Debugf logged with debug off")
	}

	SetDebug(true)
	if !DebugEnabled() {
		t.Fatal("DebugEnabled() = false after SetDebug(true)")
	}
	Debugf("shown %s", "now")
	if calls != 1 {
		t.Errorf("Debugf calls = %d, want 1", calls)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}
