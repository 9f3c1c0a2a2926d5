package i18n

import (
	"strings"
	"testing"
)

func TestGet_Formats(t *testing.T) {
	tr := Default()

	got := tr.Get("reset.backup_created", "/tmp/storage.json.bak.20250101_120000")
	if !strings.Contains(got, "/tmp/storage.json.bak.20250101_120000") {
		t.Errorf("Get() = %q, argument not interpolated", got)
	}
}

func TestGet_UnknownKeyReturnsKey(t *testing.T) {
	tr := Default()

	if got := tr.Get("no.such.key"); got != "no.such.key" {
		t.Errorf("Get() = %q, want the key itself", got)
	}
}
